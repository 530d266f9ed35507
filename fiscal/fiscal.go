// Package fiscal provides pure date arithmetic for the July 1 – June 30
// fiscal year. No I/O, no wall-clock dependence beyond the input date.
package fiscal

import "time"

// StartMonth is the first month of the fiscal year.
const StartMonth = time.July

// YearStart returns July 1 of d's fiscal year: July 1 of d's calendar
// year when d falls in July or later, otherwise July 1 of the previous
// calendar year.
func YearStart(d time.Time) time.Time {
	year := d.Year()
	if d.Month() < StartMonth {
		year--
	}
	return time.Date(year, StartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns June 30 closing d's fiscal year.
func YearEnd(d time.Time) time.Time {
	return YearStart(d).AddDate(1, 0, -1)
}

// PreviousYearRange returns the previous fiscal year as an inclusive
// [July 1, June 30] pair.
func PreviousYearRange(d time.Time) (start, end time.Time) {
	start = YearStart(d).AddDate(-1, 0, 0)
	end = YearStart(d).AddDate(0, 0, -1)
	return start, end
}

// PreviousYearEnd returns the June 30 immediately preceding d's fiscal
// year start. Used as the default comparison column for balance-sheet
// "as of" views.
func PreviousYearEnd(d time.Time) time.Time {
	return YearStart(d).AddDate(0, 0, -1)
}
