package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/bookkeeper/fiscal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearStart_AfterJuly(t *testing.T) {
	// GIVEN: A date in the second half of the calendar year
	// THEN: The fiscal year starts July 1 of the same calendar year
	assert.Equal(t, date(2024, time.July, 1), fiscal.YearStart(date(2024, time.August, 15)))
	assert.Equal(t, date(2024, time.July, 1), fiscal.YearStart(date(2024, time.July, 1)))
	assert.Equal(t, date(2024, time.July, 1), fiscal.YearStart(date(2024, time.December, 31)))
}

func TestYearStart_BeforeJuly(t *testing.T) {
	// GIVEN: A date in the first half of the calendar year
	// THEN: The fiscal year started July 1 of the previous calendar year
	assert.Equal(t, date(2023, time.July, 1), fiscal.YearStart(date(2024, time.January, 1)))
	assert.Equal(t, date(2023, time.July, 1), fiscal.YearStart(date(2024, time.June, 30)))
}

func TestYearEnd(t *testing.T) {
	assert.Equal(t, date(2025, time.June, 30), fiscal.YearEnd(date(2024, time.August, 15)))
	assert.Equal(t, date(2024, time.June, 30), fiscal.YearEnd(date(2024, time.June, 30)))
	assert.Equal(t, date(2025, time.June, 30), fiscal.YearEnd(date(2025, time.June, 30)))
}

func TestPreviousYearRange(t *testing.T) {
	start, end := fiscal.PreviousYearRange(date(2024, time.August, 31))
	assert.Equal(t, date(2023, time.July, 1), start)
	assert.Equal(t, date(2024, time.June, 30), end)

	// From inside the first half of the calendar year the previous
	// fiscal year reaches back two July firsts.
	start, end = fiscal.PreviousYearRange(date(2024, time.March, 10))
	assert.Equal(t, date(2022, time.July, 1), start)
	assert.Equal(t, date(2023, time.June, 30), end)
}

func TestPreviousYearEnd(t *testing.T) {
	assert.Equal(t, date(2024, time.June, 30), fiscal.PreviousYearEnd(date(2024, time.August, 31)))
	assert.Equal(t, date(2023, time.June, 30), fiscal.PreviousYearEnd(date(2024, time.February, 1)))
}

func TestFiscalYearBoundary_June30ToJuly1(t *testing.T) {
	// GIVEN: Consecutive calendar days across the boundary
	// THEN: They fall in different fiscal years
	june30 := date(2024, time.June, 30)
	july1 := date(2024, time.July, 1)

	assert.Equal(t, date(2023, time.July, 1), fiscal.YearStart(june30))
	assert.Equal(t, date(2024, time.July, 1), fiscal.YearStart(july1))
	assert.Equal(t, june30, fiscal.YearEnd(june30))
	assert.Equal(t, date(2025, time.June, 30), fiscal.YearEnd(july1))
}
