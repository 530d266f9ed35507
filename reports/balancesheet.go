/*
balancesheet.go - Balance Sheet report builder

PURPOSE:

	Builds the multi-column balance sheet: Assets, Liabilities, and
	Equity sections as of each requested date, plus the derived Retained
	Earnings and Net Income lines and the accounting-equation check.

SECTION LAYOUT:

	Asset and liability accounts roll up under a subgroup derived from
	their account type (Current Assets, Fixed Assets, Other Assets;
	Current Liabilities, Long Term Liabilities, Other Liabilities).
	Equity accounts roll up directly, except that any equity account
	whose name contains "retained earnings" is excluded from the raw
	rollup and replaced by two synthetic lines under
	Equity -> Shareholders' equity:

	  Retained Earnings = net profit from the first transaction through
	    the day before the current fiscal year, minus owner distributions
	    (net debit activity on retained-earnings accounts through asOf)
	  Net Income = current-fiscal-year-to-date net profit

BALANCE CHECK:

	difference[col] = assets - (liabilities + equity). Zero for a
	correctly maintained ledger; surfaced so callers can flag books that
	are out of balance.
*/
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/fiscal"
	"github.com/ledgerline/bookkeeper/ledger"
)

// Column is one balance-sheet report column: cumulative state through
// an as-of date.
type Column struct {
	Label string
	AsOf  time.Time
}

// BalanceSheet is the structured balance sheet output.
type BalanceSheet struct {
	Columns  []Column
	Sections []Section // Assets, Liabilities, Equity - fixed order

	Assets                []decimal.Decimal
	Liabilities           []decimal.Decimal
	Equity                []decimal.Decimal
	LiabilitiesPlusEquity []decimal.Decimal
	// Difference is assets - (liabilities + equity); expected zero.
	Difference []decimal.Decimal
}

const (
	retainedEarningsMatch = "retained earnings"
	shareholdersEquity    = "Shareholders' equity"
	retainedEarningsLabel = "Retained Earnings"
	netIncomeLabel        = "Net Income"
)

var bsAccountTypes = []ledger.AccountType{
	ledger.TypeBank, ledger.TypeAccountsReceivable, ledger.TypeOtherCurrentAssets,
	ledger.TypeFixedAssets, ledger.TypeOtherAssets,
	ledger.TypeAccountsPayable, ledger.TypeCreditCard, ledger.TypeOtherCurrentLiability,
	ledger.TypeLongTermLiability, ledger.TypeOtherLiability,
	ledger.TypeEquity,
}

// BalanceSheet builds the balance sheet for the requested as-of columns.
func (b *Builder) BalanceSheet(ctx context.Context, entityID int64, columns []Column) (BalanceSheet, error) {
	if _, err := b.Store.GetEntity(ctx, entityID); err != nil {
		return BalanceSheet{}, err
	}

	n := len(columns)
	assets := NewTree(n)
	liabilities := NewTree(n)
	equity := NewTree(n)

	earliest, hasActivity, err := b.Store.EarliestTransactionDate(ctx, entityID)
	if err != nil {
		return BalanceSheet{}, err
	}

	for col, column := range columns {
		asOf := ledger.DateOnly(column.AsOf)
		postings, err := b.Store.PostingsByType(ctx, entityID, bsAccountTypes, time.Time{}, asOf)
		if err != nil {
			return BalanceSheet{}, err
		}

		// Net debit activity on retained-earnings equity accounts: the
		// owner distributions deducted from derived Retained Earnings.
		distributions := decimal.Zero

		for _, net := range netByAccount(postings) {
			section := net.accountType.Section()
			if section == ledger.SectionEquity && isRetainedEarningsName(net.accountName) {
				distributions = distributions.Add(net.amount)
				continue
			}

			amount := net.amount
			path := ledger.SplitPath(net.accountName)
			switch section {
			case ledger.SectionAssets:
				assets.Add(append(subgroupFor(net.accountType), path...), col, amount)
			case ledger.SectionLiabilities:
				// Credit-normal: flip so liabilities display positive.
				liabilities.Add(append(subgroupFor(net.accountType), path...), col, amount.Neg())
			case ledger.SectionEquity:
				equity.Add(path, col, amount.Neg())
			}
		}

		fyStart := fiscal.YearStart(asOf)

		// Net Income: current fiscal year to date.
		netIncome, err := b.netProfitOver(ctx, entityID, fyStart, asOf)
		if err != nil {
			return BalanceSheet{}, err
		}

		// Retained Earnings: everything before this fiscal year, less
		// distributions taken against the retained-earnings accounts.
		retained := decimal.Zero
		priorEnd := fyStart.AddDate(0, 0, -1)
		if hasActivity && !earliest.After(priorEnd) {
			retained, err = b.netProfitOver(ctx, entityID, earliest, priorEnd)
			if err != nil {
				return BalanceSheet{}, err
			}
		}
		retained = retained.Sub(distributions)

		equity.Add([]string{shareholdersEquity, retainedEarningsLabel}, col, retained)
		equity.Add([]string{shareholdersEquity, netIncomeLabel}, col, netIncome)
	}

	assetTotals := assets.Totals()
	liabilityTotals := liabilities.Totals()
	equityTotals := equity.Totals()
	liabPlusEquity := addVectors(liabilityTotals, equityTotals)

	return BalanceSheet{
		Columns: columns,
		Sections: []Section{
			{Name: "Assets", Rows: assets.Flatten(), Totals: assetTotals, Total: sumVector(assetTotals)},
			{Name: "Liabilities", Rows: liabilities.Flatten(), Totals: liabilityTotals, Total: sumVector(liabilityTotals)},
			{Name: "Equity", Rows: equity.Flatten(), Totals: equityTotals, Total: sumVector(equityTotals)},
		},
		Assets:                assetTotals,
		Liabilities:           liabilityTotals,
		Equity:                equityTotals,
		LiabilitiesPlusEquity: liabPlusEquity,
		Difference:            subVectors(assetTotals, liabPlusEquity),
	}, nil
}

// DefaultColumns returns the standard balance-sheet view: the given
// as-of date plus the previous fiscal year end for comparison.
func DefaultColumns(asOf time.Time) []Column {
	prev := fiscal.PreviousYearEnd(asOf)
	return []Column{
		{Label: "As of " + asOf.Format("2 Jan 2006"), AsOf: asOf},
		{Label: "As of " + prev.Format("2 Jan 2006"), AsOf: prev},
	}
}

// isRetainedEarningsName matches the naming convention used to exclude
// retained-earnings equity accounts from the raw rollup. More than one
// matching account is legal; their activity sums together.
func isRetainedEarningsName(name string) bool {
	return strings.Contains(strings.ToLower(name), retainedEarningsMatch)
}

// subgroupFor returns the synthetic grouping segment for an asset or
// liability account type.
func subgroupFor(t ledger.AccountType) []string {
	switch t {
	case ledger.TypeBank, ledger.TypeAccountsReceivable, ledger.TypeOtherCurrentAssets:
		return []string{"Current Assets"}
	case ledger.TypeFixedAssets:
		return []string{"Fixed Assets"}
	case ledger.TypeOtherAssets:
		return []string{"Other Assets"}
	case ledger.TypeAccountsPayable, ledger.TypeCreditCard, ledger.TypeOtherCurrentLiability:
		return []string{"Current Liabilities"}
	case ledger.TypeLongTermLiability:
		return []string{"Long Term Liabilities"}
	case ledger.TypeOtherLiability:
		return []string{"Other Liabilities"}
	default:
		return nil
	}
}
