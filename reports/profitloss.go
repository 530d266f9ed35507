/*
profitloss.go - Profit & Loss report builder

PURPOSE:

	Builds the multi-period P&L: Income, Cost of Goods Sold, and Expenses
	sections rolled up through the account hierarchy, with gross profit
	and net profit derived per column.

SIGN CONVENTION:

	Each account nets to debits - credits for the period, then Income and
	Other Income flip sign so revenue displays positive. Expense and COGS
	amounts are left unflipped (their debit-normal net is already
	positive in the usual case).
*/
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/ledger"
)

// Period is one P&L report column: flow between two inclusive dates.
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// Section is one report section with its flattened rows and totals.
type Section struct {
	Name   string
	Rows   []Row
	Totals []decimal.Decimal // per column
	Total  decimal.Decimal   // sum across columns
}

// ProfitAndLoss is the structured P&L output.
type ProfitAndLoss struct {
	Periods  []Period
	Sections []Section // Income, Cost of Goods Sold, Expenses - fixed order

	// Per-column summary vectors. GrossProfit = Income - COGS;
	// NetProfit = GrossProfit - Expenses.
	Income      []decimal.Decimal
	COGS        []decimal.Decimal
	Expenses    []decimal.Decimal
	GrossProfit []decimal.Decimal
	NetProfit   []decimal.Decimal
}

var pnlAccountTypes = []ledger.AccountType{
	ledger.TypeIncome, ledger.TypeOtherIncome,
	ledger.TypeCostOfGoodsSold,
	ledger.TypeExpenses, ledger.TypeOtherExpense,
}

// Builder constructs reports from the ledger store. Each build is a
// pure function of (store snapshot, requested columns); trees are built
// fresh per request and discarded after flattening.
type Builder struct {
	Store ledger.Store
}

func NewBuilder(store ledger.Store) *Builder {
	return &Builder{Store: store}
}

// ProfitAndLoss builds the P&L for the requested periods.
func (b *Builder) ProfitAndLoss(ctx context.Context, entityID int64, periods []Period) (ProfitAndLoss, error) {
	if _, err := b.Store.GetEntity(ctx, entityID); err != nil {
		return ProfitAndLoss{}, err
	}

	n := len(periods)
	income := NewTree(n)
	cogs := NewTree(n)
	expenses := NewTree(n)

	for col, period := range periods {
		postings, err := b.Store.PostingsByType(ctx, entityID, pnlAccountTypes,
			ledger.DateOnly(period.Start), ledger.DateOnly(period.End))
		if err != nil {
			return ProfitAndLoss{}, err
		}

		for _, net := range netByAccount(postings) {
			amount := net.amount
			tree := expenses
			switch net.accountType.Section() {
			case ledger.SectionIncome:
				// Income accounts are credit-normal; flip so revenue
				// displays positive.
				amount = amount.Neg()
				tree = income
			case ledger.SectionCOGS:
				tree = cogs
			}
			tree.Add(ledger.SplitPath(net.accountName), col, amount)
		}
	}

	incomeTotals := income.Totals()
	cogsTotals := cogs.Totals()
	expenseTotals := expenses.Totals()
	grossProfit := subVectors(incomeTotals, cogsTotals)
	netProfit := subVectors(grossProfit, expenseTotals)

	return ProfitAndLoss{
		Periods: periods,
		Sections: []Section{
			{Name: "Income", Rows: income.Flatten(), Totals: incomeTotals, Total: sumVector(incomeTotals)},
			{Name: "Cost of Goods Sold", Rows: cogs.Flatten(), Totals: cogsTotals, Total: sumVector(cogsTotals)},
			{Name: "Expenses", Rows: expenses.Flatten(), Totals: expenseTotals, Total: sumVector(expenseTotals)},
		},
		Income:      incomeTotals,
		COGS:        cogsTotals,
		Expenses:    expenseTotals,
		GrossProfit: grossProfit,
		NetProfit:   netProfit,
	}, nil
}

// netProfitOver computes net profit for a single ad-hoc range. Used by
// the balance sheet to derive Retained Earnings and Net Income.
func (b *Builder) netProfitOver(ctx context.Context, entityID int64, start, end time.Time) (decimal.Decimal, error) {
	pnl, err := b.ProfitAndLoss(ctx, entityID, []Period{{Start: start, End: end}})
	if err != nil {
		return decimal.Zero, err
	}
	return pnl.NetProfit[0], nil
}

// accountNet is one account's signed net activity for a column.
type accountNet struct {
	accountID   int64
	accountName string
	accountType ledger.AccountType
	amount      decimal.Decimal // debits - credits
}

// netByAccount reduces postings to one debits-minus-credits amount per
// account, in first-seen order.
func netByAccount(postings []ledger.Posting) []accountNet {
	index := make(map[int64]int)
	var nets []accountNet
	for _, p := range postings {
		i, ok := index[p.AccountID]
		if !ok {
			i = len(nets)
			index[p.AccountID] = i
			nets = append(nets, accountNet{
				accountID:   p.AccountID,
				accountName: p.AccountName,
				accountType: p.AccountType,
				amount:      decimal.Zero,
			})
		}
		nets[i].amount = nets[i].amount.Add(p.Debit).Sub(p.Credit)
	}
	return nets
}
