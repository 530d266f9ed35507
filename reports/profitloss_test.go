package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/bookkeeper/ledger"
	"github.com/ledgerline/bookkeeper/reports"
	"github.com/ledgerline/bookkeeper/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type reportFixture struct {
	store    *sqlite.Store
	balancer *ledger.Balancer
	builder  *reports.Builder
	entityID int64
	accounts map[string]int64
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	entity, err := store.CreateEntity(ctx, ledger.Entity{Name: "JAJG Pty Ltd", Type: "company"})
	require.NoError(t, err)

	f := &reportFixture{
		store:    store,
		balancer: ledger.NewBalancer(store),
		builder:  reports.NewBuilder(store),
		entityID: entity.ID,
		accounts: make(map[string]int64),
	}

	for _, a := range []ledger.Account{
		{Name: "Operating Account", Type: ledger.TypeBank},
		{Name: "Accounts Receivable", Type: ledger.TypeAccountsReceivable},
		{Name: "Office Equipment", Type: ledger.TypeFixedAssets},
		{Name: "Business Loan", Type: ledger.TypeLongTermLiability},
		{Name: "Owner Contributions", Type: ledger.TypeEquity},
		{Name: "Retained Earnings", Type: ledger.TypeEquity},
		{Name: "Sales", Type: ledger.TypeIncome},
		{Name: "Cost of Goods Sold", Type: ledger.TypeCostOfGoodsSold},
		{Name: "Rent", Type: ledger.TypeExpenses},
		{Name: "Professional Fees:Accounting", Type: ledger.TypeExpenses},
		{Name: "Professional Fees:Legal", Type: ledger.TypeExpenses},
	} {
		a.EntityID = entity.ID
		created, err := store.CreateAccount(ctx, a)
		require.NoError(t, err)
		f.accounts[a.Name] = created.ID
	}
	return f
}

// postTx posts a balanced transaction: one debit account, one credit
// account, same amount.
func (f *reportFixture) postTx(t *testing.T, date time.Time, debitAccount, creditAccount string, amount float64) {
	t.Helper()
	_, err := f.balancer.Create(context.Background(), f.entityID, ledger.TransactionInput{
		Date:        date,
		Description: debitAccount + " / " + creditAccount,
		Lines: []ledger.LineInput{
			{AccountID: f.accounts[debitAccount], Debit: dec(amount)},
			{AccountID: f.accounts[creditAccount], Credit: dec(amount)},
		},
	})
	require.NoError(t, err)
}

func august2024() reports.Period {
	return reports.Period{
		Label: "Aug 2024",
		Start: ledger.Date(2024, time.August, 1),
		End:   ledger.Date(2024, time.August, 31),
	}
}

// =============================================================================
// PROFIT & LOSS TESTS
// =============================================================================

func TestProfitAndLoss_SingleSale(t *testing.T) {
	// GIVEN: A single $500 cash sale in August
	f := newReportFixture(t)
	f.postTx(t, ledger.Date(2024, time.August, 1), "Operating Account", "Sales", 500)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)

	// THEN: Income 500, no COGS or expenses, both profits 500
	assert.True(t, pnl.Income[0].Equal(dec(500)))
	assert.True(t, pnl.COGS[0].IsZero())
	assert.True(t, pnl.Expenses[0].IsZero())
	assert.True(t, pnl.GrossProfit[0].Equal(dec(500)))
	assert.True(t, pnl.NetProfit[0].Equal(dec(500)))

	require.Len(t, pnl.Sections, 3)
	assert.Equal(t, "Income", pnl.Sections[0].Name)
	assert.Equal(t, "Cost of Goods Sold", pnl.Sections[1].Name)
	assert.Equal(t, "Expenses", pnl.Sections[2].Name)

	sales := findRow(t, pnl.Sections[0].Rows, "Sales", reports.KindAccount)
	assert.Equal(t, []float64{500}, rowAmounts(sales))
}

func TestProfitAndLoss_GrossAndNetProfit(t *testing.T) {
	f := newReportFixture(t)
	aug := ledger.Date(2024, time.August, 5)
	f.postTx(t, aug, "Operating Account", "Sales", 2000)
	f.postTx(t, aug, "Cost of Goods Sold", "Operating Account", 600)
	f.postTx(t, aug, "Rent", "Operating Account", 300)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)

	assert.True(t, pnl.Income[0].Equal(dec(2000)))
	assert.True(t, pnl.COGS[0].Equal(dec(600)))
	assert.True(t, pnl.Expenses[0].Equal(dec(300)))
	assert.True(t, pnl.GrossProfit[0].Equal(dec(1400)), "gross profit = income - cogs")
	assert.True(t, pnl.NetProfit[0].Equal(dec(1100)), "net profit = gross profit - expenses")
}

func TestProfitAndLoss_HierarchicalExpenseRollup(t *testing.T) {
	// GIVEN: Two expense accounts sharing the "Professional Fees" parent
	f := newReportFixture(t)
	aug := ledger.Date(2024, time.August, 10)
	f.postTx(t, aug, "Professional Fees:Accounting", "Operating Account", 650)
	f.postTx(t, aug, "Professional Fees:Legal", "Operating Account", 250)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)

	rows := pnl.Sections[2].Rows
	group := findRow(t, rows, "Professional Fees", reports.KindGroup)
	assert.Equal(t, []float64{900}, rowAmounts(group))

	total := findRow(t, rows, "Total Professional Fees", reports.KindTotal)
	assert.Equal(t, []float64{900}, rowAmounts(total))

	leaf := findRow(t, rows, "Accounting", reports.KindAccount)
	assert.Equal(t, []float64{650}, rowAmounts(leaf))
	assert.Equal(t, "Professional Fees:Accounting", leaf.Path)
	assert.Equal(t, 1, leaf.Level)
}

func TestProfitAndLoss_MultiPeriodColumns(t *testing.T) {
	// GIVEN: Sales in July and August
	f := newReportFixture(t)
	f.postTx(t, ledger.Date(2024, time.July, 15), "Operating Account", "Sales", 300)
	f.postTx(t, ledger.Date(2024, time.August, 15), "Operating Account", "Sales", 500)

	periods := []reports.Period{
		{Label: "Jul 2024", Start: ledger.Date(2024, time.July, 1), End: ledger.Date(2024, time.July, 31)},
		august2024(),
	}
	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, periods)
	require.NoError(t, err)

	// THEN: Each column holds only its own period's flow
	assert.True(t, pnl.Income[0].Equal(dec(300)))
	assert.True(t, pnl.Income[1].Equal(dec(500)))

	sales := findRow(t, pnl.Sections[0].Rows, "Sales", reports.KindAccount)
	assert.Equal(t, []float64{300, 500}, rowAmounts(sales))
	f64, _ := sales.Total.Float64()
	assert.Equal(t, 800.0, f64, "row total sums across columns")
}

func TestProfitAndLoss_PeriodBoundariesInclusive(t *testing.T) {
	f := newReportFixture(t)
	f.postTx(t, ledger.Date(2024, time.August, 1), "Operating Account", "Sales", 100)
	f.postTx(t, ledger.Date(2024, time.August, 31), "Operating Account", "Sales", 200)
	f.postTx(t, ledger.Date(2024, time.July, 31), "Operating Account", "Sales", 999)
	f.postTx(t, ledger.Date(2024, time.September, 1), "Operating Account", "Sales", 999)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)
	assert.True(t, pnl.Income[0].Equal(dec(300)), "both boundary days included, neighbours excluded")
}

func TestProfitAndLoss_SalesRefundNetsAgainstIncome(t *testing.T) {
	// A debit to an income account reduces displayed revenue.
	f := newReportFixture(t)
	aug := ledger.Date(2024, time.August, 20)
	f.postTx(t, aug, "Operating Account", "Sales", 1000)
	f.postTx(t, aug, "Sales", "Operating Account", 150)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)
	assert.True(t, pnl.Income[0].Equal(dec(850)))
}

func TestProfitAndLoss_ExcludesBalanceSheetAccounts(t *testing.T) {
	// Pure balance-sheet movement leaves the P&L empty.
	f := newReportFixture(t)
	f.postTx(t, ledger.Date(2024, time.August, 3), "Operating Account", "Business Loan", 5000)

	pnl, err := f.builder.ProfitAndLoss(context.Background(), f.entityID, []reports.Period{august2024()})
	require.NoError(t, err)
	assert.True(t, pnl.Income[0].IsZero())
	assert.True(t, pnl.Expenses[0].IsZero())
	assert.True(t, pnl.NetProfit[0].IsZero())
	assert.Empty(t, pnl.Sections[0].Rows)
}

func TestProfitAndLoss_UnknownEntity(t *testing.T) {
	f := newReportFixture(t)
	_, err := f.builder.ProfitAndLoss(context.Background(), 99999, []reports.Period{august2024()})
	assert.ErrorIs(t, err, ledger.ErrEntityNotFound)
}
