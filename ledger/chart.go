package ledger

import "context"

// DefaultChart returns a standard small-business chart of accounts.
// Used when seeding a new entity so the books are usable immediately;
// further accounts are created on demand.
func DefaultChart() []Account {
	return []Account{
		{Name: "Operating Account", Type: TypeBank},
		{Name: "Accounts Receivable", Type: TypeAccountsReceivable},
		{Name: "Office Equipment", Type: TypeFixedAssets},
		{Name: "Accounts Payable", Type: TypeAccountsPayable},
		{Name: "Business Credit Card", Type: TypeCreditCard},
		{Name: "GST Payable", Type: TypeOtherCurrentLiability},
		{Name: "Owner Contributions", Type: TypeEquity},
		{Name: "Retained Earnings", Type: TypeEquity},
		{Name: "Sales", Type: TypeIncome},
		{Name: "Interest Income", Type: TypeOtherIncome},
		{Name: "Cost of Goods Sold", Type: TypeCostOfGoodsSold},
		{Name: "Rent", Type: TypeExpenses},
		{Name: "Utilities", Type: TypeExpenses},
		{Name: "Professional Fees:Accounting", Type: TypeExpenses},
		{Name: "Professional Fees:Legal", Type: TypeExpenses},
		{Name: "Bank Fees", Type: TypeOtherExpense},
	}
}

// SeedChart creates the default chart for an entity, skipping any
// account that already exists under its (entity, name, type) key.
func SeedChart(ctx context.Context, store Store, entityID int64) ([]Account, error) {
	var created []Account
	for _, a := range DefaultChart() {
		a.EntityID = entityID
		existing, err := store.FindAccount(ctx, entityID, a.Name, a.Type)
		if err == nil {
			created = append(created, existing)
			continue
		}
		if !IsNotFound(err) {
			return nil, err
		}
		acc, err := store.CreateAccount(ctx, a)
		if err != nil {
			return nil, err
		}
		created = append(created, acc)
	}
	return created, nil
}
