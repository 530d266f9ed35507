/*
Package ledger provides the double-entry bookkeeping core.

PURPOSE:

	This package contains the data model and services for the ledger:
	entities, accounts, balanced transactions, and the per-account
	posting history. Every financial event is a Transaction made of
	debit/credit Lines that must balance to the cent before it is
	allowed anywhere near the store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entity: A legal/accounting unit (company, trust) that owns accounts
  - Account: A ledger account with a typed classification and an
    optional colon-delimited hierarchical name
  - AccountType: The fixed vocabulary that determines both report
    section and normal balance sign
  - Transaction: One balanced accounting event with a per-entity
    sequence number
  - Line: A single debit or credit posting

DESIGN PRINCIPLES:
 1. Balance: Σ debits == Σ credits is enforced before every commit
 2. Precision: Uses decimal.Decimal to avoid floating-point errors
 3. Tagged sides: A Line is debit OR credit by construction, never both
 4. Derivation: Running balances and reports are always recomputed
    from postings, never stored

SEE ALSO:
  - balancer.go: Validation and atomic persistence of transactions
  - projector.go: Per-account posting history with running balance
  - store.go: Persistence interfaces
*/
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT TYPE - Fixed vocabulary, determines section and normal balance
// =============================================================================

type AccountType string

const (
	TypeBank                  AccountType = "Bank"
	TypeAccountsReceivable    AccountType = "Accounts Receivable"
	TypeOtherCurrentAssets    AccountType = "Other Current Assets"
	TypeFixedAssets           AccountType = "Fixed Assets"
	TypeOtherAssets           AccountType = "Other Assets"
	TypeAccountsPayable       AccountType = "Accounts Payable"
	TypeCreditCard            AccountType = "Credit Card"
	TypeOtherCurrentLiability AccountType = "Other Current Liabilities"
	TypeLongTermLiability     AccountType = "Long Term Liabilities"
	TypeOtherLiability        AccountType = "Other Liabilities"
	TypeEquity                AccountType = "Equity"
	TypeIncome                AccountType = "Income"
	TypeOtherIncome           AccountType = "Other Income"
	TypeCostOfGoodsSold       AccountType = "Cost of Goods Sold"
	TypeExpenses              AccountType = "Expenses"
	TypeOtherExpense          AccountType = "Other Expense"
)

// AccountTypes lists the full vocabulary in chart order.
var AccountTypes = []AccountType{
	TypeBank, TypeAccountsReceivable, TypeOtherCurrentAssets,
	TypeFixedAssets, TypeOtherAssets,
	TypeAccountsPayable, TypeCreditCard, TypeOtherCurrentLiability,
	TypeLongTermLiability, TypeOtherLiability,
	TypeEquity,
	TypeIncome, TypeOtherIncome,
	TypeCostOfGoodsSold, TypeExpenses, TypeOtherExpense,
}

// Section classifies an account type for reporting.
type Section string

const (
	SectionAssets      Section = "Assets"
	SectionLiabilities Section = "Liabilities"
	SectionEquity      Section = "Equity"
	SectionIncome      Section = "Income"
	SectionCOGS        Section = "Cost of Goods Sold"
	SectionExpenses    Section = "Expenses"
)

// Section returns the report section this account type belongs to.
func (t AccountType) Section() Section {
	switch t {
	case TypeBank, TypeAccountsReceivable, TypeOtherCurrentAssets,
		TypeFixedAssets, TypeOtherAssets:
		return SectionAssets
	case TypeAccountsPayable, TypeCreditCard, TypeOtherCurrentLiability,
		TypeLongTermLiability, TypeOtherLiability:
		return SectionLiabilities
	case TypeEquity:
		return SectionEquity
	case TypeIncome, TypeOtherIncome:
		return SectionIncome
	case TypeCostOfGoodsSold:
		return SectionCOGS
	default:
		return SectionExpenses
	}
}

// DebitNormal reports whether this account type increases with debits.
// Assets, expenses, and cost of goods sold are debit-normal; liabilities,
// equity, and income are credit-normal.
func (t AccountType) DebitNormal() bool {
	switch t.Section() {
	case SectionAssets, SectionExpenses, SectionCOGS:
		return true
	default:
		return false
	}
}

// OnBalanceSheet reports whether balances of this type appear on the
// balance sheet (as opposed to the profit & loss).
func (t AccountType) OnBalanceSheet() bool {
	switch t.Section() {
	case SectionAssets, SectionLiabilities, SectionEquity:
		return true
	default:
		return false
	}
}

// OnProfitAndLoss reports whether this type appears on the P&L.
func (t AccountType) OnProfitAndLoss() bool { return !t.OnBalanceSheet() }

// ValidAccountType reports whether s is in the fixed vocabulary.
func ValidAccountType(s string) bool {
	for _, t := range AccountTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENTITY - A legal/accounting unit that owns accounts and transactions
// =============================================================================

type Entity struct {
	ID          int64
	Name        string
	Type        string // e.g. "company", "trust"
	Description string
	CreatedAt   time.Time
}

// =============================================================================
// ACCOUNT - Belongs to exactly one Entity
// =============================================================================

// PathDelimiter separates segments in a hierarchical account name,
// e.g. "Current Assets:Petty Cash".
const PathDelimiter = ":"

type Account struct {
	ID       int64
	EntityID int64
	Name     string
	Type     AccountType
}

// PathSegments splits the account name on the hierarchy delimiter.
func (a Account) PathSegments() []string {
	return SplitPath(a.Name)
}

// SplitPath splits a hierarchical account name into its segments,
// trimming surrounding whitespace from each.
func SplitPath(name string) []string {
	parts := strings.Split(name, PathDelimiter)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		segments = []string{name}
	}
	return segments
}

// =============================================================================
// TRANSACTION - One balanced accounting event
// =============================================================================

type Transaction struct {
	ID          int64
	EntityID    int64
	Sequence    int64 // per-entity, monotonically assigned
	Date        time.Time
	Description string
	Type        string // optional tag, e.g. "invoice", "payment"
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PostedAt    time.Time
	Lines       []Line
}

// Side tags a line as a debit or a credit. A line carries exactly one
// side; there is no way to represent both.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

type Line struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Side          Side
	Amount        decimal.Decimal // always >= 0
	Memo          string
}

// Debit returns the line's debit amount (zero for credit lines).
func (l Line) Debit() decimal.Decimal {
	if l.Side == Debit {
		return l.Amount
	}
	return decimal.Zero
}

// Credit returns the line's credit amount (zero for debit lines).
func (l Line) Credit() decimal.Decimal {
	if l.Side == Credit {
		return l.Amount
	}
	return decimal.Zero
}

// =============================================================================
// POSTING - One line's effect on an account, joined with its transaction
// =============================================================================

// Posting is the flattened read model used by the projector and the
// report builders: a line joined with its transaction header and account.
type Posting struct {
	TransactionID int64
	Sequence      int64
	Date          time.Time
	Description   string
	AccountID     int64
	AccountName   string
	AccountType   AccountType
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Memo          string
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Round2 rounds to 2 decimal places, half away from zero. Applied only
// where amounts are displayed or compared, never during accumulation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Date constructs a calendar date (UTC midnight, no time-of-day).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly normalizes t to a calendar date.
func DateOnly(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
