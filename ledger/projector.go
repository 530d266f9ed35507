/*
projector.go - Per-account posting history with running balance

PURPOSE:

	Answers "what happened on this account?" The projector walks an
	account's postings oldest-first, accumulating a running balance under
	the account type's normal sign convention, then returns the entries
	newest-first for display. Read-only; reversing the display order
	never requires recomputation.

SIGN CONVENTION:

	Debit-normal (assets, expenses, COGS):  balance += debit - credit
	Credit-normal (liabilities, equity,
	               income):                 balance += credit - debit
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one row of an account's ledger view.
type Entry struct {
	TransactionID int64
	Sequence      int64
	Date          time.Time
	Description   string
	Memo          string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Balance       decimal.Decimal // running, as of this posting
}

// Projector produces account ledger views.
type Projector struct {
	Store Store
}

func NewProjector(store Store) *Projector {
	return &Projector{Store: store}
}

// AccountLedger returns the account's postings newest-first, each with
// the running balance accumulated in chronological order. An account
// with no postings yields an empty (non-nil) slice, not an error.
func (p *Projector) AccountLedger(ctx context.Context, accountID int64) ([]Entry, error) {
	account, err := p.Store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	postings, err := p.Store.PostingsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(postings))
	balance := decimal.Zero
	for i, post := range postings {
		if account.Type.DebitNormal() {
			balance = balance.Add(post.Debit).Sub(post.Credit)
		} else {
			balance = balance.Add(post.Credit).Sub(post.Debit)
		}
		entries[i] = Entry{
			TransactionID: post.TransactionID,
			Sequence:      post.Sequence,
			Date:          post.Date,
			Description:   post.Description,
			Memo:          post.Memo,
			Debit:         post.Debit,
			Credit:        post.Credit,
			Balance:       balance,
		}
	}

	// Display order is newest-first; balances were fixed above.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}
