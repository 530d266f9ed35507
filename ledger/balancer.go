/*
balancer.go - Transaction validation and atomic persistence

PURPOSE:

	The Balancer is the only write path for transactions. It enforces the
	hard invariant of double-entry bookkeeping: every transaction's debits
	equal its credits, to the cent, before anything touches the store.

VALIDATION RULES (in order):
 1. At least two lines
 2. No negative amounts
 3. No line with both a debit and a credit
 4. Every referenced account belongs to the target entity
 5. Σ debits == Σ credits after rounding each side to 2 decimals

SEQUENCE ALLOCATION:

	Each entity numbers its transactions 1, 2, 3, ... The store allocates
	max+1 inside the same database transaction as the insert, guarded by
	a UNIQUE(entity_id, sequence) constraint. If two creations race, the
	loser gets ErrSequenceConflict and the balancer retries exactly once
	with a fresh number before surfacing the conflict.

UPDATE SEMANTICS:

	Updates replace the full line set under the same balance check. There
	is no partial line patching: the caller always supplies the complete
	replacement, and the store swaps it atomically.

SEE ALSO:
  - store.go: Atomicity contract
  - projector.go: Read side
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LineInput is a candidate posting as supplied by a caller. Exactly one
// of Debit/Credit should be nonzero; the balancer converts it to a
// tagged Line.
type LineInput struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// TransactionInput is the header + lines for a create or update.
type TransactionInput struct {
	Date        time.Time
	Description string
	Type        string
	Lines       []LineInput
}

// Balancer validates and persists transactions.
type Balancer struct {
	Store Store
}

func NewBalancer(store Store) *Balancer {
	return &Balancer{Store: store}
}

// Create validates the input and persists a new transaction for the
// entity, returning it with its assigned ID and sequence number.
func (b *Balancer) Create(ctx context.Context, entityID int64, in TransactionInput) (Transaction, error) {
	if _, err := b.Store.GetEntity(ctx, entityID); err != nil {
		return Transaction{}, err
	}

	lines, err := b.validate(ctx, entityID, in.Lines)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		EntityID:    entityID,
		Date:        DateOnly(in.Date),
		Description: in.Description,
		Type:        in.Type,
		Lines:       lines,
	}

	created, err := b.Store.InsertTransaction(ctx, tx)
	if IsConflict(err) {
		// Another creation won the sequence number; re-allocate once.
		created, err = b.Store.InsertTransaction(ctx, tx)
	}
	return created, err
}

// Update re-validates the replacement line set and header, then swaps
// them atomically. The per-entity sequence number is preserved.
func (b *Balancer) Update(ctx context.Context, transactionID int64, in TransactionInput) (Transaction, error) {
	existing, err := b.Store.GetTransaction(ctx, transactionID)
	if err != nil {
		return Transaction{}, err
	}

	lines, err := b.validate(ctx, existing.EntityID, in.Lines)
	if err != nil {
		return Transaction{}, err
	}

	existing.Date = DateOnly(in.Date)
	existing.Description = in.Description
	existing.Type = in.Type
	existing.Lines = lines

	return b.Store.ReplaceTransaction(ctx, existing)
}

// Delete removes the transaction and all its lines as one cascade.
func (b *Balancer) Delete(ctx context.Context, transactionID int64) error {
	return b.Store.DeleteTransaction(ctx, transactionID)
}

// validate applies the validation rules and converts the inputs into
// tagged lines.
func (b *Balancer) validate(ctx context.Context, entityID int64, inputs []LineInput) ([]Line, error) {
	if len(inputs) < 2 {
		return nil, ErrTooFewLines
	}

	lines := make([]Line, 0, len(inputs))
	accountIDs := make([]int64, 0, len(inputs))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, in := range inputs {
		if in.Debit.IsNegative() || in.Credit.IsNegative() {
			return nil, &LineError{Index: i, Err: ErrNegativeAmount}
		}
		if in.Debit.IsPositive() && in.Credit.IsPositive() {
			return nil, &LineError{Index: i, Err: ErrBothSides}
		}

		line := Line{AccountID: in.AccountID, Memo: in.Memo}
		if in.Credit.IsPositive() {
			line.Side = Credit
			line.Amount = in.Credit
		} else {
			line.Side = Debit
			line.Amount = in.Debit
		}

		totalDebit = totalDebit.Add(line.Debit())
		totalCredit = totalCredit.Add(line.Credit())
		lines = append(lines, line)
		accountIDs = append(accountIDs, in.AccountID)
	}

	ok, _, err := b.Store.AccountsExist(ctx, entityID, accountIDs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}

	// Compare after rounding each side to 2 places; a mismatch is a
	// validation error, never a warning.
	if !Round2(totalDebit).Equal(Round2(totalCredit)) {
		return nil, &UnbalancedError{Debits: Round2(totalDebit), Credits: Round2(totalCredit)}
	}

	return lines, nil
}
