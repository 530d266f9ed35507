/*
store.go - Persistence interfaces for the ledger

PURPOSE:

	Defines the interface between the domain logic and the database.
	The Store owns the relational schema invariants (uniqueness of
	(name,type), (entity,name,type), (entity,sequence)) and the atomic
	unit of work for transaction writes.

KEY INTERFACES:

	Store: Everything the balancer, projector, and report builders need.

ATOMICITY CONTRACT:

	InsertTransaction allocates the entity's next sequence number and
	persists header + lines as one database transaction. ReplaceTransaction
	deletes the full line set and inserts the replacement in one database
	transaction. DeleteTransaction cascades to the lines. A failed write
	leaves nothing behind.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (production and tests via :memory:)
*/
package ledger

import (
	"context"
	"time"
)

// Store handles persistence of entities, accounts, and transactions.
type Store interface {
	// CreateEntity persists a new entity. Returns ErrDuplicateEntity if
	// (name, type) already exists.
	CreateEntity(ctx context.Context, e Entity) (Entity, error)

	// GetEntity returns ErrEntityNotFound if missing.
	GetEntity(ctx context.Context, id int64) (Entity, error)

	// ListEntities returns all entities ordered by name.
	ListEntities(ctx context.Context) ([]Entity, error)

	// CreateAccount persists a new account. Returns ErrDuplicateAccount
	// if (entity, name, type) already exists, ErrEntityNotFound if the
	// entity is unknown.
	CreateAccount(ctx context.Context, a Account) (Account, error)

	// GetAccount returns ErrAccountNotFound if missing.
	GetAccount(ctx context.Context, id int64) (Account, error)

	// FindAccount looks up by the (entity, name, type) natural key.
	// Returns ErrAccountNotFound if missing.
	FindAccount(ctx context.Context, entityID int64, name string, typ AccountType) (Account, error)

	// ListAccounts returns an entity's accounts ordered by type then name.
	ListAccounts(ctx context.Context, entityID int64) ([]Account, error)

	// AccountsExist reports whether every id references an account of
	// the given entity. The second return is the first missing id.
	AccountsExist(ctx context.Context, entityID int64, ids []int64) (bool, int64, error)

	// InsertTransaction atomically allocates the entity's next sequence
	// number (max existing + 1) and persists the header and lines.
	// Returns ErrSequenceConflict if a concurrent insert won the same
	// number; the caller decides whether to retry.
	InsertTransaction(ctx context.Context, tx Transaction) (Transaction, error)

	// ReplaceTransaction atomically updates the header fields and swaps
	// the full line set (delete-all, insert-new). The sequence number is
	// preserved. Returns ErrTransactionNotFound if missing.
	ReplaceTransaction(ctx context.Context, tx Transaction) (Transaction, error)

	// DeleteTransaction removes the transaction and, by cascade, its
	// lines. Returns ErrTransactionNotFound if missing.
	DeleteTransaction(ctx context.Context, id int64) error

	// GetTransaction returns the transaction with its lines in insert
	// order. Returns ErrTransactionNotFound if missing.
	GetTransaction(ctx context.Context, id int64) (Transaction, error)

	// ListTransactions returns an entity's transactions newest-first,
	// lines included.
	ListTransactions(ctx context.Context, entityID int64) ([]Transaction, error)

	// PostingsByAccount returns an account's postings oldest-first
	// (date, then sequence). It does NOT check account existence;
	// callers that need a not-found distinction use GetAccount first.
	PostingsByAccount(ctx context.Context, accountID int64) ([]Posting, error)

	// PostingsByType returns postings on accounts of the given types,
	// dated within [from, to] inclusive. A zero 'from' means "from the
	// beginning of the ledger".
	PostingsByType(ctx context.Context, entityID int64, types []AccountType, from, to time.Time) ([]Posting, error)

	// EarliestTransactionDate returns the entity's first transaction
	// date. ok is false when the entity has no transactions.
	EarliestTransactionDate(ctx context.Context, entityID int64) (date time.Time, ok bool, err error)
}
