/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:

	Implements all persistence for the bookkeeping core using SQLite. In
	production, the same patterns apply to PostgreSQL - only minor SQL
	dialect differences.

KEY TABLES:

	entities:          Legal/accounting units, UNIQUE(name, type)
	accounts:          Chart of accounts, UNIQUE(entity_id, name, type)
	transactions:      Balanced events, UNIQUE(entity_id, sequence)
	transaction_lines: Debit/credit postings, ON DELETE CASCADE

ATOMICITY:

	Transaction writes run as a single database transaction: allocate the
	next per-entity sequence number, insert the header, insert the lines,
	commit. The UNIQUE(entity_id, sequence) constraint backstops sequence
	allocation under concurrent writers; a violation surfaces as
	ledger.ErrSequenceConflict so the balancer can re-allocate and retry.

AMOUNTS:

	Monetary amounts are stored as decimal strings and parsed with
	shopspring/decimal, never as floats.

CONCURRENCY:

	Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
	database-level concurrency control handles this instead.

WAL MODE:

	SQLite is opened with WAL (Write-Ahead Logging) plus foreign keys on,
	so line cascades are enforced by the engine.

USAGE:

	store, err := sqlite.New("./data/books.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition and atomicity contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/ledger"
)

const dateLayout = "2006-01-02"

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single pooled connection: SQLite allows one writer at a time,
	// and ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE(name, type)
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER NOT NULL REFERENCES entities(id),
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		UNIQUE(entity_id, name, type)
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_entity
		ON accounts(entity_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER NOT NULL REFERENCES entities(id),
		sequence INTEGER NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		tx_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		posted_at TEXT NOT NULL,
		UNIQUE(entity_id, sequence)
	);

	-- Composite index for period and as-of report queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_entity_date
		ON transactions(entity_id, date);

	CREATE TABLE IF NOT EXISTS transaction_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		side TEXT NOT NULL CHECK (side IN ('debit', 'credit')),
		amount TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_lines_transaction
		ON transaction_lines(transaction_id);

	-- Fan-in index for the account ledger projection
	CREATE INDEX IF NOT EXISTS idx_lines_account
		ON transaction_lines(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTITY STORE
// =============================================================================

func (s *Store) CreateEntity(ctx context.Context, e ledger.Entity) (ledger.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO entities (name, type, description, created_at) VALUES (?, ?, ?, ?)",
		e.Name, e.Type, e.Description, now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.Entity{}, ledger.ErrDuplicateEntity
		}
		return ledger.Entity{}, fmt.Errorf("failed to create entity: %w", err)
	}

	e.ID, _ = res.LastInsertId()
	e.CreatedAt = now
	return e, nil
}

func (s *Store) GetEntity(ctx context.Context, id int64) (ledger.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e ledger.Entity
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, type, description, created_at FROM entities WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.Type, &e.Description, &createdAt)

	if err == sql.ErrNoRows {
		return ledger.Entity{}, ledger.ErrEntityNotFound
	}
	if err != nil {
		return ledger.Entity{}, err
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

func (s *Store) ListEntities(ctx context.Context) ([]ledger.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, type, description, created_at FROM entities ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []ledger.Entity
	for rows.Next() {
		var e ledger.Entity
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Description, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.entityExists(ctx, a.EntityID); err != nil {
		return ledger.Account{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (entity_id, name, type) VALUES (?, ?, ?)",
		a.EntityID, a.Name, string(a.Type),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.Account{}, ledger.ErrDuplicateAccount
		}
		return ledger.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	a.ID, _ = res.LastInsertId()
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a ledger.Account
	var typ string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, entity_id, name, type FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.EntityID, &a.Name, &typ)

	if err == sql.ErrNoRows {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}

	a.Type = ledger.AccountType(typ)
	return a, nil
}

func (s *Store) FindAccount(ctx context.Context, entityID int64, name string, typ ledger.AccountType) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a ledger.Account
	var t string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, entity_id, name, type FROM accounts WHERE entity_id = ? AND name = ? AND type = ?",
		entityID, name, string(typ),
	).Scan(&a.ID, &a.EntityID, &a.Name, &t)

	if err == sql.ErrNoRows {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}

	a.Type = ledger.AccountType(t)
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, entityID int64) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, entity_id, name, type FROM accounts WHERE entity_id = ? ORDER BY type, name",
		entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.EntityID, &a.Name, &typ); err != nil {
			return nil, err
		}
		a.Type = ledger.AccountType(typ)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) AccountsExist(ctx context.Context, entityID int64, ids []int64) (bool, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range ids {
		var found int64
		err := s.db.QueryRowContext(ctx,
			"SELECT id FROM accounts WHERE id = ? AND entity_id = ?", id, entityID,
		).Scan(&found)
		if err == sql.ErrNoRows {
			return false, id, nil
		}
		if err != nil {
			return false, 0, err
		}
	}
	return true, 0, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (s *Store) InsertTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	// Allocate max existing + 1, scoped per entity. The UNIQUE
	// constraint catches a concurrent writer beating us to it.
	var next int64
	err = sqlTx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sequence), 0) + 1 FROM transactions WHERE entity_id = ?",
		tx.EntityID,
	).Scan(&next)
	if err != nil {
		return ledger.Transaction{}, err
	}

	now := time.Now().UTC()
	res, err := sqlTx.ExecContext(ctx,
		`INSERT INTO transactions (entity_id, sequence, date, description, tx_type, created_at, updated_at, posted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.EntityID, next, tx.Date.Format(dateLayout), tx.Description, tx.Type,
		now.Format(time.RFC3339), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.Transaction{}, ledger.ErrSequenceConflict
		}
		return ledger.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	tx.ID, _ = res.LastInsertId()
	tx.Sequence = next
	tx.CreatedAt = now
	tx.UpdatedAt = now
	tx.PostedAt = now

	if err := insertLines(ctx, sqlTx, tx.ID, tx.Lines); err != nil {
		return ledger.Transaction{}, err
	}

	if err := sqlTx.Commit(); err != nil {
		return ledger.Transaction{}, err
	}

	for i := range tx.Lines {
		tx.Lines[i].TransactionID = tx.ID
	}
	return tx, nil
}

func (s *Store) ReplaceTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC()
	res, err := sqlTx.ExecContext(ctx,
		"UPDATE transactions SET date = ?, description = ?, tx_type = ?, updated_at = ? WHERE id = ?",
		tx.Date.Format(dateLayout), tx.Description, tx.Type, now.Format(time.RFC3339), tx.ID,
	)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}

	// Full line-set swap: no partial patching is supported.
	if _, err := sqlTx.ExecContext(ctx,
		"DELETE FROM transaction_lines WHERE transaction_id = ?", tx.ID); err != nil {
		return ledger.Transaction{}, err
	}
	if err := insertLines(ctx, sqlTx, tx.ID, tx.Lines); err != nil {
		return ledger.Transaction{}, err
	}

	if err := sqlTx.Commit(); err != nil {
		return ledger.Transaction{}, err
	}

	tx.UpdatedAt = now
	for i := range tx.Lines {
		tx.Lines[i].TransactionID = tx.ID
	}
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.getTransactionHeader(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}

	lines, err := s.linesFor(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx.Lines = lines
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, entityID int64) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, sequence, date, description, tx_type, created_at, updated_at, posted_at
		 FROM transactions
		 WHERE entity_id = ?
		 ORDER BY date DESC, sequence DESC`,
		entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txs {
		lines, err := s.linesFor(ctx, txs[i].ID)
		if err != nil {
			return nil, err
		}
		txs[i].Lines = lines
	}
	return txs, nil
}

func (s *Store) getTransactionHeader(ctx context.Context, id int64) (ledger.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, entity_id, sequence, date, description, tx_type, created_at, updated_at, posted_at
		 FROM transactions WHERE id = ?`, id)

	var tx ledger.Transaction
	var date, createdAt, updatedAt, postedAt string
	err := row.Scan(&tx.ID, &tx.EntityID, &tx.Sequence, &date, &tx.Description, &tx.Type,
		&createdAt, &updatedAt, &postedAt)
	if err == sql.ErrNoRows {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx.Date, _ = time.Parse(dateLayout, date)
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	tx.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	tx.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
	return tx, nil
}

func scanTransactionRow(rows *sql.Rows) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var date, createdAt, updatedAt, postedAt string
	err := rows.Scan(&tx.ID, &tx.EntityID, &tx.Sequence, &date, &tx.Description, &tx.Type,
		&createdAt, &updatedAt, &postedAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Date, _ = time.Parse(dateLayout, date)
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	tx.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	tx.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
	return tx, nil
}

func (s *Store) linesFor(ctx context.Context, transactionID int64) ([]ledger.Line, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_id, account_id, side, amount, memo
		 FROM transaction_lines WHERE transaction_id = ? ORDER BY id`,
		transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ledger.Line
	for rows.Next() {
		var l ledger.Line
		var side, amount string
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.AccountID, &side, &amount, &l.Memo); err != nil {
			return nil, err
		}
		l.Side = ledger.Side(side)
		l.Amount = parseDecimal(amount)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func insertLines(ctx context.Context, sqlTx *sql.Tx, transactionID int64, lines []ledger.Line) error {
	for _, l := range lines {
		_, err := sqlTx.ExecContext(ctx,
			"INSERT INTO transaction_lines (transaction_id, account_id, side, amount, memo) VALUES (?, ?, ?, ?, ?)",
			transactionID, l.AccountID, string(l.Side), l.Amount.String(), l.Memo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
	}
	return nil
}

// =============================================================================
// POSTING QUERIES (projector and report builders)
// =============================================================================

const postingSelect = `
	SELECT t.id, t.sequence, t.date, t.description,
	       a.id, a.name, a.type,
	       CASE WHEN l.side = 'debit' THEN l.amount ELSE '0' END,
	       CASE WHEN l.side = 'credit' THEN l.amount ELSE '0' END,
	       l.memo
	FROM transaction_lines l
	JOIN transactions t ON t.id = l.transaction_id
	JOIN accounts a ON a.id = l.account_id
`

func (s *Store) PostingsByAccount(ctx context.Context, accountID int64) ([]ledger.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := postingSelect + `
	WHERE l.account_id = ?
	ORDER BY t.date ASC, t.sequence ASC, l.id ASC`

	return s.queryPostings(ctx, query, accountID)
}

func (s *Store) PostingsByType(ctx context.Context, entityID int64, types []ledger.AccountType, from, to time.Time) ([]ledger.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(types)), ", ")

	query := postingSelect + `
	WHERE t.entity_id = ? AND a.type IN (` + placeholders + `) AND t.date <= ?`

	args := []any{entityID}
	for _, t := range types {
		args = append(args, string(t))
	}
	args = append(args, to.Format(dateLayout))

	if !from.IsZero() {
		query += " AND t.date >= ?"
		args = append(args, from.Format(dateLayout))
	}
	query += " ORDER BY t.date ASC, t.sequence ASC, l.id ASC"

	return s.queryPostings(ctx, query, args...)
}

func (s *Store) EarliestTransactionDate(ctx context.Context, entityID int64) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(date) FROM transactions WHERE entity_id = ?", entityID,
	).Scan(&date)
	if err != nil {
		return time.Time{}, false, err
	}
	if !date.Valid {
		return time.Time{}, false, nil
	}

	d, err := time.Parse(dateLayout, date.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

func (s *Store) queryPostings(ctx context.Context, query string, args ...any) ([]ledger.Posting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query postings: %w", err)
	}
	defer rows.Close()

	var postings []ledger.Posting
	for rows.Next() {
		var p ledger.Posting
		var date, typ, debit, credit string
		if err := rows.Scan(&p.TransactionID, &p.Sequence, &date, &p.Description,
			&p.AccountID, &p.AccountName, &typ, &debit, &credit, &p.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		p.Date, _ = time.Parse(dateLayout, date)
		p.AccountType = ledger.AccountType(typ)
		p.Debit = parseDecimal(debit)
		p.Credit = parseDecimal(credit)
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transaction_lines", "transactions", "accounts", "entities"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) entityExists(ctx context.Context, id int64) error {
	var found int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM entities WHERE id = ?", id).Scan(&found)
	if err == sql.ErrNoRows {
		return ledger.ErrEntityNotFound
	}
	return err
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
