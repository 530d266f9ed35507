/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:

	Populates the database with a realistic small-business bookkeeping
	scenario so the reports have something to show. The demo entity runs
	a few months of trading activity across a fiscal year boundary, which
	exercises the retained earnings derivation on the balance sheet.

HOW THE DEMO WORKS:
 1. Reset database (clear all data)
 2. Create demo entity
 3. Seed default chart of accounts
 4. Post balanced transactions via the balancer

USAGE VIA API:

	POST /api/demo/load

NOTE:

	Loading the demo resets the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Error helpers
  - ledger/chart.go: Default chart of accounts
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/ledger"
)

// DemoLoadResponse describes what the demo loader created.
type DemoLoadResponse struct {
	EntityID     int64  `json:"entity_id"`
	EntityName   string `json:"entity_name"`
	Accounts     int    `json:"accounts"`
	Transactions int    `json:"transactions"`
}

// ResetDatabase clears all data. Dev only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadDemo resets the database and loads a sample trading history.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	entity, err := h.Store.CreateEntity(ctx, ledger.Entity{
		Name:        "JAJG Pty Ltd",
		Type:        "company",
		Description: "Demo trading company",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create demo entity", err)
		return
	}

	accounts, err := ledger.SeedChart(ctx, h.Store, entity.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo chart", err)
		return
	}

	count, err := h.loadDemoTransactions(ctx, entity.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to post demo transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, DemoLoadResponse{
		EntityID:     entity.ID,
		EntityName:   entity.Name,
		Accounts:     len(accounts),
		Transactions: count,
	})
}

// demoTx is a compact transaction description used by the demo loader.
type demoTx struct {
	date  time.Time
	desc  string
	typ   string
	lines []demoLine
}

type demoLine struct {
	account string
	debit   float64
	credit  float64
}

func (h *Handler) loadDemoTransactions(ctx context.Context, entityID int64) (int, error) {
	accounts, err := h.Store.ListAccounts(ctx, entityID)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a.ID
	}

	txs := []demoTx{
		// Prior fiscal year: activity ending June 30 feeds retained earnings.
		{ledger.Date(2024, 2, 1), "Owner seed capital", "deposit", []demoLine{
			{"Operating Account", 10000, 0},
			{"Owner Contributions", 0, 10000},
		}},
		{ledger.Date(2024, 3, 12), "Invoice 001 - consulting", "invoice", []demoLine{
			{"Accounts Receivable", 4400, 0},
			{"Sales", 0, 4000},
			{"GST Payable", 0, 400},
		}},
		{ledger.Date(2024, 3, 28), "Invoice 001 paid", "payment", []demoLine{
			{"Operating Account", 4400, 0},
			{"Accounts Receivable", 0, 4400},
		}},
		{ledger.Date(2024, 4, 1), "Q3 office rent", "expense", []demoLine{
			{"Rent", 1500, 0},
			{"Operating Account", 0, 1500},
		}},
		{ledger.Date(2024, 5, 20), "Laptop purchase", "expense", []demoLine{
			{"Office Equipment", 2200, 0},
			{"Business Credit Card", 0, 2200},
		}},
		{ledger.Date(2024, 6, 15), "Materials for job 7", "expense", []demoLine{
			{"Cost of Goods Sold", 800, 0},
			{"Operating Account", 0, 800},
		}},
		// Current fiscal year: from July 1 this activity is net income,
		// everything above lands in retained earnings.
		{ledger.Date(2024, 7, 10), "Invoice 002 - retainer", "invoice", []demoLine{
			{"Accounts Receivable", 3300, 0},
			{"Sales", 0, 3000},
			{"GST Payable", 0, 300},
		}},
		{ledger.Date(2024, 7, 25), "Invoice 002 paid", "payment", []demoLine{
			{"Operating Account", 3300, 0},
			{"Accounts Receivable", 0, 3300},
		}},
		{ledger.Date(2024, 8, 1), "August rent", "expense", []demoLine{
			{"Rent", 1500, 0},
			{"Operating Account", 0, 1500},
		}},
		{ledger.Date(2024, 8, 5), "Accountant annual review", "expense", []demoLine{
			{"Professional Fees:Accounting", 650, 0},
			{"Operating Account", 0, 650},
		}},
		{ledger.Date(2024, 8, 18), "Electricity", "expense", []demoLine{
			{"Utilities", 240.5, 0},
			{"Operating Account", 0, 240.5},
		}},
		{ledger.Date(2024, 8, 31), "Monthly account fee", "expense", []demoLine{
			{"Bank Fees", 12, 0},
			{"Operating Account", 0, 12},
		}},
		{ledger.Date(2024, 9, 2), "Term deposit interest", "deposit", []demoLine{
			{"Operating Account", 35.75, 0},
			{"Interest Income", 0, 35.75},
		}},
	}

	for _, tx := range txs {
		lines := make([]ledger.LineInput, len(tx.lines))
		for i, l := range tx.lines {
			id, ok := byName[l.account]
			if !ok {
				return 0, ledger.ErrAccountNotFound
			}
			lines[i] = ledger.LineInput{
				AccountID: id,
				Debit:     decimal.NewFromFloat(l.debit),
				Credit:    decimal.NewFromFloat(l.credit),
			}
		}
		if _, err := h.Balancer.Create(ctx, entityID, ledger.TransactionInput{
			Date:        tx.date,
			Description: tx.desc,
			Type:        tx.typ,
			Lines:       lines,
		}); err != nil {
			return 0, err
		}
	}

	return len(txs), nil
}
