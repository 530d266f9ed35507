/*
handlers.go - HTTP API handlers for the bookkeeping engine

PURPOSE:

	Exposes the ledger core via REST API. Handles HTTP request/response,
	JSON serialization, and delegates to domain logic.

ENDPOINTS:

	Entities:
	  GET    /api/entities                    List entities
	  POST   /api/entities                    Create entity
	  GET    /api/entities/{id}               Get entity
	  POST   /api/entities/{id}/accounts      Create account
	  GET    /api/entities/{id}/accounts      List accounts
	  POST   /api/entities/{id}/chart         Seed default chart

	Transactions:
	  GET    /api/entities/{id}/transactions  List (newest first)
	  POST   /api/entities/{id}/transactions  Create (balanced)
	  PUT    /api/transactions/{id}           Replace header + line set
	  DELETE /api/transactions/{id}           Delete with cascade

	Ledger & reports:
	  GET    /api/accounts/{id}/ledger                     Running-balance view
	  GET    /api/entities/{id}/reports/profit-loss        Multi-period P&L
	  GET    /api/entities/{id}/reports/balance-sheet      Multi-column BS

ERROR HANDLING:

	Errors are returned as JSON with appropriate HTTP status:
	- 400: Validation errors (unbalanced, too few lines, bad input)
	- 404: Entity/account/transaction not found
	- 409: Sequence conflict that survived the internal retry
	- 500: Store errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/ledger"
	"github.com/ledgerline/bookkeeper/reports"
	"github.com/ledgerline/bookkeeper/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Balancer  *ledger.Balancer
	Projector *ledger.Projector
	Reports   *reports.Builder
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		Balancer:  ledger.NewBalancer(store),
		Projector: ledger.NewProjector(store),
		Reports:   reports.NewBuilder(store),
	}
}

// =============================================================================
// ENTITY HANDLERS
// =============================================================================

func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.Store.ListEntities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entities", err)
		return
	}

	dtos := make([]EntityDTO, len(entities))
	for i, e := range entities {
		dtos[i] = toEntityDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Entity name is required", nil)
		return
	}

	entity, err := h.Store.CreateEntity(r.Context(), ledger.Entity{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, "Failed to create entity", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntityDTO(entity))
}

func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entity, err := h.Store.GetEntity(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get entity", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntityDTO(entity))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !ledger.ValidAccountType(req.Type) {
		writeError(w, http.StatusBadRequest, "Invalid account type: "+req.Type, nil)
		return
	}

	account, err := h.Store.CreateAccount(r.Context(), ledger.Account{
		EntityID: entityID,
		Name:     req.Name,
		Type:     ledger.AccountType(req.Type),
	})
	if err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	accounts, err := h.Store.ListAccounts(r.Context(), entityID)
	if err != nil {
		writeDomainError(w, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SeedChart(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.Store.GetEntity(r.Context(), entityID); err != nil {
		writeDomainError(w, "Failed to seed chart", err)
		return
	}

	accounts, err := ledger.SeedChart(r.Context(), h.Store, entityID)
	if err != nil {
		writeDomainError(w, "Failed to seed chart", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	txs, err := h.Store.ListTransactions(r.Context(), entityID)
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	input, ok := decodeTransactionInput(w, r)
	if !ok {
		return
	}

	tx, err := h.Balancer.Create(r.Context(), entityID, input)
	if err != nil {
		writeDomainError(w, "Failed to create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateTransactionResponse{
		TransactionID:  tx.ID,
		SequenceNumber: tx.Sequence,
	})
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	input, ok := decodeTransactionInput(w, r)
	if !ok {
		return
	}

	tx, err := h.Balancer.Update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, "Failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, CreateTransactionResponse{
		TransactionID:  tx.ID,
		SequenceNumber: tx.Sequence,
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Balancer.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeTransactionInput(w http.ResponseWriter, r *http.Request) (ledger.TransactionInput, bool) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return ledger.TransactionInput{}, false
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return ledger.TransactionInput{}, false
	}

	lines := make([]ledger.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = ledger.LineInput{
			AccountID: l.AccountID,
			Debit:     decimal.NewFromFloat(l.Debit),
			Credit:    decimal.NewFromFloat(l.Credit),
			Memo:      l.Memo,
		}
	}

	return ledger.TransactionInput{
		Date:        date,
		Description: req.Description,
		Type:        req.Type,
		Lines:       lines,
	}, true
}

// =============================================================================
// ACCOUNT LEDGER HANDLER
// =============================================================================

func (h *Handler) AccountLedger(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	account, err := h.Store.GetAccount(ctx, accountID)
	if err != nil {
		writeDomainError(w, "Failed to get account", err)
		return
	}

	entries, err := h.Projector.AccountLedger(ctx, accountID)
	if err != nil {
		writeDomainError(w, "Failed to project account ledger", err)
		return
	}

	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LedgerEntryDTO{
			TransactionID:  e.TransactionID,
			Date:           e.Date.Format(dateLayout),
			Description:    e.Description,
			Memo:           e.Memo,
			Debit:          money(e.Debit),
			Credit:         money(e.Credit),
			RunningBalance: money(e.Balance),
		}
	}

	writeJSON(w, http.StatusOK, AccountLedgerDTO{
		AccountID:   account.ID,
		AccountName: account.Name,
		AccountType: string(account.Type),
		Entries:     dtos,
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ProfitAndLoss builds the P&L. Periods are passed as repeated
// "period=label|start|end" query parameters; at least one is required.
func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var periods []reports.Period
	for _, raw := range r.URL.Query()["period"] {
		parts := strings.SplitN(raw, "|", 3)
		if len(parts) != 3 {
			writeError(w, http.StatusBadRequest, "Invalid period (use label|start|end): "+raw, nil)
			return
		}
		start, err := time.Parse(dateLayout, parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period start date", err)
			return
		}
		end, err := time.Parse(dateLayout, parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period end date", err)
			return
		}
		periods = append(periods, reports.Period{Label: parts[0], Start: start, End: end})
	}
	if len(periods) == 0 {
		writeError(w, http.StatusBadRequest, "At least one period is required", nil)
		return
	}

	pnl, err := h.Reports.ProfitAndLoss(r.Context(), entityID, periods)
	if err != nil {
		writeDomainError(w, "Failed to build profit and loss", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfitAndLossDTO(pnl))
}

// BalanceSheet builds the balance sheet. Columns are passed as repeated
// "asof=label|date" query parameters; when omitted the current date and
// the previous fiscal year end are used.
func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var columns []reports.Column
	for _, raw := range r.URL.Query()["asof"] {
		parts := strings.SplitN(raw, "|", 2)
		if len(parts) != 2 {
			writeError(w, http.StatusBadRequest, "Invalid asof (use label|date): "+raw, nil)
			return
		}
		asOf, err := time.Parse(dateLayout, parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid asof date", err)
			return
		}
		columns = append(columns, reports.Column{Label: parts[0], AsOf: asOf})
	}
	if len(columns) == 0 {
		columns = reports.DefaultColumns(ledger.DateOnly(time.Now().UTC()))
	}

	bs, err := h.Reports.BalanceSheet(r.Context(), entityID, columns)
	if err != nil {
		writeDomainError(w, "Failed to build balance sheet", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceSheetDTO(bs))
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
