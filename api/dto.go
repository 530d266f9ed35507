/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:

	Defines the JSON structures for API communication. These types
	decouple the internal domain model from the external API contract.
	Monetary values cross this boundary rounded to 2 decimal places;
	internal accumulation happens at full precision.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/bookkeeper/ledger"
	"github.com/ledgerline/bookkeeper/reports"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ENTITY / ACCOUNT TYPES
// =============================================================================

type EntityDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type CreateEntityRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type AccountDTO struct {
	ID       int64  `json:"id"`
	EntityID int64  `json:"entity_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

type CreateAccountRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// LineRequest carries one candidate posting. Exactly one of debit or
// credit should be nonzero.
type LineRequest struct {
	AccountID int64   `json:"account_id"`
	Debit     float64 `json:"debit,omitempty"`
	Credit    float64 `json:"credit,omitempty"`
	Memo      string  `json:"memo,omitempty"`
}

type TransactionRequest struct {
	Date        string        `json:"date"` // YYYY-MM-DD
	Description string        `json:"description"`
	Type        string        `json:"type,omitempty"`
	Lines       []LineRequest `json:"lines"`
}

type LineDTO struct {
	ID        int64   `json:"id"`
	AccountID int64   `json:"account_id"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	Memo      string  `json:"memo,omitempty"`
}

type TransactionDTO struct {
	ID             int64     `json:"id"`
	EntityID       int64     `json:"entity_id"`
	SequenceNumber int64     `json:"sequence_number"`
	Date           string    `json:"date"`
	Description    string    `json:"description"`
	Type           string    `json:"type,omitempty"`
	Lines          []LineDTO `json:"lines"`
	CreatedAt      string    `json:"created_at,omitempty"`
	UpdatedAt      string    `json:"updated_at,omitempty"`
}

// CreateTransactionResponse is the minimal acknowledgement contract.
type CreateTransactionResponse struct {
	TransactionID  int64 `json:"transaction_id"`
	SequenceNumber int64 `json:"sequence_number"`
}

// =============================================================================
// ACCOUNT LEDGER TYPES
// =============================================================================

type LedgerEntryDTO struct {
	TransactionID  int64   `json:"transaction_id"`
	Date           string  `json:"date"`
	Description    string  `json:"description"`
	Memo           string  `json:"memo,omitempty"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	RunningBalance float64 `json:"running_balance"`
}

type AccountLedgerDTO struct {
	AccountID   int64            `json:"account_id"`
	AccountName string           `json:"account_name"`
	AccountType string           `json:"account_type"`
	Entries     []LedgerEntryDTO `json:"entries"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

type ReportRowDTO struct {
	Label   string    `json:"label"`
	Path    string    `json:"path"`
	Level   int       `json:"level"`
	Kind    string    `json:"kind"` // account | group | total
	Amounts []float64 `json:"amounts"`
	Total   float64   `json:"total"`
}

type ReportSectionDTO struct {
	SectionName   string         `json:"section_name"`
	Rows          []ReportRowDTO `json:"rows"`
	SectionTotals []float64      `json:"section_totals"`
	SectionTotal  float64        `json:"section_total"`
}

type ProfitAndLossDTO struct {
	Periods  []PeriodDTO        `json:"periods"`
	Sections []ReportSectionDTO `json:"sections"`
	Totals   PnlTotalsDTO       `json:"totals"`
}

type PeriodDTO struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type PnlTotalsDTO struct {
	Income      []float64 `json:"income"`
	COGS        []float64 `json:"cogs"`
	Expenses    []float64 `json:"expenses"`
	GrossProfit []float64 `json:"gross_profit"`
	NetProfit   []float64 `json:"net_profit"`
}

type BalanceSheetDTO struct {
	AsOf     []ColumnDTO        `json:"as_of"`
	Sections []ReportSectionDTO `json:"sections"`
	Totals   BsTotalsDTO        `json:"totals"`
}

type ColumnDTO struct {
	Label string `json:"label"`
	AsOf  string `json:"as_of"`
}

type BsTotalsDTO struct {
	Assets                []float64 `json:"assets"`
	Liabilities           []float64 `json:"liabilities"`
	Equity                []float64 `json:"equity"`
	LiabilitiesPlusEquity []float64 `json:"liabilities_plus_equity"`
	Difference            []float64 `json:"difference"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// money rounds to 2 places at the boundary, the only place display
// rounding is applied.
func money(d decimal.Decimal) float64 {
	f, _ := ledger.Round2(d).Float64()
	return f
}

func moneyVector(v []decimal.Decimal) []float64 {
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = money(d)
	}
	return out
}

func toEntityDTO(e ledger.Entity) EntityDTO {
	return EntityDTO{
		ID:          e.ID,
		Name:        e.Name,
		Type:        e.Type,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{ID: a.ID, EntityID: a.EntityID, Name: a.Name, Type: string(a.Type)}
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	lines := make([]LineDTO, len(tx.Lines))
	for i, l := range tx.Lines {
		lines[i] = LineDTO{
			ID:        l.ID,
			AccountID: l.AccountID,
			Debit:     money(l.Debit()),
			Credit:    money(l.Credit()),
			Memo:      l.Memo,
		}
	}
	return TransactionDTO{
		ID:             tx.ID,
		EntityID:       tx.EntityID,
		SequenceNumber: tx.Sequence,
		Date:           tx.Date.Format(dateLayout),
		Description:    tx.Description,
		Type:           tx.Type,
		Lines:          lines,
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      tx.UpdatedAt.Format(time.RFC3339),
	}
}

func toSectionDTO(s reports.Section) ReportSectionDTO {
	rows := make([]ReportRowDTO, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = ReportRowDTO{
			Label:   r.Label,
			Path:    r.Path,
			Level:   r.Level,
			Kind:    string(r.Kind),
			Amounts: moneyVector(r.Amounts),
			Total:   money(r.Total),
		}
	}
	return ReportSectionDTO{
		SectionName:   s.Name,
		Rows:          rows,
		SectionTotals: moneyVector(s.Totals),
		SectionTotal:  money(s.Total),
	}
}

func toProfitAndLossDTO(pnl reports.ProfitAndLoss) ProfitAndLossDTO {
	periods := make([]PeriodDTO, len(pnl.Periods))
	for i, p := range pnl.Periods {
		periods[i] = PeriodDTO{
			Label: p.Label,
			Start: p.Start.Format(dateLayout),
			End:   p.End.Format(dateLayout),
		}
	}
	sections := make([]ReportSectionDTO, len(pnl.Sections))
	for i, s := range pnl.Sections {
		sections[i] = toSectionDTO(s)
	}
	return ProfitAndLossDTO{
		Periods:  periods,
		Sections: sections,
		Totals: PnlTotalsDTO{
			Income:      moneyVector(pnl.Income),
			COGS:        moneyVector(pnl.COGS),
			Expenses:    moneyVector(pnl.Expenses),
			GrossProfit: moneyVector(pnl.GrossProfit),
			NetProfit:   moneyVector(pnl.NetProfit),
		},
	}
}

func toBalanceSheetDTO(bs reports.BalanceSheet) BalanceSheetDTO {
	columns := make([]ColumnDTO, len(bs.Columns))
	for i, c := range bs.Columns {
		columns[i] = ColumnDTO{Label: c.Label, AsOf: c.AsOf.Format(dateLayout)}
	}
	sections := make([]ReportSectionDTO, len(bs.Sections))
	for i, s := range bs.Sections {
		sections[i] = toSectionDTO(s)
	}
	return BalanceSheetDTO{
		AsOf:     columns,
		Sections: sections,
		Totals: BsTotalsDTO{
			Assets:                moneyVector(bs.Assets),
			Liabilities:           moneyVector(bs.Liabilities),
			Equity:                moneyVector(bs.Equity),
			LiabilitiesPlusEquity: moneyVector(bs.LiabilitiesPlusEquity),
			Difference:            moneyVector(bs.Difference),
		},
	}
}
