/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-precision domain model from the external API
  contract; all monetary fields cross the wire rounded to two decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/seedtime/deposit-engine/engine"
	"github.com/seedtime/deposit-engine/factory"
	"github.com/seedtime/deposit-engine/statement"
	"github.com/seedtime/deposit-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateSessionRequest opens a statement session. Base rate, tenor, and
// tiers fall back to the server's default rate card when omitted.
type CreateSessionRequest struct {
	ClientName    string             `json:"client_name"`
	AccountNumber string             `json:"account_number"`
	BaseRate      float64            `json:"base_rate,omitempty"`
	TenorDays     int                `json:"tenor_days,omitempty"`
	Tiers         []factory.TierJSON `json:"tiers,omitempty"`
}

// SessionDTO represents a statement session in API responses.
type SessionDTO struct {
	ID            string               `json:"id"`
	ClientName    string               `json:"client_name"`
	AccountNumber string               `json:"account_number"`
	RateCard      factory.RateCardJSON `json:"rate_card"`
	CreatedAt     string               `json:"created_at"`
}

// TransactionRowDTO is one entered transaction row.
type TransactionRowDTO struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Kind   string  `json:"kind"` // Deposit | Withdrawal
	Amount float64 `json:"amount"`
}

// CashEventDTO is an amount/date pair from the form-style bundle.
type CashEventDTO struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// AddTransactionsRequest appends entered rows. Either the explicit rows
// list or the original form bundle (initial deposit plus optional
// additional deposit and withdrawal) may be used; both may be combined.
type AddTransactionsRequest struct {
	Rows              []TransactionRowDTO `json:"rows,omitempty"`
	InitialDeposit    *CashEventDTO       `json:"initial_deposit,omitempty"`
	AdditionalDeposit *CashEventDTO       `json:"additional_deposit,omitempty"`
	Withdrawal        *CashEventDTO       `json:"withdrawal,omitempty"`
}

// EntryDTO is a stored entered row.
type EntryDTO struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Kind     string  `json:"kind"`
	Amount   float64 `json:"amount"`
	Position int     `json:"position"`
}

// StatementRowDTO is one statement line, rounded for display.
type StatementRowDTO struct {
	Date       string  `json:"date"`
	Kind       string  `json:"kind"`
	Amount     float64 `json:"amount"`
	Balance    float64 `json:"balance"`
	ClientRate float64 `json:"client_rate"`
	ROI        float64 `json:"roi"`
	TotalValue float64 `json:"total_value"`
}

// TotalsDTO summarizes the account at maturity.
type TotalsDTO struct {
	Principal    float64 `json:"principal"`
	ROI          float64 `json:"roi"`
	TotalValue   float64 `json:"total_value"`
	MaturityDate string  `json:"maturity_date"`
}

// StatementResponse is the computed statement.
type StatementResponse struct {
	SessionID     string            `json:"session_id,omitempty"`
	ClientName    string            `json:"client_name"`
	AccountNumber string            `json:"account_number"`
	Rows          []StatementRowDTO `json:"rows"`
	Totals        TotalsDTO         `json:"totals"`
}

// ComputeStatementRequest is the stateless one-shot compute: a rate card
// plus the full transaction list, no session involved.
type ComputeStatementRequest struct {
	Config       factory.RateCardJSON `json:"config"`
	Transactions []TransactionRowDTO  `json:"transactions"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSessionDTO(sess sqlite.Session) (SessionDTO, error) {
	card, err := factory.ParseCard(sess.RateCardJSON)
	if err != nil {
		return SessionDTO{}, err
	}
	return SessionDTO{
		ID:            sess.ID,
		ClientName:    sess.ClientName,
		AccountNumber: sess.AccountNumber,
		RateCard:      card,
		CreatedAt:     sess.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func toEntryDTO(e sqlite.Entry) EntryDTO {
	return EntryDTO{
		ID:       e.ID,
		Date:     e.Date.Format("2006-01-02"),
		Kind:     e.Kind,
		Amount:   engine.MustParseMoney(e.Amount).Float64(),
		Position: e.Position,
	}
}

func toStatementRowDTO(row engine.StatementRow) StatementRowDTO {
	return StatementRowDTO{
		Date:       row.Date.String(),
		Kind:       string(row.Kind),
		Amount:     row.Amount.Float64(),
		Balance:    row.Balance.Float64(),
		ClientRate: row.ClientRate.Float64(),
		ROI:        row.ROI.Float64(),
		TotalValue: row.TotalValue.Float64(),
	}
}

func toStatementResponse(sessionID string, stmt statement.Statement) StatementResponse {
	rows := make([]StatementRowDTO, len(stmt.Rows))
	for i, row := range stmt.Rows {
		rows[i] = toStatementRowDTO(row)
	}
	return StatementResponse{
		SessionID:     sessionID,
		ClientName:    stmt.ClientName,
		AccountNumber: stmt.AccountNumber,
		Rows:          rows,
		Totals: TotalsDTO{
			Principal:    stmt.Totals.Principal.Float64(),
			ROI:          stmt.Totals.ROI.Float64(),
			TotalValue:   stmt.Totals.TotalValue.Float64(),
			MaturityDate: stmt.Totals.MaturityDate.String(),
		},
	}
}
