/*
handlers.go - HTTP API handlers for the deposit statement engine

PURPOSE:
  Exposes the statement engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Sessions:
    POST   /api/sessions                    Open a statement session
    GET    /api/sessions                    List sessions
    GET    /api/sessions/{id}               Get session details
    DELETE /api/sessions/{id}               Delete session and its entries

  Transactions:
    POST   /api/sessions/{id}/transactions  Append deposit/withdrawal rows
    GET    /api/sessions/{id}/transactions  List entered rows
    DELETE /api/sessions/{id}/transactions/{entryID}  Remove one row

  Statement:
    GET    /api/sessions/{id}/statement     Compute the full statement
    GET    /api/sessions/{id}/chart         Growth series for plotting
    GET    /api/sessions/{id}/export        Download CSV or XLSX

  One-shot:
    POST   /api/statements                  Stateless compute, no session

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, statement)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, insufficient funds, invalid rate cards
  - 404: Unknown session or entry
  - 500: Internal errors
  Client errors carry a machine-readable code alongside the message.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seedtime/deposit-engine/engine"
	"github.com/seedtime/deposit-engine/factory"
	"github.com/seedtime/deposit-engine/statement"
	"github.com/seedtime/deposit-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.RateCardFactory

	// defaults fills unset rate card fields on session creation.
	defaults factory.RateCardJSON
}

// NewHandler creates a new handler with the given store and default rate card.
func NewHandler(store *sqlite.Store, defaults factory.RateCardJSON) *Handler {
	return &Handler{
		Store:    store,
		Factory:  factory.NewRateCardFactory(),
		defaults: defaults,
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession opens a new statement session.
// POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.ClientName == "" {
		writeClientError(w, "client_name is required", "invalid_configuration", nil)
		return
	}
	if req.AccountNumber == "" {
		writeClientError(w, "account_number is required", "invalid_configuration", nil)
		return
	}

	card := factory.RateCardJSON{
		ClientName:    req.ClientName,
		AccountNumber: req.AccountNumber,
		BaseRate:      req.BaseRate,
		TenorDays:     req.TenorDays,
		Tiers:         req.Tiers,
	}.WithDefaults(h.defaults)

	// Reject unusable cards up front rather than at statement time.
	if _, err := h.Factory.Build(card); err != nil {
		writeEngineError(w, err)
		return
	}

	cardJSON, err := factory.MarshalCard(card)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode rate card", err)
		return
	}

	sess := sqlite.Session{
		ID:            uuid.NewString(),
		ClientName:    req.ClientName,
		AccountNumber: req.AccountNumber,
		RateCardJSON:  cardJSON,
	}
	if err := h.Store.SaveSession(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session", err)
		return
	}

	saved, err := h.Store.GetSession(r.Context(), sess.ID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved session", err)
		return
	}

	dto, err := toSessionDTO(*saved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode rate card", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// ListSessions returns all sessions, newest first.
// GET /api/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		dto, err := toSessionDTO(sess)
		if err != nil {
			continue // skip sessions with unreadable cards
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSession returns a single session.
// GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	dto, err := toSessionDTO(*sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode rate card", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteSession removes a session and its entries.
// DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Store.DeleteSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// AddTransactions appends entered rows to a session.
// POST /api/sessions/{id}/transactions
func (h *Handler) AddTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req AddTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rows := req.Rows
	// The form bundle maps to explicit rows: deposits first, then the
	// withdrawal, matching the order the original entry form applied them.
	if req.InitialDeposit != nil {
		rows = append(rows, TransactionRowDTO{
			Date:   req.InitialDeposit.Date,
			Kind:   string(engine.KindDeposit),
			Amount: req.InitialDeposit.Amount,
		})
	}
	if req.AdditionalDeposit != nil {
		rows = append(rows, TransactionRowDTO{
			Date:   req.AdditionalDeposit.Date,
			Kind:   string(engine.KindDeposit),
			Amount: req.AdditionalDeposit.Amount,
		})
	}
	if req.Withdrawal != nil {
		rows = append(rows, TransactionRowDTO{
			Date:   req.Withdrawal.Date,
			Kind:   string(engine.KindWithdrawal),
			Amount: req.Withdrawal.Amount,
		})
	}

	if len(rows) == 0 {
		writeClientError(w, "No transaction rows provided", "empty_input", nil)
		return
	}

	entries := make([]sqlite.Entry, len(rows))
	for i, row := range rows {
		date, err := engine.ParseDate(row.Date)
		if err != nil {
			writeClientError(w, fmt.Sprintf("Row %d: invalid date %q", i, row.Date), "invalid_transaction", err)
			return
		}
		kind := engine.TxKind(row.Kind)
		if kind != engine.KindDeposit && kind != engine.KindWithdrawal {
			writeClientError(w, fmt.Sprintf("Row %d: unknown kind %q", i, row.Kind), "invalid_transaction", nil)
			return
		}
		amount := engine.NewMoney(row.Amount)
		if amount.IsNegative() {
			writeClientError(w, fmt.Sprintf("Row %d: amount must be non-negative", i), "invalid_transaction", nil)
			return
		}
		entries[i] = sqlite.Entry{
			ID:        uuid.NewString(),
			SessionID: sess.ID,
			Date:      date.Time,
			Kind:      string(kind),
			Amount:    amount.String(),
		}
	}

	if err := h.Store.AppendEntries(r.Context(), sess.ID, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transactions", err)
		return
	}

	stored, err := h.Store.ListEntries(r.Context(), sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTOs(stored))
}

// ListTransactions returns a session's entered rows in entry order.
// GET /api/sessions/{id}/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// DeleteTransaction removes a single entered row.
// DELETE /api/sessions/{id}/transactions/{entryID}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	deleted, err := h.Store.DeleteEntry(r.Context(), sess.ID, entryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATEMENT HANDLERS
// =============================================================================

// GetStatement computes and returns the session's full statement.
// GET /api/sessions/{id}/statement
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	stmt, err := h.computeStatement(r, sess)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse(sess.ID, stmt))
}

// GetChart returns the growth series behind the statement chart.
// GET /api/sessions/{id}/chart
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	stmt, err := h.computeStatement(r, sess)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement.Chart(stmt))
}

// ExportStatement streams the statement as a CSV or XLSX download.
// GET /api/sessions/{id}/export?format=csv|xlsx
func (h *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	stmt, err := h.computeStatement(r, sess)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "csv":
		data, err = statement.BuildCSV(stmt)
		contentType = "text/csv"
	case "xlsx":
		data, err = statement.BuildXLSX(stmt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeClientError(w, fmt.Sprintf("Unknown export format %q", format), "invalid_configuration", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build export", err)
		return
	}

	filename := statement.Filename(stmt.ClientName, stmt.AccountNumber, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ComputeStatement runs a one-shot statement without any stored session.
// POST /api/statements
func (h *Handler) ComputeStatement(w http.ResponseWriter, r *http.Request) {
	var req ComputeStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.Factory.Build(req.Config.WithDefaults(h.defaults))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	txs, err := toTransactions(req.Transactions)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	rows, totals, err := engine.Run(txs, cfg)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse("", statement.FromRun(cfg, rows, totals)))
}

// =============================================================================
// HELPERS
// =============================================================================

// loadSession fetches the session named in the URL, writing a 404 or 500
// response itself when it cannot.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*sqlite.Session, bool) {
	id := chi.URLParam(r, "id")

	sess, err := h.Store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return nil, false
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return nil, false
	}
	return sess, true
}

// computeStatement loads a session's entries and runs the engine over them.
func (h *Handler) computeStatement(r *http.Request, sess *sqlite.Session) (statement.Statement, error) {
	cfg, err := h.Factory.Parse(sess.RateCardJSON)
	if err != nil {
		return statement.Statement{}, err
	}
	cfg.ClientName = sess.ClientName
	cfg.AccountNumber = sess.AccountNumber

	entries, err := h.Store.ListEntries(r.Context(), sess.ID)
	if err != nil {
		return statement.Statement{}, err
	}

	txs := make([]engine.Transaction, len(entries))
	for i, e := range entries {
		txs[i] = engine.Transaction{
			Date:   engine.Date{Time: e.Date},
			Kind:   engine.TxKind(e.Kind),
			Amount: engine.MustParseMoney(e.Amount),
		}
	}

	rows, totals, err := engine.Run(txs, cfg)
	if err != nil {
		return statement.Statement{}, err
	}
	return statement.FromRun(cfg, rows, totals), nil
}

func toTransactions(rows []TransactionRowDTO) ([]engine.Transaction, error) {
	txs := make([]engine.Transaction, len(rows))
	for i, row := range rows {
		date, err := engine.ParseDate(row.Date)
		if err != nil {
			return nil, &engine.InvalidTransactionError{Index: i, Reason: fmt.Sprintf("invalid date %q", row.Date)}
		}
		txs[i] = engine.Transaction{
			Date:   date,
			Kind:   engine.TxKind(row.Kind),
			Amount: engine.NewMoney(row.Amount),
		}
	}
	return txs, nil
}

func toEntryDTOs(entries []sqlite.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

// errorCode maps an engine error to its machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, engine.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, engine.ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, engine.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return ""
	}
}

// writeEngineError maps domain errors to 400 and everything else to 500.
func writeEngineError(w http.ResponseWriter, err error) {
	if engine.IsClientError(err) {
		writeClientError(w, err.Error(), errorCode(err), nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "Statement computation failed", err)
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

func writeClientError(w http.ResponseWriter, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
