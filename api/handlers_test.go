/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Session lifecycle (create, get, delete)
- Transaction entry and statement computation
- CSV export headers
- Error mapping (404, insufficient funds)
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedtime/deposit-engine/factory"
	"github.com/seedtime/deposit-engine/store/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewRouter(NewHandler(store, factory.Default()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler) SessionDTO {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", CreateSessionRequest{
		ClientName:    "Ada Obi",
		AccountNumber: "0123456789",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestCreateSession_AppliesDefaults(t *testing.T) {
	// GIVEN: A router with the standard default rate card
	router := newTestRouter(t)

	// WHEN: Creating a session without rate parameters
	dto := createSession(t, router)

	// THEN: The stored card carries the defaults
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Ada Obi", dto.ClientName)
	assert.Equal(t, 20.66, dto.RateCard.BaseRate)
	assert.Equal(t, 365, dto.RateCard.TenorDays)
	assert.Len(t, dto.RateCard.Tiers, 3)
}

func TestCreateSession_RequiresClientName(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", CreateSessionRequest{
		AccountNumber: "0123456789",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_configuration", resp.Code)
}

func TestCreateSession_RejectsInvalidTiers(t *testing.T) {
	router := newTestRouter(t)
	bound := 50000.0

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", CreateSessionRequest{
		ClientName:    "Ada Obi",
		AccountNumber: "0123456789",
		BaseRate:      20.66,
		TenorDays:     365,
		// Final tier is bounded, so large balances have no band.
		Tiers: []factory.TierJSON{{UpTo: &bound, Margin: 2}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	// GIVEN: A created session
	router := newTestRouter(t)
	dto := createSession(t, router)

	// WHEN/THEN: It is retrievable and listed
	rec := doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// WHEN: Deleting it
	rec = doJSON(t, router, http.MethodDelete, "/api/sessions/"+dto.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: It is gone
	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddTransactions_FormBundle(t *testing.T) {
	// GIVEN: A session
	router := newTestRouter(t)
	dto := createSession(t, router)

	// WHEN: Posting the deposit/withdrawal form bundle
	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		InitialDeposit:    &CashEventDTO{Amount: 100000, Date: "2025-01-01"},
		AdditionalDeposit: &CashEventDTO{Amount: 50000, Date: "2025-03-01"},
		Withdrawal:        &CashEventDTO{Amount: 20000, Date: "2025-06-01"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: Three rows are stored in entry order
	var entries []EntryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Deposit", entries[0].Kind)
	assert.Equal(t, "Deposit", entries[1].Kind)
	assert.Equal(t, "Withdrawal", entries[2].Kind)
	assert.Equal(t, 0, entries[0].Position)
	assert.Equal(t, 2, entries[2].Position)
}

func TestAddTransactions_RejectsBadDate(t *testing.T) {
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		Rows: []TransactionRowDTO{{Date: "01/05/2025", Kind: "Deposit", Amount: 1000}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_transaction", resp.Code)
}

func TestGetStatement_ComputesRowsAndTotals(t *testing.T) {
	// GIVEN: A session with a single 100,000 deposit
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		Rows: []TransactionRowDTO{{Date: "2025-01-01", Kind: "Deposit", Amount: 100000}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: Computing the statement
	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/statement", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Deposit row plus maturity row, totals consistent
	var stmt StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stmt))
	require.Len(t, stmt.Rows, 2)
	assert.Equal(t, "Deposit", stmt.Rows[0].Kind)
	assert.Equal(t, "Maturity", stmt.Rows[1].Kind)
	// 100,000 at 17.66% (20.66 base, tier margin 3) compounded daily.
	assert.InDelta(t, 19310.0, stmt.Totals.ROI, 15.0)
	assert.InDelta(t, stmt.Totals.Principal+stmt.Totals.ROI, stmt.Totals.TotalValue, 0.011)
	assert.Equal(t, "2026-01-01", stmt.Totals.MaturityDate)
}

func TestGetStatement_EmptySessionIsClientError(t *testing.T) {
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/statement", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_input", resp.Code)
}

func TestGetStatement_OverWithdrawalMapsTo400(t *testing.T) {
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		Rows: []TransactionRowDTO{
			{Date: "2025-01-01", Kind: "Deposit", Amount: 1000},
			{Date: "2025-01-10", Kind: "Withdrawal", Amount: 5000},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/statement", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_funds", resp.Code)
}

func TestExportStatement_CSV(t *testing.T) {
	// GIVEN: A session with one deposit
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		Rows: []TransactionRowDTO{{Date: "2025-01-01", Kind: "Deposit", Amount: 100000}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: Downloading the CSV export
	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/export?format=csv", nil)

	// THEN: Download headers and the column header line are present
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Ada_Obi_0123456789_statement.csv")
	firstLine := strings.SplitN(rec.Body.String(), "\n", 2)[0]
	assert.Contains(t, firstLine, "Client Rate (%)")
}

func TestExportStatement_UnknownFormat(t *testing.T) {
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/export?format=pdf", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeStatement_OneShot(t *testing.T) {
	// GIVEN: A stateless compute request with an explicit rate card
	router := newTestRouter(t)

	req := ComputeStatementRequest{
		Config: factory.RateCardJSON{
			ClientName:    "Ada Obi",
			AccountNumber: "0123456789",
			BaseRate:      20.66,
			TenorDays:     365,
		},
		Transactions: []TransactionRowDTO{
			{Date: "2025-01-01", Kind: "Deposit", Amount: 100000},
		},
	}

	// WHEN: Computing without a session
	rec := doJSON(t, router, http.MethodPost, "/api/statements", req)

	// THEN: The statement comes back with an empty session id
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stmt StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stmt))
	assert.Empty(t, stmt.SessionID)
	require.Len(t, stmt.Rows, 2)
	assert.Equal(t, "Ada Obi", stmt.ClientName)
}

func TestDeleteTransaction(t *testing.T) {
	// GIVEN: A session with two rows
	router := newTestRouter(t)
	dto := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+dto.ID+"/transactions", AddTransactionsRequest{
		Rows: []TransactionRowDTO{
			{Date: "2025-01-01", Kind: "Deposit", Amount: 1000},
			{Date: "2025-02-01", Kind: "Deposit", Amount: 2000},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entries []EntryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	// WHEN: Deleting the first row
	path := fmt.Sprintf("/api/sessions/%s/transactions/%s", dto.ID, entries[0].ID)
	rec = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: Only the second row remains; a repeat delete is a 404
	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+dto.ID+"/transactions", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	rec = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/sessions/nope",
		"/api/sessions/nope/transactions",
		"/api/sessions/nope/statement",
		"/api/sessions/nope/chart",
		"/api/sessions/nope/export",
	} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
