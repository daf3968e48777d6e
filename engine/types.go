/*
Package engine provides the deposit-ledger accrual engine.

PURPOSE:
  This package contains the core types and algorithm for computing a
  client's accrued return-on-investment on a time-deposit account. Given
  an ordered sequence of cash transactions and a tenor, the engine tracks
  open deposit lots, compounds interest daily on each lot between
  transaction dates at a tier-resolved rate, consumes lots FIFO on
  withdrawals, and produces a per-transaction statement plus totals at
  maturity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: A dated cash movement (deposit or withdrawal)
  - StatementRow: An immutable snapshot emitted per transaction
  - Totals: Principal / ROI / total value at maturity
  - Config: The scalar parameters of one computation run

DESIGN PRINCIPLES:
  1. Purity: Run is a deterministic function of (transactions, config).
     No shared state survives a run; concurrent runs need no locking.
  2. Precision: Uses decimal.Decimal throughout; rounding to two decimal
     places happens only at presentation time, never in running state.
  3. Immutability: Statement rows are append-only and never mutated.

USAGE:
  cfg := engine.Config{
      BaseRate:  engine.NewPercent(20.66),
      Tiers:     engine.TierSchedule{...},
      TenorDays: 365,
  }
  rows, totals, err := engine.Run(txs, cfg)

SEE ALSO:
  - rate.go:   Tier schedule and client rate resolution
  - engine.go: The accrual algorithm
  - errors.go: Error taxonomy
*/
package engine

// =============================================================================
// TRANSACTION - Input cash movement
// =============================================================================

// TxKind identifies the direction of a cash movement.
type TxKind string

const (
	KindDeposit    TxKind = "Deposit"
	KindWithdrawal TxKind = "Withdrawal"

	// KindMaturity marks the synthetic final row only. It is never a valid
	// input transaction kind.
	KindMaturity TxKind = "Maturity"
)

// Transaction is a single client action against the deposit account.
// Transactions may arrive in arbitrary entry order; Run re-sorts them by
// date with a stable sort, so same-date entries keep their relative order.
type Transaction struct {
	Date   Date
	Kind   TxKind
	Amount Money
}

// =============================================================================
// CONFIGURATION - Immutable per computation run
// =============================================================================

// Config holds the scalar parameters of one statement computation.
type Config struct {
	// BaseRate is the published annual percentage rate. Non-negative.
	BaseRate Percent

	// Tiers maps a balance to the margin subtracted from BaseRate.
	Tiers TierSchedule

	// TenorDays is the fixed term, measured from the first transaction's
	// date to maturity. Positive.
	TenorDays int

	// Client identification, used for statement labeling and export
	// file naming only. Not part of the computation.
	ClientName    string
	AccountNumber string
}

// Validate checks the configuration before a run.
func (c Config) Validate() error {
	if c.BaseRate.IsNegative() {
		return &ConfigError{Field: "base_rate", Reason: "must be non-negative"}
	}
	if c.TenorDays <= 0 {
		return &ConfigError{Field: "tenor_days", Reason: "must be positive"}
	}
	return c.Tiers.Validate()
}

// =============================================================================
// STATEMENT ROW - Output snapshot, one per transaction plus maturity
// =============================================================================

// StatementRow snapshots the account state immediately after a transaction
// was applied. All monetary fields carry full internal precision; callers
// round for display.
type StatementRow struct {
	Date   Date
	Kind   TxKind
	Amount Money

	// Balance is the aggregate principal across all active lots, including
	// interest capitalized so far.
	Balance Money

	// ClientRate is the rate resolved at the aggregate balance.
	ClientRate Percent

	// ROI is the cumulative accrued return, including ROI realized by lots
	// already fully consumed by withdrawals.
	ROI Money

	// TotalValue is net principal plus ROI. Since interest capitalizes into
	// lot principal, this equals Balance.
	TotalValue Money
}

// Totals summarizes the account at tenor end, taken from the maturity row.
type Totals struct {
	// Principal is the net contributed principal: Balance minus ROI.
	Principal Money

	// ROI is the total accrued return over the tenor.
	ROI Money

	// TotalValue is Principal + ROI.
	TotalValue Money

	MaturityDate Date
}
