/*
engine.go - The deposit-ledger accrual algorithm

PURPOSE:
  Runs a single statement computation: sort transactions, walk them
  chronologically while accruing daily-compounded interest on every open
  deposit lot, apply each transaction to the lot set (new lot per deposit,
  FIFO consumption per withdrawal), snapshot a statement row after each,
  then finalize remaining lots at maturity.

LOT LIFECYCLE:
  Open -> Accruing -> (Accruing | Consumed | Matured)

  A lot is opened by a deposit, accrues and capitalizes interest between
  transaction dates, shrinks under withdrawals, and is removed the moment
  its principal reaches zero. Consumed is terminal; there is no transition
  back. ROI realized by a consumed lot is retained in the aggregate so the
  statement's cumulative ROI never decreases.

ACCRUAL ORDER:
  Accrual for the interval ending on a transaction's date runs BEFORE the
  transaction is applied, so a transaction's own amount never earns
  interest for the zero-length interval ending on its own date.

NUMERIC SEMANTICS:
  interest = principal * ((1 + rate/100/365)^days - 1), in decimals end to
  end. The compounding factor is computed with bounded precision high
  enough to avoid drift over tenors of tens of thousands of days; rounding
  to two decimals is strictly a presentation concern.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// daysPerYear follows the original product terms: a fixed 365-day year,
// leap years included.
var daysPerYear = decimal.NewFromInt(365)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// compoundPrecision bounds the decimal places kept when raising the daily
// factor to the elapsed-days power. 24 places keeps accumulated error far
// below a cent across multi-decade tenors without letting the
// representation grow unboundedly.
const compoundPrecision = 24

// =============================================================================
// DEPOSIT LOT - Internal sub-balance with its own accrual clock
// =============================================================================

// lot is created per deposit and destroyed only by withdrawals. principal
// never goes negative; a lot at exactly zero is removed from the active set.
type lot struct {
	principal       Money
	openedDate      Date
	lastAccrualDate Date
	accruedROI      Money
}

// =============================================================================
// RUN - One complete statement computation
// =============================================================================

// Run computes the full statement for a transaction list and configuration.
// It is pure: repeated runs over the same input produce identical rows and
// totals, and no state is shared across runs.
//
// On any error no rows are returned; there are no partial statements.
func Run(transactions []Transaction, cfg Config) ([]StatementRow, Totals, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Totals{}, err
	}
	if len(transactions) == 0 {
		return nil, Totals{}, ErrEmptyInput
	}

	// Stable sort by date: same-date entries keep insertion order.
	txs := make([]Transaction, len(transactions))
	copy(txs, transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	if err := validateTransactions(txs); err != nil {
		return nil, Totals{}, err
	}

	maturity := txs[0].Date.AddDays(cfg.TenorDays)

	// lots stays ordered oldest-opened-first: deposits append in
	// chronological processing order, withdrawals consume from the front.
	var lots []*lot
	realizedROI := ZeroMoney()
	rows := make([]StatementRow, 0, len(txs)+1)

	for i, tx := range txs {
		if err := accrueAll(lots, tx.Date, cfg); err != nil {
			return nil, Totals{}, err
		}

		switch tx.Kind {
		case KindDeposit:
			if tx.Amount.IsPositive() {
				lots = append(lots, &lot{
					principal:       tx.Amount,
					openedDate:      tx.Date,
					lastAccrualDate: tx.Date,
					accruedROI:      ZeroMoney(),
				})
			}
		case KindWithdrawal:
			available := aggregatePrincipal(lots)
			if tx.Amount.GreaterThan(available) {
				return nil, Totals{}, &InsufficientFundsError{
					Index:     i,
					Date:      tx.Date,
					Requested: tx.Amount,
					Available: available,
				}
			}
			lots, realizedROI = consume(lots, tx.Amount, realizedROI)
		}

		row, err := snapshot(tx.Date, tx.Kind, tx.Amount, lots, realizedROI, cfg)
		if err != nil {
			return nil, Totals{}, err
		}
		rows = append(rows, row)
	}

	// Finalize: accrue every surviving lot up to maturity and emit the
	// synthetic maturity row.
	if err := accrueAll(lots, maturity, cfg); err != nil {
		return nil, Totals{}, err
	}
	final, err := snapshot(maturity, KindMaturity, ZeroMoney(), lots, realizedROI, cfg)
	if err != nil {
		return nil, Totals{}, err
	}
	rows = append(rows, final)

	totals := Totals{
		Principal:    final.Balance.Sub(final.ROI),
		ROI:          final.ROI,
		TotalValue:   final.TotalValue,
		MaturityDate: maturity,
	}
	return rows, totals, nil
}

// validateTransactions checks the sorted sequence for input errors.
func validateTransactions(txs []Transaction) error {
	depositSeen := false
	for i, tx := range txs {
		if tx.Date.IsZero() {
			return &InvalidTransactionError{Index: i, Date: tx.Date, Reason: "missing date"}
		}
		if tx.Amount.IsNegative() {
			return &InvalidTransactionError{Index: i, Date: tx.Date, Reason: "negative amount"}
		}
		switch tx.Kind {
		case KindDeposit:
			depositSeen = true
		case KindWithdrawal:
			if !depositSeen {
				return &InvalidTransactionError{Index: i, Date: tx.Date, Reason: "withdrawal precedes any deposit"}
			}
		default:
			return &InvalidTransactionError{Index: i, Date: tx.Date, Reason: "unknown kind " + string(tx.Kind)}
		}
	}
	return nil
}

// accrueAll advances every lot's accrual clock to the given date,
// capitalizing the earned interest. Each lot resolves its rate from its
// OWN principal; lots in different tiers compound independently.
func accrueAll(lots []*lot, to Date, cfg Config) error {
	for _, l := range lots {
		days := DaysBetween(l.lastAccrualDate, to)
		if days <= 0 {
			continue
		}
		rate, err := cfg.Tiers.Resolve(l.principal, cfg.BaseRate)
		if err != nil {
			return err
		}
		interest, err := compoundInterest(l.principal, rate, days)
		if err != nil {
			return err
		}
		l.principal = l.principal.Add(interest)
		l.accruedROI = l.accruedROI.Add(interest)
		l.lastAccrualDate = to
	}
	return nil
}

// compoundInterest computes principal * ((1 + rate/100/365)^days - 1).
func compoundInterest(principal Money, rate Percent, days int) (Money, error) {
	dailyRate := rate.Value.DivRound(oneHundred.Mul(daysPerYear), compoundPrecision)
	factor, err := one.Add(dailyRate).PowWithPrecision(decimal.NewFromInt(int64(days)), compoundPrecision)
	if err != nil {
		return Money{}, err
	}
	return principal.Mul(factor.Sub(one)), nil
}

// consume deducts a withdrawal from lots oldest-opened-first. Lots drained
// to exactly zero are removed; their accrued ROI moves into the realized
// accumulator so the statement's cumulative ROI stays monotone.
//
// The caller has already verified the amount does not exceed the aggregate
// principal.
func consume(lots []*lot, amount Money, realizedROI Money) ([]*lot, Money) {
	remaining := amount
	active := lots[:0]
	for _, l := range lots {
		if remaining.IsPositive() {
			take := l.principal.Min(remaining)
			l.principal = l.principal.Sub(take)
			remaining = remaining.Sub(take)
		}
		if l.principal.IsZero() {
			realizedROI = realizedROI.Add(l.accruedROI)
			continue
		}
		active = append(active, l)
	}
	return active, realizedROI
}

func aggregatePrincipal(lots []*lot) Money {
	total := ZeroMoney()
	for _, l := range lots {
		total = total.Add(l.principal)
	}
	return total
}

// snapshot emits a statement row from the post-application lot set. The
// displayed client rate is resolved at the aggregate balance.
func snapshot(date Date, kind TxKind, amount Money, lots []*lot, realizedROI Money, cfg Config) (StatementRow, error) {
	balance := aggregatePrincipal(lots)
	roi := realizedROI
	for _, l := range lots {
		roi = roi.Add(l.accruedROI)
	}
	rate, err := cfg.Tiers.Resolve(balance, cfg.BaseRate)
	if err != nil {
		return StatementRow{}, err
	}
	return StatementRow{
		Date:       date,
		Kind:       kind,
		Amount:     amount,
		Balance:    balance,
		ClientRate: rate,
		ROI:        roi,
		TotalValue: balance,
	}, nil
}
