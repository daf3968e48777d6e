/*
Package statement renders accrual engine output for presentation and export.

PURPOSE:
  The engine produces full-precision rows; this package is the thin
  presentation layer that rounds for display, derives chart series, and
  serializes to delimited text and spreadsheet formats. It holds no
  computation logic of its own.
*/
package statement

import (
	"regexp"
	"strings"

	"github.com/seedtime/deposit-engine/engine"
)

// Columns is the exported column set, in order.
var Columns = []string{
	"Date",
	"Transaction Type",
	"Amount",
	"Balance After Transaction",
	"Client Rate (%)",
	"Cumulative ROI",
	"Total Value",
}

// Statement bundles one computation's output with its client labels.
type Statement struct {
	ClientName    string
	AccountNumber string
	Rows          []engine.StatementRow
	Totals        engine.Totals
}

// FromRun packages engine output for rendering.
func FromRun(cfg engine.Config, rows []engine.StatementRow, totals engine.Totals) Statement {
	return Statement{
		ClientName:    cfg.ClientName,
		AccountNumber: cfg.AccountNumber,
		Rows:          rows,
		Totals:        totals,
	}
}

// =============================================================================
// CHART SERIES
// =============================================================================

// ChartSeries holds the per-date series for charting: net principal,
// cumulative ROI, and total value, all rounded to two decimals.
type ChartSeries struct {
	Dates      []string  `json:"dates"`
	Principal  []float64 `json:"principal"`
	ROI        []float64 `json:"roi"`
	TotalValue []float64 `json:"total_value"`
}

// Chart derives the series from the statement rows. Net principal is the
// balance with accrued ROI backed out, so the three series satisfy
// principal + roi = total value pointwise.
func Chart(stmt Statement) ChartSeries {
	series := ChartSeries{
		Dates:      make([]string, len(stmt.Rows)),
		Principal:  make([]float64, len(stmt.Rows)),
		ROI:        make([]float64, len(stmt.Rows)),
		TotalValue: make([]float64, len(stmt.Rows)),
	}
	for i, row := range stmt.Rows {
		series.Dates[i] = row.Date.String()
		series.Principal[i] = row.Balance.Sub(row.ROI).Float64()
		series.ROI[i] = row.ROI.Float64()
		series.TotalValue[i] = row.TotalValue.Float64()
	}
	return series
}

// =============================================================================
// EXPORT FILE NAMING
// =============================================================================

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds the download name {client}_{account}_statement.{ext},
// with whitespace and path-hostile characters collapsed to underscores.
func Filename(clientName, accountNumber, ext string) string {
	return sanitize(clientName, "client") + "_" + sanitize(accountNumber, "account") + "_statement." + ext
}

func sanitize(s, fallback string) string {
	s = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallback
	}
	return s
}
