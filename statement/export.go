package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/seedtime/deposit-engine/engine"
)

// BuildCSV renders the statement as delimited text: the column header
// followed by one record per row, all monetary fields at two decimals.
func BuildCSV(stmt Statement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, row := range stmt.Rows {
		if err := w.Write(csvRecord(row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRecord(row engine.StatementRow) []string {
	return []string{
		row.Date.String(),
		string(row.Kind),
		row.Amount.StringFixed2(),
		row.Balance.StringFixed2(),
		row.ClientRate.StringFixed2(),
		row.ROI.StringFixed2(),
		row.TotalValue.StringFixed2(),
	}
}

// BuildXLSX renders the statement as a workbook: a summary sheet with the
// client details and maturity totals, and a statement sheet with the row
// table.
func BuildXLSX(stmt Statement) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "Summary"
	rowsSheet := "Statement"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Client Transaction Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Client Name")
	_ = f.SetCellValue(summarySheet, "B3", stmt.ClientName)
	_ = f.SetCellValue(summarySheet, "A4", "Account Number")
	_ = f.SetCellValue(summarySheet, "B4", stmt.AccountNumber)
	_ = f.SetCellValue(summarySheet, "A5", "Maturity Date")
	_ = f.SetCellValue(summarySheet, "B5", stmt.Totals.MaturityDate.String())
	_ = f.SetCellValue(summarySheet, "A6", "Total Net Principal Balance")
	_ = f.SetCellValue(summarySheet, "B6", stmt.Totals.Principal.Float64())
	_ = f.SetCellValue(summarySheet, "A7", "Total ROI")
	_ = f.SetCellValue(summarySheet, "B7", stmt.Totals.ROI.Float64())
	_ = f.SetCellValue(summarySheet, "A8", "Total Value at Maturity (Principal + ROI)")
	_ = f.SetCellValue(summarySheet, "B8", stmt.Totals.TotalValue.Float64())

	for col, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, row := range stmt.Rows {
		r := i + 2
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", r), row.Date.String())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", r), string(row.Kind))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", r), row.Amount.Float64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", r), row.Balance.Float64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("E%d", r), row.ClientRate.Float64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("F%d", r), row.ROI.Float64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("G%d", r), row.TotalValue.Float64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
