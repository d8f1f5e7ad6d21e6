package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finsight/internal/core"
	"finsight/internal/report"
)

// SheetName is the single worksheet of an XLSX export.
const SheetName = "Transactions"

// WriteXLSX writes a one-sheet workbook with the same columns as WriteCSV.
// Amounts are numeric cells with a two-decimal format.
func WriteXLSX(w io.Writer, rows []report.FlatRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	format := "0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Date.Format(dateLayout), r.Label, string(r.Type), core.AmountFloat(r.SignedAmount)}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("D%d", len(rows)+1)
		if err := f.SetCellStyle(SheetName, "D2", last, style); err != nil {
			return fmt.Errorf("apply amount style: %w", err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}
