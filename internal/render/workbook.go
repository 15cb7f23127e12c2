package render

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bills/pkg/models"
)

const workbookSheet = "Invoice"

const workbookFeeFormat = `"£"#,##0.00;[Red]-"£"#,##0.00`

var itemTableHeaders = []string{
	"PO", "Student Name", "Assessment Date", "Report Submission Date",
	"Assessment Type", "Fee", "Vat?",
}

// First row of the line-item table; items start on the row below.
const itemHeaderRow = 10

// Workbook renders the invoice as an xlsx workbook laid out from the invoice
// template: supplier header block, invoice metadata, one line per item and a
// bank details footer. Written to <outDir>/<ref>.xlsx.
func (r *Renderer) Workbook(inv models.Invoice) error {
	const op = "Workbook"

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(workbookSheet); err != nil {
		return fmt.Errorf("%s: failed to create sheet: %w", op, err)
	}
	_ = f.DeleteSheet("Sheet1")

	for col, width := range map[string]float64{
		"B": 14, "C": 26, "D": 18, "E": 22, "F": 20, "G": 14, "H": 10,
	} {
		if err := f.SetColWidth(workbookSheet, col, col, width); err != nil {
			return fmt.Errorf("%s: failed to set column width: %w", op, err)
		}
	}

	if err := r.writeHeader(f, inv); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lastItemRow, err := r.writeItems(f, inv)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.writeFooter(f, inv, lastItemRow); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	path := filepath.Join(r.outDir, fmt.Sprintf("%s.xlsx", inv.Ref))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: failed to save workbook: %w", op, err)
	}

	r.log.Info().
		Str("ref", inv.Ref).
		Str("file", path).
		Msg("Invoice workbook rendered")

	return nil
}

func (r *Renderer) writeHeader(f *excelize.File, inv models.Invoice) error {
	cells := map[string]any{
		"B2": inv.Address.Name,
		"B4": "ADDRESS",
		"C4": fmt.Sprintf("%s, %s, %s", inv.Address.Address, inv.Address.PostCode, inv.Address.City),
		"B5": "EMAIL",
		"C5": inv.Address.WorkEpost,
		"B6": "TELEPHONE",
		"C6": inv.Address.Telephone,
		"B8": "DATE OF INVOICE",
		"C8": inv.Date.Format("02/01/2006"),
		"F8": "INVOICE NUMBER",
		"G8": inv.Ref,
	}
	for cell, value := range cells {
		if err := f.SetCellValue(workbookSheet, cell, value); err != nil {
			return fmt.Errorf("failed to write header cell %s: %w", cell, err)
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err == nil {
		if err := f.SetCellStyle(workbookSheet, "B2", "B2", style); err != nil {
			r.log.Warn().Err(err).Msg("Failed to style title cell, continuing anyway")
		}
	}
	return nil
}

func (r *Renderer) writeItems(f *excelize.File, inv models.Invoice) (int, error) {
	for i, header := range itemTableHeaders {
		cell, err := excelize.CoordinatesToCellName(i+2, itemHeaderRow)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(workbookSheet, cell, header); err != nil {
			return 0, fmt.Errorf("failed to write table header %s: %w", cell, err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(2, itemHeaderRow)
		end, _ := excelize.CoordinatesToCellName(len(itemTableHeaders)+1, itemHeaderRow)
		if err := f.SetCellStyle(workbookSheet, start, end, style); err != nil {
			r.log.Warn().Err(err).Msg("Failed to style table header, continuing anyway")
		}
	}

	feeFormat := workbookFeeFormat
	feeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &feeFormat})
	if err != nil {
		feeStyle = 0
	}

	row := itemHeaderRow
	for _, item := range inv.Items() {
		row++
		values := map[string]any{
			fmt.Sprintf("B%d", row): item.ID,
			fmt.Sprintf("C%d", row): item.Customer,
			fmt.Sprintf("D%d", row): item.AppointmentDateTime.Format("02/01/2006"),
			fmt.Sprintf("E%d", row): item.CompletedDateTime.Format("02/01/2006"),
			fmt.Sprintf("F%d", row): "Remote",
			fmt.Sprintf("G%d", row): item.Amount,
			fmt.Sprintf("H%d", row): "N/A",
		}
		for cell, value := range values {
			if err := f.SetCellValue(workbookSheet, cell, value); err != nil {
				return 0, fmt.Errorf("failed to write item cell %s: %w", cell, err)
			}
		}
		if feeStyle != 0 {
			cell := fmt.Sprintf("G%d", row)
			if err := f.SetCellStyle(workbookSheet, cell, cell, feeStyle); err != nil {
				r.log.Warn().Err(err).Str("cell", cell).Msg("Failed to style fee cell, continuing anyway")
			}
		}
	}

	totalRow := row + 1
	if err := f.SetCellValue(workbookSheet, fmt.Sprintf("F%d", totalRow), "TOTAL"); err != nil {
		return 0, err
	}
	formula := fmt.Sprintf("SUM(G%d:G%d)", itemHeaderRow+1, row)
	if err := f.SetCellFormula(workbookSheet, fmt.Sprintf("G%d", totalRow), formula); err != nil {
		return 0, fmt.Errorf("failed to write total formula: %w", err)
	}
	if feeStyle != 0 {
		cell := fmt.Sprintf("G%d", totalRow)
		if err := f.SetCellStyle(workbookSheet, cell, cell, feeStyle); err != nil {
			r.log.Warn().Err(err).Str("cell", cell).Msg("Failed to style total cell, continuing anyway")
		}
	}

	return totalRow, nil
}

func (r *Renderer) writeFooter(f *excelize.File, inv models.Invoice, lastItemRow int) error {
	base := lastItemRow + 3
	cells := map[string]any{
		fmt.Sprintf("B%d", base):   "BANK DETAILS",
		fmt.Sprintf("B%d", base+1): "BANK",
		fmt.Sprintf("C%d", base+1): inv.Bank.Name,
		fmt.Sprintf("B%d", base+2): "ACCOUNT NAME",
		fmt.Sprintf("C%d", base+2): inv.Bank.Customer,
		fmt.Sprintf("B%d", base+3): "SORT CODE",
		fmt.Sprintf("C%d", base+3): inv.Bank.SortCode,
		fmt.Sprintf("B%d", base+4): "ACCOUNT NUMBER",
		fmt.Sprintf("C%d", base+4): inv.Bank.Account,
	}
	for cell, value := range cells {
		if err := f.SetCellValue(workbookSheet, cell, value); err != nil {
			return fmt.Errorf("failed to write footer cell %s: %w", cell, err)
		}
	}
	return nil
}
