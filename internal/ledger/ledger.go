// Package ledger persists every billed line item into a running xlsx
// workbook: one sheet per invoice reference plus an ALL sheet across periods.
package ledger

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"bills/internal/logger"
	"bills/pkg/models"
)

// SheetAll holds every line item ever produced, across all periods.
const SheetAll = "ALL"

// Ledger sheet columns, 1-based. The CRN column is the row key.
const (
	colCRN = iota + 1
	colID
	colCustomer
	colAssessment
	colSubmitted
	colFee
	colPeriod
	colType
	colInvoiced
	colInvoice
	colExcluded
)

var sheetHeaders = []string{
	"CRN", "id", "Customer", "Assessment", "Submitted", "Fee",
	"Period", "Type", "Invoiced", "Invoice", "Excluded",
}

// Display layouts for persisted dates. Rebuild parses these back out.
const (
	appointmentLayout = "02-01-2006 15:04"
	dateLayout        = "02-01-2006"
)

// Exclusion marker values.
const (
	MarkIncluded = "no"
	MarkExcluded = "yes"
)

const feeNumberFormat = `"£"#,##0.00;[Red]-"£"#,##0.00`

// Ledger is the persisted invoice ledger workbook. All read-modify-write
// cycles are serialized behind a single mutex so concurrent update calls
// cannot clobber each other's writes.
type Ledger struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// New creates a ledger backed by the workbook at path. The file is created
// on first write.
func New(path string) *Ledger {
	return &Ledger{
		path: path,
		log:  logger.WithComponent("ledger"),
	}
}

// Path returns the backing workbook path.
func (l *Ledger) Path() string {
	return l.path
}

// Record upserts every line item of the given invoices into the ALL sheet
// and each invoice's own reference sheet, matching existing rows by CRN.
// Newly written rows carry an Excluded marker of "no".
func (l *Ledger) Record(invoices []models.Invoice) error {
	const op = "Record"

	l.mu.Lock()
	defer l.mu.Unlock()

	f, created, err := l.openWorkbook()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	for i := range invoices {
		inv := &invoices[i]
		if err := l.upsertInvoice(f, SheetAll, inv); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := l.upsertInvoice(f, inv.Ref, inv); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if created {
		dropDefaultSheet(f)
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("%s: failed to save ledger workbook: %w", op, err)
	}

	l.log.Info().
		Str("file", l.path).
		Int("invoices", len(invoices)).
		Msg("Ledger workbook updated")

	return nil
}

func (l *Ledger) openWorkbook() (*excelize.File, bool, error) {
	if _, err := os.Stat(l.path); err == nil {
		f, err := excelize.OpenFile(l.path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open ledger workbook %s: %w", l.path, err)
		}
		return f, false, nil
	}
	l.log.Info().Str("file", l.path).Msg("Creating new ledger workbook")
	return excelize.NewFile(), true, nil
}

// ensureSheet creates the named sheet with headers if it does not exist yet.
func (l *Ledger) ensureSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %s: %w", name, err)
	}
	if idx >= 0 {
		return nil
	}

	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for i, header := range sheetHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("failed to write header to sheet %s: %w", name, err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(sheetHeaders), 1)
		if err := f.SetCellStyle(name, start, end, style); err != nil {
			l.log.Warn().Err(err).Str("sheet", name).Msg("Failed to format header row, continuing anyway")
		}
	}
	return nil
}

func (l *Ledger) upsertInvoice(f *excelize.File, sheet string, inv *models.Invoice) error {
	if err := l.ensureSheet(f, sheet); err != nil {
		return err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	// Row lookup by CRN key so re-runs update in place instead of
	// duplicating items.
	rowByCRN := make(map[string]int, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		rowByCRN[row[0]] = i + 1
	}

	nextRow := len(rows) + 1
	for _, item := range inv.Items() {
		rowNum, exists := rowByCRN[item.CRN]
		if !exists {
			rowNum = nextRow
			nextRow++
			rowByCRN[item.CRN] = rowNum
		}
		if err := l.writeItemRow(f, sheet, rowNum, item, inv); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) writeItemRow(f *excelize.File, sheet string, rowNum int, item models.InvoiceItem, inv *models.Invoice) error {
	values := map[int]any{
		colCRN:        item.CRN,
		colID:         item.ID,
		colCustomer:   item.Customer,
		colAssessment: item.AppointmentDateTime.Format(appointmentLayout),
		colSubmitted:  item.CompletedDateTime.Format(dateLayout),
		colFee:        item.Amount,
		colPeriod:     inv.Period,
		colType:       item.Category.String(),
		colInvoiced:   inv.Date.Format(dateLayout),
		colInvoice:    inv.Ref,
		colExcluded:   MarkIncluded,
	}

	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
		}
	}

	if style, err := f.NewStyle(&excelize.Style{CustomNumFmt: strptr(feeNumberFormat)}); err == nil {
		cell, _ := excelize.CoordinatesToCellName(colFee, rowNum)
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			l.log.Warn().Err(err).Str("sheet", sheet).Msg("Failed to style fee cell, continuing anyway")
		}
	}
	return nil
}

// dropDefaultSheet removes the workbook's initial empty sheet once real
// sheets exist.
func dropDefaultSheet(f *excelize.File) {
	const defaultSheet = "Sheet1"
	if idx, err := f.GetSheetIndex(defaultSheet); err == nil && idx >= 0 && len(f.GetSheetList()) > 1 {
		_ = f.DeleteSheet(defaultSheet)
	}
}

func strptr(s string) *string {
	return &s
}
