package ledger

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"bills/internal/billing"
	"bills/pkg/models"
)

// ApplyUpdate writes the payload's value into the addressed cell of both the
// ALL sheet and the payload's reference sheet. The row is matched by the CRN
// key column against the payload's ID. A missing workbook, sheet, row or
// column is a reported no-op, not an error: the return value is true only if
// at least one cell was written. Applying the same payload twice leaves the
// same persisted state as applying it once.
func (l *Ledger) ApplyUpdate(p models.UpdatePayload) (bool, error) {
	const op = "ApplyUpdate"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); err != nil {
		l.log.Warn().Str("file", l.path).Msg("Ledger workbook not found, update skipped")
		return false, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return false, fmt.Errorf("%s: failed to open ledger workbook: %w", op, err)
	}
	defer f.Close()

	applied := l.updateSheetCell(f, SheetAll, p)
	if l.updateSheetCell(f, p.Ref, p) {
		applied = true
	}

	if !applied {
		return false, nil
	}

	if err := f.SaveAs(l.path); err != nil {
		return false, fmt.Errorf("%s: failed to save ledger workbook: %w", op, err)
	}

	l.log.Info().
		Str("id", p.ID).
		Str("ref", p.Ref).
		Str("key", p.Key).
		Str("value", p.Value).
		Msg("Ledger cell updated")

	return true, nil
}

// ToggleExclusion flips the per-row exclusion marker for the row keyed by
// crn. Toggling never deletes data; it only marks the row out of the
// rebuild's inclusion set.
func (l *Ledger) ToggleExclusion(crn, ref string, excluded bool) (bool, error) {
	value := MarkIncluded
	if excluded {
		value = MarkExcluded
	}
	return l.ApplyUpdate(models.UpdatePayload{ID: crn, Ref: ref, Key: "Excluded", Value: value})
}

func (l *Ledger) updateSheetCell(f *excelize.File, sheet string, p models.UpdatePayload) bool {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		l.log.Warn().Str("sheet", sheet).Msg("Sheet not found, update skipped")
		return false
	}

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		l.log.Warn().Str("sheet", sheet).Msg("Sheet unreadable or empty, update skipped")
		return false
	}

	column := 0
	for i, header := range rows[0] {
		if header == p.Key {
			column = i + 1
			break
		}
	}
	if column == 0 {
		l.log.Warn().Str("sheet", sheet).Str("key", p.Key).Msg("Column not found, update skipped")
		return false
	}

	rowNum := 0
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if row[0] == p.ID {
			rowNum = i + 1
		}
	}
	if rowNum == 0 {
		l.log.Warn().Str("sheet", sheet).Str("id", p.ID).Msg("Row not found, update skipped")
		return false
	}

	cell, err := excelize.CoordinatesToCellName(column, rowNum)
	if err != nil {
		return false
	}
	if err := f.SetCellValue(sheet, cell, p.Value); err != nil {
		l.log.Warn().Err(err).Str("sheet", sheet).Str("cell", cell).Msg("Cell write failed, update skipped")
		return false
	}
	return true
}

// Rebuild re-reads the reference's sheet end to end and reconstructs its
// invoice aggregate from every row not marked excluded, parsing the
// persisted display dates back into timestamps. The persisted Type column is
// preserved, so items regroup into their original categories. A missing
// workbook or sheet is a reported no-op returning nil.
func (l *Ledger) Rebuild(ref string, cfg *billing.CostConfig) (*models.Invoice, error) {
	const op = "Rebuild"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); err != nil {
		l.log.Warn().Str("file", l.path).Msg("Ledger workbook not found, rebuild skipped")
		return nil, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open ledger workbook: %w", op, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(ref)
	if err != nil || idx < 0 {
		l.log.Warn().Str("sheet", ref).Msg("Sheet not found, rebuild skipped")
		return nil, nil
	}

	// Raw cell values: the fee column carries a currency number format and
	// must parse back as a plain number.
	rows, err := f.GetRows(ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", op, ref, err)
	}

	var items []models.InvoiceItem
	period := ""
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cellAt(row, colExcluded) != MarkIncluded {
			continue
		}

		item, err := parsePersistedRow(row)
		if err != nil {
			l.log.Warn().
				Err(err).
				Int("row", i+1).
				Str("sheet", ref).
				Msg("Skipping unparseable ledger row")
			continue
		}
		items = append(items, item)
		period = cellAt(row, colPeriod)
	}

	if period == "" {
		if p, err := billing.ParsePeriod(ref); err == nil {
			period = p
		}
	}

	assessments, reviews, cancelled := billing.PartitionItems(items)
	var total float64
	for _, item := range items {
		total += item.Amount
	}

	inv := &models.Invoice{
		Date:        time.Now(),
		Period:      period,
		Ref:         ref,
		Assessments: assessments,
		Reviews:     reviews,
		Cancelled:   cancelled,
		Total:       total,
		Address:     cfg.Address,
		Bank:        cfg.Bank,
	}

	l.log.Info().
		Str("ref", ref).
		Int("items", len(items)).
		Float64("total", total).
		Msg("Invoice rebuilt from ledger")

	return inv, nil
}

func parsePersistedRow(row []string) (models.InvoiceItem, error) {
	appointment, err := time.Parse(appointmentLayout, cellAt(row, colAssessment))
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("invalid appointment date: %w", err)
	}
	completed, err := time.Parse(dateLayout, cellAt(row, colSubmitted))
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("invalid submission date: %w", err)
	}
	fee, err := strconv.ParseFloat(cellAt(row, colFee), 64)
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("invalid fee: %w", err)
	}

	category, _ := models.ParseCategory(cellAt(row, colType))

	return models.InvoiceItem{
		ID:                  cellAt(row, colID),
		Customer:            cellAt(row, colCustomer),
		CRN:                 cellAt(row, colCRN),
		AppointmentDateTime: appointment,
		CompletedDateTime:   completed,
		Category:            category,
		Amount:              fee,
	}, nil
}

// cellAt safely reads a 1-based column from a row that may be short:
// trailing empty cells are not returned by the sheet reader.
func cellAt(row []string, col int) string {
	if col-1 >= len(row) {
		return ""
	}
	return row[col-1]
}
