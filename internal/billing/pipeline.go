// Package billing implements the invoice aggregation engine: it normalizes
// raw assessment rows, classifies each into a billing category, resolves fees
// and report-completion dates, and groups the resulting line items into
// period invoices.
package billing

import (
	"fmt"
	"time"

	"bills/internal/holiday"
	"bills/internal/logger"
	"bills/pkg/models"
)

// Renderer produces the per-invoice outputs. One invoice's rendering failure
// must not affect the others.
type Renderer interface {
	Document(inv models.Invoice) error
	Workbook(inv models.Invoice) error
}

// LedgerWriter records produced invoices into the persisted ledger.
type LedgerWriter interface {
	Record(invoices []models.Invoice) error
}

// RunOptions configures one invoicing run.
type RunOptions struct {
	DataPath string
	Config   *CostConfig
	Holidays holiday.Set
	Range    *MonthRange // nil includes every record
	Renderer Renderer
	Ledger   LedgerWriter
	Now      time.Time // zero value means time.Now()
}

// Run executes the full pipeline for one source ledger file: read, classify,
// aggregate, render and record. It returns the produced invoices. Input
// errors abort before any invoice output; render failures are per-invoice
// side effects and never roll back already-produced invoices.
func Run(opts RunOptions) ([]models.Invoice, error) {
	const op = "Run"
	log := logger.WithComponent("billing-run")

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	records, err := NewReader().ReadRecords(opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	classifier := NewClassifier(opts.Config, opts.Holidays).WithNow(now)
	grouping := NewGrouping()

	var filtered int
	for _, rec := range records {
		if !classifier.InRange(rec, opts.Range) {
			filtered++
			continue
		}
		item := classifier.Classify(rec)
		grouping.Add(rec.InvoiceRef, item)
	}

	log.Info().
		Int("records", len(records)).
		Int("filtered", filtered).
		Int("periods", grouping.Len()).
		Msg("Records classified")

	invoices := NewAggregator(opts.Config).WithNow(now).BuildInvoices(grouping)

	for _, inv := range invoices {
		if opts.Renderer != nil {
			if err := opts.Renderer.Document(inv); err != nil {
				log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice document render failed")
			}
		}
	}

	if opts.Ledger != nil && len(invoices) > 0 {
		if err := opts.Ledger.Record(invoices); err != nil {
			log.Error().Err(err).Msg("Ledger update failed")
		}
	}

	if opts.Renderer != nil {
		for _, inv := range invoices {
			if err := opts.Renderer.Workbook(inv); err != nil {
				log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice workbook render failed")
			}
		}
	}

	return invoices, nil
}
