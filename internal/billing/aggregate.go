package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"bills/internal/logger"
	"bills/pkg/models"
)

// Group titles as they appear on rendered invoices.
const (
	TitleAssessments   = "Assessments"
	TitleReviews       = "Reviews"
	TitleCancellations = "Cancellations"
)

// Grouping accumulates classified invoice items keyed by period reference.
// It replaces the shared mutable map of earlier revisions: one Grouping per
// run, passed explicitly through the pipeline.
type Grouping struct {
	items map[string][]models.InvoiceItem
}

// NewGrouping creates an empty accumulator.
func NewGrouping() *Grouping {
	return &Grouping{items: make(map[string][]models.InvoiceItem)}
}

// Add appends an item under its period reference.
func (g *Grouping) Add(ref string, item models.InvoiceItem) {
	g.items[ref] = append(g.items[ref], item)
}

// Len returns the number of distinct period references seen.
func (g *Grouping) Len() int {
	return len(g.items)
}

// Refs returns the period references sorted ascending by period, so invoice
// numbering is reproducible across runs instead of following map iteration
// order. References that fail to decode sort last, by raw value.
func (g *Grouping) Refs() []string {
	refs := make([]string, 0, len(g.items))
	for ref := range g.items {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		pi, erri := ParsePeriod(refs[i])
		pj, errj := ParsePeriod(refs[j])
		if erri != nil || errj != nil {
			if (erri == nil) != (errj == nil) {
				return erri == nil
			}
			return refs[i] < refs[j]
		}
		return pi < pj
	})
	return refs
}

// Items returns the accumulated items for one reference.
func (g *Grouping) Items(ref string) []models.InvoiceItem {
	return g.items[ref]
}

// PartitionItems splits items into the three category groups. Empty
// categories yield nil rather than a zero-valued group.
func PartitionItems(items []models.InvoiceItem) (assessments, reviews, cancelled *models.InvoiceItemGroup) {
	byCategory := make(map[models.Category][]models.InvoiceItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	if list := byCategory[models.CategoryAssessment]; len(list) > 0 {
		assessments = models.NewInvoiceItemGroup(TitleAssessments, list)
	}
	if list := byCategory[models.CategoryReview]; len(list) > 0 {
		reviews = models.NewInvoiceItemGroup(TitleReviews, list)
	}
	if list := byCategory[models.CategoryCancellation]; len(list) > 0 {
		cancelled = models.NewInvoiceItemGroup(TitleCancellations, list)
	}
	return assessments, reviews, cancelled
}

// Aggregator turns a run's grouped items into invoice aggregates.
type Aggregator struct {
	cfg *CostConfig
	now time.Time
	log zerolog.Logger
}

// NewAggregator creates an aggregator for one cost configuration.
func NewAggregator(cfg *CostConfig) *Aggregator {
	return &Aggregator{
		cfg: cfg,
		now: time.Now(),
		log: logger.WithComponent("aggregator"),
	}
}

// WithNow fixes the invoice creation date, mainly for tests.
func (a *Aggregator) WithNow(now time.Time) *Aggregator {
	a.now = now
	return a
}

// BuildInvoices produces one invoice per period reference, numbered 1-based
// in period order. A reference that fails to decode loses only its own
// invoice; the rest of the batch proceeds.
func (a *Aggregator) BuildInvoices(grouping *Grouping) []models.Invoice {
	var invoices []models.Invoice

	for _, ref := range grouping.Refs() {
		inv, err := a.buildInvoice(ref, grouping.Items(ref))
		if err != nil {
			a.log.Error().
				Err(err).
				Str("ref", ref).
				Msg("Skipping invoice for undecodable reference")
			continue
		}
		inv.Number = len(invoices) + 1
		invoices = append(invoices, inv)

		a.log.Info().
			Str("ref", inv.Ref).
			Str("period", inv.Period).
			Int("number", inv.Number).
			Int("items", len(inv.Items())).
			Float64("total", inv.Total).
			Msg("Invoice built")
	}

	return invoices
}

func (a *Aggregator) buildInvoice(ref string, items []models.InvoiceItem) (models.Invoice, error) {
	const op = "buildInvoice"

	period, err := ParsePeriod(ref)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("%s: %w", op, err)
	}

	assessments, reviews, cancelled := PartitionItems(items)

	var total float64
	for _, item := range items {
		total += item.Amount
	}

	return models.Invoice{
		Date:        a.now,
		Period:      period,
		Ref:         ref,
		Assessments: assessments,
		Reviews:     reviews,
		Cancelled:   cancelled,
		Total:       total,
		Address:     a.cfg.Address,
		Bank:        a.cfg.Bank,
	}, nil
}
