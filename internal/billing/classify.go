package billing

import (
	"time"

	"github.com/rs/zerolog"

	"bills/internal/holiday"
	"bills/internal/logger"
	"bills/pkg/models"
)

// MonthRange is an inclusive lookback window in whole calendar months from
// "now" to the appointment date.
type MonthRange struct {
	Min int
	Max int
}

// Classifier resolves billing category, fee, invoice period reference and
// report-completion date for normalized assessment records.
type Classifier struct {
	cfg      *CostConfig
	holidays holiday.Set
	now      time.Time
	log      zerolog.Logger
}

// NewClassifier creates a classifier over one cost configuration and holiday
// set.
func NewClassifier(cfg *CostConfig, holidays holiday.Set) *Classifier {
	return &Classifier{
		cfg:      cfg,
		holidays: holidays,
		now:      time.Now(),
		log:      logger.WithComponent("classifier"),
	}
}

// WithNow fixes the classifier's reference time for lookback filtering.
func (c *Classifier) WithNow(now time.Time) *Classifier {
	c.now = now
	return c
}

// InRange reports whether a record's appointment falls inside the lookback
// window. A nil range includes everything. The comparison counts whole
// calendar months, not elapsed days.
func (c *Classifier) InRange(rec *AssessmentRecord, rng *MonthRange) bool {
	if rng == nil {
		return true
	}
	months := monthsBetween(c.now, rec.AppointmentDateTime)
	return months >= rng.Min && months <= rng.Max
}

func monthsBetween(a, b time.Time) int {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	if months < 0 {
		return -months
	}
	return months
}

// Classify resolves the record's derived billing fields in place and returns
// its invoice line item. The cancelled flag dominates the raw label; an
// unmapped label or missing fee degrades to a zero-fee warning so totals are
// never silently wrong.
func (c *Classifier) Classify(rec *AssessmentRecord) models.InvoiceItem {
	category, mapped := c.cfg.CategoryFor(rec.AssessmentType, rec.Cancelled)
	if !mapped {
		c.log.Warn().
			Str("id", rec.ID).
			Str("label", rec.AssessmentType).
			Msg("Assessment type label not mapped in configuration, defaulting to assessment")
	}

	fee, resolved := c.cfg.FeeFor(rec.AssessmentType, rec.Cancelled)
	if !resolved {
		c.log.Warn().
			Str("id", rec.ID).
			Str("label", rec.AssessmentType).
			Bool("cancelled", rec.Cancelled).
			Msg("No fee configured for record, using zero")
		fee = 0
	}

	rec.Category = category
	rec.Amount = fee
	rec.Month = int(rec.AppointmentDateTime.Month())
	rec.InvoiceRef = FormatReference(rec.AppointmentDateTime)

	return models.InvoiceItem{
		ID:                  rec.ID,
		Customer:            rec.Customer,
		CRN:                 rec.CRN,
		AppointmentDateTime: rec.AppointmentDateTime,
		CompletedDateTime:   holiday.CompletedDate(rec.AppointmentDateTime, c.holidays),
		Category:            category,
		Amount:              fee,
	}
}
