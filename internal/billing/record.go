package billing

import (
	"strconv"
	"time"

	"bills/pkg/models"
)

// ExpectedHeaders is the fixed column set of the tab-separated source ledger,
// in order.
var ExpectedHeaders = []string{
	"IDs", "Customer", "CRN", "Appointment Date Time", "Assessor", "Method",
	"Assessment Type", "Assessment Centre", "Cancelled", "Funder Invoice",
	"Paid", "Supplier Invoice", "Organisation", "Status", "Delay",
}

// AssessmentRecord is one normalized appointment row. The derived fields are
// only valid after Classifier.Classify has run.
type AssessmentRecord struct {
	ID                  string
	Customer            string
	CRN                 string
	AppointmentDateTime time.Time
	Assessor            string
	Method              string
	AssessmentType      string // raw label, resolved via the cost configuration
	AssessmentCentre    string
	Cancelled           bool
	FunderInvoice       string
	Paid                bool
	SupplierInvoice     string
	Organisation        string
	Status              string
	Delay               int
	DelayValid          bool

	// Derived by classification.
	Category   models.Category
	Amount     float64
	Month      int
	InvoiceRef string
}

// NewAssessmentRecord normalizes one raw key-value row. Malformed fields are
// reported as FieldErrors alongside the partially populated record; callers
// decide whether to skip or fail. The Cancelled and Paid flags are exact
// string comparisons against "true", and a non-numeric Delay leaves the
// record with DelayValid false rather than failing.
func NewAssessmentRecord(raw map[string]string, rowNum int) (*AssessmentRecord, []*FieldError) {
	rec := &AssessmentRecord{
		ID:               raw["IDs"],
		Customer:         raw["Customer"],
		CRN:              raw["CRN"],
		Assessor:         raw["Assessor"],
		Method:           raw["Method"],
		AssessmentType:   raw["Assessment Type"],
		AssessmentCentre: raw["Assessment Centre"],
		Cancelled:        raw["Cancelled"] == "true",
		FunderInvoice:    raw["Funder Invoice"],
		Paid:             raw["Paid"] == "true",
		SupplierInvoice:  raw["Supplier Invoice"],
		Organisation:     raw["Organisation"],
		Status:           raw["Status"],
	}

	var errs []*FieldError

	appt, err := time.Parse(time.RFC3339, raw["Appointment Date Time"])
	if err != nil {
		errs = append(errs, &FieldError{
			Row:     rowNum,
			Field:   "Appointment Date Time",
			Value:   raw["Appointment Date Time"],
			Message: "not a valid ISO-8601 timestamp",
		})
	}
	rec.AppointmentDateTime = appt

	delay, err := strconv.Atoi(raw["Delay"])
	if err != nil {
		rec.Delay = -1
		rec.DelayValid = false
	} else {
		rec.Delay = delay
		rec.DelayValid = true
	}

	return rec, errs
}
