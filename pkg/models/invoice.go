package models

import "time"

// Category is the billing category an assessment resolves to. It determines
// which entry of the cost schedule applies.
type Category int

const (
	CategoryAssessment Category = iota
	CategoryReview
	CategoryCancellation
)

// String returns the persisted label for the category, as written to the
// ledger's Type column.
func (c Category) String() string {
	switch c {
	case CategoryAssessment:
		return "ASSESSMENT"
	case CategoryReview:
		return "REVIEW"
	case CategoryCancellation:
		return "CANCELLATION"
	}
	return "UNKNOWN"
}

// ParseCategory maps a persisted Type label back to its Category. The second
// return value is false for unrecognised labels.
func ParseCategory(label string) (Category, bool) {
	switch label {
	case "ASSESSMENT":
		return CategoryAssessment, true
	case "REVIEW":
		return CategoryReview, true
	case "CANCELLATION":
		return CategoryCancellation, true
	}
	return CategoryAssessment, false
}

// Address is the billing party's remittance address from the cost
// configuration document.
type Address struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	PostCode  string `json:"postCode"`
	Epost     string `json:"epost"`
	WorkEpost string `json:"workEpost"`
	Telephone string `json:"telephone"`
}

// Bank holds the remittance bank details printed on every invoice.
type Bank struct {
	Name     string `json:"name"`
	Customer string `json:"customer"`
	SortCode string `json:"sortCode"`
	Account  string `json:"account"`
}

// InvoiceItem is one billable line derived from a classified assessment
// record. Immutable once created.
type InvoiceItem struct {
	ID                  string
	Customer            string
	CRN                 string
	AppointmentDateTime time.Time
	CompletedDateTime   time.Time
	Category            Category
	Amount              float64
}

// InvoiceItemGroup is a named bucket of same-category items with a cached
// count and summed amount.
type InvoiceItemGroup struct {
	Title  string
	Count  int
	Amount float64
	Items  []InvoiceItem
}

// NewInvoiceItemGroup builds a group from its items, deriving count and
// amount so the cached values cannot drift from the item list.
func NewInvoiceItemGroup(title string, items []InvoiceItem) *InvoiceItemGroup {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return &InvoiceItemGroup{
		Title:  title,
		Count:  len(items),
		Amount: total,
		Items:  items,
	}
}

// Invoice is one period's billing document. A group pointer is nil when the
// period has no items of that category.
type Invoice struct {
	Number      int
	Date        time.Time
	Period      string // normalized YYYY-MM, derived from Ref
	Ref         string
	Assessments *InvoiceItemGroup
	Reviews     *InvoiceItemGroup
	Cancelled   *InvoiceItemGroup
	Total       float64
	Address     Address
	Bank        Bank
}

// Groups returns the present item groups in document order.
func (inv *Invoice) Groups() []*InvoiceItemGroup {
	var groups []*InvoiceItemGroup
	for _, g := range []*InvoiceItemGroup{inv.Assessments, inv.Reviews, inv.Cancelled} {
		if g != nil {
			groups = append(groups, g)
		}
	}
	return groups
}

// Items returns every line item across the present groups.
func (inv *Invoice) Items() []InvoiceItem {
	var items []InvoiceItem
	for _, g := range inv.Groups() {
		items = append(items, g.Items...)
	}
	return items
}
