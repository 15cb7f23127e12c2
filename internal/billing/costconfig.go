package billing

import (
	"encoding/json"
	"fmt"
	"os"

	"bills/pkg/models"
)

// costKeyCancellation is the cost-map key applied whenever a record is
// cancelled, regardless of its raw assessment-type label.
const costKeyCancellation = "cancellation"

// CostConfig is the billing party's identity, bank details and fee schedule,
// loaded once per invoicing run and immutable for its duration.
type CostConfig struct {
	Address models.Address `json:"address"`
	Bank    models.Bank    `json:"bank"`

	// Costs maps category keys (cancellation, assessment, review) to fees.
	Costs map[string]float64 `json:"costs"`

	// AssessmentTypes maps raw assessment-type labels to "assessment" or
	// "review". The key casing is part of the configuration wire format.
	AssessmentTypes map[string]string `json:"Assessment Type"`

	// CancelledDefault is the default-cancelled flag.
	CancelledDefault bool `json:"Cancelled"`
}

// LoadCostConfig reads and parses the JSON cost configuration document.
func LoadCostConfig(path string) (*CostConfig, error) {
	const op = "LoadCostConfig"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read cost configuration: %w", op, err)
	}

	var cfg CostConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse cost configuration %s: %w", op, path, err)
	}
	return &cfg, nil
}

// Save writes the configuration back as indented JSON, preserving the wire
// format expected by the GUI editor.
func (c *CostConfig) Save(path string) error {
	const op = "Save"

	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to marshal cost configuration: %w", op, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("%s: failed to write cost configuration: %w", op, err)
	}
	return nil
}

// CostKey resolves the cost-map key for a record: "cancellation" when the
// cancelled flag is set, otherwise the configured mapping of the raw label.
// The cancelled flag always takes precedence over the label.
func (c *CostConfig) CostKey(label string, cancelled bool) string {
	if cancelled {
		return costKeyCancellation
	}
	return c.AssessmentTypes[label]
}

// CategoryFor resolves the billing category for a raw assessment-type label.
// Unmapped labels resolve to the assessment category with ok false so callers
// can surface the gap instead of silently mispricing.
func (c *CostConfig) CategoryFor(label string, cancelled bool) (models.Category, bool) {
	switch c.CostKey(label, cancelled) {
	case costKeyCancellation:
		return models.CategoryCancellation, true
	case "assessment":
		return models.CategoryAssessment, true
	case "review":
		return models.CategoryReview, true
	}
	return models.CategoryAssessment, false
}

// FeeFor resolves the fee for a raw assessment-type label. A key absent from
// the cost map yields (0, false): a tolerated degenerate case the caller is
// expected to warn about, not an error.
func (c *CostConfig) FeeFor(label string, cancelled bool) (float64, bool) {
	fee, ok := c.Costs[c.CostKey(label, cancelled)]
	return fee, ok
}
