package billing

import (
	"os"
	"path/filepath"
	"testing"

	"bills/pkg/models"
)

const costConfigFixture = `{
  "address": {
    "name": "Assessor Ltd",
    "address": "1 High Street",
    "city": "London",
    "postCode": "N1 1AA",
    "epost": "billing@example.com",
    "workEpost": "work@example.com",
    "telephone": "01234 567890"
  },
  "bank": {
    "name": "Test Bank",
    "customer": "Assessor Ltd",
    "sortCode": "12-34-56",
    "account": "12345678"
  },
  "costs": {
    "cancellation": 7.5,
    "assessment": 110,
    "review": 90
  },
  "Assessment Type": {
    "DSA Assessment": "assessment",
    "Review": "review"
  },
  "Cancelled": false
}`

func TestLoadCostConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(costConfigFixture), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadCostConfig(path)
	if err != nil {
		t.Fatalf("LoadCostConfig returned error: %v", err)
	}

	if cfg.Address.Name != "Assessor Ltd" || cfg.Address.PostCode != "N1 1AA" {
		t.Errorf("address not parsed: %+v", cfg.Address)
	}
	if cfg.Bank.SortCode != "12-34-56" {
		t.Errorf("bank not parsed: %+v", cfg.Bank)
	}
	if cfg.Costs["cancellation"] != 7.5 {
		t.Errorf("costs not parsed: %+v", cfg.Costs)
	}
	if cfg.AssessmentTypes["Review"] != "review" {
		t.Errorf("assessment type map not parsed: %+v", cfg.AssessmentTypes)
	}
}

func TestCostConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := testCostConfig()
	cfg.Address = models.Address{Name: "Assessor Ltd"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := LoadCostConfig(path)
	if err != nil {
		t.Fatalf("LoadCostConfig returned error: %v", err)
	}
	if loaded.Address.Name != "Assessor Ltd" {
		t.Errorf("address lost in round trip: %+v", loaded.Address)
	}
	if loaded.Costs["review"] != 90 {
		t.Errorf("costs lost in round trip: %+v", loaded.Costs)
	}
}

func TestCostKeyResolution(t *testing.T) {
	cfg := testCostConfig()

	tests := []struct {
		label     string
		cancelled bool
		want      string
	}{
		{"DSA Assessment", false, "assessment"},
		{"Review", false, "review"},
		{"DSA Assessment", true, "cancellation"},
		{"Review", true, "cancellation"},
		{"Unknown Label", true, "cancellation"},
		{"Unknown Label", false, ""},
	}
	for _, tt := range tests {
		if got := cfg.CostKey(tt.label, tt.cancelled); got != tt.want {
			t.Errorf("CostKey(%q, %v) = %q, want %q", tt.label, tt.cancelled, got, tt.want)
		}
	}
}

func TestFeeForMissingKey(t *testing.T) {
	cfg := testCostConfig()

	fee, ok := cfg.FeeFor("Unknown Label", false)
	if ok || fee != 0 {
		t.Errorf("FeeFor(unknown) = (%v, %v), want (0, false)", fee, ok)
	}

	fee, ok = cfg.FeeFor("DSA Assessment", false)
	if !ok || fee != 110 {
		t.Errorf("FeeFor(mapped) = (%v, %v), want (110, true)", fee, ok)
	}
}

func TestCategoryFor(t *testing.T) {
	cfg := testCostConfig()

	tests := []struct {
		label     string
		cancelled bool
		want      models.Category
		wantOK    bool
	}{
		{"DSA Assessment", false, models.CategoryAssessment, true},
		{"Review", false, models.CategoryReview, true},
		{"Review", true, models.CategoryCancellation, true},
		{"Unknown Label", false, models.CategoryAssessment, false},
	}
	for _, tt := range tests {
		got, ok := cfg.CategoryFor(tt.label, tt.cancelled)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CategoryFor(%q, %v) = (%v, %v), want (%v, %v)",
				tt.label, tt.cancelled, got, ok, tt.want, tt.wantOK)
		}
	}
}
