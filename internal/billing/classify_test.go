package billing

import (
	"testing"
	"time"

	"bills/internal/holiday"
	"bills/pkg/models"
)

func testCostConfig() *CostConfig {
	return &CostConfig{
		Costs: map[string]float64{
			"assessment":   110,
			"review":       90,
			"cancellation": 7.5,
		},
		AssessmentTypes: map[string]string{
			"DSA Assessment": "assessment",
			"Review":         "review",
		},
	}
}

func testRecord(overrides map[string]string) *AssessmentRecord {
	rec, errs := NewAssessmentRecord(rawRow(overrides), 2)
	if len(errs) != 0 {
		panic("test fixture row must be valid")
	}
	return rec
}

func TestClassifyCategoriesAndFees(t *testing.T) {
	tests := []struct {
		name         string
		overrides    map[string]string
		wantCategory models.Category
		wantAmount   float64
	}{
		{
			name:         "mapped assessment",
			overrides:    nil,
			wantCategory: models.CategoryAssessment,
			wantAmount:   110,
		},
		{
			name:         "mapped review",
			overrides:    map[string]string{"Assessment Type": "Review"},
			wantCategory: models.CategoryReview,
			wantAmount:   90,
		},
		{
			name:         "cancelled dominates label",
			overrides:    map[string]string{"Cancelled": "true"},
			wantCategory: models.CategoryCancellation,
			wantAmount:   7.5,
		},
		{
			name:         "cancelled review still cancellation",
			overrides:    map[string]string{"Assessment Type": "Review", "Cancelled": "true"},
			wantCategory: models.CategoryCancellation,
			wantAmount:   7.5,
		},
		{
			name:         "unmapped label defaults to zero-fee assessment",
			overrides:    map[string]string{"Assessment Type": "Mystery Session"},
			wantCategory: models.CategoryAssessment,
			wantAmount:   0,
		},
	}

	classifier := NewClassifier(testCostConfig(), holiday.NewSet(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord(tt.overrides)
			item := classifier.Classify(rec)

			if item.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", item.Category, tt.wantCategory)
			}
			if item.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", item.Amount, tt.wantAmount)
			}
			if rec.Category != tt.wantCategory || rec.Amount != tt.wantAmount {
				t.Error("derived record fields must match the returned item")
			}
		})
	}
}

func TestClassifyDerivesReferenceAndCompletion(t *testing.T) {
	classifier := NewClassifier(testCostConfig(), holiday.NewSet(nil))
	rec := testRecord(nil) // Monday 2025-03-10

	item := classifier.Classify(rec)

	if rec.InvoiceRef != "AD-Mar25" {
		t.Errorf("InvoiceRef = %q, want AD-Mar25", rec.InvoiceRef)
	}
	if rec.Month != int(time.March) {
		t.Errorf("Month = %d, want %d", rec.Month, int(time.March))
	}
	wantCompleted := time.Date(2025, time.March, 13, 9, 30, 0, 0, time.UTC)
	if !item.CompletedDateTime.Equal(wantCompleted) {
		t.Errorf("CompletedDateTime = %v, want %v", item.CompletedDateTime, wantCompleted)
	}
}

func TestInRange(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	classifier := NewClassifier(testCostConfig(), holiday.NewSet(nil)).WithNow(now)

	tests := []struct {
		name        string
		appointment string
		rng         *MonthRange
		want        bool
	}{
		{"nil range includes everything", "2020-01-01T09:00:00.000+00:00", nil, true},
		{"same month", "2025-06-01T09:00:00.000+00:00", &MonthRange{Min: 0, Max: 2}, true},
		{"two months back", "2025-04-20T09:00:00.000+00:00", &MonthRange{Min: 0, Max: 2}, true},
		{"three months back excluded", "2025-03-20T09:00:00.000+00:00", &MonthRange{Min: 0, Max: 2}, false},
		{"min bound excludes current month", "2025-06-01T09:00:00.000+00:00", &MonthRange{Min: 1, Max: 3}, false},
		{"future month counts by distance", "2025-07-10T09:00:00.000+00:00", &MonthRange{Min: 0, Max: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord(map[string]string{"Appointment Date Time": tt.appointment})
			if got := classifier.InRange(rec, tt.rng); got != tt.want {
				t.Errorf("InRange(%s, %+v) = %v, want %v", tt.appointment, tt.rng, got, tt.want)
			}
		})
	}
}
