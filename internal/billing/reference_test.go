package billing

import (
	"errors"
	"testing"
	"time"
)

func TestFormatReference(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC), "AD-Mar25"},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "AD-Jan25"},
		{time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), "AD-Dec24"},
		{time.Date(2030, time.September, 9, 0, 0, 0, 0, time.UTC), "AD-Sep30"},
	}

	for _, tt := range tests {
		if got := FormatReference(tt.date); got != tt.want {
			t.Errorf("FormatReference(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		date := time.Date(2025, month, 10, 12, 0, 0, 0, time.UTC)
		ref := FormatReference(date)

		year, gotMonth, err := ParseReference(ref)
		if err != nil {
			t.Fatalf("ParseReference(%q) returned error: %v", ref, err)
		}
		if year != 2025 || gotMonth != month {
			t.Errorf("ParseReference(%q) = (%d, %v), want (2025, %v)", ref, year, gotMonth, month)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"AD-Mar25", "2025-03"},
		{"AD-Jan25", "2025-01"},
		{"AD-Dec24", "2024-12"},
		{"AD-Nov30", "2030-11"},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.ref)
		if err != nil {
			t.Fatalf("ParsePeriod(%q) returned error: %v", tt.ref, err)
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestParseReferenceErrors(t *testing.T) {
	tests := []struct {
		ref     string
		wantErr error
	}{
		{"", ErrInvalidReferenceFormat},
		{"Mar25", ErrInvalidReferenceFormat},
		{"XX-Mar25", ErrInvalidReferenceFormat},
		{"AD-March25", ErrInvalidReferenceFormat},
		{"AD-Mar2025", ErrInvalidReferenceFormat},
		{"AD-Mar", ErrInvalidReferenceFormat},
		{"ad-Mar25", ErrInvalidReferenceFormat},
		{"AD-Xyz25", ErrUnknownMonthAbbreviation},
		{"AD-mar25", ErrUnknownMonthAbbreviation},
	}

	for _, tt := range tests {
		_, _, err := ParseReference(tt.ref)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseReference(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
		}
	}
}

func TestYearBoundary(t *testing.T) {
	dec := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	if FormatReference(dec) == FormatReference(jan) {
		t.Fatal("adjacent months across a year boundary must produce distinct references")
	}

	decPeriod, _ := ParsePeriod(FormatReference(dec))
	janPeriod, _ := ParsePeriod(FormatReference(jan))
	if decPeriod >= janPeriod {
		t.Errorf("period %q should sort before %q", decPeriod, janPeriod)
	}
}
