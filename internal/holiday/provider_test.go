package holiday

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const holidayFixture = `[
	{"date": "2025-01-01", "name": "New Year's Day", "counties": null},
	{"date": "2025-01-02", "name": "2 January", "counties": ["GB-SCT"]},
	{"date": "2025-04-18", "name": "Good Friday", "counties": null},
	{"date": "2025-08-25", "name": "Summer Bank Holiday", "counties": ["GB-ENG", "GB-WLS"]},
	{"date": "2025-08-04", "name": "Summer Bank Holiday", "counties": ["GB-SCT"]}
]`

func TestPublicHolidaysFiltersByRegion(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, holidayFixture)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "GB", "GB-ENG")
	dates, err := p.PublicHolidays(context.Background(), 2025)
	if err != nil {
		t.Fatalf("PublicHolidays returned error: %v", err)
	}

	if gotPath != "/2025/GB" {
		t.Errorf("request path = %q, want /2025/GB", gotPath)
	}

	want := map[string]bool{"2025-01-01": true, "2025-04-18": true, "2025-08-25": true}
	if len(dates) != len(want) {
		t.Fatalf("want %d holidays, got %d: %v", len(want), len(dates), dates)
	}
	for _, d := range dates {
		if !want[d.Format(DateKey)] {
			t.Errorf("unexpected holiday %v", d)
		}
	}
}

func TestPublicHolidaysErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "GB", "GB-ENG")
	if _, err := p.PublicHolidays(context.Background(), 2025); err == nil {
		t.Fatal("non-200 response must return an error")
	}
}

func TestFetchYearsMergesAndDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2026/GB" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, holidayFixture)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "GB", "GB-ENG")
	set := p.FetchYears(context.Background(), 2025, 2026)

	if len(set) != 3 {
		t.Errorf("want 3 holidays from the surviving year, got %d", len(set))
	}
	if !set.Contains(time.Date(2025, time.April, 18, 0, 0, 0, 0, time.UTC)) {
		t.Error("merged set missing Good Friday")
	}
}

func TestFetchYearsAllFailedIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "GB", "GB-ENG")
	set := p.FetchYears(context.Background(), 2025, 2026)

	if len(set) != 0 {
		t.Errorf("want empty set when every fetch fails, got %d entries", len(set))
	}
}
