package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bills/internal/logger"
)

// Provider fetches public holidays from the Nager.Date REST API.
type Provider struct {
	baseURL string
	country string
	region  string
	client  *http.Client
	log     zerolog.Logger
}

// NewProvider creates a holiday provider for one country. Region narrows the
// result to nationwide holidays plus those scoped to the given subdivision
// (e.g. "GB-ENG").
func NewProvider(baseURL, country, region string) *Provider {
	return &Provider{
		baseURL: baseURL,
		country: country,
		region:  region,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     logger.WithComponent("holiday"),
	}
}

type publicHoliday struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	Counties []string `json:"counties"`
}

// PublicHolidays returns the holiday dates for one year, filtered to
// nationwide entries and entries scoped to the provider's region.
func (p *Provider) PublicHolidays(ctx context.Context, year int) ([]time.Time, error) {
	const op = "PublicHolidays"

	url := fmt.Sprintf("%s/%d/%s", p.baseURL, year, p.country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d from %s", op, resp.StatusCode, url)
	}

	var holidays []publicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	var dates []time.Time
	for _, h := range holidays {
		if !p.appliesToRegion(h.Counties) {
			continue
		}
		t, err := time.Parse(DateKey, h.Date)
		if err != nil {
			p.log.Warn().
				Str("date", h.Date).
				Str("holiday", h.Name).
				Msg("Skipping holiday with unparseable date")
			continue
		}
		dates = append(dates, t)
	}

	p.log.Debug().
		Int("year", year).
		Int("holidays", len(dates)).
		Msg("Public holidays fetched")

	return dates, nil
}

// appliesToRegion keeps nationwide holidays (nil counties) and holidays
// scoped to the configured subdivision.
func (p *Provider) appliesToRegion(counties []string) bool {
	if counties == nil {
		return true
	}
	for _, c := range counties {
		if c == p.region {
			return true
		}
	}
	return false
}

// FetchYears fetches the given years concurrently and merges the results.
// A failed year degrades to no holidays for that year rather than an error;
// completion-date computation then falls back to the weekend rule alone.
func (p *Provider) FetchYears(ctx context.Context, years ...int) Set {
	set := make(Set)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, year := range years {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			dates, err := p.PublicHolidays(ctx, year)
			if err != nil {
				p.log.Warn().
					Err(err).
					Int("year", year).
					Msg("Holiday lookup failed, continuing with empty holiday set for year")
				return
			}
			mu.Lock()
			for _, d := range dates {
				set.Add(d)
			}
			mu.Unlock()
		}(year)
	}
	wg.Wait()

	return set
}
