package holiday

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// DateKey is the calendar-date layout used for holiday matching. Comparing
// formatted dates keeps matching independent of the time of day.
const DateKey = "2006-01-02"

// Set holds public-holiday calendar dates keyed by DateKey.
type Set map[string]struct{}

// NewSet builds a Set from a list of holiday timestamps.
func NewSet(dates []time.Time) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add records the calendar date of t.
func (s Set) Add(t time.Time) {
	s[t.Format(DateKey)] = struct{}{}
}

// Dates returns the set's dates sorted ascending.
func (s Set) Dates() []time.Time {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		if t, err := time.Parse(DateKey, k); err == nil {
			dates = append(dates, t)
		}
	}
	return dates
}

// Contains reports whether the calendar date of t is a holiday.
func (s Set) Contains(t time.Time) bool {
	_, ok := s[t.Format(DateKey)]
	return ok
}

// LoadFile reads a JSON array of date strings into a Set. Entries may be
// plain calendar dates or full timestamps; unparseable entries are dropped.
func LoadFile(path string) (Set, error) {
	const op = "LoadFile"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read holidays file: %w", op, err)
	}

	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nil, fmt.Errorf("%s: failed to parse holidays file %s: %w", op, path, err)
	}

	s := make(Set, len(dates))
	for _, d := range dates {
		if t, err := time.Parse(DateKey, d); err == nil {
			s.Add(t)
			continue
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			s.Add(t)
		}
	}
	return s, nil
}

// WriteFile persists holiday dates as a JSON array of calendar-date strings.
func WriteFile(path string, dates []time.Time) error {
	const op = "WriteFile"

	strs := make([]string, 0, len(dates))
	for _, d := range dates {
		strs = append(strs, d.Format(DateKey))
	}

	raw, err := json.MarshalIndent(strs, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to marshal holidays: %w", op, err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("%s: failed to write holidays file: %w", op, err)
	}
	return nil
}

// CompletedDate returns the report-submission date for an appointment: the
// third working day strictly after it, where Saturdays, Sundays and holiday
// dates do not count as working days.
func CompletedDate(appointment time.Time, holidays Set) time.Time {
	current := appointment
	working := 0
	for working < 3 {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if holidays.Contains(current) {
			continue
		}
		working++
	}
	return current
}
