package billing

import (
	"fmt"
	"regexp"
	"time"
)

// refPrefix is the fixed prefix of every invoice period reference.
const refPrefix = "AD"

var refPattern = regexp.MustCompile(`^` + refPrefix + `-([A-Za-z]{3})(\d{2})$`)

// monthsByAbbr is the fixed 12-entry map used to invert a reference back into
// a calendar month.
var monthsByAbbr = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// FormatReference derives the invoice period reference from a date,
// e.g. March 2025 becomes "AD-Mar25".
func FormatReference(t time.Time) string {
	return fmt.Sprintf("%s-%s%02d", refPrefix, t.Month().String()[:3], t.Year()%100)
}

// ParseReference recovers the calendar year and month encoded in a period
// reference. The two-digit year maps into the 2000s.
func ParseReference(ref string) (int, time.Month, error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReferenceFormat, ref)
	}

	month, ok := monthsByAbbr[m[1]]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMonthAbbreviation, m[1])
	}

	year := 2000 + (int(m[2][0]-'0')*10 + int(m[2][1]-'0'))
	return year, month, nil
}

// ParsePeriod recovers the normalized YYYY-MM period string encoded in a
// period reference, e.g. "AD-Mar25" becomes "2025-03".
func ParsePeriod(ref string) (string, error) {
	year, month, err := ParseReference(ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d", year, int(month)), nil
}
