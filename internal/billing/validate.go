package billing

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"bills/internal/logger"
)

// ISO-8601 with milliseconds and an explicit UTC offset,
// e.g. 2025-03-10T09:30:00.000+00:00.
var appointmentPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}[+-]\d{2}:\d{2}$`)

var (
	appointmentColumn = 3
	booleanColumns    = []int{8, 10} // Cancelled, Paid
)

// Validate checks the structural conformance of a tab-separated source
// ledger: exact header match, per-row column counts, appointment timestamp
// format and literal true/false booleans. It returns false plus one reason
// per violation; each reason is also logged.
func Validate(src io.Reader) (bool, []string) {
	log := logger.WithComponent("validate")

	var lines []string
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		reason := fmt.Sprintf("failed to read source: %v", err)
		log.Error().Err(err).Msg("Validation read failed")
		return false, []string{reason}
	}

	if len(lines) == 0 {
		log.Warn().Msg("Source ledger is empty")
		return false, []string{"source ledger is empty"}
	}

	var reasons []string
	report := func(format string, args ...any) {
		reason := fmt.Sprintf(format, args...)
		reasons = append(reasons, reason)
		log.Warn().Str("reason", reason).Msg("Validation violation")
	}

	headers := strings.Split(strings.TrimRight(lines[0], "\r"), "\t")
	if !headersMatch(headers) {
		report("header mismatch: got %d columns %v", len(headers), headers)
		return false, reasons
	}

	for i := 1; i < len(lines); i++ {
		row := strings.Split(strings.TrimRight(lines[i], "\r"), "\t")
		if len(row) != len(ExpectedHeaders) {
			report("row %d has %d columns (expected %d)", i, len(row), len(ExpectedHeaders))
			continue
		}

		if !appointmentPattern.MatchString(row[appointmentColumn]) {
			report("row %d has invalid appointment date %q", i, row[appointmentColumn])
		}

		for _, col := range booleanColumns {
			if row[col] != "true" && row[col] != "false" {
				report("row %d has invalid boolean in column %s: %q", i, ExpectedHeaders[col], row[col])
			}
		}
	}

	if len(reasons) > 0 {
		return false, reasons
	}

	log.Info().Int("rows", len(lines)-1).Msg("Source ledger format is valid")
	return true, nil
}

func headersMatch(headers []string) bool {
	if len(headers) != len(ExpectedHeaders) {
		return false
	}
	for i, h := range headers {
		if h != ExpectedHeaders[i] {
			return false
		}
	}
	return true
}
