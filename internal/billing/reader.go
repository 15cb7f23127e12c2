package billing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"bills/internal/logger"
)

// Reader streams assessment records from a tab-separated source ledger.
type Reader struct {
	log zerolog.Logger
}

// NewReader creates a reader for tab-separated assessment ledgers.
func NewReader() *Reader {
	return &Reader{
		log: logger.WithComponent("billing-reader"),
	}
}

// ReadRecords reads and normalizes every data row of the file at path. Rows
// with the wrong column count or malformed fields are logged and skipped;
// only I/O-level failures abort the read.
func (r *Reader) ReadRecords(path string) ([]*AssessmentRecord, error) {
	const op = "ReadRecords"

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open source ledger: %w", op, err)
	}
	defer file.Close()

	records, err := r.readAll(file)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}
	return records, nil
}

func (r *Reader) readAll(src io.Reader) ([]*AssessmentRecord, error) {
	cr := csv.NewReader(src)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRecords
		}
		return nil, err
	}
	if !headersMatch(header) {
		return nil, fmt.Errorf("%w: got %v", ErrHeaderMismatch, header)
	}

	var records []*AssessmentRecord
	var skipped int
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(row) != len(header) {
			r.log.Warn().
				Int("row", rowNum).
				Int("columns", len(row)).
				Int("expected", len(header)).
				Msg("Skipping row with unexpected column count")
			skipped++
			continue
		}

		raw := make(map[string]string, len(header))
		for i, key := range header {
			raw[key] = row[i]
		}

		rec, fieldErrs := NewAssessmentRecord(raw, rowNum)
		if len(fieldErrs) > 0 {
			for _, fe := range fieldErrs {
				r.log.Warn().
					Int("row", fe.Row).
					Str("field", fe.Field).
					Str("value", fe.Value).
					Msg("Skipping row with malformed field")
			}
			skipped++
			continue
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	r.log.Info().
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("Source ledger read")

	return records, nil
}
