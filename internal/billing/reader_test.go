package billing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestReadRecords(t *testing.T) {
	src := validHeader + "\n" +
		validRow("2025-03-10T09:30:00.000+00:00", "false", "true") + "\n" +
		validRow("2025-04-02T14:00:00.000+01:00", "true", "false") + "\n"

	records, err := NewReader().ReadRecords(writeDataFile(t, src))
	if err != nil {
		t.Fatalf("ReadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if !records[1].Cancelled {
		t.Error("second record should be cancelled")
	}
	if records[0].Paid != true {
		t.Error("first record should be paid")
	}
}

func TestReadRecordsSkipsMalformedRows(t *testing.T) {
	src := validHeader + "\n" +
		validRow("2025-03-10T09:30:00.000+00:00", "false", "false") + "\n" +
		"short\trow\n" +
		validRow("not-a-date", "false", "false") + "\n" +
		validRow("2025-03-11T09:30:00.000+00:00", "false", "false") + "\n"

	records, err := NewReader().ReadRecords(writeDataFile(t, src))
	if err != nil {
		t.Fatalf("ReadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 surviving records, got %d", len(records))
	}
}

func TestReadRecordsEmptySource(t *testing.T) {
	for name, content := range map[string]string{
		"empty file":  "",
		"header only": validHeader + "\n",
	} {
		_, err := NewReader().ReadRecords(writeDataFile(t, content))
		if !errors.Is(err, ErrNoRecords) {
			t.Errorf("%s: error = %v, want ErrNoRecords", name, err)
		}
	}
}

func TestReadRecordsRejectsWrongHeader(t *testing.T) {
	src := "IDs\tCustomer\tWrong\n" + validRow("2025-03-10T09:30:00.000+00:00", "false", "false") + "\n"
	_, err := NewReader().ReadRecords(writeDataFile(t, src))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("error = %v, want ErrHeaderMismatch", err)
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	_, err := NewReader().ReadRecords(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil || !strings.Contains(err.Error(), "failed to open") {
		t.Errorf("missing file error = %v", err)
	}
}
