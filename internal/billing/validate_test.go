package billing

import (
	"strings"
	"testing"
)

const validHeader = "IDs\tCustomer\tCRN\tAppointment Date Time\tAssessor\tMethod\t" +
	"Assessment Type\tAssessment Centre\tCancelled\tFunder Invoice\tPaid\t" +
	"Supplier Invoice\tOrganisation\tStatus\tDelay"

func validRow(appointment, cancelled, paid string) string {
	return strings.Join([]string{
		"10001", "A. Student", "CRN-1", appointment, "J. Assessor", "Remote",
		"DSA Assessment", "Centre North", cancelled, "", paid, "", "Org",
		"Complete", "0",
	}, "\t")
}

func TestValidateAcceptsConformingFile(t *testing.T) {
	src := validHeader + "\n" +
		validRow("2025-03-10T09:30:00.000+00:00", "false", "true") + "\n" +
		validRow("2025-04-02T14:00:00.000+01:00", "true", "false") + "\n"

	ok, reasons := Validate(strings.NewReader(src))
	if !ok {
		t.Fatalf("valid file rejected: %v", reasons)
	}
	if len(reasons) != 0 {
		t.Errorf("valid file produced reasons: %v", reasons)
	}
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	ok, reasons := Validate(strings.NewReader(""))
	if ok || len(reasons) == 0 {
		t.Fatal("empty file must be rejected with a reason")
	}
}

func TestValidateRejectsHeaderMismatch(t *testing.T) {
	src := "IDs\tCustomer\tWrong\n" + validRow("2025-03-10T09:30:00.000+00:00", "false", "false")
	ok, reasons := Validate(strings.NewReader(src))
	if ok {
		t.Fatal("header mismatch must be rejected")
	}
	if len(reasons) != 1 || !strings.Contains(reasons[0], "header mismatch") {
		t.Errorf("unexpected reasons: %v", reasons)
	}
}

func TestValidateReportsPerRowViolations(t *testing.T) {
	src := validHeader + "\n" +
		validRow("2025-03-10T09:30:00.000+00:00", "false", "false") + "\n" +
		validRow("10/03/2025 09:30", "false", "false") + "\n" +
		validRow("2025-03-12T09:30:00.000+00:00", "yes", "false") + "\n" +
		"short\trow\n"

	ok, reasons := Validate(strings.NewReader(src))
	if ok {
		t.Fatal("malformed rows must be rejected")
	}
	if len(reasons) != 3 {
		t.Fatalf("want 3 reasons, got %d: %v", len(reasons), reasons)
	}

	joined := strings.Join(reasons, "; ")
	for _, fragment := range []string{"invalid appointment date", "invalid boolean", "columns"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("reasons missing %q: %v", fragment, reasons)
		}
	}
}
