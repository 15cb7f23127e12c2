package models

// UpdatePayload addresses one cell of one persisted ledger row: the row whose
// CRN cell equals ID, in the sheet named Ref, in the column headed Key. The
// ID field carries the CRN because the CRN column is the ledger's row key.
type UpdatePayload struct {
	ID    string `json:"id"`
	Ref   string `json:"ref"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
