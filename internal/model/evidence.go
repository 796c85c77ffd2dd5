package model

import "github.com/ethereum/go-ethereum/common"

// An Evidence represents a database record.
type Evidence struct {
	Base `msgpack:",inline" storm:"inline"`

	Description string      `json:"description" msgpack:"description"`
	Owner       AccountID   `json:"owner"       msgpack:"owner"`
	File        common.Hash `json:"file"        msgpack:"file"`
	CaseID      uint32      `json:"case_id"     msgpack:"case_id"     storm:"index"`
	Status      Status      `json:"status"      msgpack:"status"`
}

// An EvidenceOutput is the read view of an evidence, enriched with the title of its case.
// It is never stored.
type EvidenceOutput struct {
	Evidence

	// CaseTitle is nil when the case is unknown.
	CaseTitle *string `json:"case_title"`
}

// NewEvidenceOutput returns the read view of e.
func NewEvidenceOutput(e *Evidence, title string, found bool) *EvidenceOutput {
	out := &EvidenceOutput{Evidence: *e}
	if found {
		out.CaseTitle = &title
	}
	return out
}
