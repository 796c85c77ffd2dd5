package model

// A Case represents a case record of the local case registry.
// Evidences only refer to it through their CaseID.
type Case struct {
	Base `msgpack:",inline" storm:"inline"`

	Title string `json:"title" msgpack:"title"`
}
