package serializer

import (
	"time"

	"github.com/mdouchement/evidence/internal/model"
)

// Evidence serializes the render of an evidence.
func Evidence(m *model.EvidenceOutput) map[string]any {
	return map[string]any{
		"id":          m.ID,
		"created_at":  utc(m.CreatedAt),
		"updated_at":  utc(m.UpdatedAt),
		"description": m.Description,
		"owner":       m.Owner,
		"file":        m.File,
		"case_id":     m.CaseID,
		"case_title":  m.CaseTitle,
		"status":      m.Status,
	}
}

// Evidences serializes the render of evidences.
func Evidences(ms []*model.EvidenceOutput) []map[string]any {
	r := make([]map[string]any, 0, len(ms))
	for _, m := range ms {
		r = append(r, Evidence(m))
	}
	return r
}

// Case serializes the render of a case.
func Case(m *model.Case) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"created_at": utc(m.CreatedAt),
		"updated_at": utc(m.UpdatedAt),
		"title":      m.Title,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
