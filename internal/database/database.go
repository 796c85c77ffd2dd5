package database

import (
	"github.com/mdouchement/evidence/internal/model"
	"github.com/pkg/errors"
)

// ErrAllocationOverflow is returned when no evidence id can be allocated anymore.
var ErrAllocationOverflow = errors.New("evidence id allocation overflow")

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool

		EvidenceInteraction
		CaseInteraction
	}

	// An EvidenceInteraction defines all the methods used to interact with evidence record(s).
	EvidenceInteraction interface {
		// CreateEvidence allocates a new id for e and inserts it.
		// e.ID is set to the allocated id.
		CreateEvidence(e *model.Evidence) error
		// FindEvidence returns the evidence for the given id.
		FindEvidence(id uint32) (*model.Evidence, error)
		// FindEvidences returns all the evidences ordered by id.
		FindEvidences() ([]*model.Evidence, error)
		// FindEvidencesByCaseID returns all the evidences of the given case ordered by id.
		FindEvidencesByCaseID(caseID uint32) ([]*model.Evidence, error)
		// ReplaceEvidence replaces the evidence for the given id by the one returned by fn.
		// fn is called with the stored evidence and nothing is written if it returns an error.
		ReplaceEvidence(id uint32, fn func(current *model.Evidence) (*model.Evidence, error)) error
		// DeleteEvidence deletes the evidence for the given id.
		DeleteEvidence(id uint32) error
		// CountEvidences returns the number of stored evidences.
		CountEvidences() (int, error)
	}

	// A CaseInteraction defines all the methods used to interact with the local case records.
	CaseInteraction interface {
		// FindCase returns the case for the given id.
		FindCase(id uint32) (*model.Case, error)
	}
)
