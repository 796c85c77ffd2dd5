package caselookup

import (
	"context"

	"github.com/mdouchement/evidence/internal/model"
	"github.com/sirupsen/logrus"
)

// A CaseFinder reads cases from the local database.
type CaseFinder interface {
	FindCase(id uint32) (*model.Case, error)
	IsNotFound(err error) bool
}

type database struct {
	db CaseFinder
}

// NewDatabase returns a Lookup reading the cases stored in the local database.
func NewDatabase(db CaseFinder) Lookup {
	return &database{db: db}
}

func (l *database) CaseTitle(_ context.Context, caseID uint32) (string, bool) {
	c, err := l.db.FindCase(caseID)
	if err != nil {
		if !l.db.IsNotFound(err) {
			logrus.WithError(err).WithField("case_id", caseID).Error("could not find case")
		}
		return "", false
	}
	return c.Title, true
}
