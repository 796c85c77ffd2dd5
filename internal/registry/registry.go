// Package registry implements the evidence registry: id allocation, lifecycle
// of the evidences and their enrichment with the title of their case.
package registry

import (
	"context"
	"time"

	"github.com/mdouchement/evidence/internal/caselookup"
	"github.com/mdouchement/evidence/internal/database"
	"github.com/mdouchement/evidence/internal/metrics"
	"github.com/mdouchement/evidence/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when no evidence is stored under the given id.
	ErrNotFound = errors.New("evidence not found")
	// ErrAllocationOverflow is returned when no evidence id can be allocated anymore.
	ErrAllocationOverflow = database.ErrAllocationOverflow
)

type (
	// Options configure a Registry.
	Options struct {
		// StrictLifecycle rejects updates moving an evidence status backward.
		// When false, such updates are logged and applied.
		StrictLifecycle bool
		// Metrics observes every operation. Defaults to metrics.Nop.
		Metrics metrics.Recorder
	}

	// A Registry stores evidences.
	Registry struct {
		db      database.Client
		cases   caselookup.Lookup
		strict  bool
		metrics metrics.Recorder
	}
)

// New returns a new Registry.
// A nil lookup means a standalone registry where no case title is ever resolved.
func New(db database.Client, cases caselookup.Lookup, opts Options) *Registry {
	if cases == nil {
		cases = caselookup.None
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop
	}

	return &Registry{
		db:      db,
		cases:   cases,
		strict:  opts.StrictLifecycle,
		metrics: opts.Metrics,
	}
}

// Create stores e under a newly allocated id and returns that id.
func (r *Registry) Create(ctx context.Context, e *model.Evidence) (id uint32, err error) {
	defer r.observe(ctx, "create", time.Now(), &err)

	if !e.Status.Valid() {
		return 0, model.ErrInvalidStatus
	}

	if err = r.db.CreateEvidence(e); err != nil {
		return 0, errors.Wrap(err, "could not create evidence")
	}
	return e.ID, nil
}

// Delete removes the evidence stored under id.
func (r *Registry) Delete(ctx context.Context, id uint32) (err error) {
	defer r.observe(ctx, "delete", time.Now(), &err)

	err = r.db.DeleteEvidence(id)
	if r.db.IsNotFound(err) {
		return ErrNotFound
	}
	return errors.Wrap(err, "could not delete evidence")
}

// Update replaces every field of the evidence stored under id by the ones of e.
// An unknown status is always rejected, whatever the lifecycle mode.
func (r *Registry) Update(ctx context.Context, id uint32, e *model.Evidence) (err error) {
	defer r.observe(ctx, "update", time.Now(), &err)

	if !e.Status.Valid() {
		return model.ErrInvalidStatus
	}

	err = r.db.ReplaceEvidence(id, func(current *model.Evidence) (*model.Evidence, error) {
		if _, terr := model.Transition(current.Status, e.Status); terr != nil {
			if r.strict {
				return nil, terr
			}

			logrus.WithFields(logrus.Fields{
				"id":   id,
				"from": current.Status,
				"to":   e.Status,
			}).Warn("applying an illegal status transition")
		}
		return e, nil
	})

	var terr *model.IllegalTransitionError
	switch {
	case err == nil:
		return nil
	case r.db.IsNotFound(err):
		return ErrNotFound
	case errors.As(err, &terr):
		return err
	}
	return errors.Wrap(err, "could not update evidence")
}

// Get returns the evidence stored under id.
func (r *Registry) Get(ctx context.Context, id uint32) (out *model.EvidenceOutput, err error) {
	defer r.observe(ctx, "get", time.Now(), &err)

	e, err := r.db.FindEvidence(id)
	if err != nil {
		if r.db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "could not get evidence")
	}

	title, ok := r.cases.CaseTitle(ctx, e.CaseID)
	return model.NewEvidenceOutput(e, title, ok), nil
}

// List returns all the evidences ordered by id.
func (r *Registry) List(ctx context.Context) (outs []*model.EvidenceOutput, err error) {
	defer r.observe(ctx, "list", time.Now(), &err)

	evidences, err := r.db.FindEvidences()
	if err != nil {
		return nil, errors.Wrap(err, "could not list evidences")
	}

	outs = make([]*model.EvidenceOutput, 0, len(evidences))
	for _, e := range evidences {
		title, ok := r.cases.CaseTitle(ctx, e.CaseID)
		outs = append(outs, model.NewEvidenceOutput(e, title, ok))
	}
	return outs, nil
}

// ListByCase returns all the evidences of the given case ordered by id.
// The case title is looked up once per call rather than once per evidence.
func (r *Registry) ListByCase(ctx context.Context, caseID uint32) (outs []*model.EvidenceOutput, err error) {
	defer r.observe(ctx, "list_by_case", time.Now(), &err)

	evidences, err := r.db.FindEvidencesByCaseID(caseID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list evidences by case")
	}

	outs = make([]*model.EvidenceOutput, 0, len(evidences))
	if len(evidences) == 0 {
		return outs, nil
	}

	// All the evidences share the same case.
	title, ok := r.cases.CaseTitle(ctx, caseID)
	for _, e := range evidences {
		outs = append(outs, model.NewEvidenceOutput(e, title, ok))
	}
	return outs, nil
}

// ResolveID returns id and true if an evidence is stored under id.
func (r *Registry) ResolveID(ctx context.Context, id uint32) (_ uint32, found bool, err error) {
	defer r.observe(ctx, "resolve_id", time.Now(), &err)

	_, err = r.db.FindEvidence(id)
	if err != nil {
		if r.db.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "could not resolve evidence")
	}
	return id, true, nil
}

// Count returns the number of stored evidences.
func (r *Registry) Count(ctx context.Context) (n int, err error) {
	defer r.observe(ctx, "count", time.Now(), &err)

	n, err = r.db.CountEvidences()
	return n, errors.Wrap(err, "could not count evidences")
}

func (r *Registry) observe(ctx context.Context, operation string, start time.Time, err *error) {
	// Not found is an expected answer of the registry.
	success := *err == nil || *err == ErrNotFound
	r.metrics.Observe(ctx, operation, success, time.Since(start))
}
