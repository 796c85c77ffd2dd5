package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/evidence/internal/model"
	"github.com/mdouchement/evidence/pkg/stormcodec"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	metaBucket  = "meta"
	sequenceKey = "evidence_sequence"
)

type (
	strm struct {
		db         *storm.DB
		allocation Allocation
	}

	// An Option configures the Storm database.
	Option func(*options)

	options struct {
		codec      string
		allocation Allocation
	}
)

// WithCodec defines the format used to store data in the database (msgpack, cbor or binc).
// The same codec must be used for the whole life of the database.
func WithCodec(name string) Option {
	return func(o *options) {
		o.codec = name
	}
}

// WithAllocation defines the policy used to allocate evidence ids.
func WithAllocation(a Allocation) Option {
	return func(o *options) {
		o.allocation = a
	}
}

func open(database string, opts []Option) (*storm.DB, options, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	codec, err := stormcodec.Lookup(o.codec)
	if err != nil {
		return nil, o, err
	}

	db, err := storm.Open(database, storm.Codec(codec))
	if err != nil {
		return nil, o, errors.Wrap(err, "could not get database connection")
	}
	return db, o, nil
}

// StormInit initializes Storm database.
func StormInit(database string, opts ...Option) error {
	db, _, err := open(database, opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(&model.Evidence{}); err != nil {
		return errors.Wrap(err, "could not init evidence index")
	}

	err = db.Init(&model.Case{})
	return errors.Wrap(err, "could not init case index")
}

// StormReIndex reindex Storm database.
func StormReIndex(database string, opts ...Option) error {
	db, _, err := open(database, opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReIndex(&model.Evidence{}); err != nil {
		return errors.Wrap(err, "could not ReIndex evidences")
	}

	err = db.ReIndex(&model.Case{})
	return errors.Wrap(err, "could not ReIndex cases")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string, opts ...Option) (Client, error) {
	db, o, err := open(database, opts)
	if err != nil {
		return nil, err
	}

	return &strm{
		db:         db,
		allocation: o.allocation,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetCreatedAt() == nil {
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// CreateEvidence allocates a new id for e and inserts it.
func (c *strm) CreateEvidence(e *model.Evidence) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	id, err := c.allocate(tx)
	if err != nil {
		return err
	}

	t := time.Now().UTC()
	e.ID = id
	e.SetCreatedAt(t)
	e.SetUpdatedAt(t)

	if err = tx.Save(e); err != nil {
		return errors.Wrap(err, "could not save evidence")
	}
	return errors.Wrap(tx.Commit(), "could not commit evidence")
}

func (c *strm) allocate(tx storm.Node) (uint32, error) {
	if c.allocation == AllocateLiveCount {
		n, err := tx.Count(&model.Evidence{})
		if err != nil && !c.IsNotFound(err) {
			return 0, errors.Wrap(err, "could not count evidences")
		}

		id, err := next(uint64(n))
		if err != nil {
			return 0, err
		}

		var live model.Evidence
		if err = tx.One("ID", id, &live); err == nil {
			logrus.WithField("id", id).Warn("allocated id is already used, the stored evidence will be overwritten")
		}

		// Keep the high-water mark above every issued id in case the policy is switched back.
		var mark uint32
		if err = tx.Get(metaBucket, sequenceKey, &mark); err != nil && !c.IsNotFound(err) {
			return 0, errors.Wrap(err, "could not read evidence sequence")
		}
		if id > mark {
			if err = tx.Set(metaBucket, sequenceKey, id); err != nil {
				return 0, errors.Wrap(err, "could not write evidence sequence")
			}
		}
		return id, nil
	}

	var current uint32
	err := tx.Get(metaBucket, sequenceKey, &current)
	if err != nil {
		if !c.IsNotFound(err) {
			return 0, errors.Wrap(err, "could not read evidence sequence")
		}

		// No sequence yet, start after the highest stored id.
		var last model.Evidence
		err = tx.Select().OrderBy("ID").Reverse().First(&last)
		if err != nil && !c.IsNotFound(err) {
			return 0, errors.Wrap(err, "could not find last evidence")
		}
		current = last.ID
	}

	id, err := next(uint64(current))
	if err != nil {
		return 0, err
	}

	err = tx.Set(metaBucket, sequenceKey, id)
	return id, errors.Wrap(err, "could not write evidence sequence")
}

// FindEvidence returns the evidence for the given id.
func (c *strm) FindEvidence(id uint32) (*model.Evidence, error) {
	var evidence model.Evidence
	if err := c.db.One("ID", id, &evidence); err != nil {
		return nil, errors.Wrap(err, "could not find evidence")
	}
	return &evidence, nil
}

// FindEvidences returns all the evidences ordered by id.
func (c *strm) FindEvidences() ([]*model.Evidence, error) {
	evidences := make([]*model.Evidence, 0)
	err := c.db.Select().OrderBy("ID").Find(&evidences)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find evidences")
	}
	return evidences, nil
}

// FindEvidencesByCaseID returns all the evidences of the given case ordered by id.
func (c *strm) FindEvidencesByCaseID(caseID uint32) ([]*model.Evidence, error) {
	evidences := make([]*model.Evidence, 0)
	err := c.db.Select(q.Eq("CaseID", caseID)).OrderBy("ID").Find(&evidences)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find evidences by case id")
	}
	return evidences, nil
}

// ReplaceEvidence replaces the evidence for the given id by the one returned by fn.
func (c *strm) ReplaceEvidence(id uint32, fn func(current *model.Evidence) (*model.Evidence, error)) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	var current model.Evidence
	if err = tx.One("ID", id, &current); err != nil {
		return errors.Wrap(err, "could not find evidence")
	}

	evidence, err := fn(&current)
	if err != nil {
		return err
	}

	evidence.ID = id
	evidence.CreatedAt = current.CreatedAt
	evidence.SetUpdatedAt(time.Now().UTC())

	if err = tx.Save(evidence); err != nil {
		return errors.Wrap(err, "could not save evidence")
	}
	return errors.Wrap(tx.Commit(), "could not commit evidence")
}

// DeleteEvidence deletes the evidence for the given id.
func (c *strm) DeleteEvidence(id uint32) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	var evidence model.Evidence
	if err = tx.One("ID", id, &evidence); err != nil {
		return errors.Wrap(err, "could not find evidence")
	}

	if err = tx.DeleteStruct(&evidence); err != nil {
		return errors.Wrap(err, "could not delete evidence")
	}
	return errors.Wrap(tx.Commit(), "could not commit evidence deletion")
}

// CountEvidences returns the number of stored evidences.
func (c *strm) CountEvidences() (int, error) {
	n, err := c.db.Count(&model.Evidence{})
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not count evidences")
	}
	return n, nil
}

// FindCase returns the case for the given id.
func (c *strm) FindCase(id uint32) (*model.Case, error) {
	var cas model.Case
	if err := c.db.One("ID", id, &cas); err != nil {
		return nil, errors.Wrap(err, "could not find case")
	}
	return &cas, nil
}
