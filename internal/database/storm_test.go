package database_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mdouchement/evidence/internal/database"
	"github.com/mdouchement/evidence/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...database.Option) database.Client {
	filename := filepath.Join(t.TempDir(), "evidence.db")

	require.NoError(t, database.StormInit(filename, opts...))

	db, err := database.StormOpen(filename, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func evidence(description string, caseID uint32) *model.Evidence {
	return &model.Evidence{
		Description: description,
		Owner:       model.AccountID{1, 2, 3},
		File:        common.HexToHash("0xdeadbeef"),
		CaseID:      caseID,
	}
}

func create(t *testing.T, db database.Client, descriptions ...string) []uint32 {
	ids := make([]uint32, 0, len(descriptions))
	for _, d := range descriptions {
		e := evidence(d, 1)
		require.NoError(t, db.CreateEvidence(e))
		ids = append(ids, e.ID)
	}
	return ids
}

func TestCreateEvidenceSequential(t *testing.T) {
	db := setup(t)

	ids := create(t, db, "a", "b", "c", "d", "e")
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, ids)

	n, err := db.CountEvidences()
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestAllocationAfterDeletion(t *testing.T) {
	t.Run("high water mark", func(t *testing.T) {
		db := setup(t)

		create(t, db, "a", "b", "c")
		require.NoError(t, db.DeleteEvidence(2))

		ids := create(t, db, "d")
		assert.Equal(t, []uint32{4}, ids)

		// Deleting the last one never lowers the mark.
		require.NoError(t, db.DeleteEvidence(4))
		ids = create(t, db, "e")
		assert.Equal(t, []uint32{5}, ids)
	})

	t.Run("live count", func(t *testing.T) {
		db := setup(t, database.WithAllocation(database.AllocateLiveCount))

		create(t, db, "a", "b", "c")
		require.NoError(t, db.DeleteEvidence(2))

		ids := create(t, db, "d")
		assert.Equal(t, []uint32{3}, ids)

		// The evidence previously stored under 3 has been overwritten.
		e, err := db.FindEvidence(3)
		require.NoError(t, err)
		assert.Equal(t, "d", e.Description)

		n, err := db.CountEvidences()
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestHighWaterMarkSeedsFromStoredEvidences(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "evidence.db")

	db, err := database.StormOpen(filename, database.WithAllocation(database.AllocateLiveCount))
	require.NoError(t, err)
	create(t, db, "a", "b", "c")
	require.NoError(t, db.DeleteEvidence(1))
	require.NoError(t, db.Close())

	db, err = database.StormOpen(filename)
	require.NoError(t, err)
	defer db.Close()

	ids := create(t, db, "d")
	assert.Equal(t, []uint32{4}, ids)
}

func TestAllocationPolicySwitch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "evidence.db")

	reopen := func(opts ...database.Option) database.Client {
		db, err := database.StormOpen(filename, opts...)
		require.NoError(t, err)
		return db
	}

	db := reopen()
	assert.Equal(t, []uint32{1, 2}, create(t, db, "a", "b"))
	require.NoError(t, db.Close())

	db = reopen(database.WithAllocation(database.AllocateLiveCount))
	assert.Equal(t, []uint32{3, 4}, create(t, db, "c", "d"))
	require.NoError(t, db.Close())

	db = reopen()
	defer db.Close()
	assert.Equal(t, []uint32{5}, create(t, db, "e"))

	e, err := db.FindEvidence(3)
	require.NoError(t, err)
	assert.Equal(t, "c", e.Description)

	n, err := db.CountEvidences()
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestAllocationOverflow(t *testing.T) {
	db := setup(t)

	require.NoError(t, database.SetSequence(db, math.MaxUint32))

	e := evidence("overflow", 1)
	err := db.CreateEvidence(e)
	assert.Equal(t, database.ErrAllocationOverflow, errors.Cause(err))
	assert.Zero(t, e.ID)

	n, err := db.CountEvidences()
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestFindEvidence(t *testing.T) {
	db := setup(t)

	e := evidence("knife", 7)
	e.Status = model.StatusVoted
	require.NoError(t, db.CreateEvidence(e))

	found, err := db.FindEvidence(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Description, found.Description)
	assert.Equal(t, e.Owner, found.Owner)
	assert.Equal(t, e.File, found.File)
	assert.Equal(t, e.CaseID, found.CaseID)
	assert.Equal(t, e.Status, found.Status)
	assert.NotNil(t, found.CreatedAt)

	_, err = db.FindEvidence(42)
	assert.True(t, db.IsNotFound(err))
}

func TestFindEvidences(t *testing.T) {
	db := setup(t)

	for i, caseID := range []uint32{1, 2, 1, 3, 1} {
		e := evidence(string(rune('a'+i)), caseID)
		require.NoError(t, db.CreateEvidence(e))
	}
	require.NoError(t, db.DeleteEvidence(3))

	all, err := db.FindEvidences()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 4, 5}, ids(all))

	byCase, err := db.FindEvidencesByCaseID(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 5}, ids(byCase))

	none, err := db.FindEvidencesByCaseID(9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindEvidencesEmpty(t *testing.T) {
	db := setup(t)

	all, err := db.FindEvidences()
	assert.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestReplaceEvidence(t *testing.T) {
	db := setup(t)
	create(t, db, "a")

	err := db.ReplaceEvidence(1, func(current *model.Evidence) (*model.Evidence, error) {
		assert.Equal(t, "a", current.Description)
		e := evidence("b", 4)
		e.Status = model.StatusClose
		return e, nil
	})
	require.NoError(t, err)

	e, err := db.FindEvidence(1)
	require.NoError(t, err)
	assert.Equal(t, "b", e.Description)
	assert.Equal(t, uint32(4), e.CaseID)
	assert.Equal(t, model.StatusClose, e.Status)

	byCase, err := db.FindEvidencesByCaseID(1)
	require.NoError(t, err)
	assert.Empty(t, byCase)

	// Nothing is written when fn fails.
	boom := errors.New("boom")
	err = db.ReplaceEvidence(1, func(current *model.Evidence) (*model.Evidence, error) {
		return nil, boom
	})
	assert.Equal(t, boom, err)

	e, err = db.FindEvidence(1)
	require.NoError(t, err)
	assert.Equal(t, "b", e.Description)

	err = db.ReplaceEvidence(2, func(current *model.Evidence) (*model.Evidence, error) {
		return current, nil
	})
	assert.True(t, db.IsNotFound(err))
}

func TestDeleteEvidence(t *testing.T) {
	db := setup(t)
	create(t, db, "a", "b")

	require.NoError(t, db.DeleteEvidence(1))

	_, err := db.FindEvidence(1)
	assert.True(t, db.IsNotFound(err))

	err = db.DeleteEvidence(1)
	assert.True(t, db.IsNotFound(err))

	n, err := db.CountEvidences()
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCodecs(t *testing.T) {
	for _, codec := range []string{"msgpack", "cbor", "binc"} {
		t.Run(codec, func(t *testing.T) {
			db := setup(t, database.WithCodec(codec))

			e := evidence("tape", 2)
			require.NoError(t, db.CreateEvidence(e))

			found, err := db.FindEvidence(e.ID)
			require.NoError(t, err)
			assert.Equal(t, e.Owner, found.Owner)
			assert.Equal(t, e.File, found.File)

			byCase, err := db.FindEvidencesByCaseID(2)
			require.NoError(t, err)
			assert.Len(t, byCase, 1)
		})
	}

	_, err := database.StormOpen(filepath.Join(t.TempDir(), "evidence.db"), database.WithCodec("gob"))
	assert.Error(t, err)
}

func TestFindCase(t *testing.T) {
	db := setup(t)

	c := &model.Case{Title: "Burglary"}
	c.ID = 12
	require.NoError(t, db.Save(c))

	found, err := db.FindCase(12)
	require.NoError(t, err)
	assert.Equal(t, "Burglary", found.Title)
	assert.NotNil(t, found.CreatedAt)

	_, err = db.FindCase(13)
	assert.True(t, db.IsNotFound(err))
}

func ids(evidences []*model.Evidence) []uint32 {
	ids := make([]uint32, 0, len(evidences))
	for _, e := range evidences {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestStormReIndex(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "evidence.db")
	require.NoError(t, database.StormInit(filename))

	db, err := database.StormOpen(filename)
	require.NoError(t, err)
	require.NoError(t, db.CreateEvidence(evidence("a", 1)))
	require.NoError(t, db.CreateEvidence(evidence("b", 2)))
	require.NoError(t, db.Close())

	require.NoError(t, database.StormReIndex(filename))

	db, err = database.StormOpen(filename)
	require.NoError(t, err)
	defer db.Close()

	evidences, err := db.FindEvidencesByCaseID(2)
	assert.NoError(t, err)
	if assert.Len(t, evidences, 1) {
		assert.Equal(t, "b", evidences[0].Description)
	}

	// The sequence survives the reindex.
	e := evidence("c", 1)
	assert.NoError(t, db.CreateEvidence(e))
	assert.Equal(t, uint32(3), e.ID)
}
