package database

// This file is only for test purpose and is only loaded by test framework.

// SetSequence overrides the high-water mark of the evidence ids.
func SetSequence(c Client, id uint32) error {
	return c.(*strm).db.Set(metaBucket, sequenceKey, id)
}

// Next exposes the id allocation arithmetic.
var Next = next
