package database

import (
	"fmt"
	"math"
)

// An Allocation is the policy used to pick the id of a new evidence.
type Allocation int

const (
	// AllocateHighWaterMark uses a persisted counter that is never decremented.
	// Ids of deleted evidences are never issued again.
	AllocateHighWaterMark Allocation = iota
	// AllocateLiveCount uses the number of stored evidences plus one.
	// After a deletion, an id already issued can be issued again and the
	// evidence stored under it, if any, is overwritten.
	AllocateLiveCount
)

// ParseAllocation returns the allocation policy for the given name.
// An empty name returns AllocateHighWaterMark.
func ParseAllocation(name string) (Allocation, error) {
	switch name {
	case "", "high_water_mark":
		return AllocateHighWaterMark, nil
	case "count":
		return AllocateLiveCount, nil
	}
	return AllocateHighWaterMark, fmt.Errorf("unsupported allocation %q", name)
}

// String implements fmt.Stringer.
func (a Allocation) String() string {
	if a == AllocateLiveCount {
		return "count"
	}
	return "high_water_mark"
}

// next returns the id following current.
func next(current uint64) (uint32, error) {
	if current >= math.MaxUint32 {
		return 0, ErrAllocationOverflow
	}
	return uint32(current) + 1, nil
}
