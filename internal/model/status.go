package model

import (
	"errors"
	"fmt"
)

// A Status is the lifecycle step of an evidence.
type Status uint8

// Evidence lifecycle. The zero value is StatusNew.
const (
	StatusNew Status = iota
	StatusVoted
	StatusClose
)

var statusNames = map[Status]string{
	StatusNew:   "new",
	StatusVoted: "voted",
	StatusClose: "close",
}

// transitions lists the reachable statuses from a given status.
var transitions = map[Status][]Status{
	StatusNew:   {StatusNew, StatusVoted, StatusClose},
	StatusVoted: {StatusVoted, StatusClose},
	StatusClose: {StatusClose},
}

// ErrInvalidStatus is returned when an evidence carries an unknown status.
var ErrInvalidStatus = errors.New("invalid status")

// An IllegalTransitionError is returned when a status cannot be reached from the current one.
type IllegalTransitionError struct {
	From Status
	To   Status
}

// Error implements error interface.
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

// Valid returns true if s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus returns the status named by s.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusNew, fmt.Errorf("unknown status %q", s)
}

// Transition returns the status reached when moving from current to requested.
// Statuses never go backward: New -> Voted -> Close.
func Transition(current, requested Status) (Status, error) {
	if !requested.Valid() {
		return current, &IllegalTransitionError{From: current, To: requested}
	}
	for _, s := range transitions[current] {
		if s == requested {
			return requested, nil
		}
	}
	return current, &IllegalTransitionError{From: current, To: requested}
}
