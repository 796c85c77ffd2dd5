// Package caselookup resolves the title of the case an evidence belongs to.
//
// A lookup never fails: any error is logged and reported as an unknown case,
// so that reading evidences does not depend on the availability of the case registry.
package caselookup

import (
	"context"
)

// A Lookup resolves case titles.
type Lookup interface {
	// CaseTitle returns the title of the given case.
	// ok is false when the case is unknown.
	CaseTitle(ctx context.Context, caseID uint32) (title string, ok bool)
}

// LookupFunc is an adapter to use an ordinary function as a Lookup.
type LookupFunc func(ctx context.Context, caseID uint32) (string, bool)

// CaseTitle implements Lookup.
func (f LookupFunc) CaseTitle(ctx context.Context, caseID uint32) (string, bool) {
	return f(ctx, caseID)
}

// None is the Lookup of a standalone registry: no case is ever known.
var None Lookup = LookupFunc(func(context.Context, uint32) (string, bool) {
	return "", false
})
