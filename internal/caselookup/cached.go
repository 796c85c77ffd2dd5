package caselookup

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

type (
	cached struct {
		next  Lookup
		cache *cache.Cache
	}

	entry struct {
		title string
		ok    bool
	}
)

// NewCached returns a Lookup remembering the answers of next for ttl.
// Unknown cases are remembered as well.
func NewCached(next Lookup, ttl time.Duration) Lookup {
	return &cached{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (l *cached) CaseTitle(ctx context.Context, caseID uint32) (string, bool) {
	key := strconv.FormatUint(uint64(caseID), 10)
	if v, found := l.cache.Get(key); found {
		e := v.(entry)
		return e.title, e.ok
	}

	title, ok := l.next.CaseTitle(ctx, caseID)
	l.cache.SetDefault(key, entry{title: title, ok: ok})
	return title, ok
}
