// Package enrich fills gaps in extracted fields from optional outside sources.
// Every strategy is best effort: a failure yields no fields, never an error.
package enrich

import (
	"context"

	"github.com/joseph-ayodele/wildsync/internal/extract"
)

// Enricher attempts to add fields to fs. It returns only the fields it adds,
// or (nil, false) when it has nothing to contribute.
type Enricher interface {
	Enrich(ctx context.Context, fs extract.Fields) (extract.Fields, bool)
}

// Chain runs enrichers in order; later ones see what earlier ones added.
type Chain []Enricher

// Enrich applies each enricher that succeeds.
func (c Chain) Enrich(ctx context.Context, fs extract.Fields) (extract.Fields, bool) {
	merged := extract.Fields{}
	for k, v := range fs {
		merged[k] = v
	}
	added := extract.Fields{}
	for _, e := range c {
		if e == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if got, ok := e.Enrich(ctx, merged); ok {
			merged.Merge(got)
			added.Merge(got)
		}
	}
	if len(added) == 0 {
		return nil, false
	}
	return added, true
}
