// Package enrich resolves foreign-key fields on list rows into display
// values via secondary upstream lookups.
//
// Resolution is best-effort: a failed lookup is logged and skipped, and the
// caller falls back to rendering the raw key. Results are memoized for the
// lifetime of the resolver (one screen session); nothing is shared across
// screens or invalidated.
package enrich

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the lookup fan-out per ResolveAll call.
const DefaultConcurrency = 5

// LookupFunc fetches the display value for one foreign key.
type LookupFunc[V any] func(ctx context.Context, key string) (V, error)

// Resolver memoizes per-key lookups and runs unresolved ones concurrently.
type Resolver[V any] struct {
	lookup LookupFunc[V]
	limit  int

	mu    sync.RWMutex
	cache map[string]V
}

func NewResolver[V any](lookup LookupFunc[V]) *Resolver[V] {
	return &Resolver[V]{lookup: lookup, limit: DefaultConcurrency, cache: map[string]V{}}
}

// Get returns the memoized value for key, if a prior lookup succeeded.
func (r *Resolver[V]) Get(key string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.cache[key]
	return v, ok
}

// ResolveAll resolves every distinct non-empty key not already memoized,
// at most r.limit lookups in flight, and returns a snapshot map of all
// known values for the requested keys. Individual failures are logged and
// omitted from the result; they never fail sibling lookups. Callers pass
// the full fetched set, not just the current page: resolved names are
// searchable and sortable, so they must be merged before the derivation
// runs. The memo keeps repeat visits to one lookup per distinct key.
func (r *Resolver[V]) ResolveAll(ctx context.Context, keys []string) map[string]V {
	pending := make([]string, 0, len(keys))
	seen := map[string]struct{}{}
	r.mu.RLock()
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := r.cache[key]; !ok {
			pending = append(pending, key)
		}
	}
	r.mu.RUnlock()

	if len(pending) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.limit)
		for _, key := range pending {
			key := key
			g.Go(func() error {
				v, err := r.lookup(gctx, key)
				if err != nil {
					log.Printf("enrich: lookup %q failed: %v", key, err)
					return nil
				}
				r.mu.Lock()
				r.cache[key] = v
				r.mu.Unlock()
				return nil
			})
		}
		g.Wait()
	}

	out := make(map[string]V, len(seen))
	r.mu.RLock()
	for key := range seen {
		if v, ok := r.cache[key]; ok {
			out[key] = v
		}
	}
	r.mu.RUnlock()
	return out
}
