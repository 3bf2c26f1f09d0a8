package enrich

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestResolveAllDeduplicatesKeys(t *testing.T) {
	var calls int32
	r := NewResolver(func(ctx context.Context, key string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "name-" + key, nil
	})

	got := r.ResolveAll(context.Background(), []string{"d1", "d2", "d1", "", "d2"})
	if len(got) != 2 {
		t.Fatalf("resolved %d keys, want 2", len(got))
	}
	if got["d1"] != "name-d1" || got["d2"] != "name-d2" {
		t.Errorf("bad values: %v", got)
	}
	if calls != 2 {
		t.Errorf("lookup called %d times, want 2 (one per distinct key)", calls)
	}
}

func TestFailedLookupFallsBackWithoutAffectingSiblings(t *testing.T) {
	r := NewResolver(func(ctx context.Context, key string) (string, error) {
		if key == "bad" {
			return "", errors.New("upstream 500")
		}
		return "ok-" + key, nil
	})

	got := r.ResolveAll(context.Background(), []string{"good", "bad", "other"})
	if _, ok := got["bad"]; ok {
		t.Error("failed key should be absent so callers render the raw id")
	}
	if got["good"] != "ok-good" || got["other"] != "ok-other" {
		t.Errorf("sibling lookups affected: %v", got)
	}
}

func TestResolveAllMemoizesAcrossCalls(t *testing.T) {
	var calls int32
	r := NewResolver(func(ctx context.Context, key string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return key, nil
	})

	r.ResolveAll(context.Background(), []string{"s1", "s2"})
	r.ResolveAll(context.Background(), []string{"s1", "s2", "s3"})
	if calls != 3 {
		t.Errorf("lookup called %d times, want 3", calls)
	}

	if v, ok := r.Get("s1"); !ok || v != "s1" {
		t.Error("memoized value missing")
	}
}

func TestResolveAllBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	release := make(chan struct{})

	r := NewResolver(func(ctx context.Context, key string) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		<-release
		mu.Lock()
		inFlight--
		mu.Unlock()
		return key, nil
	})

	keys := make([]string, 20)
	for i := range keys {
		keys[i] = string(rune('a' + i))
	}

	done := make(chan struct{})
	go func() {
		r.ResolveAll(context.Background(), keys)
		close(done)
	}()
	close(release)
	<-done

	if peak > DefaultConcurrency {
		t.Errorf("peak concurrency %d exceeds limit %d", peak, DefaultConcurrency)
	}
}
