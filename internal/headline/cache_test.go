package headline

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/localseo/models"
)

type stubStore struct {
	mu      sync.Mutex
	data    map[string]models.HeadlineSet
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setCall int
}

func newStubStore() *stubStore {
	return &stubStore{data: map[string]models.HeadlineSet{}, ttls: map[string]time.Duration{}}
}

func (s *stubStore) Get(_ context.Context, key string) (models.HeadlineSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.HeadlineSet{}, s.getErr
	}
	set, ok := s.data[key]
	if !ok {
		return models.HeadlineSet{}, models.ErrHeadlineSetNotFound
	}
	return set.Clone(), nil
}

func (s *stubStore) Set(_ context.Context, key string, set models.HeadlineSet, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCall++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = set.Clone()
	s.ttls[key] = ttl
	return nil
}

func (s *stubStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data), nil
}

func (s *stubStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]models.HeadlineSet{}
	return nil
}

func quietCache(store *stubStore, dedupe bool) *Cache {
	return NewCache(store, CacheOptions{
		TTL:            time.Hour,
		FallbackTTL:    time.Minute,
		DedupeInflight: dedupe,
		Logger:         log.New(io.Discard, "", 0),
	})
}

func fixedGen(calls *int32, p models.Provenance, headlines ...string) GeneratorFunc {
	return func(context.Context) (models.HeadlineSet, error) {
		atomic.AddInt32(calls, 1)
		return models.HeadlineSet{Headlines: headlines, Provenance: p}, nil
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	c := quietCache(newStubStore(), true)
	var calls int32

	first, cached, err := c.GetOrCreate(ctx, "k", fixedGen(&calls, models.ProvenanceExternal, "a", "b", "c"))
	if err != nil || cached {
		t.Fatalf("first call: cached=%v err=%v", cached, err)
	}
	second, cached, err := c.GetOrCreate(ctx, "k", fixedGen(&calls, models.ProvenanceExternal, "x"))
	if err != nil || !cached {
		t.Fatalf("second call: cached=%v err=%v", cached, err)
	}
	if calls != 1 {
		t.Fatalf("expected generator to run once, ran %d", calls)
	}
	if len(second.Headlines) != 3 || second.Headlines[0] != first.Headlines[0] || second.ID != first.ID {
		t.Fatalf("expected identical set, got %+v vs %+v", first, second)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be stamped: %+v", first)
	}
}

func TestGeneratorErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	c := quietCache(store, true)
	boom := errors.New("boom")

	_, _, err := c.GetOrCreate(ctx, "k", func(context.Context) (models.HeadlineSet, error) {
		return models.HeadlineSet{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if n, _ := store.Len(ctx); n != 0 {
		t.Fatalf("failed generation must not be stored")
	}

	var calls int32
	if _, cached, err := c.GetOrCreate(ctx, "k", fixedGen(&calls, models.ProvenanceExternal, "a")); err != nil || cached {
		t.Fatalf("retry: cached=%v err=%v", cached, err)
	}
	if calls != 1 {
		t.Fatalf("expected retry to invoke generator")
	}
}

func TestEmptySetNotCached(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	c := quietCache(store, false)
	var calls int32
	_, _, err := c.GetOrCreate(ctx, "k", fixedGen(&calls, models.ProvenanceExternal))
	if !errors.Is(err, ErrEmptySet) {
		t.Fatalf("expected ErrEmptySet, got %v", err)
	}
	if store.setCall != 0 {
		t.Fatalf("empty set must not be written")
	}
}

func TestFallbackUsesShortTTL(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	c := quietCache(store, true)
	var calls int32

	_, _, _ = c.GetOrCreate(ctx, "fallback", fixedGen(&calls, models.ProvenanceTemplateFallback, "a"))
	_, _, _ = c.GetOrCreate(ctx, "external", fixedGen(&calls, models.ProvenanceExternal, "a"))

	if store.ttls["fallback"] != time.Minute {
		t.Fatalf("expected fallback ttl 1m, got %s", store.ttls["fallback"])
	}
	if store.ttls["external"] != time.Hour {
		t.Fatalf("expected external ttl 1h, got %s", store.ttls["external"])
	}
}

func TestStoreErrorsDegradeToMiss(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	store.getErr = errors.New("read failed")
	store.setErr = errors.New("write failed")
	c := quietCache(store, true)
	var calls int32

	set, cached, err := c.GetOrCreate(ctx, "k", fixedGen(&calls, models.ProvenanceExternal, "a"))
	if err != nil || cached || len(set.Headlines) != 1 {
		t.Fatalf("expected generated set despite store errors: %+v cached=%v err=%v", set, cached, err)
	}
}

func TestSingleflightDedupesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	c := quietCache(newStubStore(), true)
	var calls int32
	release := make(chan struct{})
	gen := func(context.Context) (models.HeadlineSet, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return models.HeadlineSet{Headlines: []string{"a", "b"}, Provenance: models.ProvenanceExternal}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			set, _, err := c.GetOrCreate(ctx, "k", gen)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			ids[i] = set.ID
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected one generation for concurrent misses, got %d", calls)
	}
	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("callers observed different sets: %v", ids)
		}
	}
}
