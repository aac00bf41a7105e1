package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a fetch func that returns how many times it ran.
type counter struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
}

func (c *counter) fetch(ctx context.Context) (any, error) {
	n := c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, c.err
	}
	return int(n), nil
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(Options{KeepUnusedFor: time.Minute})
	t.Cleanup(s.Stop)
	return s
}

func booksDef(c *counter) QueryDef {
	return QueryDef{Key: "getBooks(1,10)", Provides: []Tag{TypeTag("Books")}, Fetch: c.fetch}
}

func TestTagMatches(t *testing.T) {
	assert.True(t, TypeTag("Books").Matches(IDTag("Books", "1")))
	assert.True(t, TypeTag("Books").Matches(TypeTag("Books")))
	assert.True(t, IDTag("Books", "1").Matches(IDTag("Books", "1")))
	assert.False(t, IDTag("Books", "1").Matches(IDTag("Books", "2")))
	assert.False(t, IDTag("Books", "1").Matches(TypeTag("Books")))
	assert.False(t, TypeTag("BorrowSummary").Matches(TypeTag("Books")))
}

func TestQueryCachesFreshData(t *testing.T) {
	s := newStore(t)
	c := &counter{}
	ctx := context.Background()

	v, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.EqualValues(t, 1, c.calls.Load())

	snap, ok := s.Snapshot("getBooks(1,10)")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.False(t, snap.Stale)
}

func TestConcurrentQueriesShareOneFetch(t *testing.T) {
	s := newStore(t)
	c := &counter{gate: make(chan struct{})}
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Query(ctx, booksDef(c))
		}(i)
	}
	// let the callers pile up on the flight
	time.Sleep(50 * time.Millisecond)
	close(c.gate)
	wg.Wait()

	assert.EqualValues(t, 1, c.calls.Load())
	for _, r := range results {
		assert.Equal(t, 1, r)
	}
}

func TestInvalidateWithoutSubscribersRefetchesOnNextQuery(t *testing.T) {
	s := newStore(t)
	c := &counter{}
	ctx := context.Background()

	_, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)

	s.Invalidate(ctx, TypeTag("Books"))
	assert.EqualValues(t, 1, c.calls.Load())
	snap, _ := s.Snapshot("getBooks(1,10)")
	assert.True(t, snap.Stale)

	v, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestInvalidateRefetchesSubscribedEntries(t *testing.T) {
	s := newStore(t)
	c := &counter{}
	ctx := context.Background()

	var mu sync.Mutex
	var seen []Snapshot
	unsubscribe := s.Subscribe(ctx, booksDef(c), func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, snap)
	})
	defer unsubscribe()
	assert.EqualValues(t, 1, c.calls.Load())

	s.Invalidate(ctx, TypeTag("Books"))
	// refetched before Invalidate returned
	assert.EqualValues(t, 2, c.calls.Load())
	snap, _ := s.Snapshot("getBooks(1,10)")
	assert.Equal(t, 2, snap.Data)
	assert.False(t, snap.Stale)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.Equal(t, StatusSuccess, last.Status)
	assert.Equal(t, 2, last.Data)
}

func TestSubscribeFreshEntryDeliversSnapshot(t *testing.T) {
	s := newStore(t)
	c := &counter{}
	ctx := context.Background()
	_, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)

	var got []Snapshot
	unsubscribe := s.Subscribe(ctx, booksDef(c), func(snap Snapshot) { got = append(got, snap) })
	defer unsubscribe()

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Data)
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestUnsubscribeStopsRefetchOnInvalidate(t *testing.T) {
	s := newStore(t)
	c := &counter{}
	ctx := context.Background()

	unsubscribe := s.Subscribe(ctx, booksDef(c), func(Snapshot) {})
	unsubscribe()
	unsubscribe()

	s.Invalidate(ctx, TypeTag("Books"))
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestIDTagInvalidatesOnlyThatRecord(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	one, two := &counter{}, &counter{}
	defOne := QueryDef{Key: "getBookById(1)", Provides: []Tag{IDTag("Books", "1")}, Fetch: one.fetch}
	defTwo := QueryDef{Key: "getBookById(2)", Provides: []Tag{IDTag("Books", "2")}, Fetch: two.fetch}
	list := &counter{}

	for _, def := range []QueryDef{defOne, defTwo, booksDef(list)} {
		_, err := s.Query(ctx, def)
		require.NoError(t, err)
	}

	s.Invalidate(ctx, IDTag("Books", "1"))
	snapOne, _ := s.Snapshot(defOne.Key)
	snapTwo, _ := s.Snapshot(defTwo.Key)
	snapList, _ := s.Snapshot("getBooks(1,10)")
	assert.True(t, snapOne.Stale)
	assert.False(t, snapTwo.Stale)
	assert.False(t, snapList.Stale)

	s.Invalidate(ctx, TypeTag("Books"))
	snapTwo, _ = s.Snapshot(defTwo.Key)
	snapList, _ = s.Snapshot("getBooks(1,10)")
	assert.True(t, snapTwo.Stale)
	assert.True(t, snapList.Stale)
}

func TestInvalidateLeavesOtherTypesAlone(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	summary := &counter{}
	def := QueryDef{Key: "getBorrowSummary(1,10)", Provides: []Tag{TypeTag("BorrowSummary")}, Fetch: summary.fetch}
	_, err := s.Query(ctx, def)
	require.NoError(t, err)

	s.Invalidate(ctx, TypeTag("Books"))
	snap, _ := s.Snapshot(def.Key)
	assert.False(t, snap.Stale)
}

func TestFetchErrorKeepsPreviousData(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := &counter{}
	_, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)

	boom := errors.New("boom")
	c.err = boom
	assert.ErrorIs(t, s.Refetch(ctx, "getBooks(1,10)"), boom)
	snap, _ := s.Snapshot("getBooks(1,10)")
	assert.Equal(t, StatusError, snap.Status)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, 1, snap.Data)

	// an errored entry is fetched again by the next query
	c.err = nil
	v, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestRefetchUnknownKey(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.Refetch(context.Background(), "nope"), ErrUnknownQuery)
}

func TestInvalidationDuringFetchLeavesEntryStale(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := &counter{gate: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Query(ctx, booksDef(c))
	}()
	require.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Invalidate(ctx, TypeTag("Books"))
	close(c.gate)
	<-done

	snap, _ := s.Snapshot("getBooks(1,10)")
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.True(t, snap.Stale)

	v, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestAbandonedQueryStillFillsCache(t *testing.T) {
	s := newStore(t)
	c := &counter{gate: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.Query(ctx, booksDef(c))
		errc <- err
	}()
	require.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(c.gate)
	require.Eventually(t, func() bool {
		snap, _ := s.Snapshot("getBooks(1,10)")
		return snap.Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
}

func TestRefetchAfter(t *testing.T) {
	s := New(Options{KeepUnusedFor: time.Minute, RefetchAfter: 20 * time.Millisecond})
	t.Cleanup(s.Stop)
	c := &counter{}
	ctx := context.Background()

	_, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	v, err := s.Query(ctx, booksDef(c))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestUnusedEntriesExpire(t *testing.T) {
	s := New(Options{KeepUnusedFor: 20 * time.Millisecond})
	t.Cleanup(s.Stop)
	c := &counter{}
	ctx := context.Background()

	unsubscribe := s.Subscribe(ctx, booksDef(c), func(Snapshot) {})
	time.Sleep(40 * time.Millisecond)
	_, ok := s.Snapshot("getBooks(1,10)")
	assert.True(t, ok, "subscribed entries never expire")

	unsubscribe()
	time.Sleep(40 * time.Millisecond)
	_, ok = s.Snapshot("getBooks(1,10)")
	assert.False(t, ok)
}
