// Package cache implements a tag-invalidated query cache. Each query is
// identified by a key and provides a set of tags; mutations invalidate tags,
// which marks every dependent query stale and refetches the ones that still
// have subscribers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emzola/bibliodesk/internal/jsonlog"
	"github.com/emzola/bibliodesk/internal/metrics"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownQuery is returned by Refetch for a key the store does not hold.
var ErrUnknownQuery = errors.New("unknown query")

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Tag labels the data a query provides. A tag with an empty ID stands for
// every record of its type.
type Tag struct {
	Type string
	ID   string
}

// TypeTag returns the tag covering every record of typ.
func TypeTag(typ string) Tag { return Tag{Type: typ} }

// IDTag returns the tag of one record.
func IDTag(typ, id string) Tag { return Tag{Type: typ, ID: id} }

// Matches reports whether invalidating t affects a query that provides p.
func (t Tag) Matches(p Tag) bool {
	if t.Type != p.Type {
		return false
	}
	return t.ID == "" || t.ID == p.ID
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// FetchFunc loads the data of a query.
type FetchFunc func(ctx context.Context) (any, error)

// QueryDef describes one query: its cache key, the tags it provides and how
// to fetch it.
type QueryDef struct {
	Key      string
	Provides []Tag
	Fetch    FetchFunc
}

// Snapshot is a point-in-time copy of an entry. Data keeps the last
// successful result while a refetch is running or after it failed.
type Snapshot struct {
	Key       string
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

// Listener is notified after every state change of a subscribed entry.
type Listener func(Snapshot)

// Options configures a Store.
type Options struct {
	// KeepUnusedFor is how long an entry without subscribers is kept.
	KeepUnusedFor time.Duration
	// RefetchAfter makes successful data stale after the given age. Zero
	// means data only goes stale through invalidation.
	RefetchAfter time.Duration
	Logger       *jsonlog.Logger
}

type entry struct {
	def        QueryDef
	status     Status
	data       any
	err        error
	updatedAt  time.Time
	stale      bool
	generation uint64
	applied    uint64
	listeners  map[uint64]Listener
}

func (e *entry) provides(tags []Tag) bool {
	for _, t := range tags {
		for _, p := range e.def.Provides {
			if t.Matches(p) {
				return true
			}
		}
	}
	return false
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:       e.def.Key,
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale,
	}
}

func (e *entry) subscribers() []Listener {
	ls := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		ls = append(ls, fn)
	}
	return ls
}

// Store is the process-wide query cache. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries *ttlcache.Cache[string, *entry]
	flights singleflight.Group
	nextID  uint64
	opts    Options
	logger  *jsonlog.Logger
	started atomic.Bool

	// ctx outlives any single caller so that an abandoned fetch still
	// completes and fills the cache. It is cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Store. Call Start to run expiry and Stop at exit.
func New(opts Options) *Store {
	if opts.KeepUnusedFor <= 0 {
		opts.KeepUnusedFor = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = jsonlog.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		entries: ttlcache.New(ttlcache.WithTTL[string, *entry](opts.KeepUnusedFor)),
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs the expiry loop and blocks until Stop is called.
func (s *Store) Start() {
	s.started.Store(true)
	s.entries.Start()
}

// Stop cancels in-flight fetches and stops the expiry loop.
func (s *Store) Stop() {
	s.cancel()
	if s.started.CompareAndSwap(true, false) {
		s.entries.Stop()
	}
}

// lookup returns the entry for def, creating it when missing. The caller
// must hold s.mu.
func (s *Store) lookup(def QueryDef) *entry {
	if item := s.entries.Get(def.Key); item != nil {
		e := item.Value()
		if def.Fetch != nil {
			e.def = def
		}
		return e
	}
	e := &entry{def: def, listeners: make(map[uint64]Listener)}
	s.entries.Set(def.Key, e, ttlcache.DefaultTTL)
	metrics.CacheEntries.Set(float64(s.entries.Len()))
	return e
}

// fresh reports whether e can be served without a fetch. The caller must
// hold s.mu.
func (s *Store) fresh(e *entry) bool {
	if e.status != StatusSuccess || e.stale {
		return false
	}
	if s.opts.RefetchAfter > 0 && time.Since(e.updatedAt) >= s.opts.RefetchAfter {
		return false
	}
	return true
}

// Query returns the cached data of def when it is fresh and fetches it
// otherwise. Concurrent fetches of one key share a single call to Fetch.
func (s *Store) Query(ctx context.Context, def QueryDef) (any, error) {
	s.mu.Lock()
	e := s.lookup(def)
	if s.fresh(e) {
		data := e.data
		s.mu.Unlock()
		metrics.CacheHits.Inc()
		return data, nil
	}
	s.mu.Unlock()
	return s.fetch(ctx, def)
}

// Subscribe registers fn for state changes of def. A stale or missing entry
// is fetched before Subscribe returns; otherwise fn receives the current
// snapshot once. The returned func unsubscribes; it never cancels a fetch.
func (s *Store) Subscribe(ctx context.Context, def QueryDef, fn Listener) func() {
	s.mu.Lock()
	e := s.lookup(def)
	s.nextID++
	id := s.nextID
	e.listeners[id] = fn
	s.entries.Set(def.Key, e, ttlcache.NoTTL)
	needFetch := !s.fresh(e)
	snap := e.snapshot()
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(e.listeners, id)
			if len(e.listeners) > 0 {
				return
			}
			// Only restore the expiry of the entry still stored under the key.
			if item := s.entries.Get(def.Key); item != nil && item.Value() == e {
				s.entries.Set(def.Key, e, ttlcache.DefaultTTL)
			}
		})
	}

	if needFetch {
		s.fetch(ctx, def)
	} else {
		fn(snap)
	}
	return unsubscribe
}

// Invalidate marks every entry providing one of tags stale. Entries with
// subscribers are refetched before Invalidate returns; the others refetch
// on their next Query.
func (s *Store) Invalidate(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	for _, t := range tags {
		metrics.CacheInvalidations.WithLabelValues(t.Type).Inc()
	}

	s.mu.Lock()
	var refetch []QueryDef
	items := s.entries.Items()
	metrics.CacheEntries.Set(float64(len(items)))
	for key, item := range items {
		e := item.Value()
		if !e.provides(tags) {
			continue
		}
		e.stale = true
		e.generation++
		s.flights.Forget(key)
		if len(e.listeners) > 0 {
			refetch = append(refetch, e.def)
		}
	}
	s.mu.Unlock()

	s.logger.PrintDebug("cache invalidated", map[string]string{
		"tags":      fmt.Sprint(tags),
		"refetches": fmt.Sprint(len(refetch)),
	})

	var wg sync.WaitGroup
	for _, def := range refetch {
		wg.Add(1)
		go func(def QueryDef) {
			defer wg.Done()
			s.fetch(ctx, def)
		}(def)
	}
	wg.Wait()
}

// Refetch forces a fetch of the entry stored under key.
func (s *Store) Refetch(ctx context.Context, key string) error {
	s.mu.Lock()
	item := s.entries.Get(key)
	if item == nil {
		s.mu.Unlock()
		return ErrUnknownQuery
	}
	e := item.Value()
	e.generation++
	s.flights.Forget(key)
	def := e.def
	s.mu.Unlock()

	_, err := s.fetch(ctx, def)
	return err
}

// Snapshot returns the current state of the entry stored under key.
func (s *Store) Snapshot(key string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.entries.Get(key)
	if item == nil {
		return Snapshot{Key: key, Status: StatusIdle}, false
	}
	return item.Value().snapshot(), true
}

// Len returns the number of entries held.
func (s *Store) Len() int {
	return s.entries.Len()
}

// fetch joins or starts the flight for def and waits for it or for ctx.
func (s *Store) fetch(ctx context.Context, def QueryDef) (any, error) {
	ch := s.flights.DoChan(def.Key, func() (any, error) {
		return s.run(def)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// run performs one fetch and applies its result to the entry.
func (s *Store) run(def QueryDef) (any, error) {
	s.mu.Lock()
	e := s.lookup(def)
	gen := e.generation
	fetchFn := e.def.Fetch
	if fetchFn == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("query %s has no fetch func", def.Key)
	}
	e.status = StatusFetching
	snap, listeners := e.snapshot(), e.subscribers()
	s.mu.Unlock()
	notify(listeners, snap)

	data, err := fetchFn(s.ctx)

	s.mu.Lock()
	e = s.lookup(def)
	if gen < e.applied {
		// A fetch started after an invalidation already landed.
		s.mu.Unlock()
		return data, err
	}
	e.applied = gen
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
		e.updatedAt = time.Now()
	}
	e.stale = gen != e.generation
	snap, listeners = e.snapshot(), e.subscribers()
	s.mu.Unlock()

	if err != nil {
		metrics.CacheFetches.WithLabelValues("error").Inc()
		s.logger.PrintError(err, map[string]string{"query": def.Key})
	} else {
		metrics.CacheFetches.WithLabelValues("success").Inc()
		s.logger.PrintDebug("query fetched", map[string]string{"query": def.Key})
	}
	notify(listeners, snap)
	return data, err
}

func notify(listeners []Listener, snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
