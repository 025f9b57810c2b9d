package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	loader "github.com/xenking/anomie-storefront/internal/catalog"
)

// ErrCapacity is returned when the store already holds MaxActive sessions
// and none of them has expired.
var ErrCapacity = errors.New("session capacity reached")

// StoreConfig configures a Store.
type StoreConfig struct {
	// Fetcher loads the catalog for every new session.
	Fetcher loader.Fetcher
	// TTL is how long a session may stay idle before it is evicted.
	TTL time.Duration
	// MaxActive caps the number of live sessions. Zero means no cap.
	MaxActive int
	// MeterProvider is optional; the global provider is used when nil.
	MeterProvider metric.MeterProvider
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Store keeps live sessions in memory, keyed by session ID.
type Store struct {
	fetcher loader.Fetcher
	ttl       time.Duration
	maxActive int
	now       func() time.Time
	active    metric.Int64UpDownCounter

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewStore creates a Store. Catalog loads for its sessions are bound to ctx
// and are cancelled by Close.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("session store requires a catalog fetcher")
	}
	if cfg.TTL <= 0 {
		return nil, errors.Errorf("invalid session TTL %s", cfg.TTL)
	}
	if cfg.MaxActive < 0 {
		return nil, errors.Errorf("invalid session cap %d", cfg.MaxActive)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	active, err := mp.Meter("storefront/session").Int64UpDownCounter("storefront.sessions.active",
		metric.WithDescription("Sessions currently held in memory"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create sessions counter")
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Store{
		fetcher:   cfg.Fetcher,
		ttl:       cfg.TTL,
		maxActive: cfg.MaxActive,
		now:       cfg.Now,
		active:    active,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[string]*Session),
	}, nil
}

// Get returns the session with the given ID and marks it active.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.Touch(st.now())
	}
	return s, ok
}

// Has reports whether id names a live session. Unlike Get it does not
// count as activity.
func (st *Store) Has(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	return ok
}

// Create starts a new session and its catalog load. When the store is at
// capacity, expired sessions are evicted first; if none are, Create fails
// with ErrCapacity and live sessions are left alone.
func (st *Store) Create() (*Session, error) {
	now := st.now()
	s := New(uuid.New().String(), now)

	st.mu.Lock()
	if st.maxActive > 0 && len(st.sessions) >= st.maxActive {
		st.evictLocked(now.Add(-st.ttl))
		if len(st.sessions) >= st.maxActive {
			st.mu.Unlock()
			return nil, ErrCapacity
		}
	}
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	st.active.Add(st.ctx, 1)

	st.wg.Add(1)
	s.Start(st.ctx, st.fetcher)
	go func() {
		defer st.wg.Done()
		<-s.Loaded()
	}()
	return s, nil
}

// GetOrCreate returns the session for id, creating a new one when id is
// empty or unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false, nil
		}
	}
	s, err = st.Create()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict removes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Evict() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.evictLocked(cutoff)
}

func (st *Store) evictLocked(cutoff time.Time) int {
	n := 0
	for id, s := range st.sessions {
		if s.idleSince(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	if n > 0 {
		st.active.Add(st.ctx, int64(-n))
	}
	return n
}

// StartCleanup launches a background goroutine that evicts idle sessions
// every interval. It stops when the store is closed.
func (st *Store) StartCleanup(interval time.Duration) {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-st.ctx.Done():
				return
			case <-ticker.C:
				st.Evict()
			}
		}
	}()
}

// Close cancels in-flight catalog loads, stops cleanup and waits for all
// background goroutines to exit.
func (st *Store) Close() {
	st.cancel()
	st.wg.Wait()
}
