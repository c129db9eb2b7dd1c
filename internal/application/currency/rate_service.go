// Package currency serves exchange-rate snapshots and conversions to the
// rest of the application.
package currency

import (
	"context"
	"sync"
	"time"

	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ratesKey coalesces concurrent upstream fetches
const ratesKey = "/api/exchange-rates"

// maxFailureBackoff caps the wait after a failed fetch
const maxFailureBackoff = 5 * time.Minute

// RateSource fetches a fresh snapshot from the upstream provider
type RateSource interface {
	FetchRates(ctx context.Context) (*exchange.Snapshot, error)
}

// SnapshotCache shares snapshots between instances. Get returns nil, nil
// when nothing is cached.
type SnapshotCache interface {
	Get(ctx context.Context) (*exchange.Snapshot, error)
	Set(ctx context.Context, snap *exchange.Snapshot, ttl time.Duration) error
}

// FetchRecorder receives fetch telemetry
type FetchRecorder interface {
	RecordFetch(ctx context.Context, d time.Duration, err error)
	RecordServed(ctx context.Context, source string)
}

// Option configures a RateService
type Option func(*RateService)

// WithSharedCache adds a cache consulted before the upstream provider
func WithSharedCache(c SnapshotCache) Option {
	return func(s *RateService) { s.shared = c }
}

// WithRecorder attaches fetch telemetry
func WithRecorder(r FetchRecorder) Option {
	return func(s *RateService) { s.recorder = r }
}

// WithTTL overrides the freshness window
func WithTTL(ttl time.Duration) Option {
	return func(s *RateService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithFailureBackoff sets how long a failed fetch suppresses new upstream
// attempts. It is capped at the freshness window.
func WithFailureBackoff(d time.Duration) Option {
	return func(s *RateService) {
		if d > 0 {
			s.backoff = d
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *RateService) { s.now = now }
}

// RateService keeps the most recent snapshot in memory. A stale snapshot
// triggers one upstream fetch shared by all concurrent callers; nothing
// refreshes in the background. Fetch failures are never surfaced: callers
// get the previous snapshot, or nil if there never was one, and conversion
// then leaves amounts unchanged. After a failure the upstream is not called
// again until the backoff has passed.
type RateService struct {
	source   RateSource
	shared   SnapshotCache
	recorder FetchRecorder
	ttl      time.Duration
	backoff  time.Duration
	now      func() time.Time
	logger   *zap.Logger

	group       singleflight.Group
	mu          sync.RWMutex
	current     *exchange.Snapshot
	lastFailure time.Time
}

// NewRateService creates a RateService
func NewRateService(source RateSource, logger *zap.Logger, opts ...Option) *RateService {
	s := &RateService{
		source: source,
		ttl:    exchange.DefaultTTL,
		now:    time.Now,
		logger: logger.Named("rates"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backoff == 0 {
		s.backoff = maxFailureBackoff
	}
	if s.backoff > s.ttl {
		s.backoff = s.ttl
	}
	return s
}

// Snapshot returns the current snapshot, fetching when it is older than
// the freshness window. The result may be nil.
func (s *RateService) Snapshot(ctx context.Context) *exchange.Snapshot {
	now := s.now()
	if snap := s.cached(); snap.IsFresh(now, s.ttl) {
		s.served(ctx, "memory")
		return snap
	}
	if s.coolingDown(now) {
		return s.fallback(ctx)
	}

	// The fetch outlives any single caller's cancellation since other
	// callers may be waiting on it.
	v, _, _ := s.group.Do(ratesKey, func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	snap, _ := v.(*exchange.Snapshot)
	return snap
}

// Converter returns a converter to display using the current snapshot
func (s *RateService) Converter(ctx context.Context, display valueobject.Currency) exchange.Converter {
	return exchange.NewConverter(s.Snapshot(ctx), display)
}

func (s *RateService) refresh(ctx context.Context) *exchange.Snapshot {
	now := s.now()

	// another caller may have refreshed or failed while this one waited for the group
	if snap := s.cached(); snap.IsFresh(now, s.ttl) {
		s.served(ctx, "memory")
		return snap
	}
	if s.coolingDown(now) {
		return s.fallback(ctx)
	}

	if s.shared != nil {
		snap, err := s.shared.Get(ctx)
		if err != nil {
			s.logger.Warn("shared rate cache read failed", zap.Error(err))
		} else if snap.IsFresh(now, s.ttl) {
			s.store(snap)
			s.served(ctx, "shared")
			return snap
		}
	}

	start := time.Now()
	snap, err := s.source.FetchRates(ctx)
	if s.recorder != nil {
		s.recorder.RecordFetch(ctx, time.Since(start), err)
	}
	if err != nil {
		s.markFailure(now)
		s.logger.Warn("exchange rate fetch failed, serving previous snapshot",
			zap.Error(err),
			zap.Bool("has_previous", s.cached() != nil),
			zap.Duration("retry_after", s.backoff),
		)
		return s.fallback(ctx)
	}

	s.store(snap)
	s.served(ctx, "upstream")
	s.logger.Info("exchange rates refreshed", zap.String("date", snap.Date), zap.Int("currencies", len(snap.Rates)))

	if s.shared != nil {
		if err := s.shared.Set(ctx, snap, s.ttl); err != nil {
			s.logger.Warn("shared rate cache write failed", zap.Error(err))
		}
	}
	return snap
}

// fallback serves the previous snapshot, which may be nil or stale
func (s *RateService) fallback(ctx context.Context) *exchange.Snapshot {
	prev := s.cached()
	if prev == nil {
		s.served(ctx, "none")
	} else {
		s.served(ctx, "stale")
	}
	return prev
}

func (s *RateService) coolingDown(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.lastFailure.IsZero() && now.Sub(s.lastFailure) < s.backoff
}

func (s *RateService) markFailure(at time.Time) {
	s.mu.Lock()
	s.lastFailure = at
	s.mu.Unlock()
}

func (s *RateService) cached() *exchange.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// store replaces the snapshot unconditionally; the last completed fetch wins
func (s *RateService) store(snap *exchange.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.lastFailure = time.Time{}
	s.mu.Unlock()
}

func (s *RateService) served(ctx context.Context, source string) {
	if s.recorder != nil {
		s.recorder.RecordServed(ctx, source)
	}
}
