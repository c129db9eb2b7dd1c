package currency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRateSource is a mock implementation of RateSource
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context) (*exchange.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Snapshot), args.Error(1)
}

// MockSnapshotCache is a mock implementation of SnapshotCache
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context) (*exchange.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Snapshot), args.Error(1)
}

func (m *MockSnapshotCache) Set(ctx context.Context, snap *exchange.Snapshot, ttl time.Duration) error {
	return m.Called(ctx, snap, ttl).Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testSnapshot(at time.Time, eur string) *exchange.Snapshot {
	return exchange.NewSnapshot(map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString(eur),
		"SAR": decimal.RequireFromString("3.75"),
	}, at.Format(time.DateOnly), at)
}

func newTestService(source RateSource, clock *fakeClock, opts ...Option) *RateService {
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewRateService(source, zap.NewNop(), opts...)
}

func TestRateService_FetchesOnceWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := new(MockRateSource)
	source.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now, "0.90"), nil).Once()

	svc := newTestService(source, clock)
	ctx := context.Background()

	first := svc.Snapshot(ctx)
	require.NotNil(t, first)

	clock.Advance(59 * time.Minute)
	second := svc.Snapshot(ctx)
	assert.Same(t, first, second)

	source.AssertNumberOfCalls(t, "FetchRates", 1)
}

func TestRateService_RefetchesAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := new(MockRateSource)
	source.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now, "0.90"), nil).Once()
	source.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now.Add(time.Hour), "0.95"), nil).Once()

	svc := newTestService(source, clock)
	ctx := context.Background()

	svc.Snapshot(ctx)
	clock.Advance(time.Hour)
	snap := svc.Snapshot(ctx)

	require.NotNil(t, snap)
	assert.True(t, snap.Rate(valueobject.EUR).Equal(decimal.RequireFromString("0.95")))
	source.AssertNumberOfCalls(t, "FetchRates", 2)
}

func TestRateService_CustomTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := new(MockRateSource)
	source.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now, "0.90"), nil)

	svc := newTestService(source, clock, WithTTL(10*time.Minute))
	svc.Snapshot(context.Background())
	clock.Advance(11 * time.Minute)
	svc.Snapshot(context.Background())

	source.AssertNumberOfCalls(t, "FetchRates", 2)
}

// blockingSource counts calls and blocks until released
type blockingSource struct {
	calls   atomic.Int32
	release chan struct{}
	snap    *exchange.Snapshot
}

func (s *blockingSource) FetchRates(ctx context.Context) (*exchange.Snapshot, error) {
	s.calls.Add(1)
	<-s.release
	return s.snap, nil
}

func TestRateService_CoalescesConcurrentFetches(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := &blockingSource{release: make(chan struct{}), snap: testSnapshot(clock.now, "0.90")}
	svc := newTestService(source, clock)

	const callers = 25
	results := make([]*exchange.Snapshot, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Snapshot(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	for _, r := range results {
		assert.Same(t, source.snap, r)
	}
}

func TestRateService_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := new(MockRateSource)
	source.On("FetchRates", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(testSnapshot(clock.now, "0.90"), nil)

	svc := newTestService(source, clock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotNil(t, svc.Snapshot(ctx))
}

func TestRateService_FailOpen(t *testing.T) {
	t.Run("no previous snapshot yields nil", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(nil, errors.New("upstream down"))

		svc := newTestService(source, clock)
		assert.Nil(t, svc.Snapshot(context.Background()))

		conv := svc.Converter(context.Background(), valueobject.EUR)
		assert.True(t, conv.ToDisplay(decimal.NewFromInt(100), valueobject.USD).Equal(decimal.NewFromInt(100)),
			"absent rates leave amounts unchanged")
	})

	t.Run("failure keeps the previous snapshot", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		prev := testSnapshot(clock.now, "0.90")
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(prev, nil).Once()
		source.On("FetchRates", mock.Anything).Return(nil, errors.New("timeout"))

		svc := newTestService(source, clock)
		svc.Snapshot(context.Background())
		clock.Advance(2 * time.Hour)

		assert.Same(t, prev, svc.Snapshot(context.Background()))
	})
}

func TestRateService_FailureIsNotRetriedEveryCall(t *testing.T) {
	t.Run("sequential calls during an outage share one attempt", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(nil, errors.New("upstream down"))

		svc := newTestService(source, clock)
		for i := 0; i < 5; i++ {
			assert.Nil(t, svc.Snapshot(context.Background()))
			clock.Advance(time.Second)
		}

		source.AssertNumberOfCalls(t, "FetchRates", 1)
	})

	t.Run("upstream is tried again after the backoff", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		fresh := testSnapshot(clock.now, "0.90")
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(nil, errors.New("upstream down")).Once()
		source.On("FetchRates", mock.Anything).Return(fresh, nil).Once()

		svc := newTestService(source, clock, WithFailureBackoff(time.Minute))
		assert.Nil(t, svc.Snapshot(context.Background()))

		clock.Advance(30 * time.Second)
		assert.Nil(t, svc.Snapshot(context.Background()))
		source.AssertNumberOfCalls(t, "FetchRates", 1)

		clock.Advance(31 * time.Second)
		assert.Same(t, fresh, svc.Snapshot(context.Background()))
		source.AssertNumberOfCalls(t, "FetchRates", 2)
	})

	t.Run("stale snapshot is served while cooling down", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		prev := testSnapshot(clock.now, "0.90")
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(prev, nil).Once()
		source.On("FetchRates", mock.Anything).Return(nil, errors.New("timeout"))

		svc := newTestService(source, clock)
		svc.Snapshot(context.Background())
		clock.Advance(2 * time.Hour)

		assert.Same(t, prev, svc.Snapshot(context.Background()))
		clock.Advance(time.Minute)
		assert.Same(t, prev, svc.Snapshot(context.Background()))
		source.AssertNumberOfCalls(t, "FetchRates", 2)
	})

	t.Run("backoff never exceeds the freshness window", func(t *testing.T) {
		svc := NewRateService(new(MockRateSource), zap.NewNop(), WithTTL(time.Minute), WithFailureBackoff(time.Hour))
		assert.Equal(t, time.Minute, svc.backoff)
	})
}

func TestRateService_SharedCache(t *testing.T) {
	t.Run("fresh shared snapshot skips upstream", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		l2 := new(MockSnapshotCache)
		l2.On("Get", mock.Anything).Return(testSnapshot(clock.now.Add(-10*time.Minute), "0.91"), nil)
		source := new(MockRateSource)

		svc := newTestService(source, clock, WithSharedCache(l2))
		snap := svc.Snapshot(context.Background())

		require.NotNil(t, snap)
		assert.True(t, snap.Rate(valueobject.EUR).Equal(decimal.RequireFromString("0.91")))
		source.AssertNotCalled(t, "FetchRates", mock.Anything)
	})

	t.Run("stale shared snapshot is replaced from upstream", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		fresh := testSnapshot(clock.now, "0.93")
		l2 := new(MockSnapshotCache)
		l2.On("Get", mock.Anything).Return(testSnapshot(clock.now.Add(-3*time.Hour), "0.80"), nil)
		l2.On("Set", mock.Anything, fresh, time.Hour).Return(nil)
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(fresh, nil)

		svc := newTestService(source, clock, WithSharedCache(l2))
		assert.Same(t, fresh, svc.Snapshot(context.Background()))
		l2.AssertExpectations(t)
	})

	t.Run("shared cache errors fall through to upstream", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
		fresh := testSnapshot(clock.now, "0.93")
		l2 := new(MockSnapshotCache)
		l2.On("Get", mock.Anything).Return(nil, errors.New("connection refused"))
		l2.On("Set", mock.Anything, fresh, time.Hour).Return(errors.New("connection refused"))
		source := new(MockRateSource)
		source.On("FetchRates", mock.Anything).Return(fresh, nil)

		svc := newTestService(source, clock, WithSharedCache(l2))
		assert.Same(t, fresh, svc.Snapshot(context.Background()))
	})
}

func TestRateService_Convert(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	source := new(MockRateSource)
	source.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now, "0.85"), nil)
	svc := newTestService(source, clock)
	ctx := context.Background()

	res, err := svc.Convert(ctx, ConvertInput{Amount: decimal.NewFromInt(100), From: "usd", To: "EUR"})
	require.NoError(t, err)
	assert.True(t, res.Converted.Equal(decimal.RequireFromString("85.00")))
	assert.Equal(t, "85 €", res.Formatted)
	assert.Equal(t, "2026-05-01", res.RatesDate)
	assert.False(t, res.Estimated)

	_, err = svc.Convert(ctx, ConvertInput{Amount: decimal.NewFromInt(1), From: "USD", To: "GBP"})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CURRENCY_CODE", domainErr.Code)
}

func TestRateService_Rates(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}

	failing := new(MockRateSource)
	failing.On("FetchRates", mock.Anything).Return(nil, errors.New("down"))
	view := newTestService(failing, clock).Rates(context.Background())
	assert.False(t, view.Available)
	assert.Empty(t, view.Rates)

	ok := new(MockRateSource)
	ok.On("FetchRates", mock.Anything).Return(testSnapshot(clock.now, "0.85"), nil)
	view = newTestService(ok, clock).Rates(context.Background())
	assert.True(t, view.Available)
	assert.Equal(t, "USD", view.Base)
	assert.True(t, view.Rates["USD"].Equal(decimal.NewFromInt(1)))
}
