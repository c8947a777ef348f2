package refresher

import (
	"context"
	"sync"
	"testing"
	"time"

	"folio-backend/internal/models"
	"folio-backend/internal/quotes"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	holdings []models.Holding
	prices   map[uuid.UUID]decimal.Decimal
}

func (s *fakeSource) ListRefreshable(ctx context.Context) ([]models.Holding, error) {
	return s.holdings, nil
}

func (s *fakeSource) SetPrice(ctx context.Context, holdingID uuid.UUID, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prices == nil {
		s.prices = map[uuid.UUID]decimal.Decimal{}
	}
	s.prices[holdingID] = price
	return nil
}

func (s *fakeSource) persisted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prices)
}

type fakeQuoter struct {
	mu            sync.Mutex
	calls         int
	concurrent    int
	maxConcurrent int
	respond       func(symbol string) (*quotes.Quote, error)
}

func (q *fakeQuoter) Lookup(ctx context.Context, assetType models.AssetType, symbol string) (*quotes.Quote, error) {
	q.mu.Lock()
	q.calls++
	q.concurrent++
	if q.concurrent > q.maxConcurrent {
		q.maxConcurrent = q.concurrent
	}
	q.mu.Unlock()

	time.Sleep(2 * time.Millisecond) // let batch members overlap

	q.mu.Lock()
	q.concurrent--
	q.mu.Unlock()
	return q.respond(symbol)
}

func (q *fakeQuoter) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

func testOptions() Options {
	return Options{
		Interval:   time.Hour, // ticks driven manually
		BatchSize:  5,
		BatchDelay: time.Millisecond,
		Cooldown:   60 * time.Millisecond,
		TripAfter:  3,
		Retry:      quotes.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, RateLimitDelay: time.Millisecond},
	}
}

func nHoldings(n int) []models.Holding {
	out := make([]models.Holding, n)
	for i := range out {
		out[i] = models.Holding{
			HoldingID: uuid.New(),
			Symbol:    "SYM",
			AssetType: models.AssetEquity,
			Quantity:  decimal.NewFromInt(1),
		}
	}
	return out
}

func TestTick_QuotesAllHoldingsInBoundedBatches(t *testing.T) {
	source := &fakeSource{holdings: nHoldings(12)}
	quoter := &fakeQuoter{respond: func(string) (*quotes.Quote, error) {
		return &quotes.Quote{Current: decimal.NewFromInt(42)}, nil
	}}
	r := New(source, quoter, testOptions())

	r.Tick(context.Background())

	assert.Equal(t, 12, quoter.callCount())
	assert.LessOrEqual(t, quoter.maxConcurrent, 5, "batch size bounds concurrency")

	// Persists run async; wait for all of them.
	require.Eventually(t, func() bool { return source.persisted() == 12 }, time.Second, 5*time.Millisecond)
	for _, p := range source.prices {
		assert.True(t, p.Equal(decimal.NewFromInt(42)))
	}
}

func TestTick_FailedQuoteLeavesPriceUnchanged(t *testing.T) {
	source := &fakeSource{holdings: nHoldings(3)}
	quoter := &fakeQuoter{respond: func(string) (*quotes.Quote, error) {
		return nil, quotes.ErrBadQuote
	}}
	r := New(source, quoter, testOptions())

	r.Tick(context.Background())

	assert.Equal(t, 3, quoter.callCount())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, source.persisted(), "no price written on bad quotes")
}

func TestTick_SustainedRateLimitTripsCooldown(t *testing.T) {
	source := &fakeSource{holdings: nHoldings(2)}
	quoter := &fakeQuoter{respond: func(string) (*quotes.Quote, error) {
		return nil, quotes.ErrRateLimited
	}}
	r := New(source, quoter, testOptions())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r.Tick(ctx)
	}
	tripped := quoter.callCount()
	assert.Equal(t, 6, tripped, "each of the three ticks still polls")

	// Breaker is now open: ticks during cooldown issue no quote calls.
	r.Tick(ctx)
	r.Tick(ctx)
	assert.Equal(t, tripped, quoter.callCount(), "no polling during cooldown")

	// After the cooldown elapses polling resumes.
	time.Sleep(80 * time.Millisecond)
	r.Tick(ctx)
	assert.Greater(t, quoter.callCount(), tripped)
}

func TestTick_CleanTickResetsRateLimitStreak(t *testing.T) {
	source := &fakeSource{holdings: nHoldings(1)}
	limited := true
	quoter := &fakeQuoter{respond: func(string) (*quotes.Quote, error) {
		if limited {
			return nil, quotes.ErrRateLimited
		}
		return &quotes.Quote{Current: decimal.NewFromInt(10)}, nil
	}}
	r := New(source, quoter, testOptions())
	ctx := context.Background()

	r.Tick(ctx)
	r.Tick(ctx)
	limited = false
	r.Tick(ctx) // clean tick breaks the streak
	limited = true
	r.Tick(ctx)
	r.Tick(ctx)

	// Five ticks, never three limited in a row, so the breaker stays closed.
	r.Tick(ctx)
	assert.Equal(t, 6, quoter.callCount())
}

func TestStartStop_TicksOnIntervalWithoutOverlap(t *testing.T) {
	source := &fakeSource{holdings: nHoldings(1)}
	quoter := &fakeQuoter{respond: func(string) (*quotes.Quote, error) {
		return &quotes.Quote{Current: decimal.NewFromInt(1)}, nil
	}}
	opts := testOptions()
	opts.Interval = 10 * time.Millisecond
	r := New(source, quoter, opts)

	r.Start(context.Background())
	require.Eventually(t, func() bool { return quoter.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	r.Stop()

	after := quoter.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, quoter.callCount(), "no ticks after Stop")
}
