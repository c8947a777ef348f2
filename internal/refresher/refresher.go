package refresher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"folio-backend/internal/models"
	"folio-backend/internal/quotes"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// Quoter fetches one quote with asset-type symbol routing.
type Quoter interface {
	Lookup(ctx context.Context, assetType models.AssetType, symbol string) (*quotes.Quote, error)
}

// Source lists the holdings to poll and persists confirmed prices.
type Source interface {
	ListRefreshable(ctx context.Context) ([]models.Holding, error)
	SetPrice(ctx context.Context, holdingID uuid.UUID, price decimal.Decimal) error
}

// Options tune the scheduler. Zero values take the defaults documented on
// each field.
type Options struct {
	Interval   time.Duration      // tick period; default 2m
	BatchSize  int                // concurrent quotes per batch; default 5
	BatchDelay time.Duration      // pause between batches; default 500ms
	Cooldown   time.Duration      // suspension after repeated rate limiting; default 5m
	TripAfter  uint32             // consecutive rate-limited ticks before cooldown; default 3
	Retry      quotes.RetryPolicy // per-quote retry; default quotes.DefaultRetryPolicy
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 2 * time.Minute
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.BatchDelay <= 0 {
		o.BatchDelay = 500 * time.Millisecond
	}
	if o.Cooldown <= 0 {
		o.Cooldown = 5 * time.Minute
	}
	if o.TripAfter == 0 {
		o.TripAfter = 3
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = quotes.DefaultRetryPolicy()
	}
	return o
}

// errTickRateLimited marks a tick that saw at least one rate-limit response;
// it is what the circuit breaker counts as a failure.
var errTickRateLimited = errors.New("tick rate limited")

// Refresher polls the quote provider for every held instrument on a fixed
// period. Ticks never overlap (a tick arriving while the previous one is
// still in flight is dropped, not queued), holdings are fetched in bounded
// concurrent batches, and sustained rate limiting trips a breaker that
// suspends all polling for a cooldown window.
type Refresher struct {
	source  Source
	quoter  Quoter
	opts    Options
	breaker *gobreaker.CircuitBreaker[struct{}]

	inFlight atomic.Bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New builds a stopped Refresher.
func New(source Source, quoter Quoter, opts Options) *Refresher {
	opts = opts.withDefaults()
	r := &Refresher{
		source: source,
		quoter: quoter,
		opts:   opts,
	}
	r.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "price-refresh",
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("worker", name).Str("from", from.String()).Str("to", to.String()).Msg("price refresh breaker state change")
		},
	})
	return r
}

// Start launches the periodic loop. Cancel the returned stop via Stop (or
// the parent context) to halt the timer; an in-flight batch finishes but no
// new ones start.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
	log.Info().Dur("interval", r.opts.Interval).Int("batch_size", r.opts.BatchSize).Msg("price refresher started")
}

// Stop cancels the loop and waits for any in-flight tick to wind down.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	log.Info().Msg("price refresher stopped")
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.inFlight.CompareAndSwap(false, true) {
				log.Info().Msg("price refresh tick dropped: previous tick still in flight")
				continue
			}
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				defer r.inFlight.Store(false)
				r.Tick(ctx)
			}()
		}
	}
}

// Tick runs one refresh pass through the breaker. During a cooldown the
// breaker is open and no quote call is issued.
func (r *Refresher) Tick(ctx context.Context) {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		if r.refreshAll(ctx) {
			return struct{}{}, errTickRateLimited
		}
		return struct{}{}, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState):
		log.Info().Msg("price refresh suspended: rate-limit cooldown active")
	case errors.Is(err, errTickRateLimited):
		log.Warn().Msg("price refresh tick saw rate limiting")
	default:
		log.Error().Err(err).Msg("price refresh tick failed")
	}
}

// refreshAll fetches quotes for all refreshable holdings in sequential
// batches and reports whether any call was rate limited.
func (r *Refresher) refreshAll(ctx context.Context) (rateLimited bool) {
	holdings, err := r.source.ListRefreshable(ctx)
	if err != nil {
		log.Error().Err(err).Msg("price refresh: listing holdings failed")
		return false
	}
	if len(holdings) == 0 {
		return false
	}

	var limited atomic.Bool
	for start := 0; start < len(holdings); start += r.opts.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + r.opts.BatchSize
		if end > len(holdings) {
			end = len(holdings)
		}

		var wg sync.WaitGroup
		for _, h := range holdings[start:end] {
			wg.Add(1)
			go func(h models.Holding) {
				defer wg.Done()
				if err := r.refreshOne(ctx, h); errors.Is(err, quotes.ErrRateLimited) {
					limited.Store(true)
				}
			}(h)
		}
		wg.Wait()

		if end < len(holdings) {
			sleep(ctx, r.opts.BatchDelay)
		}
	}
	return limited.Load()
}

// refreshOne fetches one quote under the retry policy and persists a
// confirmed value asynchronously. On exhausted retries the holding's price
// is simply left unchanged for this tick.
func (r *Refresher) refreshOne(ctx context.Context, h models.Holding) error {
	var quote *quotes.Quote
	err := r.opts.Retry.Do(ctx, func(ctx context.Context) error {
		var qErr error
		quote, qErr = r.quoter.Lookup(ctx, h.AssetType, h.Symbol)
		return qErr
	})
	if err != nil {
		log.Warn().Err(err).Str("symbol", h.Symbol).Msg("price refresh: quote failed, price unchanged")
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.source.SetPrice(ctx, h.HoldingID, quote.Current); err != nil {
			log.Error().Err(err).Str("holding_id", h.HoldingID.String()).Msg("price refresh: persist failed")
		}
	}()
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
