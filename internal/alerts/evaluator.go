package alerts

import (
	"context"
	"sync"
	"time"

	"folio-backend/internal/holdings"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NotificationSink records a fired alert, applying the per-holding dedup
// window. The bool reports whether a notification was actually created.
type NotificationSink interface {
	NotifyHolding(ctx context.Context, userID, holdingID uuid.UUID, message string) (bool, error)
}

// Evaluator periodically checks every active alert against the most recent
// price it can observe. Firing does not deactivate the alert; re-firing is
// suppressed by the sink's dedup window instead.
type Evaluator struct {
	Alerts   *Service
	Holdings *holdings.Service
	Sink     NotificationSink
	Interval time.Duration // default 5m

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start launches the periodic loop.
func (e *Evaluator) Start(ctx context.Context) {
	if e.Interval <= 0 {
		e.Interval = 5 * time.Minute
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(1)
	go e.run(ctx)
	log.Info().Dur("interval", e.Interval).Msg("alert evaluator started")
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (e *Evaluator) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	log.Info().Msg("alert evaluator stopped")
}

func (e *Evaluator) run(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick evaluates all active alerts once.
func (e *Evaluator) Tick(ctx context.Context) {
	active, err := e.Alerts.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alert evaluator: listing alerts failed")
		return
	}

	for i := range active {
		a := &active[i]
		holding, err := e.Holdings.Get(ctx, a.UserID, a.HoldingID)
		if err != nil {
			// Holding gone; the alert is orphaned and harmless, skip it.
			continue
		}
		if !Evaluate(a, holding.CurrentPrice) {
			continue
		}

		msg := holding.Symbol + " crossed your target of " + formatUSD(a.TargetPrice) +
			" (now " + formatUSD(holding.CurrentPrice) + ")"
		created, err := e.Sink.NotifyHolding(ctx, a.UserID, a.HoldingID, msg)
		if err != nil {
			log.Error().Err(err).Str("alert_id", a.AlertID.String()).Msg("alert evaluator: notification failed")
			continue
		}
		if created {
			log.Info().Str("alert_id", a.AlertID.String()).Str("symbol", holding.Symbol).Msg("alert fired")
		}
	}
}

func formatUSD(d decimal.Decimal) string {
	return money.NewFromFloat(d.InexactFloat64(), money.USD).Display()
}
