// Package confirm polls for a definitive payment outcome after the gateway
// has accepted a charge.
package confirm

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/causeway/internal/config"
	"github.com/smallbiznis/causeway/internal/metrics"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
)

// CheckFunc inspects the current confirmation state. done=true ends the
// poll with err (nil on success). done=false means ask again; a non-nil err
// alongside it is treated as a transient miss.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Poller retries a confirmation check on a fixed interval. Each Await call
// owns its ticker, so concurrent polls and cancellation never interfere.
type Poller struct {
	interval time.Duration
	attempts int
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// PollerParam defines dependencies for the confirmation poller.
type PollerParam struct {
	fx.In

	Config  config.Config
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewPoller(p PollerParam) *Poller {
	interval := p.Config.ConfirmPollInterval
	if interval <= 0 {
		interval = time.Second
	}
	attempts := p.Config.ConfirmPollAttempts
	if attempts <= 0 {
		attempts = 30
	}
	return &Poller{
		interval: interval,
		attempts: attempts,
		metrics:  p.Metrics,
		log:      p.Log.Named("payment.confirm"),
	}
}

// Await runs check until it reports done, the attempt budget is exhausted,
// or ctx is cancelled. Exhaustion returns a TimeoutError carrying the
// intent id; cancellation returns ctx.Err().
func (p *Poller) Await(ctx context.Context, intentID string, check CheckFunc) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.attempts; attempt++ {
		done, err := check(ctx)
		if done {
			return err
		}
		if err != nil {
			p.log.Debug("confirmation attempt inconclusive",
				zap.String("payment_intent_id", intentID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	p.metrics.ConfirmTimeouts.Inc()
	p.log.Warn("confirmation polling exhausted",
		zap.String("payment_intent_id", intentID),
		zap.Int("attempts", p.attempts),
	)
	return &paymentdomain.TimeoutError{PaymentIntentID: intentID, Attempts: p.attempts}
}
