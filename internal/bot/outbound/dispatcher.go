package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/transport"
	"github.com/dmitrijs2005/gembot/internal/common"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

const DefaultInterval = 3 * time.Second

// Dispatcher drains the queue on a fixed interval.
type Dispatcher struct {
	queue       *Queue
	sender      transport.Sender
	logger      logging.Logger
	interval    time.Duration
	maxAttempts int
}

// NewDispatcher builds a dispatcher. A non-positive interval falls back to
// DefaultInterval; maxAttempts of zero retries forever.
func NewDispatcher(q *Queue, s transport.Sender, logger logging.Logger, interval time.Duration, maxAttempts int) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	return &Dispatcher{
		queue:       q,
		sender:      s,
		logger:      logger.With("module", "dispatcher"),
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Run ticks until ctx is cancelled. Batches never overlap: a slow batch
// delays the next tick and missed ticks are dropped by the ticker.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info(ctx, "dispatcher started", "interval", d.interval.String(), "max_attempts", d.maxAttempts)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info(context.Background(), "dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick delivers every currently pending envelope once, in id order, and
// returns how many were marked sent.
func (d *Dispatcher) Tick(ctx context.Context) int {
	log := d.logger.With("tick_id", uuid.NewString())

	pending, err := d.queue.ListPending(ctx)
	if err != nil {
		log.Error(ctx, "failed to fetch pending envelopes", "error", err)
		return 0
	}
	if len(pending) > 0 {
		log.Debug(ctx, "delivering pending envelopes", "count", len(pending))
	}

	sent := 0
	for _, e := range pending {
		if ctx.Err() != nil {
			return sent
		}
		if d.deliver(ctx, log, e) {
			sent++
		}
	}
	return sent
}

func (d *Dispatcher) deliver(ctx context.Context, log logging.Logger, e models.OutboundEnvelope) bool {
	log = log.With("envelope_id", e.ID, "user_id", e.UserID)

	if err := d.sender.SendText(ctx, e.UserID, common.AdminPrefix+e.Content); err != nil {
		log.Error(ctx, "failed to deliver envelope", "error", err)
		st, ferr := d.queue.RecordFailure(ctx, e.ID, err.Error(), d.maxAttempts)
		if ferr != nil {
			log.Error(ctx, "failed to record delivery failure", "error", ferr)
		} else if st == models.StatusFailed {
			log.Warn(ctx, "envelope moved to failed", "max_attempts", d.maxAttempts)
		}
		return false
	}

	// a MarkSent failure leaves the envelope pending, so it is sent again
	if err := d.queue.MarkSent(ctx, e.ID); err != nil {
		log.Error(ctx, "delivered but failed to mark sent", "error", err)
		return false
	}
	log.Info(ctx, "envelope delivered")
	return true
}
