package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ChannelPublisher is the in-process queue used when no SQS queue is
// configured. Publish never blocks; a full buffer drops the event.
type ChannelPublisher struct {
	ch          chan OrderConfirmedEvent
	log         *zap.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewChannelPublisher(buffer, maxAttempts int, log *zap.Logger) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &ChannelPublisher{
		ch:          make(chan OrderConfirmedEvent, buffer),
		log:         log,
		maxAttempts: maxAttempts,
		backoff:     2 * time.Second,
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, evt OrderConfirmedEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.ch <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run drains the queue until ctx is cancelled, retrying each event with a
// linear backoff.
func (p *ChannelPublisher) Run(ctx context.Context, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-p.ch:
			p.deliver(ctx, handle, evt)
		}
	}
}

func (p *ChannelPublisher) deliver(ctx context.Context, handle Handler, evt OrderConfirmedEvent) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := handle(ctx, evt)
		if err == nil {
			return
		}

		p.log.Warn("order confirmation delivery failed",
			zap.Uint64("order_id", evt.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * p.backoff):
		}
	}
	p.log.Error("order confirmation dropped", zap.Uint64("order_id", evt.OrderID))
}
