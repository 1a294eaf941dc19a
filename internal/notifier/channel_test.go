package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEvent(id uint64) OrderConfirmedEvent {
	return OrderConfirmedEvent{
		OrderID:       id,
		CustomerEmail: "buyer@example.com",
		TotalAmount:   decimal.NewFromInt(900),
		Currency:      "INR",
		Path:          "webhook",
		ConfirmedAt:   time.Now(),
	}
}

func TestChannelPublisher_DeliversEvents(t *testing.T) {
	pub := NewChannelPublisher(4, 3, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got atomic.Uint64
	go pub.Run(ctx, func(_ context.Context, evt OrderConfirmedEvent) error {
		got.Store(evt.OrderID)
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), testEvent(42)))
	assert.Eventually(t, func() bool { return got.Load() == 42 }, time.Second, 5*time.Millisecond)
}

func TestChannelPublisher_RetriesThenSucceeds(t *testing.T) {
	pub := NewChannelPublisher(4, 3, zap.NewNop())
	pub.backoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go pub.Run(ctx, func(context.Context, OrderConfirmedEvent) error {
		if calls.Add(1) < 3 {
			return errors.New("smtp down")
		}
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), testEvent(1)))
	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 3 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestChannelPublisher_GivesUpAfterMaxAttempts(t *testing.T) {
	pub := NewChannelPublisher(4, 2, zap.NewNop())
	pub.backoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go pub.Run(ctx, func(context.Context, OrderConfirmedEvent) error {
		calls.Add(1)
		return errors.New("smtp down")
	})

	require.NoError(t, pub.Publish(context.Background(), testEvent(1)))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestChannelPublisher_FullBufferDoesNotBlock(t *testing.T) {
	pub := NewChannelPublisher(1, 1, zap.NewNop())

	require.NoError(t, pub.Publish(context.Background(), testEvent(1)))
	assert.ErrorIs(t, pub.Publish(context.Background(), testEvent(2)), ErrQueueFull)
}

type failingPublisher struct{ calls atomic.Int32 }

func (f *failingPublisher) Publish(context.Context, OrderConfirmedEvent) error {
	f.calls.Add(1)
	return errors.New("queue unavailable")
}

func TestPublishAsync_SwallowsErrors(t *testing.T) {
	pub := &failingPublisher{}

	PublishAsync(pub, zap.NewNop(), testEvent(7))

	assert.Eventually(t, func() bool { return pub.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}
