package notifier_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/notifier"
	"storefront/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideTransport, providePublisher),
	fx.Invoke(startConsumer),
)

// transport is either the SQS queue or the in-process channel.
type transport struct {
	publisher notifier.Publisher
	channel   *notifier.ChannelPublisher
	sqs       notifier.SQSAPI
	queueURL  string
}

func provideTransport(cfg *config.Config, log *zap.Logger) (*transport, error) {
	n := cfg.Notify
	if n.SQSQueueURL == "" {
		ch := notifier.NewChannelPublisher(n.BufferSize, n.MaxAttempts, log)
		log.Info("order notifications use the in-process queue")
		return &transport{publisher: ch, channel: ch}, nil
	}

	client, err := notifier.NewSQSClient(context.Background(), n.AWSRegion, n.AWSAccessKey, n.AWSSecret)
	if err != nil {
		return nil, err
	}
	log.Info("order notifications use sqs", zap.String("queue_url", n.SQSQueueURL))
	return &transport{
		publisher: notifier.NewSQSPublisher(client, n.SQSQueueURL),
		sqs:       client,
		queueURL:  n.SQSQueueURL,
	}, nil
}

func providePublisher(t *transport) notifier.Publisher {
	return t.publisher
}

// startConsumer delivers confirmations by email for the app's lifetime.
func startConsumer(lc fx.Lifecycle, t *transport, mail services.IMailService, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := notifier.Handler(mail.SendOrderConfirmation)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if t.channel != nil {
				go t.channel.Run(ctx, handle)
			} else {
				go notifier.NewSQSConsumer(t.sqs, t.queueURL, handle, log).Run(ctx)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
