package reconciliation_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideReconciliationService),
	fx.Invoke(startSweeper),
)

func provideReconciliationService(
	orders repositories.OrderRepository,
	gw gateway.Client,
	publisher notifier.Publisher,
	mail services.IMailService,
	cfg *config.Config,
	log *zap.Logger,
) services.ReconciliationService {
	return services.NewReconciliationService(orders, gw, publisher, mail, cfg.Gateway.Currency, services.SweepOptions{
		Interval: cfg.Sweep.Interval,
		MinAge:   cfg.Sweep.MinAge,
		Batch:    cfg.Sweep.Batch,
		AlertTo:  cfg.Sweep.AlertTo,
	}, log.Named("sweeper"))
}

func startSweeper(lc fx.Lifecycle, svc services.ReconciliationService) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				svc.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
