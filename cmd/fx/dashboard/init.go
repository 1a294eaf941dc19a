package dashboard

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideDashboardRepo, provideDashboardService, provideReportService,
)

func provideDashboardRepo(db *gorm.DB) repositories.DashboardRepository {
	return repositories.NewDashboardRepository(db)
}

func provideDashboardService(dashboardRepo repositories.DashboardRepository, cfg *config.Config) services.DashboardService {
	return services.NewDashboardService(dashboardRepo, cfg.Sweep.MinAge, cfg.Gateway.Currency)
}

func provideReportService(logs repositories.WebhookLogRepository) services.ReportService {
	return services.NewReportService(logs)
}
