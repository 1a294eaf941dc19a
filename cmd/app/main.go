package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"storefront/cmd/fx/config_fx"
	"storefront/cmd/fx/controllers_fx"
	"storefront/cmd/fx/dashboard"
	"storefront/cmd/fx/db_fx"
	"storefront/cmd/fx/gateway_fx"
	"storefront/cmd/fx/mail_fx"
	"storefront/cmd/fx/memcache_fx"
	"storefront/cmd/fx/notifier_fx"
	"storefront/cmd/fx/payment_service_fx"
	"storefront/cmd/fx/reconciliation_fx"
	"storefront/internal/api/controllers"
	"storefront/internal/config"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	app := fx.New(
		config_fx.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		db_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,
		gateway_fx.Module,
		notifier_fx.Module,
		payment_service_fx.Module,
		reconciliation_fx.Module,
		dashboard.Module,
		controllers_fx.Module,

		fx.Provide(provideJWTManager),
		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func provideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.JWTSecret, 0)
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting HTTP server", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	})
}

type routeControllers struct {
	fx.In

	Session *controllers.SessionController
	Payment *controllers.PaymentController
	Order   *controllers.OrderController
	Webhook *controllers.WebhookController
	Admin   *controllers.AdminController
}

func ProvideRouter(cfg *config.Config, jwtManager *utils.JWTManager, log *zap.Logger, ctrls routeControllers) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))

	RegisterRoutes(r, jwtManager, ctrls)

	return r
}

func RegisterRoutes(r *gin.Engine, jwtManager *utils.JWTManager, ctrls routeControllers) {
	auth := middleware.JWTAuthMiddleware(jwtManager)

	paymentsGroup := r.Group("/payments", auth)
	paymentsGroup.POST("/session", ctrls.Session.InitiateSession)
	paymentsGroup.POST("/verify", ctrls.Payment.VerifyPayment)

	ordersGroup := r.Group("/orders", auth)
	ordersGroup.POST("", ctrls.Order.PlaceOrder)
	ordersGroup.GET("/:id", ctrls.Order.GetOrder)

	// Gateway callbacks authenticate by signature, not JWT.
	webhooksGroup := r.Group("/webhooks")
	webhooksGroup.POST("/payment", ctrls.Webhook.Receive)
	webhooksGroup.GET("/payment", ctrls.Webhook.Health)

	// The gateway redirects the operator's browser here; the state nonce
	// authenticates the request.
	r.GET("/admin/gateway/oauth/callback", ctrls.Admin.OAuthCallback)

	adminGroup := r.Group("/admin", auth, middleware.RoleMiddleware("admin"))
	adminGroup.GET("/reconciliation/summary", ctrls.Admin.GetSummary)
	adminGroup.POST("/orders/:id/reconcile", ctrls.Admin.ReconcileOrder)
	adminGroup.GET("/webhook-logs/export", ctrls.Admin.ExportWebhookLogs)
	adminGroup.GET("/gateway/connect", ctrls.Admin.ConnectGateway)
}
