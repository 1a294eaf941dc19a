package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config, log *zap.Logger) (services.IMailService, error) {
	s := cfg.SMTP
	mailService, err := services.NewSMTPMailService(services.SMTPConfig{
		Host:       s.Host,
		Port:       s.Port,
		Username:   s.Username,
		Password:   s.Password,
		From:       s.From,
		FromName:   s.FromName,
		UseSSL:     s.UseSSL,
		RequireTLS: s.RequireTLS,
		AppName:    s.AppName,
		AppBaseURL: s.AppBaseURL,
	})
	if err != nil {
		log.Error("failed to initialize SMTP mail service", zap.Error(err))
		return nil, err
	}
	return mailService, nil
}
