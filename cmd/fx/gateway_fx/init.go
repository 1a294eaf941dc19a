package gateway_fx

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/repositories"
	mem "storefront/pkg/memcache"
)

var Module = fx.Provide(
	provideCredentialRepo,
	provideTokenProvider,
	provideGatewayClient,
	provideSigner,
	provideReferenceNode,
)

func provideCredentialRepo(db *gorm.DB) repositories.CredentialRepository {
	return repositories.NewCredentialRepository(db)
}

func provideTokenProvider(cfg *config.Config, store repositories.CredentialRepository, states mem.StateStore, log *zap.Logger) gateway.TokenProvider {
	g := cfg.Gateway
	oauthCfg := &oauth2.Config{
		ClientID:     g.OAuthClientID,
		ClientSecret: g.OAuthClientSecret,
		RedirectURL:  g.OAuthRedirectURL,
		Scopes:       g.OAuthScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  g.OAuthAuthURL,
			TokenURL: g.OAuthTokenURL,
		},
	}
	return gateway.NewOAuthTokenProvider(g.Provider, oauthCfg, store, states, log)
}

func provideGatewayClient(cfg *config.Config, tokens gateway.TokenProvider, log *zap.Logger) gateway.Client {
	return gateway.NewHostedClient(gateway.HostedClientConfig{
		BaseURL:    cfg.Gateway.BaseURL,
		AccountID:  cfg.Gateway.AccountID,
		AuthScheme: cfg.Gateway.AuthScheme,
		Timeout:    cfg.Gateway.Timeout,
	}, tokens, log)
}

func provideSigner(cfg *config.Config, log *zap.Logger) *gateway.Signer {
	if cfg.WebhookSecret == "" {
		log.Warn("WEBHOOK_SECRET is not set, every webhook will be rejected")
	}
	return gateway.NewSigner(cfg.WebhookSecret)
}

// provideReferenceNode issues the merchant reference numbers sent with each
// payment session.
func provideReferenceNode(cfg *config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
