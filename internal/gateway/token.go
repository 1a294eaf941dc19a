package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	dbm "storefront/internal/models/db_models"
	mem "storefront/pkg/memcache"
	"storefront/pkg/utils"
)

const stateTTL = 15 * time.Minute

// TokenProvider supplies the service-to-service access token for the gateway.
type TokenProvider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	// ReauthRequired builds the GatewayAuthRequired error for cause.
	ReauthRequired(cause error) error
	AuthorizationURL() (string, error)
	Exchange(ctx context.Context, code, state string) error
}

type CredentialStore interface {
	FindCredential(ctx context.Context, provider string) (*dbm.GatewayCredential, error)
	SaveCredential(ctx context.Context, cred *dbm.GatewayCredential) error
}

type oauthTokenProvider struct {
	provider string
	cfg      *oauth2.Config
	store    CredentialStore
	states   mem.StateStore
	log      *zap.Logger
}

func NewOAuthTokenProvider(provider string, cfg *oauth2.Config, store CredentialStore, states mem.StateStore, log *zap.Logger) TokenProvider {
	return &oauthTokenProvider{
		provider: provider,
		cfg:      cfg,
		store:    store,
		states:   states,
		log:      log,
	}
}

func (p *oauthTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	cred, err := p.store.FindCredential(ctx, p.provider)
	if err != nil {
		return nil, fmt.Errorf("%w: load gateway credential: %v", utils.ErrDatabaseError, err)
	}
	if cred == nil || (cred.AccessToken == "" && cred.RefreshToken == "") {
		return nil, p.ReauthRequired(errors.New("no gateway credential stored"))
	}

	tok := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
	}
	if cred.Expiry > 0 {
		tok.Expiry = time.Unix(cred.Expiry, 0)
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return nil, p.ReauthRequired(errors.New("access token expired and no refresh token"))
	}

	fresh, err := p.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && (re.ErrorCode == "invalid_grant" || re.Response == nil ||
			re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized) {
			return nil, p.ReauthRequired(err)
		}
		return nil, fmt.Errorf("%w: refresh gateway token: %w", utils.ErrGatewayError, err)
	}

	if err := p.save(ctx, cred, fresh); err != nil {
		// the fresh token is still usable for this call
		p.log.Warn("failed to persist refreshed gateway token", zap.Error(err))
	}
	return fresh, nil
}

func (p *oauthTokenProvider) ReauthRequired(cause error) error {
	url, err := p.AuthorizationURL()
	if err != nil {
		p.log.Error("failed to build gateway reauthorization url", zap.Error(err))
	}
	return &utils.GatewayAuthRequiredError{ReauthURL: url, Cause: cause}
}

func (p *oauthTokenProvider) AuthorizationURL() (string, error) {
	state, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", err
	}
	p.states.Set(state, p.provider, stateTTL)
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (p *oauthTokenProvider) Exchange(ctx context.Context, code, state string) error {
	if code == "" || p.states.Consume(state) != p.provider {
		return utils.ErrInvalidOAuthState
	}

	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: exchange authorization code: %w", utils.ErrGatewayError, err)
	}

	cred, err := p.store.FindCredential(ctx, p.provider)
	if err != nil {
		return fmt.Errorf("%w: load gateway credential: %v", utils.ErrDatabaseError, err)
	}
	return p.save(ctx, cred, tok)
}

func (p *oauthTokenProvider) save(ctx context.Context, existing *dbm.GatewayCredential, tok *oauth2.Token) error {
	cred := existing
	if cred == nil {
		cred = &dbm.GatewayCredential{Provider: p.provider}
	}
	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	cred.TokenType = tok.TokenType
	cred.Expiry = 0
	if !tok.Expiry.IsZero() {
		cred.Expiry = tok.Expiry.Unix()
	}
	if err := p.store.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("%w: save gateway credential: %v", utils.ErrDatabaseError, err)
	}
	return nil
}
