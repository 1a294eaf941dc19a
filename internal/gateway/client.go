package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"storefront/pkg/utils"
)

const maxLoggedBody = 512

type HostedClientConfig struct {
	BaseURL    string
	AccountID  string
	AuthScheme string
	Timeout    time.Duration
}

// HostedClient talks to the hosted gateway's REST API. Every call carries a
// deadline bounded by Timeout and by ctx.
type HostedClient struct {
	http   *fasthttp.Client
	cfg    HostedClientConfig
	tokens TokenProvider
	log    *zap.Logger
}

func NewHostedClient(cfg HostedClientConfig, tokens TokenProvider, log *zap.Logger) *HostedClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	return &HostedClient{
		http: &fasthttp.Client{
			Name:         "storefront-payments",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		cfg:    cfg,
		tokens: tokens,
		log:    log,
	}
}

func (c *HostedClient) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	var out sessionEnvelope
	if err := c.do(ctx, fasthttp.MethodPost, "/paymentsessions", req, &out); err != nil {
		return nil, err
	}
	if out.PaymentsSession == nil || out.PaymentsSession.ID == "" {
		c.log.Error("gateway session response missing session id", zap.Int("code", out.Code), zap.String("message", out.Message))
		return nil, fmt.Errorf("%w: session response missing id", utils.ErrGatewayError)
	}
	return out.PaymentsSession, nil
}

func (c *HostedClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out envelope
	if err := c.do(ctx, fasthttp.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &out); err != nil {
		return nil, err
	}
	if out.Payment == nil {
		return nil, fmt.Errorf("%w: payment response missing payment", utils.ErrGatewayError)
	}
	if out.Payment.PaymentID == "" {
		out.Payment.PaymentID = paymentID
	}
	return out.Payment, nil
}

func (c *HostedClient) GetSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var out envelope
	if err := c.do(ctx, fasthttp.MethodGet, "/paymentsessions/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	if out.PaymentsSession == nil {
		return nil, fmt.Errorf("%w: session response missing session", utils.ErrGatewayError)
	}
	if out.PaymentsSession.SessionID == "" {
		out.PaymentsSession.SessionID = sessionID
	}
	return out.PaymentsSession, nil
}

func (c *HostedClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", utils.ErrGatewayError, err)
	}

	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.cfg.BaseURL + path
	if c.cfg.AccountID != "" {
		uri += "?account_id=" + url.QueryEscape(c.cfg.AccountID)
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", c.cfg.AuthScheme+" "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", utils.ErrGatewayError, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.log.Error("gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("%w: %w", utils.ErrGatewayError, err)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusUnauthorized {
		c.log.Warn("gateway rejected credential", zap.String("path", path))
		return c.tokens.ReauthRequired(fmt.Errorf("gateway returned %d", status))
	}
	if status < 200 || status > 299 {
		c.log.Error("gateway returned non-2xx",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.ByteString("body", truncate(resp.Body())))
		return fmt.Errorf("%w: status %d", utils.ErrGatewayError, status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.log.Error("gateway response undecodable",
			zap.String("path", path),
			zap.ByteString("body", truncate(resp.Body())),
			zap.Error(err))
		return fmt.Errorf("%w: decode response: %v", utils.ErrGatewayError, err)
	}
	return nil
}

func truncate(b []byte) []byte {
	if len(b) > maxLoggedBody {
		return b[:maxLoggedBody]
	}
	return b
}
