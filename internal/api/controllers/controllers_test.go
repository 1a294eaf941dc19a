package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiBody struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiBody {
	t.Helper()
	var body apiBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// asUser injects what JWTAuthMiddleware would have set.
func asUser(email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "u-1")
		c.Set(middleware.CtxUserEmail, email)
		c.Set(middleware.CtxRole, role)
		c.Next()
	}
}

type stubVerification struct {
	caller services.Caller
	result *resp.VerifyPaymentResponse
	err    error
}

func (s *stubVerification) VerifyPayment(_ context.Context, caller services.Caller, _ req.VerifyPaymentRequest) (*resp.VerifyPaymentResponse, error) {
	s.caller = caller
	return s.result, s.err
}

type stubWebhook struct {
	signature string
	body      []byte
	result    *resp.WebhookResult
	err       error
	health    resp.WebhookHealth
}

func (s *stubWebhook) HandleWebhook(_ context.Context, rawBody []byte, signature string) (*resp.WebhookResult, error) {
	s.body = rawBody
	s.signature = signature
	return s.result, s.err
}

func (s *stubWebhook) Health(context.Context) resp.WebhookHealth { return s.health }

type stubOrders struct {
	placed *resp.OrderResponse
	err    error
	gotID  uint64
}

func (s *stubOrders) PlaceOrder(context.Context, services.Caller, req.PlaceOrderRequest) (*resp.OrderResponse, error) {
	return s.placed, s.err
}

func (s *stubOrders) GetOrder(_ context.Context, _ services.Caller, id uint64) (*resp.OrderResponse, error) {
	s.gotID = id
	return s.placed, s.err
}

type stubReconcile struct {
	path string
}

func (s *stubReconcile) SweepStalePending(context.Context) (*resp.SweepReport, error) {
	return &resp.SweepReport{}, nil
}

func (s *stubReconcile) ReconcileOrder(_ context.Context, id uint64, path string) (*resp.ReconcileResult, error) {
	s.path = path
	return &resp.ReconcileResult{OrderID: id, Outcome: services.OutcomeConfirmed, Applied: true}, nil
}

func (s *stubReconcile) Run(context.Context) {}

type stubReport struct {
	from, to time.Time
}

func (s *stubReport) ExportWebhookLogs(_ context.Context, from, to time.Time) ([]byte, error) {
	s.from, s.to = from, to
	return []byte("PK-xlsx"), nil
}

type stubTokens struct {
	exchangeErr error
	code, state string
}

func (s *stubTokens) Token(context.Context) (*oauth2.Token, error) { return nil, nil }
func (s *stubTokens) ReauthRequired(cause error) error {
	return &utils.GatewayAuthRequiredError{Cause: cause}
}
func (s *stubTokens) AuthorizationURL() (string, error) {
	return "https://gateway.test/authorize?state=abc", nil
}
func (s *stubTokens) Exchange(_ context.Context, code, state string) error {
	s.code, s.state = code, state
	return s.exchangeErr
}

func TestVerifyPayment_GatewayProblemsAreGeneric402(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{"indeterminate", utils.ErrPaymentIndeterminate},
		{"mismatch", utils.ErrPaymentMismatch},
		{"gateway", utils.ErrGatewayError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubVerification{err: tc.err}
			ctrl := NewPaymentController(svc, zap.NewNop())

			r := gin.New()
			r.POST("/payments/verify", asUser("a@b.com", "user"), ctrl.VerifyPayment)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/verify",
				bytes.NewBufferString(`{"order_id":7,"payment_id":"pay_1"}`)))

			assert.Equal(t, http.StatusPaymentRequired, w.Code)
			assert.Equal(t, verificationFailed, decode(t, w).Message)
		})
	}
}

func TestVerifyPayment_PassesCallerAndMapsErrors(t *testing.T) {
	svc := &stubVerification{err: utils.ErrUnauthorized}
	ctrl := NewPaymentController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/payments/verify", asUser("a@b.com", "user"), ctrl.VerifyPayment)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/verify",
		bytes.NewBufferString(`{"order_id":7,"payment_id":"pay_1"}`)))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "a@b.com", svc.caller.Email)

	svc.err = &utils.GatewayAuthRequiredError{Cause: errors.New("refresh revoked")}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/verify",
		bytes.NewBufferString(`{"order_id":7,"payment_id":"pay_1"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refresh revoked")
}

func TestVerifyPayment_AlreadySettled(t *testing.T) {
	svc := &stubVerification{result: &resp.VerifyPaymentResponse{OrderID: 7, Status: "processing", PaymentStatus: "paid", IsSuccess: true, AlreadySettled: true}}
	ctrl := NewPaymentController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/payments/verify", asUser("a@b.com", "user"), ctrl.VerifyPayment)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/verify",
		bytes.NewBufferString(`{"order_id":7}`)))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Order already settled", body.Message)
	assert.Contains(t, string(body.Data), `"already_settled":true`)
}

func TestWebhookReceive_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"signature", utils.ErrInvalidSignature, http.StatusUnauthorized},
		{"payload", utils.ErrInvalidWebhookPayload, http.StatusBadRequest},
		{"unknown order", utils.ErrOrderNotFound, http.StatusBadRequest},
		{"amount", utils.ErrPaymentMismatch, http.StatusBadRequest},
		{"database", utils.ErrDatabaseError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubWebhook{err: tc.err}
			ctrl := NewWebhookController(svc, zap.NewNop())

			r := gin.New()
			r.POST("/webhooks/payment", ctrl.Receive)

			rq := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString(`{"event_type":"payment.succeeded"}`))
			rq.Header.Set(SignatureHeader, "abc")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, rq)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestWebhookReceive_PassesRawBody(t *testing.T) {
	orderID := uint64(9)
	svc := &stubWebhook{result: &resp.WebhookResult{Outcome: "processed", OrderID: &orderID}}
	ctrl := NewWebhookController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/payment", ctrl.Receive)

	raw := `{"event_type":"payment.succeeded",  "payment_id":"pay_1"}`
	rq := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString(raw))
	rq.Header.Set(SignatureHeader, "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, rq)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, raw, string(svc.body))
	assert.Equal(t, "deadbeef", svc.signature)
}

func TestWebhookReceive_OversizedBody(t *testing.T) {
	svc := &stubWebhook{result: &resp.WebhookResult{Outcome: "processed"}}
	ctrl := NewWebhookController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/payment", ctrl.Receive)

	rq := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(bytes.Repeat([]byte("a"), maxWebhookBody+1)))
	rq.Header.Set(SignatureHeader, "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, rq)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.body)

	rq = httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(bytes.Repeat([]byte("a"), maxWebhookBody)))
	rq.Header.Set(SignatureHeader, "deadbeef")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, rq)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.body, maxWebhookBody)
}

func TestWebhookReceive_MissingSignature(t *testing.T) {
	svc := &stubWebhook{}
	ctrl := NewWebhookController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/payment", ctrl.Receive)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, svc.body)
}

func TestWebhookHealth(t *testing.T) {
	svc := &stubWebhook{health: resp.WebhookHealth{Status: "degraded", Database: true}}
	ctrl := NewWebhookController(svc, zap.NewNop())

	r := gin.New()
	r.GET("/webhooks/payment", ctrl.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhooks/payment", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	svc.health = resp.WebhookHealth{Status: "ok", Database: true, WebhookLogTable: true}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhooks/payment", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrder_OutOfStockIsConflict(t *testing.T) {
	svc := &stubOrders{err: &utils.OutOfStockError{ProductID: 3, Available: 1}}
	ctrl := NewOrderController(svc, zap.NewNop())

	r := gin.New()
	r.POST("/orders", asUser("a@b.com", "user"), ctrl.PlaceOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{
		"items":[{"product_id":3,"quantity":2}],
		"shipping_charge":"80",
		"payment_method":"cod",
		"address":{"name":"A","email":"a@b.com","phone":"9","line1":"x","city":"Pune","state":"Maharashtra","pincode":"411001"}
	}`)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"available":1`)
}

func TestGetOrder_InvalidTransitionIsConflict(t *testing.T) {
	svc := &stubOrders{err: utils.ErrInvalidTransition}
	ctrl := NewOrderController(svc, zap.NewNop())

	r := gin.New()
	r.GET("/orders/:id", asUser("a@b.com", "user"), ctrl.GetOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/3", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Order cannot change state", decode(t, w).Message)
}

func TestPlaceOrder_InvalidPayload(t *testing.T) {
	ctrl := NewOrderController(&stubOrders{}, zap.NewNop())

	r := gin.New()
	r.POST("/orders", asUser("a@b.com", "user"), ctrl.PlaceOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"items":[]}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_BadID(t *testing.T) {
	svc := &stubOrders{placed: &resp.OrderResponse{}}
	ctrl := NewOrderController(svc, zap.NewNop())

	r := gin.New()
	r.GET("/orders/:id", asUser("a@b.com", "user"), ctrl.GetOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(42), svc.gotID)
}

func newAdmin(rec *stubReconcile, rep *stubReport, tokens *stubTokens) *AdminController {
	return NewAdminController(nil, rec, rep, tokens, zap.NewNop())
}

func TestAdminReconcile_UsesAdminPath(t *testing.T) {
	rec := &stubReconcile{}
	ctrl := newAdmin(rec, &stubReport{}, &stubTokens{})

	r := gin.New()
	r.POST("/admin/orders/:id/reconcile", asUser("ops@b.com", "admin"), ctrl.ReconcileOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/orders/5/reconcile", bytes.NewBufferString(`{"reason":"customer called"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", rec.path)
}

func TestAdminExport_ReturnsWorkbook(t *testing.T) {
	rep := &stubReport{}
	ctrl := newAdmin(&stubReconcile{}, rep, &stubTokens{})

	r := gin.New()
	r.GET("/admin/webhook-logs/export", ctrl.ExportWebhookLogs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/admin/webhook-logs/export?start=2025-10-01T00:00:00Z&end=2025-10-03T00:00:00Z", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "webhook-logs-20251001-20251003.xlsx")
	assert.Equal(t, "PK-xlsx", w.Body.String())
	assert.True(t, rep.from.Before(rep.to))
}

func TestAdminExport_RejectsMixedRange(t *testing.T) {
	ctrl := newAdmin(&stubReconcile{}, &stubReport{}, &stubTokens{})

	r := gin.New()
	r.GET("/admin/webhook-logs/export", ctrl.ExportWebhookLogs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/webhook-logs/export?last_days=3&start=2025-10-01T00:00:00Z", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminGatewayConnectAndCallback(t *testing.T) {
	tokens := &stubTokens{}
	ctrl := newAdmin(&stubReconcile{}, &stubReport{}, tokens)

	r := gin.New()
	r.GET("/admin/gateway/connect", ctrl.ConnectGateway)
	r.GET("/admin/gateway/oauth/callback", ctrl.OAuthCallback)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/gateway/connect", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gateway.test/authorize")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/gateway/oauth/callback?code=c1&state=s1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", tokens.code)
	assert.Equal(t, "s1", tokens.state)

	tokens.exchangeErr = utils.ErrInvalidOAuthState
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/gateway/oauth/callback?code=c1&state=stale", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
