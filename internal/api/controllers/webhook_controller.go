package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/services"
	"storefront/pkg/utils"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookController struct {
	webhookService services.WebhookService
	log            *zap.Logger
}

func NewWebhookController(webhookService services.WebhookService, log *zap.Logger) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		log:            log,
	}
}

// Receive godoc
// @Summary Payment gateway callback
// @Description HMAC-SHA256 signed over the raw body. 200 for processed, duplicate and ignored events; 400 asks the gateway to retry.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "hex HMAC-SHA256 of the body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 413 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Router /webhooks/payment [post]
func (w *WebhookController) Receive(c *gin.Context) {
	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Missing signature")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable body")
		return
	}
	if len(body) > maxWebhookBody {
		w.log.Warn("webhook body too large", zap.String("trace_id", c.GetString("trace_id")))
		utils.RespondError(c, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	result, err := w.webhookService.HandleWebhook(c.Request.Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidSignature):
			utils.RespondError(c, http.StatusUnauthorized, "Invalid signature")
		case errors.Is(err, utils.ErrInvalidWebhookPayload),
			errors.Is(err, utils.ErrOrderNotFound),
			errors.Is(err, utils.ErrPaymentMismatch):
			utils.RespondError(c, http.StatusBadRequest, "Webhook not applied")
		default:
			w.log.Error("webhook failed", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
			utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondSuccess(c, result, "Webhook received")
}

// Health godoc
// @Summary Webhook endpoint health
// @Description Reports database connectivity and whether the webhook log table exists.
// @Tags Webhooks
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /webhooks/payment [get]
func (w *WebhookController) Health(c *gin.Context) {
	health := w.webhookService.Health(c.Request.Context())
	if health.Status != "ok" {
		utils.RespondErrorWithData(c, http.StatusServiceUnavailable, "Webhook storage unavailable", health)
		return
	}
	utils.RespondSuccess(c, health, "ok")
}
