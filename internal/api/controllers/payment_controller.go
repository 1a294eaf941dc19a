package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	req "storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/utils"
)

const verificationFailed = "payment verification failed"

type PaymentController struct {
	verificationService services.VerificationService
	log                 *zap.Logger
}

func NewPaymentController(verificationService services.VerificationService, log *zap.Logger) *PaymentController {
	return &PaymentController{
		verificationService: verificationService,
		log:                 log,
	}
}

// VerifyPayment godoc
// @Summary Confirm a payment after the widget closes
// @Description Looks the payment up at the gateway and settles the caller's order. Repeated calls return the settled state.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.VerifyPaymentRequest true "Order and gateway payment"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/verify [post]
func (p *PaymentController) VerifyPayment(c *gin.Context) {
	var request req.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := p.verificationService.VerifyPayment(c.Request.Context(), callerFrom(c), request)
	if err != nil {
		p.handleVerifyError(c, err)
		return
	}

	message := "Payment verified"
	if result.AlreadySettled {
		message = "Order already settled"
	}
	utils.RespondSuccess(c, result, message)
}

// Shoppers only ever see a generic failure for gateway-side problems.
func (p *PaymentController) handleVerifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrPaymentIndeterminate),
		errors.Is(err, utils.ErrPaymentMismatch),
		errors.Is(err, utils.ErrGatewayError):
		p.log.Warn("payment verification failed", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		utils.RespondError(c, http.StatusPaymentRequired, verificationFailed)
	default:
		utils.HandleServiceError(c, p.log, err)
	}
}
