package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	req "storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/utils"
)

type SessionController struct {
	sessionService services.SessionService
	log            *zap.Logger
}

func NewSessionController(sessionService services.SessionService, log *zap.Logger) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		log:            log,
	}
}

// InitiateSession godoc
// @Summary Open a hosted payment session for the cart
// @Description Prices the cart from the catalog, recomputes shipping and opens a gateway session. Client prices are never used.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.InitiateSessionRequest true "Cart and delivery address"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/session [post]
func (s *SessionController) InitiateSession(c *gin.Context) {
	var request req.InitiateSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	session, err := s.sessionService.InitiateSession(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, s.log, err)
		return
	}

	utils.RespondSuccess(c, session, "Payment session created")
}
