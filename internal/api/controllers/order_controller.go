package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	req "storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
	log          *zap.Logger
}

func NewOrderController(orderService services.OrderService, log *zap.Logger) *OrderController {
	return &OrderController{
		orderService: orderService,
		log:          log,
	}
}

// PlaceOrder godoc
// @Summary Submit checkout
// @Description Creates the order. Online orders need the payments_session_id returned by /payments/session.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body request_models.PlaceOrderRequest true "Checkout"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /orders [post]
func (o *OrderController) PlaceOrder(c *gin.Context) {
	var request req.PlaceOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := o.orderService.PlaceOrder(c.Request.Context(), callerFrom(c), request)
	if err != nil {
		utils.HandleServiceError(c, o.log, err)
		return
	}

	utils.RespondWithCode(c, http.StatusCreated, order, "Order placed")
}

// GetOrder godoc
// @Summary Get an order
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /orders/{id} [get]
func (o *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := o.orderService.GetOrder(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		utils.HandleServiceError(c, o.log, err)
		return
	}

	utils.RespondSuccess(c, order, "Order fetched")
}
