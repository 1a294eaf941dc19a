package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceIDOf(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithCode(c, http.StatusOK, data, message)
}

func RespondWithCode(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
	})
}

func RespondErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
		Data:    data,
	})
}

// HandleServiceError maps the error taxonomy onto HTTP responses. Messages
// are fixed strings; err itself is only logged.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	var oos *OutOfStockError

	switch {
	case errors.As(err, &oos):
		RespondErrorWithData(c, http.StatusConflict, "Insufficient stock",
			gin.H{"product_id": oos.ProductID, "available": oos.Available})
	case errors.Is(err, ErrInvalidRequest):
		RespondError(c, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, ErrProductNotFound):
		RespondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrShippingMismatch):
		RespondError(c, http.StatusBadRequest, "Shipping charge does not match")
	case errors.Is(err, ErrOrderNotFound):
		RespondError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrInvalidTransition):
		log.Warn("invalid order state transition", zap.String("trace_id", traceIDOf(c)), zap.Error(err))
		RespondError(c, http.StatusConflict, "Order cannot change state")
	case errors.Is(err, ErrUnauthorized):
		RespondError(c, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, ErrInvalidOAuthState):
		RespondError(c, http.StatusBadRequest, "Authorization link expired")
	case errors.Is(err, ErrGatewayAuthRequired):
		log.Warn("gateway authorization required", zap.String("trace_id", traceIDOf(c)), zap.Error(err))
		RespondError(c, http.StatusServiceUnavailable, "Payments are temporarily unavailable")
	case errors.Is(err, ErrGatewayError):
		log.Error("gateway error", zap.String("trace_id", traceIDOf(c)), zap.Error(err))
		RespondError(c, http.StatusBadGateway, "Payment provider error")
	case errors.Is(err, ErrDatabaseError):
		log.Error("database error", zap.String("trace_id", traceIDOf(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("unknown error", zap.String("trace_id", traceIDOf(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
