package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/gateway"
	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	dashboardService      services.DashboardService
	reconciliationService services.ReconciliationService
	reportService         services.ReportService
	tokens                gateway.TokenProvider
	log                   *zap.Logger
}

func NewAdminController(
	dashboardService services.DashboardService,
	reconciliationService services.ReconciliationService,
	reportService services.ReportService,
	tokens gateway.TokenProvider,
	log *zap.Logger,
) *AdminController {
	return &AdminController{
		dashboardService:      dashboardService,
		reconciliationService: reconciliationService,
		reportService:         reportService,
		tokens:                tokens,
		log:                   log,
	}
}

// GetSummary godoc
// @Summary Reconciliation summary
// @Description Orders by state, webhook outcomes, stale pending orders, confirmed revenue and recent settlements
// @Tags Admin
// @Produce json
// @Param start     query string false "RFC3339 start"
// @Param end       query string false "RFC3339 end"
// @Param last_days query int    false "Relative lookback in days (mutually exclusive with start/end). Default 7"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/reconciliation/summary [get]
func (a *AdminController) GetSummary(c *gin.Context) {
	rng, ok := parseRange(c, 7)
	if !ok {
		return
	}

	summary, err := a.dashboardService.BuildSummary(c.Request.Context(), rng)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, summary, "Reconciliation summary fetched")
}

// ReconcileOrder godoc
// @Summary Reconcile one order against the gateway
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body request_models.ReconcileRequest false "Reason"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/orders/{id}/reconcile [post]
func (a *AdminController) ReconcileOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var request req.ReconcileRequest
	_ = c.ShouldBindJSON(&request)

	a.log.Info("manual reconcile requested",
		zap.Uint64("order_id", id),
		zap.String("by", c.GetString(middleware.CtxUserEmail)),
		zap.String("reason", request.Reason))

	result, err := a.reconciliationService.ReconcileOrder(c.Request.Context(), id, repositories.PathAdmin)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, result, "Order reconciled")
}

// ExportWebhookLogs godoc
// @Summary Download the webhook log as XLSX
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start     query string false "RFC3339 start"
// @Param end       query string false "RFC3339 end"
// @Param last_days query int    false "Relative lookback in days. Default 7"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /admin/webhook-logs/export [get]
func (a *AdminController) ExportWebhookLogs(c *gin.Context) {
	rng, ok := parseRange(c, 7)
	if !ok {
		return
	}

	data, err := a.reportService.ExportWebhookLogs(c.Request.Context(), rng.Start, rng.End)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	filename := fmt.Sprintf("webhook-logs-%s-%s.xlsx", rng.Start.Format("20060102"), rng.End.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ConnectGateway godoc
// @Summary Start gateway authorization
// @Description Returns the URL an operator opens to (re)authorize the gateway integration
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/gateway/connect [get]
func (a *AdminController) ConnectGateway(c *gin.Context) {
	url, err := a.tokens.AuthorizationURL()
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}
	utils.RespondSuccess(c, resp.GatewayConnectResponse{AuthorizationURL: url}, "Open the authorization URL to connect the gateway")
}

// OAuthCallback godoc
// @Summary Gateway authorization callback
// @Tags Admin
// @Produce json
// @Param code  query string true "Authorization code"
// @Param state query string true "State issued by /admin/gateway/connect"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /admin/gateway/oauth/callback [get]
func (a *AdminController) OAuthCallback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		a.log.Warn("gateway authorization denied", zap.String("error", e))
		utils.RespondError(c, http.StatusBadRequest, "Authorization was not granted")
		return
	}

	ctx := c.Request.Context()
	if err := a.tokens.Exchange(ctx, c.Query("code"), c.Query("state")); err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	a.log.Info("gateway connected", zap.Time("at", time.Now()))
	utils.RespondSuccess(c, nil, "Gateway connected")
}
