package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	resp "storefront/internal/models/response_models"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

func callerFrom(c *gin.Context) services.Caller {
	return services.Caller{
		UserID: c.GetString(middleware.CtxUserID),
		Email:  c.GetString(middleware.CtxUserEmail),
		Role:   c.GetString(middleware.CtxRole),
	}
}

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseRange reads start/end (RFC3339) or last_days from the query string.
func parseRange(c *gin.Context, defaultDays int) (resp.TimeRange, bool) {
	var (
		start, end time.Time
		err        error
	)

	startStr := c.Query("start")
	endStr := c.Query("end")
	lastDaysStr := c.Query("last_days")

	if lastDaysStr != "" && (startStr != "" || endStr != "") {
		utils.RespondError(c, http.StatusBadRequest, "provide either last_days or start/end (not both)")
		return resp.TimeRange{}, false
	}

	switch {
	case lastDaysStr != "":
		d, convErr := strconv.Atoi(lastDaysStr)
		if convErr != nil || d <= 0 {
			utils.RespondError(c, http.StatusBadRequest, "last_days must be a positive integer")
			return resp.TimeRange{}, false
		}
		end = time.Now()
		start = end.AddDate(0, 0, -d)

	default:
		if startStr != "" {
			start, err = time.Parse(time.RFC3339, startStr)
			if err != nil {
				utils.RespondError(c, http.StatusBadRequest, "start must be RFC3339 (e.g. 2025-10-01T00:00:00+05:30)")
				return resp.TimeRange{}, false
			}
		}
		if endStr != "" {
			end, err = time.Parse(time.RFC3339, endStr)
			if err != nil {
				utils.RespondError(c, http.StatusBadRequest, "end must be RFC3339 (e.g. 2025-10-19T23:59:59+05:30)")
				return resp.TimeRange{}, false
			}
		}
		if end.IsZero() {
			end = time.Now()
		}
		if start.IsZero() {
			start = end.AddDate(0, 0, -defaultDays)
		}
	}

	if start.After(end) {
		start, end = end, start
	}
	return resp.TimeRange{Start: start, End: end}, true
}
