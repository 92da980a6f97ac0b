package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibrahem-ghaybour/storefront/services"
)

type StatsController struct {
	stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// Dashboard serves the admin statistics: windowed metrics with
// period-over-period change, the daily overview series and recent sales.
func (sc *StatsController) Dashboard(c *gin.Context) {
	q := services.DashboardQuery{
		Range: c.Query("range"),
		Limit: queryInt64(c, "limit", 0),
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid startDate")
			return
		}
		q.Start = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid endDate")
			return
		}
		q.End = &t
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	dashboard, err := sc.stats.Dashboard(ctx, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, dashboard)
}
