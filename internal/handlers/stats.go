package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	errDaysInvalid  = "invalid 'days'; expected a positive integer"
	errGetStats     = "failed to load daily stats"
	errCaptureStats = "failed to capture daily stats"
)

// @Summary      Daily fleet stats
// @Description  One row per day: total devices, online/offline split and per-kind counts. Newest first.
// @Tags         stats
// @Produce      json
// @Param        days  query   int  false  "How many recent days to return (1..90, default 7)"  example(7)
// @Success      200   {object}  map[string]interface{}  "count, days"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/stats/daily [get]
// @Security     BearerAuth
func (h *Handler) getDailyStats(c *gin.Context) {
	ctx := c.Request.Context()

	days := 0
	if qs := c.Query("days"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errDaysInvalid})
			return
		}
		days = v
	}

	rows, err := h.services.Stats.History(ctx, days)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStats, "stats_list_failed", err, "days", days)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"days":  rows,
	})
}

// @Summary      Capture today's stats now
// @Description  Fetches a fresh snapshot and stores (or replaces) today's row.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  models.DailyStats
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/stats/capture [post]
// @Security     BearerAuth
func (h *Handler) captureStats(c *gin.Context) {
	ctx := c.Request.Context()
	row, err := h.services.Stats.Capture(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errCaptureStats, "stats_capture_failed", err)
		return
	}
	c.JSON(http.StatusOK, row)
}
