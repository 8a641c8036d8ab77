package handlers

import (
	"errors"
	"net/http"
	"time"

	"homewatch/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusCycleRun = "cycle_run"

	errGetStatus = "failed to load engine status"
	errRunCycle  = "failed to run monitoring cycle"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Engine status
// @Description  Totals, today's count, per-type breakdown and rate-limit headroom.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  models.EngineStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/monitor/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitor.Status(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "monitor_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Run one monitoring cycle now
// @Description  Executes the full detect/suppress/send cycle outside the schedule.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "a cycle is already running"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/monitor/run [post]
// @Security     BearerAuth
func (h *Handler) runCycle(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Monitor.RunCycle(ctx, time.Now().UTC()); err != nil {
		if errors.Is(err, service.ErrCycleInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// A failed cycle is almost always the hub or the store misbehaving.
		h.logAndJSONError(c, http.StatusBadGateway, errRunCycle, "monitor_run_failed", err)
		return
	}

	resp := gin.H{"status": statusCycleRun}
	if st, err := h.services.Monitor.Status(ctx); err == nil {
		resp["engine"] = st
	}
	c.JSON(http.StatusOK, resp)
}
