package handlers

import (
	"homewatch/internal/logger"
	"homewatch/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Engine status stream over WebSocket — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerMonitorRoutes(api)
		h.registerAlertRoutes(api)
		h.registerStatsRoutes(api)
	}
}

func (h *Handler) registerMonitorRoutes(api *gin.RouterGroup) {
	monitor := api.Group("/monitor")
	{
		monitor.GET("/status", h.getStatus)
		// Runs one detection cycle outside the schedule.
		monitor.POST("/run", h.runCycle)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("/", h.getAlerts)
	}
}

func (h *Handler) registerStatsRoutes(api *gin.RouterGroup) {
	stats := api.Group("/stats")
	{
		stats.GET("/daily", h.getDailyStats)
		stats.POST("/capture", h.captureStats)
	}
}
