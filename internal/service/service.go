package service

import (
	"context"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository"
)

// StateProvider reads a point-in-time snapshot of all device states.
type StateProvider interface {
	FetchStates(ctx context.Context) ([]models.DeviceState, error)
}

// Notifier delivers one text message. ok reports confirmed delivery.
type Notifier interface {
	Send(ctx context.Context, text string) (ok bool, err error)
}

// PolicyProvider returns the current notification policy. It is consulted
// once per cycle so config edits apply without a restart.
type PolicyProvider interface {
	Get() models.Policy
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitor runs the proactive monitoring loop and exposes its status.
// Stop via context cancellation in main() for graceful shutdown.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
	RunCycle(ctx context.Context, now time.Time) error
	Status(ctx context.Context) (models.EngineStatus, error)
}

// AlertLog exposes the append-only alert history with filtering access.
type AlertLog interface {
	List(ctx context.Context, f AlertFilter) ([]models.AlertRecord, error)
}

// Stats captures and serves daily fleet-health rows.
type Stats interface {
	Capture(ctx context.Context) (models.DailyStats, error)
	History(ctx context.Context, days int) ([]models.DailyStats, error)
}

// Service aggregates all sub-services.
type Service struct {
	Monitor
	AlertLog
	Stats
	Authorization
}

// Deps carries the external collaborators and tuning for NewService.
type Deps struct {
	Provider StateProvider
	Notifier Notifier
	Policy   PolicyProvider
	Log      *logger.Logger

	// JWTSigningKey signs API access tokens.
	JWTSigningKey string
	// LocalOffsetHours shifts UTC to the home's wall clock for quiet hours,
	// briefings and day boundaries.
	LocalOffsetHours int
	// BriefingHour is the local hour of the daily briefing window.
	BriefingHour int
	// Warmup delays the first cycle so stale hub data after a restart does
	// not trigger alerts.
	Warmup time.Duration
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	zone := time.FixedZone("home", deps.LocalOffsetHours*3600)
	stats := NewStatsService(repos.Stats, deps.Provider, zone)
	return &Service{
		Monitor:       NewMonitorService(repos.Alerts, stats, deps, zone),
		AlertLog:      NewAlertLogService(repos.Alerts),
		Stats:         stats,
		Authorization: NewAuthService(repos.Auth, deps.JWTSigningKey),
	}
}
