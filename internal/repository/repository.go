package repository

import (
	"context"
	"database/sql"
	"time"

	"homewatch/internal/models"
	dbinit "homewatch/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// AlertRepo is the append-only alert log and its window queries.
type AlertRepo interface {
	Insert(ctx context.Context, rec models.AlertRecord) error
	// CountSince counts records matching conditionType (and entityID, unless
	// empty) created strictly after since.
	CountSince(ctx context.Context, conditionType, entityID string, since time.Time) (int, error)
	// CountSentSince counts confirmed-sent records created at or after since.
	// Callers pass start-of-hour or start-of-local-day for the rate caps.
	CountSentSince(ctx context.Context, since time.Time) (int, error)
	// CountCreatedSince counts all records created at or after since.
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	List(ctx context.Context, from, to time.Time, conditionType string) ([]models.AlertRecord, error)
	Totals(ctx context.Context) (models.AlertTotals, error)
}

// StatsRepo holds one fleet-health row per local day.
type StatsRepo interface {
	UpsertDay(ctx context.Context, s models.DailyStats) error
	List(ctx context.Context, days int) ([]models.DailyStats, error)
}

type Repository struct {
	Alerts AlertRepo
	Stats  StatsRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Alerts: NewAlertSQLite(db),
		Stats:  NewStatsSQLite(db),
		Auth:   NewUserRepository(db),
	}
}

// InitDB re-exports the SQLite bootstrap so main wires a single package.
func InitDB(path string) (*sql.DB, error) {
	return dbinit.InitDB(path)
}
