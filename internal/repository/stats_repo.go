package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"homewatch/internal/models"
)

type StatsSQLite struct {
	db *sql.DB
}

func NewStatsSQLite(db *sql.DB) *StatsSQLite { return &StatsSQLite{db: db} }

var _ StatsRepo = (*StatsSQLite)(nil)

const upsertDailyStatsSQL = `
	INSERT INTO daily_stats (date, total_entities, online, offline, by_kind, captured_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		total_entities=excluded.total_entities,
		online=excluded.online,
		offline=excluded.offline,
		by_kind=excluded.by_kind,
		captured_at=excluded.captured_at
`

// UpsertDay writes the row for s.Date, replacing an earlier capture of the
// same day.
func (r *StatsSQLite) UpsertDay(ctx context.Context, s models.DailyStats) error {
	var byKind *string
	if len(s.ByKind) > 0 {
		if b, err := json.Marshal(s.ByKind); err == nil {
			str := string(b)
			byKind = &str
		}
	}

	capturedAt := s.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertDailyStatsSQL,
		s.Date,
		s.Total,
		s.Online,
		s.Offline,
		byKind,
		fmtSQLiteTime(capturedAt),
	)
	return err
}

// List returns the most recent captures, newest first, at most days rows.
func (r *StatsSQLite) List(ctx context.Context, days int) ([]models.DailyStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, total_entities, online, offline, by_kind, captured_at
		FROM daily_stats ORDER BY date DESC LIMIT ?
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DailyStats, 0, days)
	for rows.Next() {
		var (
			s      models.DailyStats
			byKind sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Date, &s.Total, &s.Online, &s.Offline, &byKind, &s.CapturedAt); err != nil {
			return nil, err
		}
		if byKind.Valid && byKind.String != "" {
			// keep the row even if the breakdown is malformed
			_ = json.Unmarshal([]byte(byKind.String), &s.ByKind)
		}
		s.CapturedAt = s.CapturedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
