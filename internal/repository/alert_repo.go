package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"homewatch/internal/models"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

var _ AlertRepo = (*AlertSQLite)(nil)

// SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS"; lexicographic order matches
// chronological order, so window queries can compare text.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func fmtSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// Insert appends one alert record. CreatedAt defaults to now when zero.
func (r *AlertSQLite) Insert(ctx context.Context, rec models.AlertRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proactive_alerts (alert_type, entity_id, message, severity, sent, acknowledged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ConditionType,
		nullableString(rec.EntityID),
		rec.Message,
		rec.Severity,
		rec.Sent,
		rec.Acknowledged,
		fmtSQLiteTime(createdAt),
	)
	return err
}

// CountSince counts records for a condition type, optionally narrowed to one
// entity, created strictly after since. This is the dedup-window query.
func (r *AlertSQLite) CountSince(ctx context.Context, conditionType, entityID string, since time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM proactive_alerts WHERE alert_type = ? AND created_at > ?`
	args := []any{conditionType, fmtSQLiteTime(since)}
	if entityID != "" {
		q = `SELECT COUNT(*) FROM proactive_alerts WHERE alert_type = ? AND entity_id = ? AND created_at > ?`
		args = []any{conditionType, entityID, fmtSQLiteTime(since)}
	}

	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountSentSince counts confirmed-sent records at or after since.
func (r *AlertSQLite) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM proactive_alerts WHERE created_at >= ? AND sent = 1`,
		fmtSQLiteTime(since),
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CountCreatedSince counts all records at or after since.
func (r *AlertSQLite) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM proactive_alerts WHERE created_at >= ?`,
		fmtSQLiteTime(since),
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// List returns records filtered by [from, to] (inclusive) and/or condition
// type, newest first.
func (r *AlertSQLite) List(ctx context.Context, from, to time.Time, conditionType string) ([]models.AlertRecord, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, fmtSQLiteTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, fmtSQLiteTime(to))
	}
	if conditionType = strings.TrimSpace(conditionType); conditionType != "" {
		conds = append(conds, "alert_type = ?")
		args = append(args, conditionType)
	}

	q := `SELECT id, alert_type, entity_id, message, severity, sent, acknowledged, created_at FROM proactive_alerts`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AlertRecord, 0, 64)
	for rows.Next() {
		var (
			rec      models.AlertRecord
			entityID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ConditionType, &entityID, &rec.Message, &rec.Severity, &rec.Sent, &rec.Acknowledged, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.EntityID = entityID.String
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Totals aggregates the whole log for the status endpoint.
func (r *AlertSQLite) Totals(ctx context.Context) (models.AlertTotals, error) {
	totals := models.AlertTotals{ByType: map[string]int{}}

	rows, err := r.db.QueryContext(ctx,
		`SELECT alert_type, COUNT(*) FROM proactive_alerts GROUP BY alert_type`)
	if err != nil {
		return models.AlertTotals{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return models.AlertTotals{}, err
		}
		totals.ByType[typ] = n
		totals.Total += n
	}
	if err := rows.Err(); err != nil {
		return models.AlertTotals{}, err
	}

	var last sql.NullTime
	err = r.db.QueryRowContext(ctx,
		`SELECT created_at FROM proactive_alerts ORDER BY id DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.AlertTotals{}, err
	}
	if last.Valid {
		totals.LastAlert = last.Time.UTC()
	}
	return totals, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
