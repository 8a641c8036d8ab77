package service

import (
	"context"
	"fmt"
	"time"

	"homewatch/internal/models"
	"homewatch/internal/repository"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90
)

// StatsService captures and serves daily fleet-health rows.
type StatsService struct {
	statsRepo repository.StatsRepo
	provider  StateProvider
	zone      *time.Location
}

func NewStatsService(statsRepo repository.StatsRepo, provider StateProvider, zone *time.Location) *StatsService {
	return &StatsService{statsRepo: statsRepo, provider: provider, zone: zone}
}

// Capture fetches a fresh snapshot and stores today's row.
func (s *StatsService) Capture(ctx context.Context) (models.DailyStats, error) {
	states, err := s.provider.FetchStates(ctx)
	if err != nil {
		return models.DailyStats{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	return s.CaptureFrom(ctx, states, time.Now().In(s.zone))
}

// CaptureFrom stores the row for local's day from an already-fetched
// snapshot, replacing an earlier capture of the same day.
func (s *StatsService) CaptureFrom(ctx context.Context, states []models.DeviceState, local time.Time) (models.DailyStats, error) {
	row := aggregateStats(states, local)
	if err := s.statsRepo.UpsertDay(ctx, row); err != nil {
		return models.DailyStats{}, fmt.Errorf("store daily stats: %w", err)
	}
	return row, nil
}

// History returns the most recent rows, newest first. days is clamped to
// [1, 90]; zero or negative means the default window.
func (s *StatsService) History(ctx context.Context, days int) ([]models.DailyStats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}
	return s.statsRepo.List(ctx, days)
}

// aggregateStats reduces a snapshot to the daily counters. "unknown" counts
// as offline alongside "unavailable".
func aggregateStats(states []models.DeviceState, local time.Time) models.DailyStats {
	row := models.DailyStats{
		Date:       local.Format("2006-01-02"),
		Total:      len(states),
		ByKind:     map[string]models.KindCount{},
		CapturedAt: local.UTC(),
	}
	for _, d := range states {
		online := d.Status != models.StateUnavailable && d.Status != models.StateUnknown
		kc := row.ByKind[d.Kind()]
		kc.Total++
		if online {
			kc.Online++
			row.Online++
		}
		row.ByKind[d.Kind()] = kc
	}
	row.Offline = row.Total - row.Online
	return row
}
