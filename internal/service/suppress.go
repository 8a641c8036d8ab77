package service

import (
	"context"
	"fmt"
	"time"

	"homewatch/internal/models"
)

// applySuppression runs the three suppression stages in order: per-pair dedup
// window, quiet hours (high severity always passes), then the hour/day rate
// caps. Hitting either cap drops the whole remaining batch for this cycle —
// going silent beats interleaving partial batches.
func (s *MonitorService) applySuppression(ctx context.Context, cands []models.AlertCandidate, pol models.Policy, now time.Time) ([]models.AlertCandidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	dedupSince := now.Add(-time.Duration(pol.DedupWindowHours) * time.Hour)
	quiet := inQuietHours(now.In(s.zone), pol.QuietHoursStart, pol.QuietHoursEnd)

	filtered := cands[:0:0]
	for _, c := range cands {
		n, err := s.alerts.CountSince(ctx, c.ConditionType, c.EntityID, dedupSince)
		if err != nil {
			return nil, fmt.Errorf("dedup lookup for %s/%s: %w", c.ConditionType, c.EntityID, err)
		}
		if n > 0 {
			continue
		}
		if quiet && c.Severity != models.SeverityHigh {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	ok, err := s.rateLimitOK(ctx, pol, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warnw("rate limit hit, skipping alerts")
		return nil, nil
	}
	return filtered, nil
}

// rateLimitOK checks both caps against the store.
func (s *MonitorService) rateLimitOK(ctx context.Context, pol models.Policy, now time.Time) (bool, error) {
	lastHour, err := s.alerts.CountSentSince(ctx, now.Truncate(time.Hour))
	if err != nil {
		return false, fmt.Errorf("hourly rate count: %w", err)
	}
	if lastHour >= pol.RateLimitPerHour {
		return false, nil
	}

	today, err := s.alerts.CountSentSince(ctx, localMidnight(now.In(s.zone)))
	if err != nil {
		return false, fmt.Errorf("daily rate count: %w", err)
	}
	return today < pol.RateLimitPerDay, nil
}

// inQuietHours reports whether the local wall clock falls inside
// [start, end], handling ranges that wrap past midnight (e.g. 23:00-07:00).
// Unparseable bounds read as "not quiet".
func inQuietHours(local time.Time, start, end string) bool {
	startMin, ok := parseClock(start)
	if !ok {
		return false
	}
	endMin, ok := parseClock(end)
	if !ok {
		return false
	}

	cur := local.Hour()*60 + local.Minute()
	if startMin <= endMin {
		return cur >= startMin && cur <= endMin
	}
	return cur >= startMin || cur <= endMin
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// localMidnight returns the start of local's day, in local's zone.
func localMidnight(local time.Time) time.Time {
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}
