package service

import (
	"context"
	"testing"
	"time"

	"homewatch/internal/models"
)

func mediumCandidate(entity string) models.AlertCandidate {
	return models.AlertCandidate{
		ConditionType: models.CondDoorOpenLong,
		EntityID:      entity,
		Message:       "🚪 " + entity + " open for 45 min",
		Severity:      models.SeverityMedium,
	}
}

func highCandidate(entity string) models.AlertCandidate {
	return models.AlertCandidate{
		ConditionType: models.CondDeviceUnavailable,
		EntityID:      entity,
		Message:       "⚠️ " + entity + " offline for 90 min",
		Severity:      models.SeverityHigh,
	}
}

func TestSuppression_DedupWindow(t *testing.T) {
	t.Parallel()

	// local noon, far outside quiet hours
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	pol := enabledPolicy()

	var gotSince time.Time
	repo := &stubAlertRepo{
		countSince: func(conditionType, entityID string, since time.Time) (int, error) {
			gotSince = since
			if entityID == "lock.front" {
				return 1, nil // already alerted inside the window
			}
			return 0, nil
		},
	}
	m := newTestMonitor(repo, &stubNotifier{}, &stubProvider{}, pol)

	in := []models.AlertCandidate{mediumCandidate("lock.front"), mediumCandidate("lock.side")}
	out, err := m.applySuppression(context.Background(), in, pol, now)
	if err != nil {
		t.Fatalf("applySuppression: %v", err)
	}
	if len(out) != 1 || out[0].EntityID != "lock.side" {
		t.Fatalf("want only lock.side to survive, got %+v", out)
	}

	wantSince := now.Add(-time.Duration(pol.DedupWindowHours) * time.Hour)
	if !gotSince.Equal(wantSince) {
		t.Errorf("dedup since: want %v, got %v", wantSince, gotSince)
	}
}

func TestSuppression_QuietHoursSeverityOverride(t *testing.T) {
	t.Parallel()

	pol := enabledPolicy()
	pol.QuietHoursStart = "23:00"
	pol.QuietHoursEnd = "07:00"

	// 23:00 UTC = 02:00 local (UTC+3): inside the wrapped quiet window.
	now := time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)

	repo := &stubAlertRepo{}
	m := newTestMonitor(repo, &stubNotifier{}, &stubProvider{}, pol)

	in := []models.AlertCandidate{mediumCandidate("lock.front"), highCandidate("light.garage")}
	out, err := m.applySuppression(context.Background(), in, pol, now)
	if err != nil {
		t.Fatalf("applySuppression: %v", err)
	}
	if len(out) != 1 || out[0].Severity != models.SeverityHigh {
		t.Fatalf("want only the high-severity candidate, got %+v", out)
	}
}

func TestSuppression_RateLimitDropsWholeBatch(t *testing.T) {
	t.Parallel()

	pol := enabledPolicy()
	pol.RateLimitPerHour = 2

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	var hourlySince time.Time
	repo := &stubAlertRepo{
		sentSince: func(since time.Time) (int, error) {
			if hourlySince.IsZero() {
				hourlySince = since
			}
			return 2, nil // cap already met
		},
	}
	m := newTestMonitor(repo, &stubNotifier{}, &stubProvider{}, pol)

	in := []models.AlertCandidate{
		mediumCandidate("lock.front"),
		highCandidate("light.garage"), // even high severity is dropped
	}
	out, err := m.applySuppression(context.Background(), in, pol, now)
	if err != nil {
		t.Fatalf("applySuppression: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("want the whole batch dropped, got %+v", out)
	}
	if want := now.Truncate(time.Hour); !hourlySince.Equal(want) {
		t.Errorf("hourly window start: want %v, got %v", want, hourlySince)
	}
}

func TestSuppression_DailyRateLimit(t *testing.T) {
	t.Parallel()

	pol := enabledPolicy()
	pol.RateLimitPerDay = 5

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	var daySince time.Time
	repo := &stubAlertRepo{
		sentSince: func(since time.Time) (int, error) {
			if since.Hour() == 9 {
				return 0, nil // hourly window is clear
			}
			daySince = since
			return 5, nil // daily cap met
		},
	}
	m := newTestMonitor(repo, &stubNotifier{}, &stubProvider{}, pol)

	out, err := m.applySuppression(context.Background(), []models.AlertCandidate{mediumCandidate("lock.front")}, pol, now)
	if err != nil {
		t.Fatalf("applySuppression: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("want batch dropped on daily cap, got %+v", out)
	}
	// local midnight for UTC+3 on 2025-03-01 is 2025-02-28T21:00Z
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, homeZone)
	if !daySince.Equal(want) {
		t.Errorf("daily window start: want %v, got %v", want, daySince)
	}
}

func TestSuppression_EmptyInput(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&stubAlertRepo{}, &stubNotifier{}, &stubProvider{}, enabledPolicy())
	out, err := m.applySuppression(context.Background(), nil, enabledPolicy(), time.Now().UTC())
	if err != nil {
		t.Fatalf("applySuppression: %v", err)
	}
	if out != nil {
		t.Fatalf("want nil, got %+v", out)
	}
}

func TestInQuietHours(t *testing.T) {
	t.Parallel()

	at := func(h, m int) time.Time {
		return time.Date(2025, 3, 1, h, m, 0, 0, homeZone)
	}

	cases := []struct {
		name       string
		start, end string
		local      time.Time
		want       bool
	}{
		{"wrapped window, middle of night", "23:00", "07:00", at(2, 0), true},
		{"wrapped window, start boundary", "23:00", "07:00", at(23, 0), true},
		{"wrapped window, end boundary", "23:00", "07:00", at(7, 0), true},
		{"wrapped window, daytime", "23:00", "07:00", at(12, 0), false},
		{"plain window inside", "00:00", "07:00", at(3, 30), true},
		{"plain window outside", "00:00", "07:00", at(8, 0), false},
		{"invalid bounds never quiet", "25:99", "07:00", at(3, 0), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := inQuietHours(tc.local, tc.start, tc.end); got != tc.want {
				t.Fatalf("inQuietHours(%v, %s, %s): want %v, got %v", tc.local, tc.start, tc.end, tc.want, got)
			}
		})
	}
}
