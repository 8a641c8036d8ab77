package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository"
)

const (
	defaultBriefingHour = 7
	defaultWarmup       = 30 * time.Second

	sendAttempts     = 3
	sendRetryBackoff = 2 * time.Second

	recoveredNamesCap = 3
)

// ErrCycleInProgress is returned when a manual cycle overlaps a running one.
var ErrCycleInProgress = errors.New("monitoring cycle already in progress")

// PreviousSnapshot is the baseline retained between cycles for
// transition-based recovery notices.
type PreviousSnapshot struct {
	Taken time.Time
	// Unavailable maps entity id to display name for devices that were
	// offline (after noise filtering) in the previous snapshot.
	Unavailable map[string]string
}

// MonitorService is the proactive engine: one timer-driven loop that
// detects, suppresses, batches, sends and persists.
type MonitorService struct {
	alerts   repository.AlertRepo
	stats    *StatsService
	provider StateProvider
	notifier Notifier
	policy   PolicyProvider
	log      *logger.Logger

	zone         *time.Location
	briefingHour int
	warmup       time.Duration
	retryBackoff time.Duration

	mu   sync.Mutex // guards against overlapping cycles
	prev *PreviousSnapshot
}

// NewMonitorService returns a monitor with defaults applied for unset tuning.
func NewMonitorService(alerts repository.AlertRepo, stats *StatsService, deps Deps, zone *time.Location) *MonitorService {
	briefingHour := deps.BriefingHour
	if briefingHour <= 0 || briefingHour > 23 {
		briefingHour = defaultBriefingHour
	}
	warmup := deps.Warmup
	if warmup <= 0 {
		warmup = defaultWarmup
	}
	return &MonitorService{
		alerts:       alerts,
		stats:        stats,
		provider:     deps.Provider,
		notifier:     deps.Notifier,
		policy:       deps.Policy,
		log:          deps.Log,
		zone:         zone,
		briefingHour: briefingHour,
		warmup:       warmup,
		retryBackoff: sendRetryBackoff,
	}
}

// Run ticks at the given interval until ctx is canceled. The warm-up delay
// keeps a fresh process from alerting on stale hub data.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.warmup):
	}

	s.log.Infow("proactive engine started", "tick", tick.String())

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if err := s.RunCycle(ctx, now.UTC()); err != nil {
				// never fatal: the worst outcome is a silent tick
				s.log.Errorw("monitoring cycle failed", "err", err)
			}
		}
	}
}

// RunCycle executes one full cycle: snapshot, briefing path, alert path,
// recovery path. The briefing and alert paths are independent and may both
// send in the same cycle.
func (s *MonitorService) RunCycle(ctx context.Context, now time.Time) error {
	if !s.mu.TryLock() {
		return ErrCycleInProgress
	}
	defer s.mu.Unlock()

	pol := s.policy.Get()
	if !pol.Enabled {
		return nil
	}

	states, err := s.provider.FetchStates(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	if len(states) == 0 {
		return nil
	}
	local := now.In(s.zone)

	s.runBriefing(ctx, states, local)
	s.runAlerts(ctx, states, pol, now)
	s.runRecoveries(ctx, states, pol, now)

	s.prev = baselineOf(states, now)
	return nil
}

// runBriefing sends the once-daily digest when due.
func (s *MonitorService) runBriefing(ctx context.Context, states []models.DeviceState, local time.Time) {
	due, err := s.briefingDue(ctx, local)
	if err != nil {
		s.log.Errorw("briefing check failed", "err", err)
		return
	}
	if !due {
		return
	}

	text := s.buildBriefing(ctx, states, local)
	if !s.deliver(ctx, text) {
		return
	}
	s.persist(ctx, models.AlertRecord{
		ConditionType: models.CondDailyBriefing,
		EntityID:      models.SystemEntity,
		Message:       text,
		Severity:      models.SeverityInfo,
		Sent:          true,
	})
	s.log.Infow("daily briefing sent")

	// Reuse the snapshot we already hold for the day's fleet-health row.
	if s.stats != nil {
		if _, err := s.stats.CaptureFrom(ctx, states, local); err != nil {
			s.log.Errorw("daily stats capture failed", "err", err)
		}
	}
}

// runAlerts is the detect → suppress → compose → send → persist pipeline.
func (s *MonitorService) runAlerts(ctx context.Context, states []models.DeviceState, pol models.Policy, now time.Time) {
	cands := detectConditions(states, now)
	eligible, err := s.applySuppression(ctx, cands, pol, now)
	if err != nil {
		s.log.Errorw("suppression failed", "err", err)
		return
	}
	if len(eligible) == 0 {
		return
	}

	text := composeBatch(eligible)
	if !s.deliver(ctx, text) {
		// no record persisted: the same condition re-detects next tick
		return
	}
	for _, c := range eligible {
		s.persist(ctx, models.AlertRecord{
			ConditionType: c.ConditionType,
			EntityID:      c.EntityID,
			Message:       c.Message,
			Severity:      c.Severity,
			Sent:          true,
		})
	}
	s.log.Infow("batch alert sent", "count", len(eligible))
}

// runRecoveries announces devices that left the unavailable state since the
// previous snapshot. Transitions self-dedup, so the dedup window and rate
// caps do not apply; quiet hours still do (recoveries are never urgent).
func (s *MonitorService) runRecoveries(ctx context.Context, states []models.DeviceState, pol models.Policy, now time.Time) {
	if s.prev == nil {
		return // first cycle only establishes the baseline
	}
	if inQuietHours(now.In(s.zone), pol.QuietHoursStart, pol.QuietHoursEnd) {
		return
	}

	current := baselineOf(states, now)
	var recovered []models.AlertCandidate
	for id, name := range s.prev.Unavailable {
		if _, still := current.Unavailable[id]; still {
			continue
		}
		recovered = append(recovered, models.AlertCandidate{
			ConditionType: models.CondDeviceRecovered,
			EntityID:      id,
			Message:       name,
			Severity:      models.SeverityLow,
		})
	}
	if len(recovered) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("✅ Back online:\n")
	for i, c := range recovered {
		if i == recoveredNamesCap {
			fmt.Fprintf(&b, "  … +%d more\n", len(recovered)-recoveredNamesCap)
			break
		}
		fmt.Fprintf(&b, "  • %s\n", c.Message)
	}

	if !s.deliver(ctx, strings.TrimRight(b.String(), "\n")) {
		return
	}
	for _, c := range recovered {
		s.persist(ctx, models.AlertRecord{
			ConditionType: c.ConditionType,
			EntityID:      c.EntityID,
			Message:       c.Message + " back online",
			Severity:      c.Severity,
			Sent:          true,
		})
	}
	s.log.Infow("recovery notice sent", "count", len(recovered))
}

// baselineOf filters a snapshot down to the offline devices worth tracking.
func baselineOf(states []models.DeviceState, now time.Time) *PreviousSnapshot {
	prev := &PreviousSnapshot{Taken: now, Unavailable: map[string]string{}}
	for _, d := range states {
		if d.Status == models.StateUnavailable && !unavailableNoise(d.ID, d.Kind()) {
			prev.Unavailable[d.ID] = d.Name()
		}
	}
	return prev
}

// deliver sends with bounded retry and backoff. True means confirmed
// delivery; only then may callers persist.
func (s *MonitorService) deliver(ctx context.Context, text string) bool {
	if text == "" {
		return false
	}
	backoff := s.retryBackoff
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		ok, err := s.notifier.Send(ctx, text)
		if ok {
			return true
		}
		s.log.Warnw("send failed", "attempt", attempt, "err", err)
		if attempt == sendAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return false
}

// persist inserts a confirmed-sent record; failures are logged, not fatal
// (the message is already out).
func (s *MonitorService) persist(ctx context.Context, rec models.AlertRecord) {
	if err := s.alerts.Insert(ctx, rec); err != nil {
		s.log.Errorw("persist alert failed", "type", rec.ConditionType, "entity", rec.EntityID, "err", err)
	}
}

// Status summarizes the engine for the API and the WebSocket feed.
func (s *MonitorService) Status(ctx context.Context) (models.EngineStatus, error) {
	pol := s.policy.Get()
	now := time.Now().UTC()

	totals, err := s.alerts.Totals(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}
	today, err := s.alerts.CountCreatedSince(ctx, localMidnight(now.In(s.zone)))
	if err != nil {
		return models.EngineStatus{}, err
	}
	rateOK, err := s.rateLimitOK(ctx, pol, now)
	if err != nil {
		return models.EngineStatus{}, err
	}

	st := models.EngineStatus{
		Enabled:     pol.Enabled,
		TotalAlerts: totals.Total,
		AlertsToday: today,
		ByType:      totals.ByType,
		RateLimitOK: rateOK,
	}
	if !totals.LastAlert.IsZero() {
		last := totals.LastAlert
		st.LastAlert = &last
	}
	return st, nil
}
