package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homewatch/internal/models"
)

const (
	// The briefing fires in the first minutes of the scheduled hour, so a
	// 5-minute poll cannot step over the whole window.
	briefingWindowMin = 10

	briefingLightsCap      = 10
	briefingUnavailableCap = 5
	// More than this many offline devices is worth surfacing even on an
	// otherwise quiet morning.
	briefingQuietUnavailable = 2
)

// Kinds not worth listing as unavailable in the morning digest.
var briefingSkipKinds = map[string]struct{}{
	"update": {},
	"button": {},
	"number": {},
	"select": {},
	"scene":  {},
}

// briefingDue reports whether the daily briefing should be sent now: local
// time inside the scheduled window and no briefing recorded since local
// midnight.
func (s *MonitorService) briefingDue(ctx context.Context, local time.Time) (bool, error) {
	if local.Hour() != s.briefingHour || local.Minute() >= briefingWindowMin {
		return false, nil
	}
	n, err := s.alerts.CountSince(ctx, models.CondDailyBriefing, "", localMidnight(local))
	if err != nil {
		return false, fmt.Errorf("briefing-sent check: %w", err)
	}
	return n == 0, nil
}

// buildBriefing renders the full home-status digest from a snapshot.
func (s *MonitorService) buildBriefing(ctx context.Context, states []models.DeviceState, local time.Time) string {
	var (
		lightsOn    []string
		climatesOn  []string
		doorsOpen   []string
		unavailable []string
	)

	for _, d := range states {
		kind := d.Kind()

		if kind == models.KindLight && d.Status == models.StateOn {
			lightsOn = append(lightsOn, d.Name())
		}
		if kind == models.KindClimate && d.Status != models.StateOff && d.Status != models.StateUnavailable {
			climatesOn = append(climatesOn, fmt.Sprintf("%s (%s°→%s°)",
				d.Name(), attrOrQuestion(d, "current_temperature"), attrOrQuestion(d, "temperature")))
		}
		if d.Status == models.StateUnavailable {
			if _, skip := briefingSkipKinds[kind]; !skip {
				unavailable = append(unavailable, d.Name())
			}
		}
		if (kind == models.KindLock && d.Status == models.StateUnlocked) ||
			(kind == models.KindBinarySensor && strings.Contains(d.ID, "door") && d.Status == models.StateOn) {
			doorsOpen = append(doorsOpen, d.Name())
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "☀️ Good morning — %s\n", local.Format("Monday 02/01"))

	if len(lightsOn) == 0 && len(doorsOpen) == 0 && len(unavailable) <= briefingQuietUnavailable {
		b.WriteString("\n✅ All quiet at home\n")
	}

	if len(lightsOn) > 0 {
		fmt.Fprintf(&b, "\n💡 Lights on (%d):\n", len(lightsOn))
		writeBulleted(&b, lightsOn, briefingLightsCap)
	}
	if len(climatesOn) > 0 {
		fmt.Fprintf(&b, "\n❄️ Climate running (%d):\n", len(climatesOn))
		writeBulleted(&b, climatesOn, len(climatesOn))
	}
	if len(doorsOpen) > 0 {
		b.WriteString("\n🚪 Open:\n")
		writeBulleted(&b, doorsOpen, len(doorsOpen))
	}
	if len(unavailable) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Offline (%d):\n", len(unavailable))
		writeBulleted(&b, unavailable, briefingUnavailableCap)
	}

	if n, err := s.alerts.CountCreatedSince(ctx, localMidnight(local).AddDate(0, 0, -1)); err == nil && n > 0 {
		fmt.Fprintf(&b, "\n📊 Alerts yesterday: %d\n", n)
	}

	return b.String()
}

// writeBulleted writes up to limit bullet lines plus a "+N more" trailer.
func writeBulleted(b *strings.Builder, items []string, limit int) {
	for i, it := range items {
		if i == limit {
			fmt.Fprintf(b, "  … +%d more\n", len(items)-limit)
			return
		}
		fmt.Fprintf(b, "  • %s\n", it)
	}
}

func attrOrQuestion(d models.DeviceState, key string) string {
	if v, ok := d.NumAttr(key); ok {
		return fmtTemp(v)
	}
	return "?"
}

// fmtTemp formats a temperature without a trailing ".0".
func fmtTemp(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
