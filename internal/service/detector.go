package service

import (
	"fmt"
	"strings"
	"time"

	"homewatch/internal/models"
)

// Duration thresholds, in minutes since the last status change.
const (
	unavailableAfterMin = 60
	doorOpenAfterMin    = 30
	lockOpenAfterMin    = 60
	lightOnAfterMin     = 180
	acRunAfterMin       = 480
)

// Kinds whose "unavailable" state flaps too often to be worth alerting on.
var unavailableSkipKinds = map[string]struct{}{
	"update":        {},
	"button":        {},
	"number":        {},
	"select":        {},
	"sensor":        {},
	"binary_sensor": {},
	"switch":        {},
}

// Entity id fragments marking remote-control and media helper entities.
var unavailableNoiseWords = []string{
	"alexa", "iphone", "geocoded", "shuffle", "repeat", "next_track", "media_player",
}

// detectConditions maps one snapshot to alert candidates. Pure and
// deterministic given states and now; rules are evaluated independently, so
// one device may yield several candidates, but never two of the same
// condition type.
func detectConditions(states []models.DeviceState, now time.Time) []models.AlertCandidate {
	var out []models.AlertCandidate

	for _, d := range states {
		mins := d.MinutesSince(now)
		kind := d.Kind()

		if d.Status == models.StateUnavailable && mins > unavailableAfterMin && !unavailableNoise(d.ID, kind) {
			out = append(out, models.AlertCandidate{
				ConditionType: models.CondDeviceUnavailable,
				EntityID:      d.ID,
				Message:       fmt.Sprintf("⚠️ %s offline for %d min", d.Name(), int(mins)),
				Severity:      models.SeverityHigh,
			})
		}

		doorOpen := kind == models.KindBinarySensor && strings.Contains(d.ID, "door") &&
			d.Status == models.StateOn && mins > doorOpenAfterMin
		lockOpen := kind == models.KindLock && d.Status == models.StateUnlocked && mins > lockOpenAfterMin
		if doorOpen || lockOpen {
			out = append(out, models.AlertCandidate{
				ConditionType: models.CondDoorOpenLong,
				EntityID:      d.ID,
				Message:       fmt.Sprintf("🚪 %s open for %d min", d.Name(), int(mins)),
				Severity:      models.SeverityMedium,
			})
		}

		if kind == models.KindLight && d.Status == models.StateOn && mins > lightOnAfterMin {
			out = append(out, models.AlertCandidate{
				ConditionType: models.CondLightOnLong,
				EntityID:      d.ID,
				Message:       fmt.Sprintf("💡 %s on for %dh", d.Name(), int(mins)/60),
				Severity:      models.SeverityLow,
			})
		}

		if kind == models.KindClimate && d.Status != models.StateOff &&
			d.Status != models.StateUnavailable && mins > acRunAfterMin {
			out = append(out, models.AlertCandidate{
				ConditionType: models.CondACLongRun,
				EntityID:      d.ID,
				Message:       fmt.Sprintf("❄️ %s running for %dh straight", d.Name(), int(mins)/60),
				Severity:      models.SeverityLow,
			})
		}
	}

	return out
}

// unavailableNoise reports whether an unavailable entity should be ignored.
func unavailableNoise(id, kind string) bool {
	if _, skip := unavailableSkipKinds[kind]; skip {
		return true
	}
	lower := strings.ToLower(id)
	for _, w := range unavailableNoiseWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
