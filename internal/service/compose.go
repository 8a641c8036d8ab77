package service

import (
	"fmt"
	"strings"

	"homewatch/internal/models"
)

const (
	batchHeader     = "🚨 Smart Home Alerts"
	urgentHeader    = "🔴 Urgent:"
	urgentLineCap   = 5
	offlineNamesCap = 3
)

// composeBatch renders the surviving candidates into one outbound message.
// Urgent (high severity) lines lead, capped with a "+N more" suffix; the rest
// collapse into one summary line per condition type, except doors, which are
// listed per device. Empty input yields an empty string and no send.
func composeBatch(cands []models.AlertCandidate) string {
	if len(cands) == 0 {
		return ""
	}

	parts := []string{batchHeader}

	var high, nonHigh []models.AlertCandidate
	for _, c := range cands {
		if c.Severity == models.SeverityHigh {
			high = append(high, c)
		} else {
			nonHigh = append(nonHigh, c)
		}
	}

	if len(high) > 0 {
		parts = append(parts, urgentHeader)
		for i, c := range high {
			if i == urgentLineCap {
				parts = append(parts, fmt.Sprintf("  +%d more", len(high)-urgentLineCap))
				break
			}
			parts = append(parts, "  "+c.Message)
		}
	}

	// Group by condition type, preserving first-seen order so the output is
	// a pure function of the input.
	var order []string
	groups := map[string][]models.AlertCandidate{}
	for _, c := range nonHigh {
		if _, seen := groups[c.ConditionType]; !seen {
			order = append(order, c.ConditionType)
		}
		groups[c.ConditionType] = append(groups[c.ConditionType], c)
	}

	for _, typ := range order {
		items := groups[typ]
		switch typ {
		case models.CondLightOnLong:
			parts = append(parts, fmt.Sprintf("💡 %d lights on long", len(items)))
		case models.CondDeviceUnavailable:
			parts = append(parts, offlineSummary(items))
		case models.CondACLongRun:
			parts = append(parts, fmt.Sprintf("❄️ %d ACs running long", len(items)))
		case models.CondDoorOpenLong:
			// Door events are rare and named devices matter individually.
			for _, c := range items {
				parts = append(parts, c.Message)
			}
		default:
			for _, c := range items {
				parts = append(parts, c.Message)
			}
		}
	}

	return strings.Join(parts, "\n")
}

// offlineSummary renders "N offline: a, b, c +K" with short entity names.
func offlineSummary(items []models.AlertCandidate) string {
	names := make([]string, 0, offlineNamesCap)
	for _, c := range items[:min(len(items), offlineNamesCap)] {
		names = append(names, shortEntityName(c.EntityID))
	}
	extra := ""
	if len(items) > offlineNamesCap {
		extra = fmt.Sprintf(" +%d", len(items)-offlineNamesCap)
	}
	return fmt.Sprintf("⚠️ %d offline: %s%s", len(items), strings.Join(names, ", "), extra)
}

func shortEntityName(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i >= 0 && i+1 < len(entityID) {
		return entityID[i+1:]
	}
	return entityID
}
