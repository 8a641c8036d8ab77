package models

import "time"

// Condition types recorded in the alert log.
const (
	CondDeviceUnavailable = "device_unavailable"
	CondDoorOpenLong      = "door_open_long"
	CondLightOnLong       = "light_on_long"
	CondACLongRun         = "ac_long_run"
	CondDeviceRecovered   = "device_recovered"
	CondDailyBriefing     = "daily_briefing"
)

// SystemEntity is the sentinel entity id for system-level records
// (daily briefing and other non-device entries).
const SystemEntity = "system"

// Severity levels, ordered low < medium < high. Info is reserved for
// system records such as the daily briefing.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
	SeverityInfo   = "info"
)

// AlertCandidate is a detected condition that has not yet passed suppression.
type AlertCandidate struct {
	ConditionType string `json:"condition_type"`
	EntityID      string `json:"entity_id"`
	Message       string `json:"message"`
	Severity      string `json:"severity"`
}

// AlertRecord is one row of the append-only alert log. Records are inserted
// only after a confirmed send and are immutable thereafter.
type AlertRecord struct {
	ID            int       `json:"id"`
	ConditionType string    `json:"condition_type"`
	EntityID      string    `json:"entity_id,omitempty"`
	Message       string    `json:"message"`
	Severity      string    `json:"severity"`
	Sent          bool      `json:"sent"`
	Acknowledged  bool      `json:"acknowledged"`
	CreatedAt     time.Time `json:"created_at"`
}

// AlertTotals is an aggregate view over the whole alert log.
type AlertTotals struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"by_type"`
	LastAlert time.Time      `json:"last_alert,omitempty"`
}

// EngineStatus describes the monitoring engine for the status endpoint
// and the WebSocket feed.
type EngineStatus struct {
	Enabled     bool           `json:"enabled"`
	TotalAlerts int            `json:"total_alerts"`
	AlertsToday int            `json:"alerts_today"`
	ByType      map[string]int `json:"by_type"`
	LastAlert   *time.Time     `json:"last_alert,omitempty"`
	RateLimitOK bool           `json:"rate_limit_ok"`
}
