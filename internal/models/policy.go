package models

// Policy is the operator-tunable notification policy. It is re-read every
// cycle so edits take effect without a restart.
type Policy struct {
	Enabled          bool   `json:"enabled" mapstructure:"enabled"`
	QuietHoursStart  string `json:"quiet_hours_start" mapstructure:"quiet_hours_start"` // local "HH:MM"
	QuietHoursEnd    string `json:"quiet_hours_end" mapstructure:"quiet_hours_end"`     // local "HH:MM", may wrap past midnight
	DedupWindowHours int    `json:"dedup_window_hours" mapstructure:"dedup_window_hours"`
	RateLimitPerHour int    `json:"rate_limit_per_hour" mapstructure:"rate_limit_per_hour"`
	RateLimitPerDay  int    `json:"rate_limit_per_day" mapstructure:"rate_limit_per_day"`
}

// DefaultPolicy is the conservative fallback used when configuration is
// missing or unreadable: monitoring stays off.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:          false,
		QuietHoursStart:  "00:00",
		QuietHoursEnd:    "07:00",
		DedupWindowHours: 6,
		RateLimitPerHour: 4,
		RateLimitPerDay:  15,
	}
}
