package models

import "time"

// KindCount is the per-kind slice of a daily snapshot breakdown.
type KindCount struct {
	Total  int `json:"total"`
	Online int `json:"online"`
}

// DailyStats is one captured row of fleet health, one per local day.
type DailyStats struct {
	ID         int                  `json:"id"`
	Date       string               `json:"date"` // local "YYYY-MM-DD"
	Total      int                  `json:"total_entities"`
	Online     int                  `json:"online"`
	Offline    int                  `json:"offline"`
	ByKind     map[string]KindCount `json:"by_kind,omitempty"`
	CapturedAt time.Time            `json:"captured_at"`
}
