package service

import (
	"testing"

	"github.com/spf13/viper"

	"homewatch/internal/models"
)

func TestViperPolicy_NilViperReturnsDefaults(t *testing.T) {
	t.Parallel()

	got := NewViperPolicy(nil).Get()
	if got != models.DefaultPolicy() {
		t.Fatalf("want defaults, got %+v", got)
	}
}

func TestViperPolicy_MissingSectionReturnsDefaults(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("port", "8080")

	got := NewViperPolicy(v).Get()
	if got != models.DefaultPolicy() {
		t.Fatalf("want defaults, got %+v", got)
	}
}

func TestViperPolicy_ReadsConfiguredValues(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("proactive.enabled", true)
	v.Set("proactive.quiet_hours_start", "23:30")
	v.Set("proactive.quiet_hours_end", "06:00")
	v.Set("proactive.dedup_window_hours", 12)
	v.Set("proactive.rate_limit_per_hour", 2)
	v.Set("proactive.rate_limit_per_day", 8)

	got := NewViperPolicy(v).Get()
	want := models.Policy{
		Enabled:          true,
		QuietHoursStart:  "23:30",
		QuietHoursEnd:    "06:00",
		DedupWindowHours: 12,
		RateLimitPerHour: 2,
		RateLimitPerDay:  8,
	}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestViperPolicy_InvalidValuesDegradeFieldByField(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("proactive.enabled", true)
	v.Set("proactive.quiet_hours_start", "25:99") // out of range clock
	v.Set("proactive.quiet_hours_end", "nonsense")
	v.Set("proactive.dedup_window_hours", -4)
	v.Set("proactive.rate_limit_per_hour", 0)
	v.Set("proactive.rate_limit_per_day", 20) // the one valid override

	got := NewViperPolicy(v).Get()
	def := models.DefaultPolicy()
	if got.QuietHoursStart != def.QuietHoursStart || got.QuietHoursEnd != def.QuietHoursEnd {
		t.Errorf("invalid clocks must keep defaults, got %q-%q", got.QuietHoursStart, got.QuietHoursEnd)
	}
	if got.DedupWindowHours != def.DedupWindowHours {
		t.Errorf("negative dedup window must keep default, got %d", got.DedupWindowHours)
	}
	if got.RateLimitPerHour != def.RateLimitPerHour {
		t.Errorf("zero hourly cap must keep default, got %d", got.RateLimitPerHour)
	}
	if got.RateLimitPerDay != 20 {
		t.Errorf("valid daily cap must apply, got %d", got.RateLimitPerDay)
	}
	if !got.Enabled {
		t.Error("enabled flag must still apply")
	}
}
