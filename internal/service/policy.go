package service

import (
	"github.com/spf13/viper"

	"homewatch/internal/models"
)

// ViperPolicy reads the notification policy from the live viper instance on
// every Get, so a watched config file hot-reloads between cycles. Invalid or
// missing values degrade field-by-field to the conservative defaults.
type ViperPolicy struct {
	v *viper.Viper
}

func NewViperPolicy(v *viper.Viper) *ViperPolicy {
	return &ViperPolicy{v: v}
}

var _ PolicyProvider = (*ViperPolicy)(nil)

func (p *ViperPolicy) Get() models.Policy {
	pol := models.DefaultPolicy()
	if p.v == nil || !p.v.IsSet("proactive") {
		return pol
	}

	pol.Enabled = p.v.GetBool("proactive.enabled")

	if s := p.v.GetString("proactive.quiet_hours_start"); s != "" {
		if _, ok := parseClock(s); ok {
			pol.QuietHoursStart = s
		}
	}
	if s := p.v.GetString("proactive.quiet_hours_end"); s != "" {
		if _, ok := parseClock(s); ok {
			pol.QuietHoursEnd = s
		}
	}
	if n := p.v.GetInt("proactive.dedup_window_hours"); n > 0 {
		pol.DedupWindowHours = n
	}
	if n := p.v.GetInt("proactive.rate_limit_per_hour"); n > 0 {
		pol.RateLimitPerHour = n
	}
	if n := p.v.GetInt("proactive.rate_limit_per_day"); n > 0 {
		pol.RateLimitPerDay = n
	}
	return pol
}
