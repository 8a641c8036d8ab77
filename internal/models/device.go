package models

import (
	"strings"
	"time"
)

// Well-known device kinds (the entity id prefix before the first dot).
const (
	KindLight        = "light"
	KindSwitch       = "switch"
	KindCover        = "cover"
	KindClimate      = "climate"
	KindLock         = "lock"
	KindBinarySensor = "binary_sensor"
	KindSensor       = "sensor"
)

// Common states reported by the hub.
const (
	StateOn          = "on"
	StateOff         = "off"
	StateUnlocked    = "unlocked"
	StateUnavailable = "unavailable"
	StateUnknown     = "unknown"
)

// DeviceState is one entity from a hub snapshot. Ephemeral; never persisted.
type DeviceState struct {
	ID          string         `json:"entity_id"`
	Status      string         `json:"state"`
	DisplayName string         `json:"display_name"`
	LastChanged time.Time      `json:"last_changed"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Kind returns the namespace prefix of the entity id ("light.kitchen" -> "light").
func (d DeviceState) Kind() string {
	if i := strings.IndexByte(d.ID, '.'); i > 0 {
		return d.ID[:i]
	}
	return d.ID
}

// ShortName returns the entity id without its kind prefix.
func (d DeviceState) ShortName() string {
	if i := strings.IndexByte(d.ID, '.'); i >= 0 && i+1 < len(d.ID) {
		return d.ID[i+1:]
	}
	return d.ID
}

// Name returns the friendly name, falling back to the entity id.
func (d DeviceState) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

// NumAttr extracts a numeric attribute; hub payloads carry them as float64.
func (d DeviceState) NumAttr(key string) (float64, bool) {
	v, ok := d.Attributes[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// MinutesSince returns whole minutes elapsed since the last status change.
// A zero LastChanged (missing or unparseable upstream) reads as "just changed",
// which keeps duration-based rules from firing on bad data.
func (d DeviceState) MinutesSince(now time.Time) float64 {
	if d.LastChanged.IsZero() {
		return 0
	}
	m := now.Sub(d.LastChanged).Minutes()
	if m < 0 {
		return 0
	}
	return m
}
