package service

import (
	"context"
	"errors"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
)

// homeZone matches the default local offset used in config (UTC+3).
var homeZone = time.FixedZone("home", 3*3600)

// stubAlertRepo satisfies repository.AlertRepo with canned answers and
// records every insert.
type stubAlertRepo struct {
	countSince   func(conditionType, entityID string, since time.Time) (int, error)
	sentSince    func(since time.Time) (int, error)
	createdSince int
	totals       models.AlertTotals
	insertErr    error
	inserted     []models.AlertRecord
}

func (r *stubAlertRepo) Insert(_ context.Context, rec models.AlertRecord) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, rec)
	return nil
}

func (r *stubAlertRepo) CountSince(_ context.Context, conditionType, entityID string, since time.Time) (int, error) {
	if r.countSince == nil {
		return 0, nil
	}
	return r.countSince(conditionType, entityID, since)
}

func (r *stubAlertRepo) CountSentSince(_ context.Context, since time.Time) (int, error) {
	if r.sentSince == nil {
		return 0, nil
	}
	return r.sentSince(since)
}

func (r *stubAlertRepo) CountCreatedSince(_ context.Context, _ time.Time) (int, error) {
	return r.createdSince, nil
}

func (r *stubAlertRepo) List(_ context.Context, _, _ time.Time, _ string) ([]models.AlertRecord, error) {
	return nil, errors.New("not implemented")
}

func (r *stubAlertRepo) Totals(_ context.Context) (models.AlertTotals, error) {
	return r.totals, nil
}

// insertedOf filters recorded inserts by condition type.
func (r *stubAlertRepo) insertedOf(conditionType string) []models.AlertRecord {
	var out []models.AlertRecord
	for _, rec := range r.inserted {
		if rec.ConditionType == conditionType {
			out = append(out, rec)
		}
	}
	return out
}

// stubNotifier fails the first failFirst sends, then succeeds.
type stubNotifier struct {
	failFirst int
	sendErr   error
	sent      []string
}

func (n *stubNotifier) Send(_ context.Context, text string) (bool, error) {
	if n.failFirst > 0 {
		n.failFirst--
		if n.sendErr != nil {
			return false, n.sendErr
		}
		return false, errors.New("send failed")
	}
	n.sent = append(n.sent, text)
	return true, nil
}

type stubPolicy struct {
	pol models.Policy
}

func (p stubPolicy) Get() models.Policy { return p.pol }

type stubProvider struct {
	states []models.DeviceState
	err    error
}

func (p *stubProvider) FetchStates(_ context.Context) ([]models.DeviceState, error) {
	return p.states, p.err
}

// enabledPolicy is a permissive default for tests: monitoring on, quiet hours
// 00:00-07:00 local, generous caps.
func enabledPolicy() models.Policy {
	pol := models.DefaultPolicy()
	pol.Enabled = true
	pol.RateLimitPerHour = 100
	pol.RateLimitPerDay = 100
	return pol
}

// newTestMonitor wires a MonitorService with stubs and fast retry backoff.
func newTestMonitor(repo *stubAlertRepo, notifier *stubNotifier, provider *stubProvider, pol models.Policy) *MonitorService {
	m := NewMonitorService(repo, nil, Deps{
		Provider: provider,
		Notifier: notifier,
		Policy:   stubPolicy{pol: pol},
		Log:      logger.Get(logger.ErrorLevel),
	}, homeZone)
	m.retryBackoff = time.Millisecond
	return m
}
