package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homewatch/internal/models"
	"homewatch/internal/service"
)

func TestMonitorHandlers_StatusAndRun(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	last := time.Now().UTC().Truncate(time.Second)
	mon := &mockMonitor{status: models.EngineStatus{
		Enabled:     true,
		TotalAlerts: 12,
		AlertsToday: 3,
		ByType:      map[string]int{models.CondLightOnLong: 12},
		LastAlert:   &last,
		RateLimitOK: true,
	}}
	s := &service.Service{
		Authorization: auth,
		Monitor:       mon,
	}
	r := newTestRouter(s)

	// GET status requires auth → 401 without header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/monitor/status", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// With auth → 200 and status body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/monitor/status", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.EngineStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if !st.Enabled || st.TotalAlerts != 12 || st.AlertsToday != 3 || !st.RateLimitOK {
		t.Fatalf("unexpected status: %+v", st)
	}

	// POST /run → 200, calls RunCycle and includes the engine snapshot
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/monitor/run", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("run status=%d, body=%s", w.Code, w.Body.String())
	}
	if mon.runCalls != 1 {
		t.Fatalf("expected RunCycle to be called once, got %d", mon.runCalls)
	}
	var resp struct {
		Status string              `json:"status"`
		Engine models.EngineStatus `json:"engine"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusCycleRun {
		t.Fatalf("expected status %q, got %q", statusCycleRun, resp.Status)
	}
	if resp.Engine.TotalAlerts != 12 {
		t.Fatalf("engine missing/invalid in response: %+v", resp.Engine)
	}
}

func TestMonitorHandlers_RunConflictAndFailure(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	// Overlapping cycle → 409
	mon := &mockMonitor{runErr: service.ErrCycleInProgress}
	s := &service.Service{Authorization: auth, Monitor: mon}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitor/run", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping cycle, got %d", w.Code)
	}

	// Any other failure → 502
	mon.runErr = errors.New("hub unreachable")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/monitor/run", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for failed cycle, got %d", w.Code)
	}
}
