package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homewatch/internal/models"
	"homewatch/internal/service"
)

func TestAlertsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	records := []models.AlertRecord{
		{ID: 1, ConditionType: models.CondLightOnLong, EntityID: "light.hall", Message: "Hall Light", Severity: models.SeverityLow, Sent: true, CreatedAt: now},
		{ID: 2, ConditionType: models.CondLightOnLong, EntityID: "light.kitchen", Message: "Kitchen Light", Severity: models.SeverityLow, Sent: true, CreatedAt: now.Add(time.Second)},
	}
	alerts := &mockAlertLog{resp: records}
	s := &service.Service{
		Authorization: auth,
		AlertLog:      alerts,
	}
	r := newTestRouter(s)

	// Invalid 'from' → 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/?from=notatime", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Inverted range → 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/alerts/?from=2025-03-02&to=2025-03-01", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 inverted range, got %d", w.Code)
	}

	// Valid range and type (mixed case normalizes to lowercase in service call)
	w = httptest.NewRecorder()
	q := "/api/v1/alerts/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=Light_On_Long"
	req = httptest.NewRequest(http.MethodGet, q, nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("alerts status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                  `json:"count"`
		Alerts []models.AlertRecord `json:"alerts"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Alerts) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if alerts.lastType != models.CondLightOnLong {
		t.Fatalf("expected lastType light_on_long, got %q", alerts.lastType)
	}
}

func TestAlertsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	alerts := &mockAlertLog{}
	s := &service.Service{Authorization: auth, AlertLog: alerts}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/?to=2025-03-01", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	endOfDay := time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC)
	if !alerts.lastTo.Equal(endOfDay) {
		t.Fatalf("expected end-of-day 'to', got %v", alerts.lastTo)
	}
}
