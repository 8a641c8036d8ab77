package handlers

import (
	"context"
	"net/http"
	"time"

	"homewatch/internal/models"
	"homewatch/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitor struct {
	status    models.EngineStatus
	statusErr error
	runErr    error
	runCalls  int
}

func (m *mockMonitor) Run(ctx context.Context, tick time.Duration) {}
func (m *mockMonitor) RunCycle(ctx context.Context, now time.Time) error {
	m.runCalls++
	return m.runErr
}
func (m *mockMonitor) Status(ctx context.Context) (models.EngineStatus, error) {
	return m.status, m.statusErr
}

type mockAlertLog struct {
	resp     []models.AlertRecord
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockAlertLog) List(ctx context.Context, f service.AlertFilter) ([]models.AlertRecord, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockStats struct {
	captured     models.DailyStats
	captureErr   error
	rows         []models.DailyStats
	historyErr   error
	lastDays     int
	captureCalls int
}

func (m *mockStats) Capture(ctx context.Context) (models.DailyStats, error) {
	m.captureCalls++
	return m.captured, m.captureErr
}
func (m *mockStats) History(ctx context.Context, days int) ([]models.DailyStats, error) {
	m.lastDays = days
	return m.rows, m.historyErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
