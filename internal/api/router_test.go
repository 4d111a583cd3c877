package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/api/handlers"
	"github.com/wonny/srm-sim/internal/archive"
	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/metrics"
	"github.com/wonny/srm-sim/internal/realtime"
	"github.com/wonny/srm-sim/internal/scheduler"
	"github.com/wonny/srm-sim/internal/scheduler/jobs"
	"github.com/wonny/srm-sim/internal/sessions"
	"github.com/wonny/srm-sim/pkg/database"
	"github.com/wonny/srm-sim/pkg/logger"
	"github.com/wonny/srm-sim/pkg/redis"
)

type memArchive struct {
	mu        sync.Mutex
	campaigns map[string]*campaign.Summary
}

func (m *memArchive) SaveCampaign(_ context.Context, s *campaign.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[s.ID] = s
	return nil
}

func (m *memArchive) GetCampaign(_ context.Context, id string) (*campaign.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s: %w", id, archive.ErrNotFound)
	}
	return s, nil
}

func (m *memArchive) ListCampaigns(_ context.Context, _ int) ([]archive.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]archive.Entry, 0, len(m.campaigns))
	for _, s := range m.campaigns {
		out = append(out, archive.Entry{ID: s.ID, Runs: len(s.Runs), PayPolicy: s.PayPolicy})
	}
	return out, nil
}

type fixture struct {
	router http.Handler
	store  *sessions.Store
	hub    *realtime.Hub
}

func newFixture(t *testing.T, limits sessions.Limits, store handlers.CampaignArchive) *fixture {
	t.Helper()
	log := logger.Nop()
	rec := metrics.NewRecorder()

	st := sessions.NewStore(engine.DefaultConfig(), limits, engine.WithRecorder(rec), engine.WithLogger(log))
	st.SetObserver(rec)
	hub := realtime.NewHub(log)
	st.OnEvict(hub.CloseSession)

	defaults := campaign.DefaultConfig()
	defaults.Runs = 2
	defaults.Workers = 2
	defaults.Session.MaxDays = 5

	sched := scheduler.New(log)
	sched.SetRetry(0, 0)
	require.NoError(t, sched.AddJob(jobs.NewSessionReaperJob(st, time.Hour, "0 */10 * * * *", log)))

	h := Handlers{
		Sessions:  handlers.NewSessionHandler(st, hub, log),
		Campaigns: handlers.NewCampaignHandler(campaign.NewRunner(log, rec), defaults, store, redis.Disabled(), log),
		Jobs:      handlers.NewJobHandler(sched, log),
		Metrics:   rec,
	}
	return &fixture{router: NewRouter(h, log), store: st, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func createSession(t *testing.T, f *fixture) handlers.SessionState {
	t.Helper()
	seed := int64(42)
	rr := f.do(t, http.MethodPost, "/api/sessions", handlers.CreateSessionRequest{Seed: &seed})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[handlers.SessionState](t, rr)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	rr := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "srm-sim-api")
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	state := createSession(t, f)
	assert.Equal(t, int64(42), state.Seed)
	assert.Equal(t, 1, state.Day)
	assert.Equal(t, 1, f.store.Len())

	base := "/api/sessions/" + state.ID

	rr := f.do(t, http.MethodGet, base+"/suppliers", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	suppliers := decode[[]contracts.Supplier](t, rr)
	require.NotEmpty(t, suppliers)
	sup := suppliers[0]
	assert.NotContains(t, rr.Body.String(), "true_reliability")

	rr = f.do(t, http.MethodPost, base+"/orders", handlers.PlaceOrderRequest{
		SupplierID: sup.ID, Qty: sup.MinOrderQty, Committed: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, contracts.OrderID(1), decode[handlers.PlaceOrderResponse](t, rr).OrderID)

	rr = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[handlers.SessionState](t, rr)
	require.Len(t, state.Invoices, 1)
	invoiceID := state.Invoices[0].ID

	rr = f.do(t, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[contracts.TurnReport](t, rr)
	assert.Equal(t, 1, report.Day)
	assert.Equal(t, 1, report.KPIs.Day)
	assert.False(t, report.GameOver)

	payPath := fmt.Sprintf("%s/invoices/%d/pay", base, invoiceID)
	rr = f.do(t, http.MethodPost, payPath, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[handlers.SessionState](t, rr).Invoices[0].IsPaid())

	rr = f.do(t, http.MethodPost, payPath, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(t, http.MethodGet, base+"/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]contracts.KPISnapshot](t, rr), 1)

	rr = f.do(t, http.MethodGet, base+"/suppliers/"+string(sup.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[contracts.SupplierStats](t, rr).HasHistory)

	rr = f.do(t, http.MethodGet, base+"/transactions.csv", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Day Placed,Day Arrived"))

	rr = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, f.store.Len())
}

func TestDrafts(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	state := createSession(t, f)
	base := "/api/sessions/" + state.ID

	sup := decode[[]contracts.Supplier](t, f.do(t, http.MethodGet, base+"/suppliers", nil))[0]
	for i := 0; i < 2; i++ {
		rr := f.do(t, http.MethodPost, base+"/orders", handlers.PlaceOrderRequest{SupplierID: sup.ID, Qty: sup.MinOrderQty})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := f.do(t, http.MethodDelete, base+"/orders/drafts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[handlers.CountResponse](t, rr).Count)

	f.do(t, http.MethodPost, base+"/orders", handlers.PlaceOrderRequest{SupplierID: sup.ID, Qty: sup.MinOrderQty})
	rr = f.do(t, http.MethodPost, base+"/orders/commit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[handlers.CountResponse](t, rr).Count)
}

func TestSessionErrors(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	state := createSession(t, f)
	base := "/api/sessions/" + state.ID
	sup := decode[[]contracts.Supplier](t, f.do(t, http.MethodGet, base+"/suppliers", nil))[0]

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound},
		{"below minimum", http.MethodPost, base + "/orders", handlers.PlaceOrderRequest{SupplierID: sup.ID, Qty: sup.MinOrderQty - 1}, http.StatusUnprocessableEntity},
		{"unknown supplier", http.MethodPost, base + "/orders", handlers.PlaceOrderRequest{SupplierID: "NOPE", Qty: 1000}, http.StatusNotFound},
		{"unknown invoice", http.MethodPost, base + "/invoices/99/pay", nil, http.StatusNotFound},
		{"unknown supplier view", http.MethodGet, base + "/suppliers/NOPE", nil, http.StatusNotFound},
		{"non numeric invoice", http.MethodPost, base + "/invoices/abc/pay", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPost, base+"/orders", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionOverIsConflict(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	state := createSession(t, f)
	base := "/api/sessions/" + state.ID

	for i := 0; i < state.MaxDays; i++ {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/advance", nil).Code)
	}
	rr := f.do(t, http.MethodPost, base+"/advance", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSessionRateLimit(t *testing.T) {
	f := newFixture(t, sessions.Limits{RatePerSec: 0.001, Burst: 1}, nil)
	state := createSession(t, f)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/sessions/"+state.ID, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodGet, "/api/sessions/"+state.ID, nil).Code)
}

func TestCampaigns(t *testing.T) {
	store := &memArchive{campaigns: make(map[string]*campaign.Summary)}
	f := newFixture(t, sessions.Limits{}, store)

	rr := f.do(t, http.MethodPost, "/api/campaigns", handlers.RunCampaignRequest{PayPolicy: "early"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	summary := decode[campaign.Summary](t, rr)
	assert.Len(t, summary.Runs, 2)
	assert.Equal(t, campaign.PayEarly, summary.PayPolicy)

	rr = f.do(t, http.MethodGet, "/api/campaigns/"+summary.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, summary.ID, decode[campaign.Summary](t, rr).ID)

	rr = f.do(t, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]archive.Entry](t, rr), 1)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/campaigns/missing", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/campaigns", handlers.RunCampaignRequest{PayPolicy: "sometimes"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/campaigns", handlers.RunCampaignRequest{Runs: 10000}).Code)
}

func TestCampaigns_NoArchive(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/campaigns", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	state := createSession(t, f)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/sessions/"+state.ID+"/advance", nil).Code)

	rr := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "srm_turns_total 1")
	assert.Contains(t, body, "srm_active_sessions 1")
}

func TestStream(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	seed := int64(3)
	body, _ := json.Marshal(handlers.CreateSessionRequest{Seed: &seed})
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var state handlers.SessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + state.ID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Subscribers(state.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Post(srv.URL+"/api/sessions/"+state.ID+"/advance", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.EventTurn, ev.Kind)
	assert.Equal(t, state.ID, ev.SessionID)
	require.NotNil(t, ev.Report)
	assert.Equal(t, 1, ev.Report.Day)

	// Deleting the session closes the stream
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+state.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.EventClosed, ev.Kind)
}

type stubDB struct{ err error }

func (d stubDB) HealthCheck(context.Context) (*database.HealthStatus, error) {
	status := &database.HealthStatus{Healthy: d.err == nil, Timestamp: time.Now()}
	if d.err != nil {
		status.Error = d.err.Error()
	}
	return status, d.err
}

func TestHealth_Database(t *testing.T) {
	log := logger.Nop()
	st := sessions.NewStore(engine.DefaultConfig(), sessions.Limits{})

	tests := []struct {
		name   string
		db     DBHealth
		code   int
		status string
	}{
		{"healthy", stubDB{}, http.StatusOK, "ok"},
		{"unreachable", stubDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Handlers{Sessions: handlers.NewSessionHandler(st, nil, log), DB: tt.db}, log)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.code, rr.Code)
			body := decode[map[string]interface{}](t, rr)
			assert.Equal(t, tt.status, body["status"])
			assert.Contains(t, body, "database")
		})
	}
}

func TestJobs(t *testing.T) {
	f := newFixture(t, sessions.Limits{}, nil)

	rr := f.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[[]scheduler.JobStats](t, rr)
	require.Len(t, stats, 1)
	assert.Equal(t, "session_reaper", stats[0].JobName)
	assert.Zero(t, stats[0].TotalRuns)

	rr = f.do(t, http.MethodPost, "/api/jobs/session_reaper/run?wait=true", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[scheduler.JobResult](t, rr)
	assert.True(t, result.Success)
	assert.Equal(t, scheduler.TriggerManual, result.Trigger)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/jobs/session_reaper/run", nil).Code)
	require.Eventually(t, func() bool {
		rr := f.do(t, http.MethodGet, "/api/jobs/session_reaper/history", nil)
		var h handlers.JobHistoryResponse
		return json.Unmarshal(rr.Body.Bytes(), &h) == nil && len(h.Results) == 2
	}, time.Second, 10*time.Millisecond)

	rr = f.do(t, http.MethodGet, "/api/jobs/session_reaper/history?limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[handlers.JobHistoryResponse](t, rr)
	assert.Len(t, history.Results, 1)
	assert.Equal(t, 1.0, history.SuccessRate)

	rr = f.do(t, http.MethodGet, "/api/jobs/session_reaper/history?failed=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[handlers.JobHistoryResponse](t, rr).Results)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/jobs/missing/run", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/jobs/missing/history", nil).Code)
}
