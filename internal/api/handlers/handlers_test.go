package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/sessions"
	"github.com/wonny/srm-sim/pkg/logger"
	"github.com/wonny/srm-sim/pkg/redis"
)

// countingLimiter allows everything and remembers how many slots were spent
type countingLimiter struct {
	mu    sync.Mutex
	spent int
}

func (c *countingLimiter) Allow(_ context.Context, cfg redis.RateLimitConfig) (bool, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spent++
	return true, cfg.Limit - c.spent, nil
}

func newCampaignHandler(limiter launchLimiter) *CampaignHandler {
	defaults := campaign.DefaultConfig()
	defaults.Runs = 2
	defaults.Workers = 1
	defaults.Session.MaxDays = 5

	h := NewCampaignHandler(campaign.NewRunner(nil, nil), defaults, nil, redis.Disabled(), logger.Nop())
	h.limiter = limiter
	return h
}

func postCampaign(h *CampaignHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Run(rr, req)
	return rr
}

func TestCampaignRun_InvalidRequestsKeepQuota(t *testing.T) {
	limiter := &countingLimiter{}
	h := newCampaignHandler(limiter)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"runs":`},
		{"unknown policy", `{"pay_policy":"sometimes"}`},
		{"too many runs", `{"runs":10000}`},
		{"horizon too long", `{"max_days":100000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postCampaign(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
	assert.Zero(t, limiter.spent)

	rr := postCampaign(h, `{"max_days":60}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, limiter.spent)
}

func TestStream_WithoutHub(t *testing.T) {
	store := sessions.NewStore(engine.DefaultConfig(), sessions.Limits{})
	hosted, err := store.Create()
	require.NoError(t, err)

	h := NewSessionHandler(store, nil, logger.Nop())
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+hosted.ID()+"/stream", nil)
	req = mux.SetURLVars(req, map[string]string{"id": hosted.ID()})
	rr := httptest.NewRecorder()

	assert.NotPanics(t, func() { h.Stream(rr, req) })
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
