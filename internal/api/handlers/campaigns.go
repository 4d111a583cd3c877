package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/srm-sim/internal/archive"
	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/pkg/logger"
	"github.com/wonny/srm-sim/pkg/redis"
)

// Campaign request bounds
const (
	maxCampaignRuns = 500
	maxCampaignDays = 365
)

// launchLimiter spends one launch slot per call (redis.RateLimiter)
type launchLimiter interface {
	Allow(ctx context.Context, cfg redis.RateLimitConfig) (bool, int, error)
}

// CampaignArchive persists finished campaigns (archive.Repository)
type CampaignArchive interface {
	SaveCampaign(ctx context.Context, s *campaign.Summary) error
	GetCampaign(ctx context.Context, id string) (*campaign.Summary, error)
	ListCampaigns(ctx context.Context, limit int) ([]archive.Entry, error)
}

// CampaignHandler runs bot campaigns and serves their results
// ⭐ SSOT: 캠페인 API 핸들러는 이 구조체에서만
type CampaignHandler struct {
	runner   *campaign.Runner
	defaults campaign.Config
	archive  CampaignArchive // nil when no database is configured
	cache    *redis.Cache
	limiter  launchLimiter
	logger   *logger.Logger
}

// NewCampaignHandler creates a new campaign handler. archive may be nil.
func NewCampaignHandler(
	runner *campaign.Runner,
	defaults campaign.Config,
	store CampaignArchive,
	redisClient *redis.Client,
	log *logger.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		runner:   runner,
		defaults: defaults,
		archive:  store,
		cache:    redis.NewCache(redisClient, "srm"),
		limiter:  redis.NewRateLimiter(redisClient, "srm"),
		logger:   log,
	}
}

// RunCampaignRequest overrides the default bot settings
type RunCampaignRequest struct {
	Runs         int    `json:"runs"`
	BaseSeed     *int64 `json:"base_seed,omitempty"`
	PayPolicy    string `json:"pay_policy"`
	ReorderPoint int    `json:"reorder_point"`
	ReorderQty   int    `json:"reorder_qty"`
	MaxDays      int    `json:"max_days"`
}

func (h *CampaignHandler) configFor(req RunCampaignRequest) (campaign.Config, error) {
	cfg := h.defaults
	if req.Runs > 0 {
		cfg.Runs = req.Runs
	}
	if cfg.Runs > maxCampaignRuns {
		return cfg, errors.New("runs must not exceed " + strconv.Itoa(maxCampaignRuns))
	}
	if req.BaseSeed != nil {
		cfg.BaseSeed = *req.BaseSeed
	}
	if req.PayPolicy != "" {
		policy, err := campaign.ParsePayPolicy(req.PayPolicy)
		if err != nil {
			return cfg, err
		}
		cfg.PayPolicy = policy
	}
	if req.ReorderPoint > 0 {
		cfg.ReorderPoint = req.ReorderPoint
	}
	if req.ReorderQty > 0 {
		cfg.ReorderQty = req.ReorderQty
	}
	if req.MaxDays > 0 {
		cfg.Session.MaxDays = req.MaxDays
	}
	if cfg.Session.MaxDays > maxCampaignDays {
		return cfg, errors.New("max_days must not exceed " + strconv.Itoa(maxCampaignDays))
	}
	return cfg, nil
}

// Run plays a campaign synchronously, archives and caches the summary
// POST /api/campaigns
func (h *CampaignHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunCampaignRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	cfg, err := h.configFor(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 유효한 요청만 한도를 소모
	allowed, _, err := h.limiter.Allow(ctx, redis.CampaignRateLimit.ForClient(clientIP(r)))
	if err != nil {
		h.logger.WithError(err).Warn("Campaign rate limit check failed")
	} else if !allowed {
		respondError(w, http.StatusTooManyRequests, "Too many campaigns, try again later")
		return
	}

	summary, err := h.runner.Run(ctx, cfg)
	if err != nil {
		h.logger.WithError(err).Error("Campaign failed")
		respondError(w, http.StatusInternalServerError, "Campaign failed")
		return
	}

	if h.archive != nil {
		if err := h.archive.SaveCampaign(ctx, summary); err != nil {
			h.logger.WithError(err).WithField("campaign", summary.ID).Warn("Failed to archive campaign")
		}
	}
	if err := h.cache.Set(ctx, redis.CampaignKey(summary.ID), summary, redis.TTLCampaign); err != nil {
		h.logger.WithError(err).WithField("campaign", summary.ID).Warn("Failed to cache campaign")
	}

	respondJSON(w, http.StatusCreated, summary)
}

// Get returns one campaign, cache first
// GET /api/campaigns/{id}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var cached campaign.Summary
	found, err := h.cache.Get(ctx, redis.CampaignKey(id), &cached)
	if err != nil {
		h.logger.WithError(err).Warn("Campaign cache read failed")
	}
	if found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	if h.archive == nil {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	summary, err := h.archive.GetCampaign(ctx, id)
	if errors.Is(err, archive.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get campaign")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve campaign")
		return
	}

	if err := h.cache.Set(ctx, redis.CampaignKey(id), summary, redis.TTLCampaign); err != nil {
		h.logger.WithError(err).Warn("Failed to cache campaign")
	}
	respondJSON(w, http.StatusOK, summary)
}

// List returns recent archived campaigns
// GET /api/campaigns?limit=20
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusServiceUnavailable, "Campaign archive not configured")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.archive.ListCampaigns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list campaigns")
		respondError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
