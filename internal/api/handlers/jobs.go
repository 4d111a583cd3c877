package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/srm-sim/internal/scheduler"
	"github.com/wonny/srm-sim/pkg/logger"
)

// JobScheduler is the part of scheduler.Scheduler the API exposes
type JobScheduler interface {
	Stats() []scheduler.JobStats
	History(name string) (scheduler.JobHistory, error)
	RunJob(name string) error
	RunJobSync(name string) (scheduler.JobResult, error)
}

// JobHandler exposes housekeeping job status and manual triggers
type JobHandler struct {
	sched  JobScheduler
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(sched JobScheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{sched: sched, logger: log}
}

// JobHistoryResponse is the recent history of one job
type JobHistoryResponse struct {
	Job         string                `json:"job"`
	SuccessRate float64               `json:"success_rate"`
	Results     []scheduler.JobResult `json:"results"`
}

// List returns statistics for every job
// GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sched.Stats())
}

// History returns the latest results of one job
// GET /api/jobs/{name}/history?limit=20&failed=true
func (h *JobHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.sched.History(name)
	if err != nil {
		h.respondJobError(w, err)
		return
	}

	limit := 20
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	results := history.Latest(limit)
	if r.URL.Query().Get("failed") == "true" {
		results = scheduler.JobHistory{Results: results}.Failures()
	}

	respondJSON(w, http.StatusOK, JobHistoryResponse{
		Job:         name,
		SuccessRate: history.SuccessRate(),
		Results:     results,
	})
}

// Run triggers a job outside its schedule.
// With wait=true the result is returned, otherwise 202.
// POST /api/jobs/{name}/run
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if r.URL.Query().Get("wait") == "true" {
		result, err := h.sched.RunJobSync(name)
		if err != nil {
			h.respondJobError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	if err := h.sched.RunJob(name); err != nil {
		h.respondJobError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"job": name, "status": "started"})
}

func (h *JobHandler) respondJobError(w http.ResponseWriter, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.WithError(err).Error("Job request failed")
	respondError(w, http.StatusInternalServerError, "Job request failed")
}
