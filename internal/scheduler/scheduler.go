package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/srm-sim/pkg/logger"
)

// Scheduler runs housekeeping jobs on cron schedules and on demand
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex

	// Stop cancels running jobs and pending retries
	ctx    context.Context
	cancel context.CancelFunc

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log,
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: 3,
		retryDelay: 1 * time.Minute,
	}
}

// SetRetry overrides the retry policy of failed jobs
func (s *Scheduler) SetRetry(maxRetries int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxRetries < 0 {
		maxRetries = 0
	}
	s.maxRetries = maxRetries
	s.retryDelay = delay
}

// AddJob registers a job on its cron schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job, TriggerCron)
	}); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels in-flight jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) lookup(name string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	return job, nil
}

// RunJob starts a job now in the background (outside of its schedule)
func (s *Scheduler) RunJob(name string) error {
	job, err := s.lookup(name)
	if err != nil {
		return err
	}

	s.logger.Debugf("Job %s triggered manually", name)
	go s.runJob(job, TriggerManual)
	return nil
}

// RunJobSync runs a job now and returns its result
func (s *Scheduler) RunJobSync(name string) (JobResult, error) {
	job, err := s.lookup(name)
	if err != nil {
		return JobResult{}, err
	}
	return s.runJob(job, TriggerManual), nil
}

// runJob executes a job with retry logic and records the result
func (s *Scheduler) runJob(job Job, trigger Trigger) JobResult {
	name := job.Name()
	start := time.Now()

	s.mu.RLock()
	maxRetries, retryDelay := s.maxRetries, s.retryDelay
	s.mu.RUnlock()

	result := JobResult{JobName: name, Trigger: trigger, StartTime: start}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result.Attempts++

		lastErr = job.Run(s.ctx)
		if lastErr == nil {
			result.Success = true
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": result.Attempts,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt == maxRetries {
			break
		}
		select {
		case <-s.ctx.Done():
			attempt = maxRetries
		case <-time.After(retryDelay):
		}
	}

	result.Duration = time.Since(start)
	if !result.Success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if h, exists := s.history[name]; exists {
		h.add(result)
	}
	s.mu.Unlock()

	log := s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"trigger":  trigger,
		"attempts": result.Attempts,
		"duration": result.Duration,
	})
	if result.Success {
		log.Debug("Job completed")
	} else {
		log.WithError(lastErr).Error("Job failed after all retries")
	}

	return result
}

// History returns a copy of a job's recent results
func (s *Scheduler) History(name string) (JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.history[name]
	if !exists {
		return JobHistory{}, fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	return h.clone(), nil
}

// JobStats summarises one job's history
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// Stats returns per-job statistics sorted by name
func (s *Scheduler) Stats() []JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]JobStats, 0, len(s.jobs))
	for name, job := range s.jobs {
		h := s.history[name]
		failed := len(h.Failures())

		st := JobStats{
			JobName:      name,
			Schedule:     job.Schedule(),
			TotalRuns:    len(h.Results),
			SuccessCount: len(h.Results) - failed,
			FailureCount: failed,
			SuccessRate:  h.SuccessRate(),
		}

		for i := range h.Results {
			r := h.Results[i]
			st.LastRun = &r.StartTime
			if r.Success {
				st.LastSuccess = &r.StartTime
			} else {
				st.LastFailure = &r.StartTime
			}
		}

		stats = append(stats, st)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].JobName < stats[j].JobName })
	return stats
}
