package scheduler

import (
	"context"
	"errors"
	"time"
)

// Job is a periodic housekeeping task (idle session eviction)
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a 6-field cron expression, seconds first: "0 */10 * * * *"
	Schedule() string
}

// ErrJobNotFound is returned for names the scheduler does not know
var ErrJobNotFound = errors.New("job not found")

// historyLimit caps the results kept per job
const historyLimit = 100

// Trigger tells how an execution was started
type Trigger string

const (
	TriggerCron   Trigger = "cron"
	TriggerManual Trigger = "manual"
)

// JobResult is one execution including its retries
type JobResult struct {
	JobName   string        `json:"job_name"`
	Trigger   Trigger       `json:"trigger"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory holds the latest results of one job, oldest first.
// Values handed out by the scheduler are copies.
type JobHistory struct {
	Results []JobResult `json:"results"`
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historyLimit; over > 0 {
		h.Results = append(h.Results[:0:0], h.Results[over:]...)
	}
}

func (h JobHistory) clone() JobHistory {
	return JobHistory{Results: append([]JobResult(nil), h.Results...)}
}

// Latest returns up to n most recent results, oldest first
func (h JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return append([]JobResult(nil), h.Results[len(h.Results)-n:]...)
}

// Failures returns the failed results
func (h JobHistory) Failures() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is the share of successful results (0.0 - 1.0), 0 without history
func (h JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	ok := len(h.Results) - len(h.Failures())
	return float64(ok) / float64(len(h.Results))
}
