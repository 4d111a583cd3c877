package jobs

import (
	"context"
	"time"

	"github.com/wonny/srm-sim/internal/sessions"
	"github.com/wonny/srm-sim/pkg/logger"
)

// SessionReaperJob evicts hosted sessions nobody has touched within the TTL
type SessionReaperJob struct {
	store    *sessions.Store
	ttl      time.Duration
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewSessionReaperJob creates a new session reaper job
func NewSessionReaperJob(store *sessions.Store, ttl time.Duration, schedule string, log *logger.Logger) *SessionReaperJob {
	return &SessionReaperJob{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *SessionReaperJob) Name() string {
	return "session_reaper"
}

// Schedule returns the cron schedule
func (j *SessionReaperJob) Schedule() string {
	return j.schedule
}

// Run executes the eviction pass
func (j *SessionReaperJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	evicted := j.store.Reap(j.now(), j.ttl)
	if len(evicted) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"evicted":   len(evicted),
			"remaining": j.store.Len(),
		}).Info("Idle sessions evicted")
	}

	return nil
}
