package engine

import (
	"math/rand"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/pkg/logger"
)

// Option customises a new session
type Option func(*Session)

// WithSeed makes the session deterministic
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a random source directly (scripted sources in tests)
func WithRand(rng contracts.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithSuppliers replaces the built-in supplier catalog
func WithSuppliers(defs []contracts.Supplier) Option {
	return func(s *Session) {
		s.defs = defs
	}
}

// WithSchedule replaces the generated demand schedule.
// schedule[day] is the demand of that day; index 0 is ignored.
func WithSchedule(schedule []int) Option {
	return func(s *Session) {
		s.schedule = schedule
	}
}

// WithLogger sets the session logger
func WithLogger(log *logger.Logger) Option {
	return func(s *Session) {
		s.logger = log
	}
}

// WithRecorder attaches an activity recorder (metrics)
func WithRecorder(r contracts.Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithID sets the session id instead of generating one
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}
