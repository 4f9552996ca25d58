// Package jobs runs background maintenance outside the request path.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionPurger deletes expired sessions and reports how many were removed.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionJanitor removes expired sessions on a cron schedule.
type SessionJanitor struct {
	cron    *cron.Cron
	purger  SessionPurger
	timeout time.Duration
}

// NewSessionJanitor schedules the purge. schedule accepts standard cron
// expressions and descriptors such as "@every 1h".
func NewSessionJanitor(schedule string, purger SessionPurger) (*SessionJanitor, error) {
	j := &SessionJanitor{
		cron:    cron.New(),
		purger:  purger,
		timeout: time.Minute,
	}

	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("schedule session janitor %q: %w", schedule, err)
	}

	return j, nil
}

// Start runs the scheduler in its own goroutine.
func (j *SessionJanitor) Start() {
	j.cron.Start()
}

// Stop stops scheduling and waits for a running purge, or until ctx is done.
func (j *SessionJanitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce purges expired sessions now.
func (j *SessionJanitor) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Expired session purge failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("purged", n).Msg("Expired sessions purged")
	}
	return n, nil
}
