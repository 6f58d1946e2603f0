package detect

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// PollConfig bounds the wait for a detection job
type PollConfig struct {
	// Interval between status checks
	Interval time.Duration
	// MaxPolls caps the number of status checks; 0 means no cap beyond ctx
	MaxPolls int
	// MaxTransientRetries is how many consecutive status-check failures are
	// tolerated before giving up
	MaxTransientRetries int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:            5 * time.Second,
		MaxPolls:            120,
		MaxTransientRetries: 3,
	}
}

// Poller waits for a detection job to reach a terminal state
type Poller struct {
	logger  zerolog.Logger
	service Service
	config  PollConfig
}

// NewPoller creates a poller over the given service
func NewPoller(logger zerolog.Logger, service Service, cfg PollConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollConfig().Interval
	}
	return &Poller{
		logger:  logger.With().Str("component", "job-poller").Logger(),
		service: service,
		config:  cfg,
	}
}

// Await polls the job until it succeeds, fails, or the wait is exhausted.
// On success it returns the detection events ordered by timestamp ascending.
// The wait is bounded: ctx cancellation and deadline are honored at every
// interval, consecutive transient status errors beyond MaxTransientRetries
// abort the wait, and MaxPolls caps the total number of checks.
func (p *Poller) Await(ctx context.Context, id JobID) ([]FaceDetectionEvent, error) {
	p.logger.Info().
		Str("job_id", string(id)).
		Dur("interval", p.config.Interval).
		Msg("waiting for detection job")

	transient := 0
	polls := 0

	for {
		status, err := p.service.GetJobStatus(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			transient++
			if transient > p.config.MaxTransientRetries {
				return nil, fmt.Errorf("%w: status check failed %d times: %v",
					ErrPollExhausted, transient, err)
			}
			p.logger.Warn().Err(err).
				Str("job_id", string(id)).
				Int("attempt", transient).
				Msg("transient status check failure")
		} else {
			transient = 0

			switch status.State {
			case StateSucceeded:
				events := status.Faces
				sort.SliceStable(events, func(i, j int) bool {
					return events[i].TimestampMs < events[j].TimestampMs
				})
				p.logger.Info().
					Str("job_id", string(id)).
					Int("events", len(events)).
					Msg("detection job succeeded")
				return events, nil

			case StateFailed:
				if status.Message != "" {
					return nil, fmt.Errorf("%w: %s", ErrJobFailed, status.Message)
				}
				return nil, ErrJobFailed

			default:
				p.logger.Debug().
					Str("job_id", string(id)).
					Str("state", string(status.State)).
					Msg("job still running")
			}
		}

		polls++
		if p.config.MaxPolls > 0 && polls >= p.config.MaxPolls {
			return nil, fmt.Errorf("%w: job not terminal after %d polls",
				ErrPollExhausted, polls)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.config.Interval):
		}
	}
}
