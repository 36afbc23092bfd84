package job

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

// AsyncInvoker submits a job and lets the caller poll it. Used by the HTTP surface.
type AsyncInvoker interface {
	Submit(ctx context.Context, key string, req Request) (string, error)
	Poll(ctx context.Context, id string) (*Job, error)
}

// BlockingInvoker runs a job to a terminal state. Used by batch tools.
type BlockingInvoker interface {
	Run(ctx context.Context, key string, req Request) (*Job, error)
}

var (
	_ AsyncInvoker    = (*Service)(nil)
	_ BlockingInvoker = (*Runner)(nil)
)

const DefaultPollInterval = 2 * time.Second

// Runner waits for jobs on the caller's goroutine, polling at a fixed interval.
type Runner struct {
	service  *Service
	interval time.Duration
	log      zerolog.Logger
}

func NewRunner(service *Service, interval time.Duration, log zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Runner{
		service:  service,
		interval: interval,
		log:      log.With().Str("component", "job-runner").Logger(),
	}
}

// Run submits req and blocks until the job is terminal or ctx is done.
// Cancelling ctx stops waiting; the upstream job keeps running.
func (r *Runner) Run(ctx context.Context, key string, req Request) (*Job, error) {
	sub, err := r.service.Prepare(ctx, key, req)
	if err != nil {
		return nil, err
	}
	id, err := r.service.Dispatch(ctx, sub)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := StatusQueued
	for {
		j, err := r.service.Poll(ctx, id)
		if err != nil {
			return nil, err
		}
		if j.Status != last {
			r.log.Debug().Str("prediction_id", id).Str("status", j.Status.String()).Msg("job status changed")
			last = j.Status
		}
		if j.Status.IsTerminal() {
			return j, nil
		}

		select {
		case <-ctx.Done():
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "stopped waiting for prediction",
				ctx.Err(), "job-wait-aborted", map[string]any{"prediction_id": id})
		case <-ticker.C:
		}
	}
}
