package bridge

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Runner dispatches requests to an Executor and hands completions to a Router
type Runner struct {
	exec   Executor
	router *Router
	logger zerolog.Logger
}

// NewRunner creates a runner feeding router
func NewRunner(exec Executor, router *Router, logger zerolog.Logger) *Runner {
	return &Runner{
		exec:   exec,
		router: router,
		logger: logger.With().Str("module", "runner").Logger(),
	}
}

// Run dispatches req without blocking. Foreground requests count as busy
// from this call until the router has handled their output. Failures are
// never returned here; they arrive as error-tagged output.
func (r *Runner) Run(ctx context.Context, req Request) *Pending {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	p := newPending(req)

	if !req.Background {
		r.router.busy.acquire()
	}

	r.logger.Debug().
		Str("id", req.ID).
		Str("command", req.Command).
		Strs("args", req.Args).
		Bool("background", req.Background).
		Str("key", req.Key.String()).
		Msg("Dispatching command")

	go func() {
		res := r.exec.Execute(ctx, req.Command, req.Args)
		r.router.deliver(p, NewOutput(req, res.Text()))
	}()
	return p
}

// IsBusy reports whether any foreground request is outstanding
func (r *Runner) IsBusy() bool {
	return r.router.busy.IsBusy()
}
