package bridge

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"sync"

	"Ascend/pkg/sessionlog"

	"github.com/rs/zerolog"
)

// Handler consumes the output of one request. Handlers run one at a time
// and must not wait on another Pending.
type Handler func(out Output) error

// successPattern marks unkeyed output worth tagging SUCCESS in the log
var successPattern = regexp.MustCompile(`(?i)(\bsuccess\b|\bconnected to\b|restarting in tcp mode|\d+ files? (pulled|pushed))`)

type delivery struct {
	pending *Pending
	out     Output
}

// Router dispatches completed outputs to the handler of their key kind.
// Deliveries are processed one at a time in arrival order.
type Router struct {
	busy   *Busy
	sink   sessionlog.Sink
	logger zerolog.Logger

	mu       sync.RWMutex
	handlers map[Kind]Handler

	// dispatchMu serializes handlers
	dispatchMu sync.Mutex
}

// NewRouter creates a router. sink receives unkeyed output and handler
// failures.
func NewRouter(busy *Busy, sink sessionlog.Sink, logger zerolog.Logger) *Router {
	return &Router{
		busy:     busy,
		sink:     sink,
		logger:   logger.With().Str("module", "router").Logger(),
		handlers: make(map[Kind]Handler),
	}
}

// Busy returns the counter released by this router
func (r *Router) Busy() *Busy {
	return r.busy
}

// Handle registers h for kind, replacing any previous handler
func (r *Router) Handle(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

func (r *Router) deliver(p *Pending, out Output) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.dispatch(delivery{pending: p, out: out})
}

// settle releases busy and resolves the handle; the only place busy drops
func (r *Router) settle(d delivery) {
	if !d.out.Background {
		r.busy.release()
	}
	d.pending.resolve(d.out)
}

func (r *Router) dispatch(d delivery) {
	out := d.out
	defer r.settle(d)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("category", "panic").
				Str("key", out.Key.String()).
				Interface("recovered", rec).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered")
			r.sink.Add(sessionlog.Error, fmt.Sprintf("Error parsing output for %s: %v", keyLabel(out.Key), rec))
		}
	}()

	r.logger.Debug().
		Str("id", out.RequestID).
		Str("key", out.Key.String()).
		Str("status", out.Status.String()).
		Msg("Routing output")

	h := r.handlerFor(out.Key)
	if h == nil {
		r.logOutput(out)
		return
	}
	if err := h(out); err != nil {
		r.sink.Add(sessionlog.Error, fmt.Sprintf("Error parsing output for %s: %v", keyLabel(out.Key), err))
	}
}

// handlerFor follows the routing order: a handler for the key's own kind,
// else the dumpsys box for any present key, else the log.
func (r *Router) handlerFor(k Key) Handler {
	if k.IsZero() {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[k.Kind]; ok {
		return h
	}
	return r.handlers[KindDumpsys]
}

func (r *Router) logOutput(out Output) {
	switch {
	case out.Failed():
		r.sink.Add(sessionlog.Error, out.Message)
	case out.Message == "":
	case out.Status == StatusInfo:
		r.sink.Add(sessionlog.Info, out.Message)
	case successPattern.MatchString(out.Message):
		r.sink.Add(sessionlog.Success, out.Message)
	default:
		r.sink.Add(sessionlog.Info, out.Message)
	}
}

func keyLabel(k Key) string {
	if s := k.String(); s != "" {
		return s
	}
	return k.Kind.String()
}
