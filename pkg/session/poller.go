package session

import (
	"context"
	"sync"
	"time"

	"Ascend/pkg/bridge"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is the device-list polling period
const DefaultPollInterval = 5 * time.Second

// DevicesRequest builds the `adb devices` query routed to the registry
func DevicesRequest(background bool) bridge.Request {
	return bridge.Request{
		Command:    "adb",
		Args:       []string{"devices"},
		Background: background,
		Key:        bridge.DeviceListKey(),
	}
}

// Poller refreshes the device list on a fixed interval. A tick that finds
// a foreground command in flight is dropped.
type Poller struct {
	runner   *bridge.Runner
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(runner *bridge.Runner, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		runner:   runner,
		interval: interval,
		logger:   logger.With().Str("module", "poller").Logger(),
	}
}

// Tick issues one background device-list query unless busy. It returns
// the handle of the issued query, or nil when the tick was dropped.
func (p *Poller) Tick(ctx context.Context) *bridge.Pending {
	if p.runner.IsBusy() {
		p.logger.Debug().Msg("Skipping poll, busy")
		return nil
	}
	return p.runner.Run(ctx, DevicesRequest(true))
}

// Start begins polling until ctx is cancelled or Stop is called.
// Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	p.logger.Info().Dur("interval", p.interval).Msg("Device polling started")
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Stop halts polling and waits for the loop to exit
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info().Msg("Device polling stopped")
}
