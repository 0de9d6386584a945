// Package poller runs a fetch callback immediately and then on a fixed
// interval, never letting two invocations overlap.
package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 5 * time.Second

// FetchFunc is the guarded callback. Errors are logged and never stop the
// schedule.
type FetchFunc func(ctx context.Context) error

// Options configures a Poller.
type Options struct {
	Interval     time.Duration
	Enabled      bool
	FetchOnMount bool
}

// DefaultOptions returns a 5s interval, enabled, fetching on start.
func DefaultOptions() Options {
	return Options{Interval: DefaultInterval, Enabled: true, FetchOnMount: true}
}

// Poller invokes a FetchFunc on a timer. At most one invocation is in flight
// at any time; a tick that fires while one is running is dropped.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	onMount  bool
	log      zerolog.Logger

	inFlight atomic.Bool
	callMu   sync.Mutex
	callDone chan struct{} // closed when the in-flight invocation returns

	mu      sync.Mutex
	ctx     context.Context
	enabled bool
	started bool
	stop    chan struct{}
	done    chan struct{} // closed when the current timer loop exits
}

// New creates a Poller. It does nothing until Start is called.
func New(fetch FetchFunc, opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		onMount:  opts.FetchOnMount,
		enabled:  opts.Enabled,
		log:      zerolog.Nop(),
	}
}

// SetLogger sets the logger used for fetch failures.
func (p *Poller) SetLogger(log zerolog.Logger) {
	p.log = log.With().Str("component", "poller").Logger()
}

// Interval returns the tick interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins polling with ctx passed to every invocation. If the poller is
// enabled it fetches immediately (when FetchOnMount is set) and then on every
// tick. Calling Start on a started poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true
	p.ctx = ctx
	if p.enabled {
		p.startLoopLocked()
	}
}

// Stop ends polling. An invocation already in flight runs to completion but
// schedules nothing further. Stop waits for the timer loop, not the fetch.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.started = false
	done := p.stopLoopLocked()
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// SetEnabled turns ticking on or off. Re-enabling a started poller behaves
// like a fresh start, including the FetchOnMount fetch.
func (p *Poller) SetEnabled(enabled bool) {
	p.mu.Lock()
	if p.enabled == enabled {
		p.mu.Unlock()
		return
	}
	p.enabled = enabled
	if !p.started {
		p.mu.Unlock()
		return
	}
	if enabled {
		p.startLoopLocked()
		p.mu.Unlock()
		return
	}
	done := p.stopLoopLocked()
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Enabled reports whether ticking is enabled.
func (p *Poller) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Refresh runs the guarded invocation now, in the caller's goroutine, outside
// the timer. It returns false without calling fetch when an invocation is
// already in flight.
func (p *Poller) Refresh(ctx context.Context) bool {
	done, ok := p.acquire()
	if !ok {
		return false
	}
	p.invoke(ctx, done)
	return true
}

// IsRefreshing reports whether an invocation is in flight.
func (p *Poller) IsRefreshing() bool {
	return p.inFlight.Load()
}

// Wait blocks until no invocation is in flight.
func (p *Poller) Wait() {
	p.callMu.Lock()
	done := p.callDone
	p.callMu.Unlock()

	if done != nil {
		<-done
	}
}

// acquire marks an invocation in flight. It fails when one already is.
func (p *Poller) acquire() (chan struct{}, bool) {
	p.callMu.Lock()
	defer p.callMu.Unlock()

	if p.callDone != nil {
		return nil, false
	}
	done := make(chan struct{})
	p.callDone = done
	p.inFlight.Store(true)
	return done, true
}

func (p *Poller) release(done chan struct{}) {
	p.callMu.Lock()
	defer p.callMu.Unlock()

	p.callDone = nil
	p.inFlight.Store(false)
	close(done)
}

func (p *Poller) startLoopLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop = stop
	p.done = done
	ctx := p.ctx

	go func() {
		defer close(done)

		if p.onMount {
			p.tick(ctx)
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// stopLoopLocked signals the timer loop and returns a channel closed when
// it exits, or nil when no loop is running.
func (p *Poller) stopLoopLocked() chan struct{} {
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	done := p.done
	p.stop = nil
	p.done = nil
	return done
}

// tick starts an invocation in its own goroutine unless one is in flight.
func (p *Poller) tick(ctx context.Context) {
	done, ok := p.acquire()
	if !ok {
		p.log.Debug().Msg("Previous fetch still in flight, skipping tick")
		return
	}
	go p.invoke(ctx, done)
}

// invoke runs fetch with the in-flight flag already set.
func (p *Poller) invoke(ctx context.Context, done chan struct{}) {
	defer p.release(done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("panic", fmt.Sprint(r)).Msg("Fetch panicked")
		}
	}()

	if err := p.fetch(ctx); err != nil {
		p.log.Warn().Err(err).Msg("Fetch failed")
	}
}
