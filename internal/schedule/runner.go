// Package schedule drives the three render cycles on their own tickers and
// hands each payload to a sink.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mirodash/internal/render"
	"mirodash/internal/telemetry"
	"mirodash/internal/window"
)

// Cycle names, also used as stream event names.
const (
	Fast   = "fast"
	Medium = "medium"
	Slow   = "slow"
)

type Sink interface {
	Publish(event string, payload any)
}

type Intervals struct {
	Fast   time.Duration
	Medium time.Duration
	Slow   time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Fast:   100 * time.Millisecond,
		Medium: 200 * time.Millisecond,
		Slow:   time.Minute,
	}
}

type cycleState struct {
	busy    atomic.Bool
	dropped atomic.Uint64
}

// Runner owns the motivation window between fast ticks and the overlay toggles.
// A tick that arrives while the same cycle is still running is dropped.
type Runner struct {
	p         *render.Pipeline
	src       telemetry.Source
	sink      Sink
	intervals Intervals
	log       *slog.Logger

	mu      sync.RWMutex
	win     *window.Window
	toggles render.Toggles
	fast    *render.FastPayload
	medium  *render.MediumPayload
	slow    *render.SlowPayload

	cycles map[string]*cycleState
}

func NewRunner(p *render.Pipeline, src telemetry.Source, sink Sink, iv Intervals, log *slog.Logger) *Runner {
	def := DefaultIntervals()
	if iv.Fast <= 0 {
		iv.Fast = def.Fast
	}
	if iv.Medium <= 0 {
		iv.Medium = def.Medium
	}
	if iv.Slow <= 0 {
		iv.Slow = def.Slow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		p:         p,
		src:       src,
		sink:      sink,
		intervals: iv,
		log:       log.With("component", "schedule"),
		cycles: map[string]*cycleState{
			Fast:   {},
			Medium: {},
			Slow:   {},
		},
	}
}

// Run ticks every cycle once immediately, then on its interval, until ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for name, iv := range map[string]time.Duration{
		Fast:   r.intervals.Fast,
		Medium: r.intervals.Medium,
		Slow:   r.intervals.Slow,
	} {
		wg.Add(1)
		go func(name string, iv time.Duration) {
			defer wg.Done()
			r.loop(ctx, name, iv)
		}(name, iv)
	}
	wg.Wait()
	return ctx.Err()
}

func (r *Runner) loop(ctx context.Context, name string, iv time.Duration) {
	var inflight sync.WaitGroup
	defer inflight.Wait()

	t := time.NewTicker(iv)
	defer t.Stop()
	for {
		r.trigger(name, &inflight)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (r *Runner) trigger(name string, inflight *sync.WaitGroup) {
	cs := r.cycles[name]
	if !cs.busy.CompareAndSwap(false, true) {
		n := cs.dropped.Add(1)
		r.log.Debug("cycle still running, tick dropped", "cycle", name, "dropped_total", n)
		return
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer cs.busy.Store(false)
		r.Tick(name)
	}()
}

// Tick runs one cycle synchronously and publishes its payload.
func (r *Runner) Tick(name string) {
	start := time.Now()
	switch name {
	case Fast:
		r.mu.RLock()
		w := r.win
		r.mu.RUnlock()
		out, w := r.p.Fast(r.src, w)
		r.mu.Lock()
		r.win, r.fast = w, &out
		r.mu.Unlock()
		r.publish(name, out)
	case Medium:
		out := r.p.Medium(r.src, r.Toggles())
		r.mu.Lock()
		r.medium = &out
		r.mu.Unlock()
		r.publish(name, out)
	case Slow:
		out := r.p.Slow(r.src)
		r.mu.Lock()
		r.slow = &out
		r.mu.Unlock()
		r.publish(name, out)
	default:
		return
	}
	r.log.Debug("cycle done", "cycle", name, "took", time.Since(start))
}

func (r *Runner) publish(event string, payload any) {
	if r.sink != nil {
		r.sink.Publish(event, payload)
	}
}

// Dropped reports how many ticks of a cycle were skipped because the previous
// one had not finished.
func (r *Runner) Dropped(name string) uint64 {
	cs, ok := r.cycles[name]
	if !ok {
		return 0
	}
	return cs.dropped.Load()
}

func (r *Runner) Toggles() render.Toggles {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.toggles
}

func (r *Runner) SetToggles(t render.Toggles) {
	r.mu.Lock()
	r.toggles = t
	r.mu.Unlock()
}

// Latest returns the most recent payload of a cycle, or false before its first tick.
func (r *Runner) Latest(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch name {
	case Fast:
		if r.fast != nil {
			return *r.fast, true
		}
	case Medium:
		if r.medium != nil {
			return *r.medium, true
		}
	case Slow:
		if r.slow != nil {
			return *r.slow, true
		}
	}
	return nil, false
}
