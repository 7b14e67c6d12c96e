package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mirodash/internal/render"
	"mirodash/internal/telemetry"
)

type recordingSink struct {
	mu     sync.Mutex
	events map[string]int
}

func (s *recordingSink) Publish(event string, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = map[string]int{}
	}
	s.events[event]++
}

func (s *recordingSink) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[event]
}

// gatedSource blocks every snapshot until release is closed.
type gatedSource struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Snapshot() telemetry.Snapshot {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return telemetry.Snapshot{}
}

func TestRun_TicksEveryCycleImmediately(t *testing.T) {
	sink := &recordingSink{}
	r := NewRunner(render.New(render.Config{}, nil), telemetry.NewCache(0), sink,
		Intervals{Fast: time.Hour, Medium: time.Hour, Slow: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return sink.count(Fast) == 1 && sink.count(Medium) == 1 && sink.count(Slow) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	_, ok := r.Latest(Fast)
	require.True(t, ok)
	slow, ok := r.Latest(Slow)
	require.True(t, ok)
	require.Equal(t, "clock_0.png", slow.(render.SlowPayload).Clock)
}

func TestTrigger_DropsOverlappingTick(t *testing.T) {
	src := &gatedSource{entered: make(chan struct{}, 1), release: make(chan struct{})}
	sink := &recordingSink{}
	r := NewRunner(render.New(render.Config{}, nil), src, sink, Intervals{}, nil)

	var inflight sync.WaitGroup
	r.trigger(Fast, &inflight)
	<-src.entered
	r.trigger(Fast, &inflight)
	r.trigger(Fast, &inflight)
	require.Equal(t, uint64(2), r.Dropped(Fast))

	close(src.release)
	inflight.Wait()
	require.Equal(t, 1, sink.count(Fast))

	r.trigger(Fast, &inflight)
	inflight.Wait()
	require.Equal(t, 2, sink.count(Fast))
	require.Equal(t, uint64(2), r.Dropped(Fast))
}

func TestTick_KeepsWindowAcrossFastTicks(t *testing.T) {
	c := telemetry.NewCache(0)
	c.SetDrives([]float64{0.4, 0.9})
	r := NewRunner(render.New(render.Config{}, nil), c, nil, Intervals{}, nil)

	r.Tick(Fast)
	r.Tick(Fast)
	got, ok := r.Latest(Fast)
	require.True(t, ok)
	require.Equal(t, []float64{0.4, 0.4}, got.(render.FastPayload).Motivation.Series[0].Y)
}

func TestToggles(t *testing.T) {
	r := NewRunner(render.New(render.Config{}, nil), telemetry.NewCache(0), nil, Intervals{}, nil)
	require.False(t, r.Toggles().Any())
	r.SetToggles(render.Toggles{OverlayLarge: true})
	require.True(t, r.Toggles().Any())

	_, ok := r.Latest(Medium)
	require.False(t, ok)
}
