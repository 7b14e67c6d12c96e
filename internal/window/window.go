// Package window keeps a fixed-capacity trailing history of scalar samples per
// named channel.
package window

import "sync"

// DefaultCapacity is the number of samples kept per channel.
const DefaultCapacity = 30

// Window is a set of independent FIFO channels. Each append evicts at most one
// sample, so a channel never holds more than Cap() samples.
type Window struct {
	mu       sync.Mutex
	capacity int
	series   map[string][]float64
}

func New(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Window{capacity: capacity, series: map[string][]float64{}}
}

func (w *Window) Cap() int { return w.capacity }

// Append pushes v onto channel, dropping the oldest sample when full.
func (w *Window) Append(channel string, v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := append(w.series[channel], v)
	if len(s) > w.capacity {
		s = s[1:]
	}
	w.series[channel] = s
}

// Read returns a copy of channel's samples, oldest first.
func (w *Window) Read(channel string) []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.series[channel]
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// Len returns the number of samples held for channel.
func (w *Window) Len(channel string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.series[channel])
}
