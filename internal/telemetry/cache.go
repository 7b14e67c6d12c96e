package telemetry

import (
	"image"
	"sync"
	"time"
)

type stamped[T any] struct {
	v  T
	at time.Time
}

// Cache is a Source holding the most recent value written to each channel.
// With a non-zero TTL, values older than the TTL read as unknown.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	priority   *stamped[[]float64]
	inhibition *stamped[[]float64]
	affect     *stamped[Affect]
	drives     *stamped[[]float64]
	hour       *stamped[int]
	frames     map[FrameID]stamped[image.Image]
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now, frames: map[FrameID]stamped[image.Image]{}}
}

// WithClock replaces the cache's time source. Used by tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) SetActionPriority(v []float64) {
	c.mu.Lock()
	c.priority = &stamped[[]float64]{v: clone(v), at: c.now()}
	c.mu.Unlock()
}

func (c *Cache) SetActionInhibition(v []float64) {
	c.mu.Lock()
	c.inhibition = &stamped[[]float64]{v: clone(v), at: c.now()}
	c.mu.Unlock()
}

func (c *Cache) SetAffect(a Affect) {
	c.mu.Lock()
	c.affect = &stamped[Affect]{v: Affect{
		Emotion: clonePair(a.Emotion),
		Mood:    clonePair(a.Mood),
		Sleep:   clonePair(a.Sleep),
	}, at: c.now()}
	c.mu.Unlock()
}

func (c *Cache) SetDrives(v []float64) {
	c.mu.Lock()
	c.drives = &stamped[[]float64]{v: clone(v), at: c.now()}
	c.mu.Unlock()
}

func (c *Cache) SetHour(h int) {
	c.mu.Lock()
	c.hour = &stamped[int]{v: h, at: c.now()}
	c.mu.Unlock()
}

// SetFrame stores img for id. The image must not be modified afterwards.
func (c *Cache) SetFrame(id FrameID, img image.Image) {
	c.mu.Lock()
	if img == nil {
		delete(c.frames, id)
	} else {
		c.frames[id] = stamped[image.Image]{v: img, at: c.now()}
	}
	c.mu.Unlock()
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	fresh := func(at time.Time) bool {
		return c.ttl <= 0 || now.Sub(at) <= c.ttl
	}

	s := Snapshot{At: now}
	if c.priority != nil && fresh(c.priority.at) {
		s.Priority = clone(c.priority.v)
	}
	if c.inhibition != nil && fresh(c.inhibition.at) {
		s.Inhibition = clone(c.inhibition.v)
	}
	if c.affect != nil && fresh(c.affect.at) {
		a := Affect{
			Emotion: clonePair(c.affect.v.Emotion),
			Mood:    clonePair(c.affect.v.Mood),
			Sleep:   clonePair(c.affect.v.Sleep),
		}
		s.Affect = &a
	}
	if c.drives != nil && fresh(c.drives.at) {
		s.Drives = clone(c.drives.v)
	}
	if c.hour != nil && fresh(c.hour.at) {
		h := c.hour.v
		s.Hour = &h
	}
	if len(c.frames) > 0 {
		s.Frames = make(map[FrameID]image.Image, len(c.frames))
		for id, f := range c.frames {
			if fresh(f.at) {
				s.Frames[id] = f.v
			}
		}
	}
	return s
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func clonePair(p *Pair) *Pair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
