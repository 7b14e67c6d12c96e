// Package telemetry holds the robot's latest-known signal values and the sources
// that feed them.
package telemetry

import (
	"errors"
	"image"
	"time"
)

// ErrSignalUnavailable reports that a channel has no current value.
var ErrSignalUnavailable = errors.New("telemetry: signal unavailable")

// Pair is a two-dimensional affect reading, each axis in 0..1.
// For emotion and mood X is valence and Y arousal; for sleep X is wakefulness
// and Y sleep pressure.
type Pair struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Affect groups the three affect readings. Any of them may be missing.
type Affect struct {
	Emotion *Pair
	Mood    *Pair
	Sleep   *Pair
}

type FrameID string

const (
	CameraLeft    FrameID = "left"
	CameraRight   FrameID = "right"
	PriorityLeft  FrameID = "priorityLeft"
	PriorityRight FrameID = "priorityRight"
	WideAudio     FrameID = "wideAudio"
)

// FrameIDs lists every vision channel.
var FrameIDs = []FrameID{CameraLeft, CameraRight, PriorityLeft, PriorityRight, WideAudio}

// Snapshot is a read of every channel at one instant. A nil field means the
// channel is unknown. Snapshots are never mutated after they are handed out.
type Snapshot struct {
	At         time.Time
	Priority   []float64
	Inhibition []float64
	Affect     *Affect
	Drives     []float64
	Hour       *int
	Frames     map[FrameID]image.Image
}

func (s Snapshot) ActionPriority() ([]float64, error) {
	if s.Priority == nil {
		return nil, ErrSignalUnavailable
	}
	return s.Priority, nil
}

func (s Snapshot) ActionInhibition() ([]float64, error) {
	if s.Inhibition == nil {
		return nil, ErrSignalUnavailable
	}
	return s.Inhibition, nil
}

func (s Snapshot) AffectState() (Affect, error) {
	if s.Affect == nil {
		return Affect{}, ErrSignalUnavailable
	}
	return *s.Affect, nil
}

func (s Snapshot) MotivationDrives() ([]float64, error) {
	if s.Drives == nil {
		return nil, ErrSignalUnavailable
	}
	return s.Drives, nil
}

func (s Snapshot) TimeOfDay() (int, error) {
	if s.Hour == nil {
		return 0, ErrSignalUnavailable
	}
	return *s.Hour, nil
}

func (s Snapshot) Frame(id FrameID) (image.Image, error) {
	img, ok := s.Frames[id]
	if !ok || img == nil {
		return nil, ErrSignalUnavailable
	}
	return img, nil
}

// Source is polled for the latest snapshot. Implementations must be safe for
// concurrent use.
type Source interface {
	Snapshot() Snapshot
}
