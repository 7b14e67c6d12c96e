package state

import (
	"context"
	"log/slog"
	"time"

	"mirodash/internal/telemetry"
)

// Recorder periodically writes the present affect and drive values to the
// samples table. Missing channels are skipped.
type Recorder struct {
	db       *DB
	src      telemetry.Source
	drives   []string
	interval time.Duration
	retain   time.Duration
	log      *slog.Logger
}

func NewRecorder(db *DB, src telemetry.Source, drives []string, interval, retain time.Duration, log *slog.Logger) *Recorder {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		db:       db,
		src:      src,
		drives:   drives,
		interval: interval,
		retain:   retain,
		log:      log.With("component", "recorder"),
	}
}

// Values flattens a snapshot into channel names, e.g. "affect.mood.valence"
// or "motivation.social".
func (r *Recorder) Values(s telemetry.Snapshot) map[string]float64 {
	out := map[string]float64{}
	if a, err := s.AffectState(); err == nil {
		if a.Emotion != nil {
			out["affect.emotion.valence"] = a.Emotion.X
			out["affect.emotion.arousal"] = a.Emotion.Y
		}
		if a.Mood != nil {
			out["affect.mood.valence"] = a.Mood.X
			out["affect.mood.arousal"] = a.Mood.Y
		}
		if a.Sleep != nil {
			out["affect.sleep.wakefulness"] = a.Sleep.X
			out["affect.sleep.pressure"] = a.Sleep.Y
		}
	}
	if d, err := s.MotivationDrives(); err == nil {
		for i, name := range r.drives {
			if i < len(d) {
				out["motivation."+name] = d[i]
			}
		}
	}
	return out
}

func (r *Recorder) RecordOnce() error {
	s := r.src.Snapshot()
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	if err := r.db.InsertSamples(at, r.Values(s)); err != nil {
		return err
	}
	if r.retain > 0 {
		if _, err := r.db.PruneSamples(at.Add(-r.retain)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := r.RecordOnce(); err != nil {
				r.log.Warn("recording samples failed", "error", err)
			}
		}
	}
}
