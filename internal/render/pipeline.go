// Package render turns telemetry snapshots into chart and image payloads for
// the dashboard. Each cycle is a pure function of its inputs apart from the
// motivation window, which the caller owns and hands back on every fast tick.
package render

import (
	"log/slog"
	"math"

	"mirodash/internal/lookup"
	"mirodash/internal/window"
)

// Placeholder assets shown when a frame is missing.
const (
	PlaceholderCamera = "test_cam_sml.png"
	PlaceholderWide   = "test_priw.png"
)

var DefaultActions = []string{"Mull", "Orient", "Approach", "Flee", "Avert", "Halt", "Retreat", "Special"}

var DefaultDrives = []string{"social", "ball"}

type Config struct {
	AssetPrefix    string
	Actions        []string
	Drives         []string
	WindowCapacity int
	// CamScale shrinks the small camera views, CamScaleLarge the large ones.
	CamScale      int
	CamScaleLarge int
}

type Pipeline struct {
	cfg        Config
	moodFaces  lookup.Table2D
	sleepFaces lookup.Table1D
	log        *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Pipeline {
	if len(cfg.Actions) == 0 {
		cfg.Actions = DefaultActions
	}
	if len(cfg.Drives) == 0 {
		cfg.Drives = DefaultDrives
	}
	if cfg.WindowCapacity < 1 {
		cfg.WindowCapacity = window.DefaultCapacity
	}
	if cfg.CamScale < 1 {
		cfg.CamScale = 4
	}
	if cfg.CamScaleLarge < 1 {
		cfg.CamScaleLarge = cfg.CamScale
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		moodFaces:  lookup.MoodFaces(cfg.AssetPrefix),
		sleepFaces: lookup.SleepFaces(cfg.AssetPrefix),
		log:        log.With("component", "render"),
	}
}

// NewWindow returns an empty motivation window sized for this pipeline.
func (p *Pipeline) NewWindow() *window.Window {
	return window.New(p.cfg.WindowCapacity)
}

func (p *Pipeline) Drives() []string { return p.cfg.Drives }

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
