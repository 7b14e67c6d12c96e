package telemetry

import (
	"image"
	"image/color"
	"math"
	"time"
)

const (
	simFrameW = 320
	simFrameH = 180
	simWideW  = 640
	simWideH  = 30
)

// SimSource produces smoothly varying signals for running the dashboard without
// a robot. Output depends only on the clock.
type SimSource struct {
	now     func() time.Time
	start   time.Time
	actions int
	drives  int
}

func NewSimSource(actions, drives int, now func() time.Time) *SimSource {
	if now == nil {
		now = time.Now
	}
	return &SimSource{now: now, start: now(), actions: actions, drives: drives}
}

func (s *SimSource) Snapshot() Snapshot {
	now := s.now()
	t := now.Sub(s.start).Seconds()

	wave := func(period, phase float64) float64 {
		return 0.5 + 0.5*math.Sin(2*math.Pi*t/period+phase)
	}

	priority := make([]float64, s.actions)
	inhibition := make([]float64, s.actions)
	for i := range priority {
		priority[i] = wave(7+float64(i), float64(i))
		inhibition[i] = wave(11+float64(i), float64(i)*0.7) * 0.5
	}
	drives := make([]float64, s.drives)
	for i := range drives {
		drives[i] = wave(20+5*float64(i), float64(i)*1.3)
	}
	hour := now.Hour()

	return Snapshot{
		At:         now,
		Priority:   priority,
		Inhibition: inhibition,
		Affect: &Affect{
			Emotion: &Pair{X: wave(9, 0), Y: wave(13, 1)},
			Mood:    &Pair{X: wave(60, 2), Y: wave(45, 3)},
			Sleep:   &Pair{X: wave(120, 0), Y: 1 - wave(120, 0)},
		},
		Drives: drives,
		Hour:   &hour,
		Frames: map[FrameID]image.Image{
			CameraLeft:    gradient(simFrameW, simFrameH, t, 0),
			CameraRight:   gradient(simFrameW, simFrameH, t, 0.5),
			PriorityLeft:  spot(simFrameW, simFrameH, wave(5, 0)),
			PriorityRight: spot(simFrameW, simFrameH, wave(5, 1)),
			WideAudio:     spot(simWideW, simWideH, wave(3, 0)),
		},
	}
}

func gradient(w, h int, t, phase float64) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := int(t*40+phase*float64(w)) % w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(((x + shift) % w) * 255 / w)
			img.SetRGBA(x, y, color.RGBA{R: v, G: uint8(y * 255 / h), B: 255 - v, A: 255})
		}
	}
	return img
}

// spot draws a soft red blob centred at fraction fx of the width.
func spot(w, h int, fx float64) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := fx*float64(w), float64(h)/2
	r := float64(h) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / r
			a := uint8(255 * math.Max(0, 1-d))
			img.SetRGBA(x, y, color.RGBA{R: a, A: a})
		}
	}
	return img
}
