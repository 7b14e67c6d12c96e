package render

import (
	"mirodash/internal/telemetry"
	"mirodash/internal/window"
)

var (
	actionAxisX = Axis{Title: "Salience", Min: -1, Max: 1}
	driveColors = []string{"steelblue", "mediumseagreen", "darkorange", "orchid", "goldenrod"}
)

func unitAxis(title string) Axis { return Axis{Title: title, Min: 0, Max: 1} }

// Fast builds the action, affect and motivation charts. It appends this tick's
// drive levels to w and returns w so the caller can supply it again next tick.
// A nil w starts a fresh window.
func (p *Pipeline) Fast(src telemetry.Source, w *window.Window) (FastPayload, *window.Window) {
	if w == nil {
		w = p.NewWindow()
	}
	snap := src.Snapshot()

	var out FastPayload
	out.Action = p.actionChart(snap)
	p.affectCharts(snap, &out)
	out.Motivation = p.motivationChart(snap, w)
	return out, w
}

func (p *Pipeline) actionChart(snap telemetry.Snapshot) Chart {
	inputs := []float64{0}
	outputs := []float64{0}
	pri, errP := snap.ActionPriority()
	inh, errI := snap.ActionInhibition()
	if errP == nil && errI == nil {
		// Priority is negated so it extends left of the shared category axis.
		inputs = make([]float64, len(pri))
		for i, v := range pri {
			inputs[i] = -v
		}
		outputs = append([]float64(nil), inh...)
	}
	return Chart{
		Series: []Series{
			{Name: "Input", Kind: KindBar, Color: "#F39C12", X: inputs, Categories: p.cfg.Actions},
			{Name: "Output", Kind: KindBar, Color: "#95a5a6", X: outputs, Categories: p.cfg.Actions},
		},
		X: actionAxisX,
	}
}

func (p *Pipeline) affectCharts(snap telemetry.Snapshot, out *FastPayload) {
	base := Chart{X: unitAxis("Valence"), Y: unitAxis("Arousal")}
	out.Affect, out.AffectLarge, out.SleepLarge = base, base, base
	out.SleepLarge.X = unitAxis("Wakefulness")
	out.SleepLarge.Y = unitAxis("Pressure")

	a, err := snap.AffectState()
	if err != nil {
		return
	}

	marker := func(name, color string, pr *telemetry.Pair) Series {
		return Series{
			Name:  name,
			Kind:  KindMarkers,
			Color: color,
			X:     []float64{round3(pr.X)},
			Y:     []float64{round3(pr.Y)},
		}
	}

	if a.Emotion != nil {
		s := marker("Emotion", "steelblue", a.Emotion)
		out.Affect.Series = append(out.Affect.Series, s)
		out.AffectLarge.Series = append(out.AffectLarge.Series, s)
	}
	if a.Mood != nil {
		s := marker("Mood", "seagreen", a.Mood)
		out.Affect.Series = append(out.Affect.Series, s)
		out.AffectLarge.Series = append(out.AffectLarge.Series, s)
		out.MoodFace = p.moodFaces.Lookup(s.X[0], s.Y[0])
		out.Affect.Image = out.MoodFace
		out.AffectLarge.Image = out.MoodFace
	}
	if a.Sleep != nil {
		s := marker("Wakefulness", "salmon", a.Sleep)
		out.Affect.Series = append(out.Affect.Series, s)
		out.SleepLarge.Series = append(out.SleepLarge.Series, s)
		out.SleepFace = p.sleepFaces.Lookup(s.X[0])
		out.SleepLarge.Image = out.SleepFace
	}
}

func (p *Pipeline) motivationChart(snap telemetry.Snapshot, w *window.Window) Chart {
	if drives, err := snap.MotivationDrives(); err == nil {
		for i, name := range p.cfg.Drives {
			if i < len(drives) {
				w.Append(name, drives[i])
			}
		}
	}

	c := Chart{
		X: Axis{Title: "Time", Min: 0, Max: float64(w.Cap())},
		Y: unitAxis("Energy"),
	}
	for i, name := range p.cfg.Drives {
		ys := w.Read(name)
		if len(ys) == 0 {
			continue
		}
		xs := make([]float64, len(ys))
		for j := range xs {
			xs[j] = float64(j)
		}
		c.Series = append(c.Series, Series{
			Name:  displayName(name),
			Kind:  KindLine,
			Color: driveColors[i%len(driveColors)],
			X:     xs,
			Y:     ys,
		})
	}
	return c
}

func displayName(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
