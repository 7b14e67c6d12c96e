// Package lookup maps continuous 0..1 signals onto discrete display assets.
//
// Bands are left-open/right-closed, (lower, upper], with two additions: an input of
// exactly 0 lands in the lowest band, and anything outside [0,1] clamps to the
// nearest band. A lookup never fails.
package lookup

import (
	"fmt"
	"math"
)

// Bands partitions [0,1] by ascending lower bounds. The first lower bound is 0.
type Bands struct {
	lowers []float64
}

// UniformBands splits [0,1] into bands of the given width. The last band may be
// wider than the others so that it reaches 1.
func UniformBands(width float64) Bands {
	if width <= 0 || width > 1 || math.IsNaN(width) {
		width = 1
	}
	var lowers []float64
	for i := 0; ; i++ {
		lo := round9(float64(i) * width)
		if lo >= 1 {
			break
		}
		lowers = append(lowers, lo)
	}
	return Bands{lowers: lowers}
}

// Len returns the number of bands.
func (b Bands) Len() int { return len(b.lowers) }

// Lower returns the lower bound of band i.
func (b Bands) Lower(i int) float64 { return b.lowers[i] }

// Index returns the band containing v.
func (b Bands) Index(v float64) int {
	v = clamp01(v)
	idx := 0
	for i, lo := range b.lowers {
		if lo < v {
			idx = i
		}
	}
	return idx
}

// Table1D maps one axis onto assets, one asset per band.
type Table1D struct {
	Bands  Bands
	Assets []string
}

func NewTable1D(b Bands, assets []string) (Table1D, error) {
	if b.Len() == 0 || len(assets) != b.Len() {
		return Table1D{}, fmt.Errorf("lookup: %d assets for %d bands", len(assets), b.Len())
	}
	return Table1D{Bands: b, Assets: assets}, nil
}

func (t Table1D) Lookup(v float64) string {
	return t.Assets[t.Bands.Index(v)]
}

// Table2D maps an (x, y) pair onto assets. Assets is indexed [x band][y band].
type Table2D struct {
	X, Y   Bands
	Assets [][]string
}

func NewTable2D(x, y Bands, assets [][]string) (Table2D, error) {
	if x.Len() == 0 || y.Len() == 0 || len(assets) != x.Len() {
		return Table2D{}, fmt.Errorf("lookup: %d asset rows for %d x bands", len(assets), x.Len())
	}
	for i, row := range assets {
		if len(row) != y.Len() {
			return Table2D{}, fmt.Errorf("lookup: row %d has %d assets for %d y bands", i, len(row), y.Len())
		}
	}
	return Table2D{X: x, Y: y, Assets: assets}, nil
}

func (t Table2D) Lookup(x, y float64) string {
	return t.Assets[t.X.Index(x)][t.Y.Index(y)]
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round9(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}
