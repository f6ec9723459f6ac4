// Package surface pivots priced option points into strike × maturity
// implied-volatility matrices, one per option kind.
package surface

import (
	"fmt"
	"math"
	"sort"

	"github.com/contactkeval/iv-surface/internal/chain"
	"github.com/contactkeval/iv-surface/internal/pricing"
)

// Sample is one observation for the pivot: a strike/maturity cell and
// the implied vol recovered there. IV is nil for contracts where no
// solution existed; such samples are skipped.
type Sample struct {
	Strike   float64
	Maturity float64 // years
	Kind     pricing.Kind
	IV       *float64
}

// Surface is a strike × maturity grid of implied vols. Strikes index
// rows and Maturities index columns, both ascending. A nil cell means no
// contract produced an IV at that (strike, maturity).
type Surface struct {
	Strikes    []float64
	Maturities []float64
	IVs        [][]*float64 // [strike][maturity]
}

// Empty reports whether the surface has no cells at all.
func (s Surface) Empty() bool {
	return len(s.Strikes) == 0 || len(s.Maturities) == 0
}

// Value returns the cell for (strike index, maturity index), nil when
// absent.
func (s Surface) Value(i, j int) *float64 {
	return s.IVs[i][j]
}

// Rows renders the surface as CSV-ready string rows: a header of
// maturity columns, then one row per strike.
func (s Surface) Rows() [][]string {
	header := make([]string, 0, len(s.Maturities)+1)
	header = append(header, "strike")
	for _, m := range s.Maturities {
		header = append(header, fmt.Sprintf("%.6f", m))
	}

	rows := [][]string{header}
	for i, strike := range s.Strikes {
		row := make([]string, 0, len(s.Maturities)+1)
		row = append(row, fmt.Sprintf("%.2f", strike))
		for j := range s.Maturities {
			if iv := s.IVs[i][j]; iv != nil {
				row = append(row, fmt.Sprintf("%.6f", *iv))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// cell accumulates duplicate (strike, maturity) observations so they can
// be collapsed by mean.
type cell struct {
	sum   float64
	count int
}

type cellKey struct {
	strike   float64
	maturity float64
}

// Build pivots samples into a call surface and a put surface. Samples
// without an IV, or with a non-positive strike or maturity, are ignored;
// duplicate cells are aggregated by mean. Axes carry only values that
// appear in at least one kept sample, so fully-empty rows and columns
// never materialize.
func Build(samples []Sample) (call, put Surface) {
	callCells := map[cellKey]*cell{}
	putCells := map[cellKey]*cell{}

	for _, s := range samples {
		if s.IV == nil || math.IsNaN(*s.IV) {
			continue
		}
		if s.Strike <= 0 || s.Maturity <= 0 {
			continue
		}

		cells := putCells
		if s.Kind.IsCall() {
			cells = callCells
		}
		key := cellKey{strike: s.Strike, maturity: s.Maturity}
		if c, ok := cells[key]; ok {
			c.sum += *s.IV
			c.count++
		} else {
			cells[key] = &cell{sum: *s.IV, count: 1}
		}
	}

	return fromCells(callCells), fromCells(putCells)
}

// PointsToSamples adapts one processed batch into pivot samples, all at
// the batch's maturity.
func PointsToSamples(points []chain.PricedPoint, tau float64) []Sample {
	out := make([]Sample, 0, len(points))
	for _, p := range points {
		out = append(out, Sample{
			Strike:   p.Strike,
			Maturity: tau,
			Kind:     p.Kind,
			IV:       p.ImpliedVol,
		})
	}
	return out
}

func fromCells(cells map[cellKey]*cell) Surface {
	if len(cells) == 0 {
		return Surface{}
	}

	strikeSet := map[float64]bool{}
	maturitySet := map[float64]bool{}
	for key := range cells {
		strikeSet[key.strike] = true
		maturitySet[key.maturity] = true
	}

	surf := Surface{
		Strikes:    sortedKeys(strikeSet),
		Maturities: sortedKeys(maturitySet),
	}

	surf.IVs = make([][]*float64, len(surf.Strikes))
	for i, strike := range surf.Strikes {
		surf.IVs[i] = make([]*float64, len(surf.Maturities))
		for j, maturity := range surf.Maturities {
			if c, ok := cells[cellKey{strike: strike, maturity: maturity}]; ok {
				mean := c.sum / float64(c.count)
				surf.IVs[i][j] = &mean
			}
		}
	}
	return surf
}

func sortedKeys(set map[float64]bool) []float64 {
	out := make([]float64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}
