package viz

import (
	"fmt"
	"math"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

const tau = 2 * math.Pi

// Wedge is one pie slice. Angles are in radians, measured clockwise from
// twelve o'clock.
type Wedge struct {
	Key         ShapeKey
	Record      PieRecord
	Index       int
	StartAngle  float64
	EndAngle    float64
	InnerRadius float64
	OuterRadius float64
}

// Span returns the angular extent of the wedge.
func (w Wedge) Span() float64 { return w.EndAngle - w.StartAngle }

// Centroid is the label anchor: the middle angle at the mean of the inner
// and outer radius.
func (w Wedge) Centroid() Point {
	r := (w.InnerRadius + w.OuterRadius) / 2
	a := (w.StartAngle+w.EndAngle)/2 - math.Pi/2
	return Point{X: math.Cos(a) * r, Y: math.Sin(a) * r}
}

// Path returns the SVG path data for the wedge centered on the origin.
func (w Wedge) Path() string {
	r := w.OuterRadius
	span := w.Span()
	if r <= 0 || span <= 0 {
		return "M0,0Z"
	}
	if span >= tau-1e-9 {
		// a single arc cannot close on itself
		return fmt.Sprintf("M0,%sA%s,%s,0,1,1,0,%sA%s,%s,0,1,1,0,%sZ",
			num(-r), num(r), num(r), num(r), num(r), num(r), num(-r))
	}
	x0, y0 := polar(r, w.StartAngle)
	x1, y1 := polar(r, w.EndAngle)
	large := 0
	if span > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%s,%sA%s,%s,0,%d,1,%s,%sL0,0Z",
		num(x0), num(y0), num(r), num(r), large, num(x1), num(y1))
}

func polar(r, angle float64) (float64, float64) {
	a := angle - math.Pi/2
	return r * math.Cos(a), r * math.Sin(a)
}

// LayoutPie partitions the circle proportionally by value in input order.
// Angles come from cumulative sums over the total so rounding never drifts,
// and the last wedge always ends at exactly 2π. A zero total yields no
// wedges.
func LayoutPie(records []PieRecord, radius float64) []Wedge {
	total := 0.0
	for _, r := range records {
		total += sanitize(r.Value)
	}
	if len(records) == 0 || total <= 0 {
		return nil
	}

	wedges := make([]Wedge, len(records))
	cum := 0.0
	for i, r := range records {
		start := tau * cum / total
		cum += sanitize(r.Value)
		end := tau * cum / total
		if i == len(records)-1 {
			end = tau
		}
		wedges[i] = Wedge{
			Key:         r.Key(),
			Record:      r,
			Index:       i,
			StartAngle:  start,
			EndAngle:    end,
			OuterRadius: radius,
		}
	}
	return wedges
}

// Cell is one heatmap rectangle.
type Cell struct {
	Key    ShapeKey
	Record HeatmapRecord
	Rect
}

// HeatmapScales holds the scales a heatmap layout is computed from.
type HeatmapScales struct {
	X     *BandScale
	Y     *BandScale
	Color SequentialScale
}

// BuildHeatmapScales derives the module and category band scales and the
// color scale for an inner plot area of width×height. It returns false for
// an empty dataset.
func BuildHeatmapScales(records []HeatmapRecord, width, height, padding float64, interp Interpolator) (HeatmapScales, bool) {
	if len(records) == 0 {
		return HeatmapScales{}, false
	}
	modules := gfn.Map(records, func(r HeatmapRecord) string { return r.Module })
	categories := gfn.Map(records, func(r HeatmapRecord) string { return r.Category })
	counts := gfn.Map(records, func(r HeatmapRecord) float64 { return sanitize(r.Count) })
	return HeatmapScales{
		X:     NewBandScale(Distinct(modules), 0, width, padding),
		Y:     NewBandScale(Distinct(categories), height, 0, padding),
		Color: NewSequentialScale(counts, interp),
	}, true
}

// LayoutHeatmap places one cell per record at the cross product of its
// module and category bands.
func LayoutHeatmap(records []HeatmapRecord, s HeatmapScales) []Cell {
	if s.X == nil || s.Y == nil {
		return nil
	}
	cells := make([]Cell, 0, len(records))
	for _, r := range records {
		cells = append(cells, Cell{
			Key:    r.Key(),
			Record: r,
			Rect: Rect{
				X:      s.X.Position(r.Module),
				Y:      s.Y.Position(r.Category),
				Width:  s.X.Bandwidth(),
				Height: s.Y.Bandwidth(),
			},
		})
	}
	return cells
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// num formats a coordinate compactly. Non-finite values render as 0.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" || s == "-0" {
		return "0"
	}
	return s
}
