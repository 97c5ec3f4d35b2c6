package viz

import (
	"fmt"
	"html"
	"math"

	gfn "github.com/panyam/goutils/fn"
)

const (
	heatmapCells  = "cells"
	legendWidth   = 300.0
	legendHeight  = 10.0
	legendTicks   = 5
	axisTickSize  = 6.0
	axisTextShift = 9.0
)

// DefaultHeatmapConfig is a 500×500 chart with room on the left for
// category names and below for rotated module names.
func DefaultHeatmapConfig() Config {
	return Config{
		Width:         500,
		Height:        500,
		Margins:       Margins{Top: 40, Right: 20, Bottom: 60, Left: 120},
		Padding:       0.05,
		Ramp:          MustInterpolator(OrRd),
		TooltipOffset: Point{X: 10, Y: -10},
	}
}

var heatmapEmphasis = Emphasis{
	Hover: map[string]string{"stroke": "#000", "stroke-width": "2px"},
	Base:  map[string]string{"stroke": "#fff", "stroke-width": "1px"},
}

// HeatmapChart draws one cell per (module, category) pair colored by count.
type HeatmapChart struct {
	*chartBase
	records []HeatmapRecord
}

var _ Chart = (*HeatmapChart)(nil)

func NewHeatmapChart(opts ...Option) (*HeatmapChart, error) {
	base, err := newChartBase("heatmap", heatmapCells, DefaultHeatmapConfig(), heatmapEmphasis, opts)
	if err != nil {
		return nil, err
	}
	h := &HeatmapChart{chartBase: base}
	base.dropData = func() { h.records = nil }
	return h, nil
}

// Mount attaches the chart to doc. The chart starts Empty.
func (h *HeatmapChart) Mount(doc *Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mount(doc, h.redraw)
}

// SetData replaces the dataset and rebuilds the drawing. A repeated
// (module, category) pair keeps its first position and takes the last count.
func (h *HeatmapChart) SetData(records []HeatmapRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateUnmounted {
		return ErrNotMounted
	}
	h.records = mergeByKey(records)
	h.redraw()
	return nil
}

// Records returns the current dataset.
func (h *HeatmapChart) Records() []HeatmapRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HeatmapRecord(nil), h.records...)
}

// Scales returns the scales of the current dataset and false when there is
// nothing to draw.
func (h *HeatmapChart) Scales() (HeatmapScales, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ht := h.inner()
	return BuildHeatmapScales(h.records, w, ht, h.cfg.Padding, h.cfg.Ramp)
}

func (h *HeatmapChart) inner() (float64, float64) {
	m := h.cfg.Margins
	return math.Max(0, h.cfg.Width-m.Left-m.Right), math.Max(0, h.cfg.Height-m.Top-m.Bottom)
}

func (h *HeatmapChart) redraw() {
	h.rebuild(h.draw)
}

func (h *HeatmapChart) draw(s *Surface, tips map[ShapeKey]string) bool {
	width, height := h.inner()
	scales, ok := BuildHeatmapScales(h.records, width, height, h.cfg.Padding, h.cfg.Ramp)
	if !ok {
		return false
	}
	m := h.cfg.Margins
	s.Root.Set("transform", fmt.Sprintf("translate(%s,%s)", num(m.Left), num(m.Top)))

	s.Decorate(
		bottomAxis(scales.X, width, height),
		leftAxis(scales.Y, height),
	)

	byKey := make(map[ShapeKey]HeatmapRecord, len(h.records))
	for _, r := range h.records {
		byKey[r.Key()] = r
	}
	keys := gfn.Map(h.records, func(r HeatmapRecord) ShapeKey { return r.Key() })
	cells, _ := s.Layer(heatmapCells).Join(keys, func(ShapeKey) *Element { return NewElement("rect") })
	for _, el := range cells {
		r := byKey[*el.Key]
		el.Set("x", num(scales.X.Position(r.Module))).
			Set("y", num(scales.Y.Position(r.Category))).
			Set("width", num(scales.X.Bandwidth())).
			Set("height", num(scales.Y.Bandwidth())).
			Set("class", "cell").
			SetStyle("fill", scales.Color.Color(sanitize(r.Count)))
		heatmapEmphasis.apply(el, false)
		tips[r.Key()] = fmt.Sprintf("<b>%s</b><br>%s<br>Count: %s",
			html.EscapeString(r.Module), html.EscapeString(r.Category), FormatNumber(r.Count))
	}

	s.Decorate(h.legend(scales.Color))
	return true
}

func bottomAxis(x *BandScale, width, height float64) *Element {
	g := NewElement("g").
		Set("class", "axis axis-x").
		Set("transform", fmt.Sprintf("translate(0,%s)", num(height)))
	g.Append(NewElement("path").Set("class", "domain").Set("d", fmt.Sprintf("M0,0H%s", num(width))))
	for _, module := range x.Domain() {
		cx := x.Center(module)
		tick := NewElement("g").Set("class", "tick").Set("transform", fmt.Sprintf("translate(%s,0)", num(cx)))
		tick.Append(
			NewElement("line").Set("y2", num(axisTickSize)),
			NewElement("text").
				Set("y", num(axisTextShift)).
				Set("transform", "rotate(-45)").
				SetStyle("text-anchor", "end").
				WithText(module),
		)
		g.Append(tick)
	}
	return g
}

func leftAxis(y *BandScale, height float64) *Element {
	g := NewElement("g").Set("class", "axis axis-y")
	g.Append(NewElement("path").Set("class", "domain").Set("d", fmt.Sprintf("M0,0V%s", num(height))))
	for _, category := range y.Domain() {
		cy := y.Center(category)
		tick := NewElement("g").Set("class", "tick").Set("transform", fmt.Sprintf("translate(0,%s)", num(cy)))
		tick.Append(
			NewElement("line").Set("x2", num(-axisTickSize)),
			NewElement("text").
				Set("x", num(-axisTextShift)).
				Set("dy", "0.32em").
				SetStyle("text-anchor", "end").
				WithText(category),
		)
		g.Append(tick)
	}
	return g
}

// legend draws the color ramp with an integer axis over [0, max]. The
// gradient id is scoped to the instance so several heatmaps can share a
// page.
func (h *HeatmapChart) legend(color SequentialScale) *Element {
	gradientID := "legend-gradient-" + h.id
	lo, hi := color.Domain()

	gradient := NewElement("linearGradient").Set("id", gradientID)
	const stops = 5
	for i := 0; i < stops; i++ {
		t := float64(i) / (stops - 1)
		gradient.Append(NewElement("stop").
			Set("offset", fmt.Sprintf("%d%%", int(t*100))).
			Set("stop-color", color.Color(lo+t*(hi-lo))))
	}

	scale := NewLinearScale(lo, hi, 0, legendWidth)
	axis := NewElement("g").
		Set("class", "axis legend-axis").
		Set("transform", fmt.Sprintf("translate(0,%s)", num(legendHeight)))
	for _, t := range IntegerTicks(lo, hi, legendTicks) {
		tick := NewElement("g").Set("class", "tick").Set("transform", fmt.Sprintf("translate(%s,0)", num(scale.Scale(t))))
		tick.Append(
			NewElement("line").Set("y2", num(axisTickSize)),
			NewElement("text").Set("y", num(axisTextShift)).Set("dy", "0.71em").SetStyle("text-anchor", "middle").WithText(FormatValue(t, 0)),
		)
		axis.Append(tick)
	}

	return NewElement("g").
		Set("class", "legend").
		Set("transform", "translate(0,-30)").
		Append(
			NewElement("defs").Append(gradient),
			NewElement("rect").
				Set("width", num(legendWidth)).
				Set("height", num(legendHeight)).
				SetStyle("fill", "url(#"+gradientID+")"),
			axis,
		)
}
