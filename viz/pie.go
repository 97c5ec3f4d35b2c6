package viz

import (
	"fmt"
	"html"
	"math"

	gfn "github.com/panyam/goutils/fn"
)

const (
	pieWedges = "wedges"
	pieLabels = "labels"
)

// DefaultPieConfig matches the stand-alone pie: 300×300, Category10 and a
// tooltip above and to the right of the pointer.
func DefaultPieConfig() Config {
	return Config{
		Width:         300,
		Height:        300,
		Palette:       Category10,
		TooltipOffset: Point{X: 10, Y: -20},
	}
}

var pieEmphasis = Emphasis{
	Hover: map[string]string{"opacity": "1"},
	Base:  map[string]string{"opacity": "0.8"},
}

// PieChart draws records as wedges in input order.
type PieChart struct {
	*chartBase
	records []PieRecord
}

var _ Chart = (*PieChart)(nil)

func NewPieChart(opts ...Option) (*PieChart, error) {
	base, err := newChartBase("pie", pieWedges, DefaultPieConfig(), pieEmphasis, opts)
	if err != nil {
		return nil, err
	}
	p := &PieChart{chartBase: base}
	base.dropData = func() { p.records = nil }
	return p, nil
}

// Mount attaches the chart to doc. The chart starts Empty.
func (p *PieChart) Mount(doc *Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mount(doc, p.redraw)
}

// SetData replaces the dataset and rebuilds the drawing. A repeated label
// keeps its first position and takes the last value.
func (p *PieChart) SetData(records []PieRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateUnmounted {
		return ErrNotMounted
	}
	p.records = mergeByKey(records)
	p.redraw()
	return nil
}

// Resize changes the outer size; a mounted chart is rebuilt.
func (p *PieChart) Resize(width, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Width, p.cfg.Height = width, height
	p.redraw()
}

// Records returns the current dataset.
func (p *PieChart) Records() []PieRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PieRecord(nil), p.records...)
}

// Wedges returns the layout of the current dataset.
func (p *PieChart) Wedges() []Wedge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return LayoutPie(p.records, p.radius())
}

func (p *PieChart) radius() float64 {
	return math.Max(0, math.Min(p.cfg.Width, p.cfg.Height)/2)
}

func (p *PieChart) redraw() {
	p.rebuild(p.draw)
}

func (p *PieChart) draw(s *Surface, tips map[ShapeKey]string) bool {
	wedges := LayoutPie(p.records, p.radius())
	if len(wedges) == 0 {
		return false
	}
	s.Root.Set("transform", fmt.Sprintf("translate(%s,%s)", num(p.cfg.Width/2), num(p.cfg.Height/2)))

	byKey := make(map[ShapeKey]Wedge, len(wedges))
	for _, w := range wedges {
		byKey[w.Key] = w
	}
	keys := gfn.Map(wedges, func(w Wedge) ShapeKey { return w.Key })

	color := NewOrdinalScale(p.cfg.Palette)
	paths, _ := s.Layer(pieWedges).Join(keys, func(ShapeKey) *Element { return NewElement("path") })
	for _, el := range paths {
		w := byKey[*el.Key]
		el.Set("d", w.Path()).
			Set("fill", color.Color(w.Record.Label)).
			Set("class", "wedge")
		pieEmphasis.apply(el, false)
		tips[w.Key] = fmt.Sprintf("<strong>%s</strong>: %s",
			html.EscapeString(w.Record.Label), FormatNumber(w.Record.Value))
	}

	labels, _ := s.Layer(pieLabels).Join(keys, func(ShapeKey) *Element { return NewElement("text") })
	for _, el := range labels {
		w := byKey[*el.Key]
		c := w.Centroid()
		el.WithText(w.Record.Label).
			Set("transform", fmt.Sprintf("translate(%s,%s)", num(c.X), num(c.Y))).
			SetStyle("text-anchor", "middle").
			SetStyle("font-size", "12px").
			SetStyle("pointer-events", "none")
	}
	return true
}
