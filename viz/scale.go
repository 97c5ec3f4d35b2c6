package viz

import "math"

// Distinct returns the distinct values in first-seen order.
func Distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// BandScale maps an ordered set of labels onto contiguous, padded bands of
// a pixel range. Inner and outer padding are equal and bands are centered.
type BandScale struct {
	domain    []string
	index     map[string]int
	rangeLo   float64
	rangeHi   float64
	reverse   bool
	padding   float64
	step      float64
	bandwidth float64
	offset    float64
}

// NewBandScale builds a band scale over domain for [start, stop]. A range
// with stop < start is reversed: the first label occupies the band nearest
// start.
func NewBandScale(domain []string, start, stop, padding float64) *BandScale {
	b := &BandScale{
		domain:  append([]string(nil), domain...),
		index:   make(map[string]int, len(domain)),
		padding: clamp01(padding),
	}
	for i, d := range b.domain {
		if _, ok := b.index[d]; !ok {
			b.index[d] = i
		}
	}
	b.reverse = stop < start
	b.rangeLo, b.rangeHi = start, stop
	if b.reverse {
		b.rangeLo, b.rangeHi = stop, start
	}

	n := float64(len(b.domain))
	extent := b.rangeHi - b.rangeLo
	b.step = extent / math.Max(1, n-b.padding+2*b.padding)
	b.offset = (extent - b.step*(n-b.padding)) * 0.5
	b.bandwidth = b.step * (1 - b.padding)
	return b
}

// Domain returns the labels in band order.
func (b *BandScale) Domain() []string { return append([]string(nil), b.domain...) }

// Bandwidth returns the width of a single band.
func (b *BandScale) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between the starts of adjacent bands.
func (b *BandScale) Step() float64 { return b.step }

// Position returns the start of the band for label. Unknown labels map to
// the first band so callers never see NaN.
func (b *BandScale) Position(label string) float64 {
	i, ok := b.index[label]
	if !ok {
		i = 0
	}
	if b.reverse {
		i = len(b.domain) - 1 - i
		if i < 0 {
			i = 0
		}
	}
	return b.rangeLo + b.offset + b.step*float64(i)
}

// Center returns the midpoint of the band for label.
func (b *BandScale) Center(label string) float64 {
	return b.Position(label) + b.bandwidth/2
}

// LinearScale maps [d0, d1] onto [r0, r1]. A flat domain maps every value
// to r0.
type LinearScale struct {
	domain [2]float64
	rng    [2]float64
}

func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{domain: [2]float64{d0, d1}, rng: [2]float64{r0, r1}}
}

func (s LinearScale) Domain() (float64, float64) { return s.domain[0], s.domain[1] }

func (s LinearScale) Scale(v float64) float64 {
	d := s.domain[1] - s.domain[0]
	if d == 0 || math.IsNaN(v) {
		return s.rng[0]
	}
	r := (v - s.domain[0]) / d
	return s.rng[0] + r*(s.rng[1]-s.rng[0])
}

// SequentialScale maps the zero-floored domain [0, max] onto a color ramp.
type SequentialScale struct {
	max    float64
	interp Interpolator
}

// NewSequentialScale builds a color scale over [0, max(values)].
func NewSequentialScale(values []float64, interp Interpolator) SequentialScale {
	max := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > max {
			max = v
		}
	}
	return SequentialScale{max: max, interp: interp}
}

// Domain returns the numeric domain of the scale.
func (s SequentialScale) Domain() (float64, float64) { return 0, s.max }

// Range returns the colors at both ends of the ramp.
func (s SequentialScale) Range() (string, string) { return s.interp.At(0), s.interp.At(1) }

// Color returns the ramp color for v. A flat domain yields the coolest
// color.
func (s SequentialScale) Color(v float64) string {
	if s.max <= 0 || math.IsNaN(v) {
		return s.interp.At(0)
	}
	return s.interp.At(clamp01(v / s.max))
}

// OrdinalScale hands out palette colors to labels in first-lookup order,
// cycling when the palette runs out.
type OrdinalScale struct {
	palette  []string
	assigned map[string]string
	next     int
}

func NewOrdinalScale(palette []string) *OrdinalScale {
	if len(palette) == 0 {
		palette = Category10
	}
	return &OrdinalScale{palette: palette, assigned: make(map[string]string)}
}

func (s *OrdinalScale) Color(label string) string {
	if c, ok := s.assigned[label]; ok {
		return c
	}
	c := s.palette[s.next%len(s.palette)]
	s.next++
	s.assigned[label] = c
	return c
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
