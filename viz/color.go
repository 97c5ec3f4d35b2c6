package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category10 is the ten color categorical palette used for pie wedges.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// OrRd is the nine stop orange-red ramp used for heatmap intensity.
var OrRd = []string{
	"#fff7ec", "#fee8c8", "#fdd49e", "#fdbb84", "#fc8d59",
	"#ef6548", "#d7301f", "#b30000", "#7f0000",
}

type rgb struct{ r, g, b float64 }

// Interpolator maps t in [0, 1] to a color by piecewise linear blending of
// its stops in RGB.
type Interpolator struct {
	stops []rgb
}

// NewInterpolator parses hex color stops (#rgb or #rrggbb). At least one
// stop is required.
func NewInterpolator(stops []string) (Interpolator, error) {
	if len(stops) == 0 {
		return Interpolator{}, fmt.Errorf("viz: interpolator needs at least one color stop")
	}
	out := make([]rgb, 0, len(stops))
	for _, s := range stops {
		c, err := parseHex(s)
		if err != nil {
			return Interpolator{}, err
		}
		out = append(out, c)
	}
	return Interpolator{stops: out}, nil
}

// MustInterpolator is NewInterpolator for package level ramps.
func MustInterpolator(stops []string) Interpolator {
	i, err := NewInterpolator(stops)
	if err != nil {
		panic(err)
	}
	return i
}

// At returns the color at t, clamped to [0, 1].
func (i Interpolator) At(t float64) string {
	if len(i.stops) == 0 {
		return "#000000"
	}
	if len(i.stops) == 1 {
		return i.stops[0].hex()
	}
	t = clamp01(t)
	pos := t * float64(len(i.stops)-1)
	lo := int(math.Floor(pos))
	if lo >= len(i.stops)-1 {
		return i.stops[len(i.stops)-1].hex()
	}
	f := pos - float64(lo)
	a, b := i.stops[lo], i.stops[lo+1]
	return rgb{
		r: a.r + (b.r-a.r)*f,
		g: a.g + (b.g-a.g)*f,
		b: a.b + (b.b-a.b)*f,
	}.hex()
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.r), channel(c.g), channel(c.b))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(255, v))))
}

func parseHex(s string) (rgb, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, fmt.Errorf("viz: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("viz: invalid color %q: %w", s, err)
	}
	return rgb{r: float64(v >> 16 & 0xff), g: float64(v >> 8 & 0xff), b: float64(v & 0xff)}, nil
}
