// Package viz defines the chart engine: scales, layout, keyed shapes and
// hover overlays for the pie and heatmap views of a prediction.
package viz

import (
	"errors"
	"strconv"
)

var (
	// ErrNotMounted is returned by chart operations after Unmount or before Mount.
	ErrNotMounted = errors.New("viz: chart is not mounted")

	// ErrUnknownShape is returned when a pointer event names a key with no shape.
	ErrUnknownShape = errors.New("viz: no shape for key")
)

// PieRecord is one slice of a proportional chart.
type PieRecord struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// HeatmapRecord is one cell of the module/category grid.
type HeatmapRecord struct {
	Module   string  `json:"module"`
	Category string  `json:"category"`
	Count    float64 `json:"count"`
}

// ShapeKey identifies a drawn shape across re-renders. It is compared by
// value so labels containing separators never collide.
type ShapeKey struct {
	Group string `json:"group,omitempty"` // module for heatmap cells, empty for wedges
	Name  string `json:"name"`
}

// Key returns the reconciliation key for a pie record.
func (r PieRecord) Key() ShapeKey { return ShapeKey{Name: r.Label} }

// Key returns the reconciliation key for a heatmap record.
func (r HeatmapRecord) Key() ShapeKey { return ShapeKey{Group: r.Module, Name: r.Category} }

// String is only used for display and data attributes.
func (k ShapeKey) String() string {
	if k.Group == "" {
		return strconv.Quote(k.Name)
	}
	return strconv.Quote(k.Group) + "/" + strconv.Quote(k.Name)
}

// Point is a pointer or layout position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// State is the lifecycle state of a chart instance.
type State int

const (
	StateUnmounted State = iota
	StateEmpty
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRendered:
		return "rendered"
	default:
		return "unmounted"
	}
}

// Chart is the surface shared by the pie and heatmap instances.
type Chart interface {
	ID() string
	Kind() string
	State() State
	Mount(doc *Document) error
	Unmount()

	PointerEnter(key ShapeKey, at Point) error
	PointerMove(at Point) error
	PointerLeave() error
	Interaction() InteractionState

	// Keys returns the keys of the data-bound shapes in draw order.
	Keys() []ShapeKey
	// Shape returns a copy of the data-bound element drawn for key.
	Shape(key ShapeKey) (Element, bool)
	SVG() (string, error)
}

type keyed interface {
	PieRecord | HeatmapRecord
	Key() ShapeKey
}

// mergeByKey copies records, collapsing repeated keys onto the first
// occurrence with the last occurrence's value.
func mergeByKey[T keyed](records []T) []T {
	if records == nil {
		return nil
	}
	out := make([]T, 0, len(records))
	at := make(map[ShapeKey]int, len(records))
	for _, r := range records {
		if i, ok := at[r.Key()]; ok {
			out[i] = r
			continue
		}
		at[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}
