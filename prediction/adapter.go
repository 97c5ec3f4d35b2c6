package prediction

import (
	"errors"
	"fmt"
	"math"

	"github.com/panyam/vulnviz/viz"
)

// HeatmapModule is the module every prediction cell is filed under.
const HeatmapModule = "Prediction"

// ErrDuplicateCategory is returned by a strict Adapter when a category
// appears more than once in one response.
var ErrDuplicateCategory = errors.New("prediction: duplicate category")

// Adapter turns service probabilities into chart records.
type Adapter struct {
	// Strict rejects repeated categories. Otherwise the last value wins
	// and keeps the position of the first occurrence.
	Strict bool
}

// ToPie converts probabilities with the default Adapter.
func ToPie(probs Probabilities) []viz.PieRecord {
	out, _ := Adapter{}.ToPie(probs)
	return out
}

// ToHeatmap converts probabilities with the default Adapter.
func ToHeatmap(probs Probabilities) []viz.HeatmapRecord {
	out, _ := Adapter{}.ToHeatmap(probs)
	return out
}

// ToPie maps each category to a wedge whose value is the probability in
// percent. nil input yields nil records.
func (a Adapter) ToPie(probs Probabilities) ([]viz.PieRecord, error) {
	merged, err := a.merge(probs)
	if err != nil || merged == nil {
		return nil, err
	}
	out := make([]viz.PieRecord, len(merged))
	for i, p := range merged {
		out[i] = viz.PieRecord{Label: p.Category, Value: p.Value * 100}
	}
	return out, nil
}

// ToHeatmap maps each category to a cell of the Prediction module whose
// count is the percentage rounded half up.
func (a Adapter) ToHeatmap(probs Probabilities) ([]viz.HeatmapRecord, error) {
	merged, err := a.merge(probs)
	if err != nil || merged == nil {
		return nil, err
	}
	out := make([]viz.HeatmapRecord, len(merged))
	for i, p := range merged {
		out[i] = viz.HeatmapRecord{Module: HeatmapModule, Category: p.Category, Count: roundHalfUp(p.Value * 100)}
	}
	return out, nil
}

func (a Adapter) merge(probs Probabilities) (Probabilities, error) {
	if probs == nil {
		return nil, nil
	}
	index := make(map[string]int, len(probs))
	out := make(Probabilities, 0, len(probs))
	for _, p := range probs {
		if i, seen := index[p.Category]; seen {
			if a.Strict {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, p.Category)
			}
			out[i].Value = p.Value
			continue
		}
		index[p.Category] = len(out)
		out = append(out, p)
	}
	return out, nil
}

func roundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x + 0.5)
}
