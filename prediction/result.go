// Package prediction talks to the vulnerability classification service and
// adapts its answers into chart datasets.
package prediction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	gfn "github.com/panyam/goutils/fn"
)

// Result is the body returned by the predict_v2 endpoint.
type Result struct {
	VulnerabilityCategory string        `json:"vulnerability_category"`
	Confidence            float64       `json:"confidence"`
	Probabilities         Probabilities `json:"probabilities"`
}

// ConfidencePercent formats the confidence as a percentage with two
// decimals, e.g. "87.50%".
func (r Result) ConfidencePercent() string {
	return Percent(r.Confidence)
}

// Percent formats a probability in [0, 1] as a percentage.
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return fmt.Sprintf("%.2f%%", p*100)
}

// Probability is one category of the service's probability object.
type Probability struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Probabilities keeps the categories in the order the service sent them.
// Charts derive their domains from first-seen order, so the JSON object is
// decoded token by token instead of into a map. Repeated keys are kept as
// sent; the Adapter decides what to do with them.
type Probabilities []Probability

func (p *Probabilities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("prediction: probabilities must be an object, got %v", tok)
	}
	out := Probabilities{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("prediction: unexpected probability key %v", tok)
		}
		var value *float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("prediction: probability of %q: %w", category, err)
		}
		v := 0.0
		if value != nil {
			v = *value
		}
		out = append(out, Probability{Category: category, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func (p Probabilities) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('{')
	for i, prob := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(prob.Category)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prob.Value)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Categories returns the category names in order.
func (p Probabilities) Categories() []string {
	return gfn.Map([]Probability(p), func(prob Probability) string { return prob.Category })
}
