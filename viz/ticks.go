package viz

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// NiceTicks returns up to roughly maxTicks round values covering [min, max],
// stepping by 1, 2 or 5 times a power of ten.
func NiceTicks(min, max float64, maxTicks int) []float64 {
	if math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if min >= max || maxTicks < 2 {
		return []float64{min}
	}
	rawStep := (max - min) / float64(maxTicks-1)
	magnitude := math.Pow(10, math.Floor(math.Log10(rawStep)))
	var step float64
	switch normalized := rawStep / magnitude; {
	case normalized <= 1:
		step = magnitude
	case normalized <= 2:
		step = 2 * magnitude
	case normalized <= 5:
		step = 5 * magnitude
	default:
		step = 10 * magnitude
	}
	start := math.Floor(min/step) * step
	var ticks []float64
	for tick := start; tick <= max+step/2; tick += step {
		if tick >= min-step/2 && tick <= max+step*1e-9 {
			ticks = append(ticks, tick)
		}
	}
	return ticks
}

// IntegerTicks is NiceTicks restricted to whole numbers, for count axes.
func IntegerTicks(min, max float64, maxTicks int) []float64 {
	var out []float64
	for _, t := range NiceTicks(min, max, maxTicks) {
		if t == math.Trunc(t) {
			out = append(out, t)
		}
	}
	return out
}

// FormatValue prints v with at most precision decimals, trimming trailing
// zeros.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	formatted := fmt.Sprintf("%.*f", precision, v)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	}
	if formatted == "" || formatted == "-" || formatted == "-0" {
		return "0"
	}
	return formatted
}

// FormatNumber prints v for humans, with digit grouping and up to two
// decimals.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}
