package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/panyam/vulnviz/viz"
)

// Theme overrides chart styling. Zero fields keep the chart defaults.
//
//	palette = ["#1b9e77", "#d95f02"]
//	ramp = ["#fff7ec", "#7f0000"]
//
//	[pie]
//	width = 350
//	height = 350
//
//	[heatmap]
//	padding = 0.1
//	margins = { top = 40, right = 20, bottom = 60, left = 120 }
type Theme struct {
	Palette []string     `toml:"palette" yaml:"palette"`
	Ramp    []string     `toml:"ramp" yaml:"ramp"`
	Pie     ChartTheme   `toml:"pie" yaml:"pie"`
	Heatmap HeatmapTheme `toml:"heatmap" yaml:"heatmap"`
}

type ChartTheme struct {
	Width         float64   `toml:"width" yaml:"width"`
	Height        float64   `toml:"height" yaml:"height"`
	TooltipOffset []float64 `toml:"tooltip_offset" yaml:"tooltip_offset"` // [dx, dy]
}

type HeatmapTheme struct {
	Width         float64      `toml:"width" yaml:"width"`
	Height        float64      `toml:"height" yaml:"height"`
	TooltipOffset []float64    `toml:"tooltip_offset" yaml:"tooltip_offset"`
	Padding       float64      `toml:"padding" yaml:"padding"`
	Margins       *viz.Margins `toml:"margins" yaml:"margins"`
}

func (h HeatmapTheme) chart() ChartTheme {
	return ChartTheme{Width: h.Width, Height: h.Height, TooltipOffset: h.TooltipOffset}
}

// LoadTheme reads a theme from a .toml, .yaml or .yml file.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	var t Theme
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &t); err != nil {
			return nil, fmt.Errorf("parsing theme %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing theme %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported theme format %q", ext)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return &t, nil
}

func (t *Theme) validate() error {
	if len(t.Ramp) > 0 {
		if _, err := viz.NewInterpolator(t.Ramp); err != nil {
			return err
		}
	}
	for _, c := range []ChartTheme{t.Pie, t.Heatmap.chart()} {
		if c.TooltipOffset != nil && len(c.TooltipOffset) != 2 {
			return fmt.Errorf("tooltip_offset needs two values, got %d", len(c.TooltipOffset))
		}
	}
	if t.Heatmap.Padding < 0 || t.Heatmap.Padding >= 1 {
		return fmt.Errorf("heatmap padding %v outside [0, 1)", t.Heatmap.Padding)
	}
	return nil
}

// PieOptions returns the options the theme sets for pie charts. A nil
// theme yields none.
func (t *Theme) PieOptions() []viz.Option {
	if t == nil {
		return nil
	}
	opts := t.Pie.options()
	if len(t.Palette) > 0 {
		opts = append(opts, viz.WithPalette(t.Palette))
	}
	return opts
}

// HeatmapOptions returns the options the theme sets for heatmaps.
func (t *Theme) HeatmapOptions() []viz.Option {
	if t == nil {
		return nil
	}
	opts := t.Heatmap.chart().options()
	if t.Heatmap.Padding > 0 {
		opts = append(opts, viz.WithPadding(t.Heatmap.Padding))
	}
	if t.Heatmap.Margins != nil {
		opts = append(opts, viz.WithMargins(*t.Heatmap.Margins))
	}
	if len(t.Ramp) > 0 {
		opts = append(opts, viz.WithRamp(viz.MustInterpolator(t.Ramp)))
	}
	return opts
}

func (c ChartTheme) options() []viz.Option {
	var opts []viz.Option
	if c.Width > 0 && c.Height > 0 {
		opts = append(opts, viz.WithSize(c.Width, c.Height))
	}
	if len(c.TooltipOffset) == 2 {
		opts = append(opts, viz.WithTooltipOffset(viz.Point{X: c.TooltipOffset[0], Y: c.TooltipOffset[1]}))
	}
	return opts
}
