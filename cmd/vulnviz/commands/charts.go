package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/viz"
)

// writeCharts draws result on a throwaway canvas and writes pie.svg and
// heatmap.svg into dir. pieSize overrides the pie's dimensions when > 0.
func writeCharts(result *prediction.Result, dir string, pieSize float64) ([]string, error) {
	opts := canvasOptions()
	if pieSize > 0 {
		opts = append(opts, console.WithPieOptions(viz.WithSize(pieSize, pieSize)))
	}
	c, err := console.NewCanvas("cli", opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if err := c.Show(result); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, kind := range []string{console.ChartPie, console.ChartHeatmap} {
		svg, err := c.SVG(kind)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, kind+".svg")
		if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func printWritten(out io.Writer, paths []string) {
	for _, p := range paths {
		color.New(color.FgGreen).Fprintf(out, "wrote %s\n", p)
	}
}
