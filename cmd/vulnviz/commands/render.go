package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/vulnviz/prediction"
)

var (
	renderOutDir  string
	renderPieSize float64
)

var renderCmd = &cobra.Command{
	Use:   "render <result.json>",
	Short: "Draw a saved prediction as SVG charts",
	Long: `Decode a saved response of the classification service and write
pie.svg and heatmap.svg. Probabilities are drawn in the order they appear
in the file.

Example:
  curl -s 'http://localhost:8000/predict_v2?code_snippet=eval(x)' > result.json
  vulnviz render result.json --out-dir charts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var result prediction.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decoding %s: %w", args[0], err)
		}
		written, err := writeCharts(&result, renderOutDir, renderPieSize)
		if err != nil {
			return err
		}
		printWritten(cmd.OutOrStdout(), written)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", ".", "Directory to write the SVG files to")
	renderCmd.Flags().Float64Var(&renderPieSize, "pie-size", 0, "Width and height of the pie chart in pixels (default 350)")
	rootCmd.AddCommand(renderCmd)
}
