package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/upload"
)

var (
	predictFile   string
	predictOutDir string
)

var predictCmd = &cobra.Command{
	Use:   "predict [snippet]",
	Short: "Classify a code snippet or file",
	Long: `Send a snippet, or the contents of a file, to the classification
service and print the predicted vulnerability category with the
probability of every category. Files must be .py, .html or .php and at
most 5 MiB.

Example:
  vulnviz predict 'cursor.execute("SELECT * FROM t WHERE id=" + id)'
  vulnviz predict --file app.php --out-dir charts`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snippet, err := predictInput(args)
		if err != nil {
			return err
		}
		result, err := newClient().Predict(cmd.Context(), snippet)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printResult(out, result)
		if predictOutDir != "" {
			written, err := writeCharts(result, predictOutDir, 0)
			if err != nil {
				return err
			}
			printWritten(out, written)
		}
		return nil
	},
}

// predictInput returns the snippet to classify: the --file contents after
// validation, or the positional argument.
func predictInput(args []string) (string, error) {
	if predictFile == "" {
		if len(args) == 0 {
			return "", prediction.ErrEmptySnippet
		}
		return args[0], nil
	}
	if len(args) > 0 {
		return "", errors.New("pass either a snippet or --file, not both")
	}

	info, err := os.Stat(predictFile)
	if err != nil {
		return "", err
	}
	if err := upload.Validate([]upload.File{{Name: filepath.Base(predictFile), Size: info.Size()}}); err != nil {
		return "", err
	}
	data, err := os.ReadFile(predictFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printResult(out io.Writer, r *prediction.Result) {
	bold := color.New(color.Bold)
	bold.Fprint(out, "Vulnerability: ")
	color.New(color.FgRed, color.Bold).Fprintln(out, r.VulnerabilityCategory)
	bold.Fprint(out, "Confidence:    ")
	fmt.Fprintln(out, r.ConfidencePercent())

	width := 0
	for _, p := range r.Probabilities {
		width = max(width, len(p.Category))
	}
	for _, p := range r.Probabilities {
		c := color.New(color.FgWhite)
		if p.Category == r.VulnerabilityCategory {
			c = color.New(color.FgYellow)
		}
		c.Fprintf(out, "  %s%s  %8s\n", p.Category, strings.Repeat(" ", width-len(p.Category)), prediction.Percent(p.Value))
	}
}

func init() {
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "Classify the contents of this .py, .html or .php file")
	predictCmd.Flags().StringVarP(&predictOutDir, "out-dir", "o", "", "Also write pie.svg and heatmap.svg to this directory")
	rootCmd.AddCommand(predictCmd)
}
