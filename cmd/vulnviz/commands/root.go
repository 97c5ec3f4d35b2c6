package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/vulnviz/config"
	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/logging"
	"github.com/panyam/vulnviz/prediction"
)

var (
	logLevel  string
	themePath string

	// Loaded by the root command before any subcommand runs.
	cfg    *config.Config
	theme  *config.Theme
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vulnviz",
	Short: "Visualize software vulnerability predictions",
	Long: `vulnviz sends code snippets to a vulnerability classification service
and draws its answer as a pie chart and a heatmap, either in a web page
(vulnviz serve) or as SVG files (vulnviz render, vulnviz predict).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("theme") {
			cfg.Theme = themePath
		}
		logger = logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.Dev())

		theme = nil
		if cfg.Theme != "" {
			if theme, err = config.LoadTheme(cfg.Theme); err != nil {
				return err
			}
			logger.Debug("loaded theme", "path", cfg.Theme)
		}
		return nil
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error (default: VULNVIZ_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&themePath, "theme", "", "Chart theme file, .toml or .yaml (default: VULNVIZ_THEME)")
}

// canvasOptions are the options shared by every canvas a command creates.
func canvasOptions() []console.CanvasOption {
	return []console.CanvasOption{
		console.WithAdapter(prediction.Adapter{Strict: cfg.Dev()}),
		console.WithLogger(logger),
		console.WithPieOptions(theme.PieOptions()...),
		console.WithHeatmapOptions(theme.HeatmapOptions()...),
	}
}

func newClient() *prediction.Client {
	return prediction.NewClient(cfg.APIBaseURL,
		prediction.WithTimeout(cfg.PredictTimeout),
		prediction.WithLogger(logger))
}
