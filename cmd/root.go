package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "weberfit",
	Short: "Weighted Weber point solver using Nelder-Mead",
	Long: `weberfit finds the point minimising the sum of weighted Euclidean
distances to a set of planar points (the Weber problem), with a CLI,
a job server with live progress, and persisted run records.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with solver settings")
}
