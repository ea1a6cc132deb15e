// Package cmd implements the lenslate command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/config"
)

var (
	cfgFile      string
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lenslate",
	Short: "Perspective-correct annotation of OCR results on photos",
	Long: `lenslate takes recognized text lines with their geometry and redraws
them on the source photo: translated where a translation exists, sized to
fit each line's quadrilateral, colored for legibility against the local
background.

Examples:
  lenslate annotate --image photo.jpg --lines ocr.json --target uk -o overlay.png
  lenslate serve --port 8080
  lenslate version`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/lenslate, /etc/lenslate)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level (debug, info, warn, error)")
}

func initConfig() {
	cfg, err := config.NewLoader().LoadFile(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	globalConfig = cfg
}

// loadConfig returns the loaded configuration, applying flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	cfg := globalConfig
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.LogLevel = "debug"
		cfg.Verbose = true
	}
	return cfg
}

// newLogger builds the process logger from the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
