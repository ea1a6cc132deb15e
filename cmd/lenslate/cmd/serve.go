package cmd

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/pipeline"
	"github.com/lenslate/lenslate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the annotation HTTP server",
	Long: `Starts an HTTP server exposing the annotation pipeline:

  POST /annotate   multipart photo + OCR lines, returns JSON or PNG
  GET  /healthz    health probe
  GET  /metrics    prometheus metrics
  GET  /ws         websocket annotation with progress streaming`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	serveCmd.Flags().String("translations", "", "path to a JSON translation table")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig(cmd)
	logger := newLogger(cfg)

	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v > 0 {
		cfg.Server.Port = v
	}

	translator, err := buildTranslator(cfg, cmd)
	if err != nil {
		return err
	}

	engine, err := pipeline.NewBuilder().
		WithConfig(cfg.EngineConfig()).
		WithTranslator(translator).
		WithLogger(logger).
		WithMetrics(prometheus.DefaultRegisterer).
		Build()
	if err != nil {
		return err
	}

	srv, err := server.New(engine, cfg.Server, cfg.Translate, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}
