package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/lenslate/lenslate/internal/config"
	"github.com/lenslate/lenslate/internal/pipeline"
	"github.com/lenslate/lenslate/internal/translate"
	"github.com/lenslate/lenslate/internal/utils"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate one photo from OCR output",
	Long: `Reads a photo and a JSON file of recognized lines, runs the annotation
pipeline, and writes the result as JSON and/or a rendered PNG overlay.

The lines file holds an array of objects:
  [{"text": "12.99", "box": {"minX": 40, "minY": 40, "maxX": 160, "maxY": 90}}]

An optional translation table maps recognized text to its translation:
  {"Organic Apples": "Органічні яблука"}`,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().String("image", "", "path to the photo (required)")
	annotateCmd.Flags().String("lines", "", "path to the recognized lines JSON file (required)")
	annotateCmd.Flags().String("translations", "", "path to a JSON translation table")
	annotateCmd.Flags().String("source", "", "source language tag (overrides config)")
	annotateCmd.Flags().String("target", "", "target language tag (overrides config)")
	annotateCmd.Flags().StringP("output", "o", "", "write the rendered overlay PNG to this path")
	annotateCmd.Flags().String("json", "-", "write the result JSON to this path, - for stdout, empty to skip")
	annotateCmd.Flags().Int("width", 0, "display width (default: photo width)")
	annotateCmd.Flags().Int("height", 0, "display height (default: photo height)")
	annotateCmd.Flags().Bool("debug", false, "attach per-line debug traces to the JSON output")

	_ = annotateCmd.MarkFlagRequired("image")
	_ = annotateCmd.MarkFlagRequired("lines")
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig(cmd)
	logger := newLogger(cfg)

	imagePath, _ := cmd.Flags().GetString("image")
	img, meta, err := utils.LoadImage(imagePath)
	if err != nil {
		return err
	}
	logger.Debug("photo loaded",
		"path", meta.Path, "format", meta.Format,
		"width", meta.Width, "height", meta.Height)

	linesPath, _ := cmd.Flags().GetString("lines")
	var lines []pipeline.RecognizedLine
	if err := readJSONFile(linesPath, &lines); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}

	translator, err := buildTranslator(cfg, cmd)
	if err != nil {
		return err
	}

	engine, err := pipeline.NewBuilder().
		WithConfig(cfg.EngineConfig()).
		WithTranslator(translator).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	opts := pipeline.Options{ImageID: imagePath}
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	opts.DisplayWidth, _ = cmd.Flags().GetInt("width")
	opts.DisplayHeight, _ = cmd.Flags().GetInt("height")
	if err := resolveLanguages(cfg, cmd, &opts); err != nil {
		return err
	}

	annotated, err := engine.Annotate(context.Background(), img, lines, opts)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	result := pipeline.Result{
		ImageID: imagePath,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Lines:   annotated,
	}

	if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
		out, err := pipeline.ToJSON(result)
		if err != nil {
			return err
		}
		if jsonPath == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		} else if err := os.WriteFile(jsonPath, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		overlay := engine.RenderOverlay(img, annotated, opts.DisplayWidth, opts.DisplayHeight)
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create overlay file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := png.Encode(f, overlay); err != nil {
			return fmt.Errorf("encode overlay: %w", err)
		}
		logger.Info("overlay written", "path", outputPath, "lines", len(annotated))
	}
	return nil
}

// buildTranslator picks the translator from config and flags: a static
// table when provided, identity otherwise.
func buildTranslator(cfg *config.Config, cmd *cobra.Command) (translate.Translator, error) {
	tablePath := cfg.Translate.TablePath
	if v, _ := cmd.Flags().GetString("translations"); v != "" {
		tablePath = v
	}
	if tablePath == "" {
		return translate.Identity{}, nil
	}
	var entries map[string]string
	if err := readJSONFile(tablePath, &entries); err != nil {
		return nil, fmt.Errorf("read translation table: %w", err)
	}
	return translate.NewStatic(entries), nil
}

// resolveLanguages fills the options language pair from config with flag
// overrides.
func resolveLanguages(cfg *config.Config, cmd *cobra.Command, opts *pipeline.Options) error {
	source := cfg.Translate.Source
	target := cfg.Translate.Target
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		source = v
	}
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		target = v
	}
	if source != "" {
		tag, err := language.Parse(source)
		if err != nil {
			return fmt.Errorf("invalid source language %q: %w", source, err)
		}
		opts.Source = tag
	}
	if target != "" {
		tag, err := language.Parse(target)
		if err != nil {
			return fmt.Errorf("invalid target language %q: %w", target, err)
		}
		opts.Target = tag
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
