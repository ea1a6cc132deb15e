// Package config loads lenslate configuration from files, environment
// variables, and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/filter"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/pipeline"
)

// Config is the complete application configuration covering the annotate
// and serve commands.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
	Translate TranslateConfig `mapstructure:"translate" yaml:"translate" json:"translate"`
}

// PipelineConfig contains the annotation engine settings.
type PipelineConfig struct {
	Workers       int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	CacheCapacity int     `mapstructure:"cache_capacity" yaml:"cache_capacity" json:"cache_capacity"`
	CacheCostMB   int     `mapstructure:"cache_cost_mb" yaml:"cache_cost_mb" json:"cache_cost_mb"`
	IoUThreshold  float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
	// StrictDedupe disables the edit-distance clause of duplicate text
	// matching, leaving exact, case-insensitive, and containment matches.
	StrictDedupe bool `mapstructure:"strict_dedupe" yaml:"strict_dedupe" json:"strict_dedupe"`

	Filter FilterConfig `mapstructure:"filter" yaml:"filter" json:"filter"`
	Color  ColorConfig  `mapstructure:"color" yaml:"color" json:"color"`
	Layout LayoutConfig `mapstructure:"layout" yaml:"layout" json:"layout"`
}

// FilterConfig contains noise filter thresholds.
type FilterConfig struct {
	MinBoxWidth       float64 `mapstructure:"min_box_width" yaml:"min_box_width" json:"min_box_width"`
	MinBoxHeight      float64 `mapstructure:"min_box_height" yaml:"min_box_height" json:"min_box_height"`
	MinTextLength     int     `mapstructure:"min_text_length" yaml:"min_text_length" json:"min_text_length"`
	MaxTextLength     int     `mapstructure:"max_text_length" yaml:"max_text_length" json:"max_text_length"`
	MaxSpecialRatio   float64 `mapstructure:"max_special_ratio" yaml:"max_special_ratio" json:"max_special_ratio"`
	DominantCharRatio float64 `mapstructure:"dominant_char_ratio" yaml:"dominant_char_ratio" json:"dominant_char_ratio"`
}

// ColorConfig contains color analysis tunables.
type ColorConfig struct {
	Clusters         int     `mapstructure:"clusters" yaml:"clusters" json:"clusters"`
	MaxIterations    int     `mapstructure:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
	ThumbnailMaxSide int     `mapstructure:"thumbnail_max_side" yaml:"thumbnail_max_side" json:"thumbnail_max_side"`
	MinContrast      float64 `mapstructure:"min_contrast" yaml:"min_contrast" json:"min_contrast"`
	ShortTextLength  int     `mapstructure:"short_text_length" yaml:"short_text_length" json:"short_text_length"`
}

// LayoutConfig contains layout engine tunables.
type LayoutConfig struct {
	MinFontSize   float64 `mapstructure:"min_font_size" yaml:"min_font_size" json:"min_font_size"`
	FontPrecision float64 `mapstructure:"font_precision" yaml:"font_precision" json:"font_precision"`
	TargetFill    float64 `mapstructure:"target_fill" yaml:"target_fill" json:"target_fill"`
	SkewRatio     float64 `mapstructure:"skew_ratio" yaml:"skew_ratio" json:"skew_ratio"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Host           string `mapstructure:"host" yaml:"host" json:"host"`
	Port           int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// TranslateConfig selects the translation collaborator.
type TranslateConfig struct {
	// Source and Target are BCP 47 language tags.
	Source string `mapstructure:"source" yaml:"source" json:"source"`
	Target string `mapstructure:"target" yaml:"target" json:"target"`
	// TablePath points to a JSON file of text-to-translation pairs used by
	// the static translator. Empty means identity translation.
	TablePath string `mapstructure:"table_path" yaml:"table_path" json:"table_path"`
}

// DefaultConfig returns the application defaults.
func DefaultConfig() *Config {
	engine := pipeline.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Workers:       engine.Workers,
			CacheCapacity: engine.CacheCapacity,
			CacheCostMB:   int(engine.CacheCost >> 20),
			IoUThreshold:  engine.IoUThreshold,
			StrictDedupe:  engine.StrictDedupe,
			Filter: FilterConfig{
				MinBoxWidth:       engine.Filter.MinBoxWidth,
				MinBoxHeight:      engine.Filter.MinBoxHeight,
				MinTextLength:     engine.Filter.MinTextLength,
				MaxTextLength:     engine.Filter.MaxTextLength,
				MaxSpecialRatio:   engine.Filter.MaxSpecialRatio,
				DominantCharRatio: engine.Filter.DominantCharRatio,
			},
			Color: ColorConfig{
				Clusters:         engine.Color.Clusters,
				MaxIterations:    engine.Color.MaxIterations,
				ThumbnailMaxSide: engine.Color.ThumbnailMaxSide,
				MinContrast:      engine.Color.MinContrast,
				ShortTextLength:  engine.Color.ShortTextLength,
			},
			Layout: LayoutConfig{
				MinFontSize:   engine.Layout.MinFontSize,
				FontPrecision: engine.Layout.FontPrecision,
				TargetFill:    engine.Layout.TargetFill,
				SkewRatio:     engine.Layout.SkewRatio,
			},
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			MaxUploadMB:    20,
			TimeoutSeconds: 30,
		},
		Translate: TranslateConfig{
			Source: "en",
			Target: "",
		},
	}
}

// EngineConfig converts the loaded configuration into the pipeline's shape,
// starting from engine defaults so unexposed tunables keep their values.
func (c *Config) EngineConfig() pipeline.Config {
	engine := pipeline.DefaultConfig()
	engine.Workers = c.Pipeline.Workers
	engine.CacheCapacity = c.Pipeline.CacheCapacity
	engine.CacheCost = int64(c.Pipeline.CacheCostMB) << 20
	engine.IoUThreshold = c.Pipeline.IoUThreshold
	engine.StrictDedupe = c.Pipeline.StrictDedupe

	engine.Filter = filter.Config{
		MinBoxWidth:       c.Pipeline.Filter.MinBoxWidth,
		MinBoxHeight:      c.Pipeline.Filter.MinBoxHeight,
		MinTextLength:     c.Pipeline.Filter.MinTextLength,
		MaxTextLength:     c.Pipeline.Filter.MaxTextLength,
		MaxSpecialRatio:   c.Pipeline.Filter.MaxSpecialRatio,
		DominantCharRatio: c.Pipeline.Filter.DominantCharRatio,
	}

	color := coloranalysis.DefaultConfig()
	color.Clusters = c.Pipeline.Color.Clusters
	color.MaxIterations = c.Pipeline.Color.MaxIterations
	color.ThumbnailMaxSide = c.Pipeline.Color.ThumbnailMaxSide
	color.MinContrast = c.Pipeline.Color.MinContrast
	color.ShortTextLength = c.Pipeline.Color.ShortTextLength
	engine.Color = color

	lay := layout.DefaultConfig()
	lay.MinFontSize = c.Pipeline.Layout.MinFontSize
	lay.FontPrecision = c.Pipeline.Layout.FontPrecision
	lay.TargetFill = c.Pipeline.Layout.TargetFill
	lay.SkewRatio = c.Pipeline.Layout.SkewRatio
	engine.Layout = lay

	return engine
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level must be one of debug/info/warn/error, got %q", c.LogLevel))
	}

	p := c.Pipeline
	if p.Workers < 0 {
		problems = append(problems, "pipeline.workers must be non-negative")
	}
	if p.CacheCapacity <= 0 {
		problems = append(problems, "pipeline.cache_capacity must be positive")
	}
	if p.IoUThreshold <= 0 || p.IoUThreshold > 1 {
		problems = append(problems, "pipeline.iou_threshold must be in (0, 1]")
	}
	if p.Filter.MinTextLength < 1 {
		problems = append(problems, "pipeline.filter.min_text_length must be at least 1")
	}
	if p.Filter.MaxTextLength <= p.Filter.MinTextLength {
		problems = append(problems, "pipeline.filter.max_text_length must exceed min_text_length")
	}
	if p.Filter.MaxSpecialRatio <= 0 || p.Filter.MaxSpecialRatio > 1 {
		problems = append(problems, "pipeline.filter.max_special_ratio must be in (0, 1]")
	}
	if p.Color.Clusters < 2 {
		problems = append(problems, "pipeline.color.clusters must be at least 2")
	}
	if p.Color.MinContrast < 1 {
		problems = append(problems, "pipeline.color.min_contrast must be at least 1")
	}
	if p.Layout.MinFontSize <= 0 {
		problems = append(problems, "pipeline.layout.min_font_size must be positive")
	}
	if p.Layout.TargetFill <= 0 || p.Layout.TargetFill > 1 {
		problems = append(problems, "pipeline.layout.target_fill must be in (0, 1]")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be in [1, 65535], got %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		problems = append(problems, "server.max_upload_mb must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
