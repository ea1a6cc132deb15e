package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the configuration file base name, without extension.
	ConfigFileName = "lenslate"

	// EnvPrefix is the environment variable prefix.
	EnvPrefix = "LENSLATE"
)

// Loader reads configuration from files and environment variables.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader over a fresh viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration from the search paths and environment. A missing
// config file is fine; defaults and env vars apply.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFile reads configuration from a specific file. The file must exist.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if path == "" {
		return l.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	l.v.SetConfigFile(path)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return l.unmarshal()
}

// ConfigFileUsed returns the path of the file the configuration came from,
// empty when only defaults and environment applied.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/lenslate")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "lenslate"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "lenslate"))
	}
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	l.v.SetDefault("pipeline.cache_capacity", defaults.Pipeline.CacheCapacity)
	l.v.SetDefault("pipeline.cache_cost_mb", defaults.Pipeline.CacheCostMB)
	l.v.SetDefault("pipeline.iou_threshold", defaults.Pipeline.IoUThreshold)
	l.v.SetDefault("pipeline.strict_dedupe", defaults.Pipeline.StrictDedupe)

	l.v.SetDefault("pipeline.filter.min_box_width", defaults.Pipeline.Filter.MinBoxWidth)
	l.v.SetDefault("pipeline.filter.min_box_height", defaults.Pipeline.Filter.MinBoxHeight)
	l.v.SetDefault("pipeline.filter.min_text_length", defaults.Pipeline.Filter.MinTextLength)
	l.v.SetDefault("pipeline.filter.max_text_length", defaults.Pipeline.Filter.MaxTextLength)
	l.v.SetDefault("pipeline.filter.max_special_ratio", defaults.Pipeline.Filter.MaxSpecialRatio)
	l.v.SetDefault("pipeline.filter.dominant_char_ratio", defaults.Pipeline.Filter.DominantCharRatio)

	l.v.SetDefault("pipeline.color.clusters", defaults.Pipeline.Color.Clusters)
	l.v.SetDefault("pipeline.color.max_iterations", defaults.Pipeline.Color.MaxIterations)
	l.v.SetDefault("pipeline.color.thumbnail_max_side", defaults.Pipeline.Color.ThumbnailMaxSide)
	l.v.SetDefault("pipeline.color.min_contrast", defaults.Pipeline.Color.MinContrast)
	l.v.SetDefault("pipeline.color.short_text_length", defaults.Pipeline.Color.ShortTextLength)

	l.v.SetDefault("pipeline.layout.min_font_size", defaults.Pipeline.Layout.MinFontSize)
	l.v.SetDefault("pipeline.layout.font_precision", defaults.Pipeline.Layout.FontPrecision)
	l.v.SetDefault("pipeline.layout.target_fill", defaults.Pipeline.Layout.TargetFill)
	l.v.SetDefault("pipeline.layout.skew_ratio", defaults.Pipeline.Layout.SkewRatio)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_seconds", defaults.Server.TimeoutSeconds)

	l.v.SetDefault("translate.source", defaults.Translate.Source)
	l.v.SetDefault("translate.target", defaults.Translate.Target)
	l.v.SetDefault("translate.table_path", defaults.Translate.TablePath)
}
