package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lenslate/lenslate/internal/colorcache"
	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/filter"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/overlay"
	"github.com/lenslate/lenslate/internal/translate"
)

// ErrSuperseded is returned when a newer Annotate call started on the same
// session while this one was still running. The latest frame of a display
// always wins; unrelated sessions never interfere.
var ErrSuperseded = errors.New("annotation superseded by a newer frame")

// Config holds the engine configuration.
type Config struct {
	Workers       int
	CacheCapacity int
	CacheCost     int64
	IoUThreshold  float64

	// StrictDedupe restricts duplicate text matching to exact, case
	// insensitive, and containment comparisons. The default also merges
	// one-glyph OCR re-reads by edit distance.
	StrictDedupe bool

	Filter         filter.Config
	Color          coloranalysis.Config
	Layout         layout.Config
	TransformCache int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.NumCPU(),
		CacheCapacity:  colorcache.DefaultCapacity,
		CacheCost:      colorcache.DefaultCostBudget,
		IoUThreshold:   overlay.DefaultIoUThreshold,
		Filter:         filter.DefaultConfig(),
		Color:          coloranalysis.DefaultConfig(),
		Layout:         layout.DefaultConfig(),
		TransformCache: 256,
	}
}

// Builder assembles an Engine step by step.
type Builder struct {
	cfg        Config
	translator translate.Translator
	logger     *slog.Logger
	registerer prometheus.Registerer
	err        error
}

// NewBuilder creates a builder with default configuration.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithWorkers sets the color analysis worker pool size.
func (b *Builder) WithWorkers(n int) *Builder {
	if n < 0 {
		b.err = fmt.Errorf("workers must be non-negative, got %d", n)
		return b
	}
	b.cfg.Workers = n
	return b
}

// WithTranslator sets the translation collaborator. Nil means no
// translation.
func (b *Builder) WithTranslator(t translate.Translator) *Builder {
	b.translator = t
	return b
}

// WithFilterConfig overrides the noise filter thresholds.
func (b *Builder) WithFilterConfig(cfg filter.Config) *Builder {
	b.cfg.Filter = cfg
	return b
}

// WithColorConfig overrides the color analysis tunables.
func (b *Builder) WithColorConfig(cfg coloranalysis.Config) *Builder {
	b.cfg.Color = cfg
	return b
}

// WithLayoutConfig overrides the layout tunables.
func (b *Builder) WithLayoutConfig(cfg layout.Config) *Builder {
	b.cfg.Layout = cfg
	return b
}

// WithCache sets the color decision cache bounds.
func (b *Builder) WithCache(capacity int, costBudget int64) *Builder {
	if capacity <= 0 {
		b.err = fmt.Errorf("cache capacity must be positive, got %d", capacity)
		return b
	}
	b.cfg.CacheCapacity = capacity
	b.cfg.CacheCost = costBudget
	return b
}

// WithLogger sets the structured logger. Nil keeps the engine silent.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics registers the engine metrics on reg.
func (b *Builder) WithMetrics(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.cfg.Workers <= 0 {
		b.cfg.Workers = runtime.NumCPU()
	}

	layoutEngine, err := layout.NewEngine(b.cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout engine: %w", err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cache := colorcache.New[coloranalysis.Key, coloranalysis.Decision](
		b.cfg.CacheCapacity, b.cfg.CacheCost)

	e := &Engine{
		cfg:        b.cfg,
		analyzer:   coloranalysis.New(b.cfg.Color, cache),
		layout:     layoutEngine,
		compositor: overlay.NewCompositor(layoutEngine),
		translator: b.translator,
		logger:     logger,
		transforms: colorcache.New[transformKey, layout.Placement](
			b.cfg.TransformCache, 0),
	}
	if b.registerer != nil {
		e.metrics = newMetrics(b.registerer)
	}
	return e, nil
}

// Engine runs the annotation pipeline. Safe for concurrent use: independent
// Annotate calls run in parallel without affecting each other. Callers that
// retake the same display use a Session so newer frames supersede older
// in-flight ones.
type Engine struct {
	cfg        Config
	analyzer   *coloranalysis.Analyzer
	layout     *layout.Engine
	compositor *overlay.Compositor
	translator translate.Translator
	logger     *slog.Logger
	metrics    *metrics

	transforms *colorcache.Cache[transformKey, layout.Placement]
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// CacheStats returns color decision cache hit and miss counters.
func (e *Engine) CacheStats() (hits, misses uint64) { return e.analyzer.CacheStats() }

// Session scopes supersession to one logical display, such as a single
// camera feed or websocket connection. Each Annotate call on a session
// supersedes the session's previous in-flight call.
type Session struct {
	engine     *Engine
	generation atomic.Uint64
}

// NewSession returns a handle for a stream of frames of the same display.
func (e *Engine) NewSession() *Session { return &Session{engine: e} }

// Generation returns the token of the session's most recently started
// request.
func (s *Session) Generation() uint64 { return s.generation.Load() }
