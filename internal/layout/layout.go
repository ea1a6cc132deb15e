// Package layout converts recognized quads from image space into display
// space and finds the largest font that keeps the annotation inside them.
package layout

import (
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"

	"github.com/lenslate/lenslate/internal/classify"
	"github.com/lenslate/lenslate/internal/utils"
)

// Config holds the tunable layout parameters.
type Config struct {
	MinFontSize   float64 // fit floor in points
	FontPrecision float64 // binary search convergence in points
	TargetFill    float64 // fraction of the quad dimensions text may occupy
	SkewRatio     float64 // edge-length ratio below which perspective skew wins

	// Characters-per-area cutoffs for weight estimation, in chars per
	// square point of screen-space quad.
	BoldDensity   float64
	MediumDensity float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinFontSize:   6,
		FontPrecision: 0.5,
		TargetFill:    0.95,
		SkewRatio:     0.7,
		BoldDensity:   0.008,
		MediumDensity: 0.004,
	}
}

// Placement is the computed display geometry for one line.
type Placement struct {
	ScreenCorners [4]utils.Point
	FontSizePt    float64
	Rotation      float64 // radians, in (-π/4, π/4]
	Weight        FontWeight
	TargetWidth   float64
	TargetHeight  float64
}

// Engine measures text with real font faces and lays lines out on screen.
// Safe for concurrent use; measurement serializes on an internal context.
type Engine struct {
	cfg      Config
	fonts    *fontSet
	mu       sync.Mutex
	measurer *gg.Context
}

// NewEngine parses the bundled font family and prepares a measurement
// context.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MinFontSize <= 0 {
		cfg = DefaultConfig()
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		fonts:    fonts,
		measurer: gg.NewContext(1, 1),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Font exposes the parsed font for a weight so the compositor renders with
// the same family the fit was measured against.
func (e *Engine) Font(w FontWeight) *truetype.Font {
	return e.fonts.font(w)
}

// Transform lays out one line. corners may be nil, in which case the four
// corners are synthesized from box with no rotation. imgW/imgH are the
// source photo dimensions, dstW/dstH the display dimensions. displayText is
// what will actually be drawn (the translation when present).
func (e *Engine) Transform(
	displayText string,
	contentType classify.ContentType,
	corners []utils.Point,
	box utils.Box,
	imgW, imgH, dstW, dstH float64,
) Placement {
	if len(corners) != 4 {
		corners = box.Corners()
	}

	tr := utils.NewFitTransform(imgW, imgH, dstW, dstH)
	screen := tr.ApplyAll(corners)

	var quad [4]utils.Point
	copy(quad[:], screen)

	avgW, avgH := quadDimensions(screen)
	targetW := avgW * e.cfg.TargetFill
	targetH := avgH * e.cfg.TargetFill

	weight := e.estimateWeight(displayText, contentType, avgW*avgH)
	size := e.FitFontSize(displayText, weight, targetW, targetH, avgH)

	return Placement{
		ScreenCorners: quad,
		FontSizePt:    size,
		Rotation:      EstimateRotation(screen, e.cfg.SkewRatio),
		Weight:        weight,
		TargetWidth:   targetW,
		TargetHeight:  targetH,
	}
}

// quadDimensions returns the average width and height of a quad: the mean of
// each parallel edge pair's lengths, in OCR corner order.
func quadDimensions(corners []utils.Point) (w, h float64) {
	if len(corners) != 4 {
		return 0, 0
	}
	top := corners[0].Distance(corners[1])
	bottom := corners[3].Distance(corners[2])
	left := corners[0].Distance(corners[3])
	right := corners[1].Distance(corners[2])
	return (top + bottom) / 2, (left + right) / 2
}

// estimateWeight classifies the stroke weight from character density per
// screen area. Digit-heavy content is bumped one step: prices and totals on
// receipts and shelf labels are customarily printed heavier.
func (e *Engine) estimateWeight(text string, contentType classify.ContentType, area float64) FontWeight {
	if area <= 0 {
		return WeightRegular
	}
	density := float64(len([]rune(text))) / area

	weight := WeightRegular
	switch {
	case density >= e.cfg.BoldDensity:
		weight = WeightBold
	case density >= e.cfg.MediumDensity:
		weight = WeightMedium
	}
	if contentType == classify.Price && weight == WeightRegular {
		weight = WeightMedium
	}
	return weight
}
