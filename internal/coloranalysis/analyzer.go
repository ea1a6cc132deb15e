// Package coloranalysis samples the source photo under a recognized line,
// clusters the pixel colors in Lab space and picks a contrast-compliant
// (text, background) pair for the redrawn annotation.
package coloranalysis

import (
	"fmt"
	"hash/fnv"
	"image"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lenslate/lenslate/internal/colorcache"
	"github.com/lenslate/lenslate/internal/utils"
)

// Config holds the tunable analysis parameters.
type Config struct {
	Clusters           int     // k for k-means
	MaxIterations      int     // clustering round cap
	ConvergenceEpsilon float64 // Lab movement below which iteration stops
	ThumbnailMaxSide   int     // downscale cap for the sampled crop
	InsetMinRatio      float64 // adaptive crop inset, small boxes
	InsetMaxRatio      float64 // adaptive crop inset, large boxes
	MinContrast        float64 // WCAG contrast floor for the chosen pair
	ShortTextLength    int     // texts at or below this length prefer accents

	// Scheme classification cutoffs.
	GradientVariance         float64
	GradientEntropy          float64
	InvertedBrightness       float64
	ColorfulSaturation       float64
	DominantHueConcentration float64
	ComplexEntropy           float64

	// Saturation floor for hue statistics.
	SaturationFloor float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Clusters:                 5,
		MaxIterations:            20,
		ConvergenceEpsilon:       0.5,
		ThumbnailMaxSide:         150,
		InsetMinRatio:            0.02,
		InsetMaxRatio:            0.05,
		MinContrast:              4.5,
		ShortTextLength:          5,
		GradientVariance:         0.035,
		GradientEntropy:          3.5,
		InvertedBrightness:       0.35,
		ColorfulSaturation:       0.4,
		DominantHueConcentration: 0.8,
		ComplexEntropy:           2.5,
		SaturationFloor:          0.15,
	}
}

// Decision is the chosen color pair for one line.
type Decision struct {
	Text       colorful.Color `json:"text"`
	Background colorful.Color `json:"background"`
	Confidence float64        `json:"confidence"`
	Scheme     Scheme         `json:"scheme"`
}

// DefaultDecision is the contrast-safe sentinel for degenerate input.
func DefaultDecision() Decision {
	return Decision{Text: black, Background: white, Confidence: 0, Scheme: SchemeStandard}
}

// Key identifies a cached decision: the same text at the same box in the
// same photo always resolves to the same colors.
type Key struct {
	Text    string
	Box     utils.Box
	ImageID string
}

// decisionCost approximates the retained bytes for one cache entry.
func decisionCost(k Key) int64 {
	return int64(len(k.Text)+len(k.ImageID)) + 160
}

// Analyzer runs the color analysis with memoization. Safe for concurrent use
// across lines of the same photo.
type Analyzer struct {
	cfg   Config
	cache *colorcache.Cache[Key, Decision]
}

// New creates an Analyzer. A nil cache disables memoization-sharing and
// allocates a private one.
func New(cfg Config, cache *colorcache.Cache[Key, Decision]) *Analyzer {
	if cfg.Clusters <= 0 {
		cfg = DefaultConfig()
	}
	if cache == nil {
		cache = colorcache.New[Key, Decision](colorcache.DefaultCapacity, colorcache.DefaultCostBudget)
	}
	return &Analyzer{cfg: cfg, cache: cache}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// CacheStats returns memoization hit/miss counters.
func (a *Analyzer) CacheStats() (hits, misses uint64) { return a.cache.Stats() }

// Analyze picks the color pair for one line. imageID identifies the source
// photo for cache keying. Degenerate input (nil image, empty box, empty
// crop) yields the black-on-white sentinel.
func (a *Analyzer) Analyze(img image.Image, text string, box utils.Box, imageID string) Decision {
	key := Key{Text: text, Box: box, ImageID: imageID}
	if d, ok := a.cache.Get(key); ok {
		return d
	}

	d := a.analyze(img, text, box, key)
	a.cache.Put(key, d, decisionCost(key))
	return d
}

func (a *Analyzer) analyze(img image.Image, text string, box utils.Box, key Key) Decision {
	pixels := samplePixels(img, box, a.cfg)
	if len(pixels) == 0 {
		return DefaultDecision()
	}

	// Seed the clustering deterministically from the cache key so a given
	// photo+line always produces the same colors.
	rng := rand.New(rand.NewSource(keySeed(key))) //nolint:gosec // deterministic clustering, not crypto

	clusters := kmeans(pixels, a.cfg.Clusters, a.cfg.MaxIterations, a.cfg.ConvergenceEpsilon, rng)
	dist := computeDistribution(pixels, a.cfg.SaturationFloor)
	scheme := classifyScheme(dist, len(clusters), a.cfg)

	textColor, background, confidence := selectColors(scheme, clusters, len([]rune(text)), a.cfg)
	return Decision{
		Text:       textColor,
		Background: background,
		Confidence: confidence,
		Scheme:     scheme,
	}
}

func keySeed(k Key) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.Text))
	_, _ = h.Write([]byte(k.ImageID))
	_, _ = fmt.Fprintf(h, "%.2f:%.2f:%.2f:%.2f", k.Box.MinX, k.Box.MinY, k.Box.MaxX, k.Box.MaxY)
	return int64(h.Sum64()) //nolint:gosec // overflow is fine for a seed
}
