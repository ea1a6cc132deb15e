package coloranalysis

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Scheme is the closed set of local color-scheme classes for a sampled crop.
type Scheme int

const (
	SchemeStandard Scheme = iota // light background, dark text
	SchemeInverted               // dark background, light text
	SchemeColorful               // dominant saturated hue
	SchemeGradient               // smoothly varying background
	SchemeComplex                // many distinct color populations
)

// String returns the lowercase scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeInverted:
		return "inverted"
	case SchemeColorful:
		return "colorful"
	case SchemeGradient:
		return "gradient"
	case SchemeComplex:
		return "complex"
	default:
		return "standard"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// classifyScheme maps the distribution statistics (and effective cluster
// count) onto a scheme. Rules are evaluated in order; first match wins.
func classifyScheme(d Distribution, clusterCount int, cfg Config) Scheme {
	if d.Variance > cfg.GradientVariance && d.Entropy > cfg.GradientEntropy {
		return SchemeGradient
	}
	if d.MeanBrightness < cfg.InvertedBrightness {
		return SchemeInverted
	}
	if d.HueConcentration > cfg.DominantHueConcentration &&
		d.SaturatedFraction > 0.3 &&
		d.MeanSaturation > cfg.ColorfulSaturation {
		return SchemeColorful
	}
	if clusterCount >= 4 && d.Entropy > cfg.ComplexEntropy {
		return SchemeComplex
	}
	return SchemeStandard
}

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// selectColors picks a (text, background) pair for the scheme from the
// cluster set, then enforces the contrast floor. Confidence reflects how
// well the heuristic choice survived enforcement.
func selectColors(scheme Scheme, clusters []Cluster, textLen int, cfg Config) (text, background colorful.Color, confidence float64) {
	if len(clusters) == 0 {
		return black, white, 0
	}

	switch scheme {
	case SchemeInverted:
		background, text, confidence = invertedPair(clusters)
	case SchemeColorful:
		background, text, confidence = colorfulPair(clusters)
	case SchemeGradient:
		background, text, confidence = gradientPair(clusters)
	case SchemeComplex:
		background, text, confidence = complexPair(clusters)
	default:
		background, text, confidence = standardPair(clusters)
	}

	// Short texts read better with a saturated accent when one is available.
	if textLen > 0 && textLen <= cfg.ShortTextLength {
		if accent, ok := saturatedCandidate(clusters); ok &&
			ContrastRatio(accent, background) >= cfg.MinContrast {
			text = accent
		}
	}

	if ContrastRatio(text, background) < cfg.MinContrast {
		text = forcedText(background)
		confidence *= 0.6
	}
	return text, background, confidence
}

// standardPair: the heaviest cluster sitting at an edge, or dominating more
// than 60% of the sample, is the background; the next heaviest is the text.
func standardPair(clusters []Cluster) (bg, text colorful.Color, conf float64) {
	bgIdx := 0
	if clusters[0].Position != PositionEdge && clusters[0].Weight <= 0.6 {
		// Look for a heavy edge cluster; the surround is the background.
		for i, c := range clusters {
			if c.Position == PositionEdge {
				bgIdx = i
				break
			}
		}
	}
	txtIdx := 0
	if bgIdx == 0 && len(clusters) > 1 {
		txtIdx = 1
	}
	conf = clusters[bgIdx].Weight + 0.2
	if conf > 1 {
		conf = 1
	}
	return clusters[bgIdx].Color, clusters[txtIdx].Color, conf
}

// invertedPair: darkest heavy cluster is the background, lightest heavy
// cluster is the text.
func invertedPair(clusters []Cluster) (bg, text colorful.Color, conf float64) {
	const heavy = 0.1
	darkIdx, lightIdx := 0, 0
	darkLum, lightLum := 2.0, -1.0
	for i, c := range clusters {
		if c.Weight < heavy && len(clusters) > 2 {
			continue
		}
		lum := c.Luminance()
		if lum < darkLum {
			darkLum = lum
			darkIdx = i
		}
		if lum > lightLum {
			lightLum = lum
			lightIdx = i
		}
	}
	conf = clusters[darkIdx].Weight + clusters[lightIdx].Weight
	if conf > 1 {
		conf = 1
	}
	return clusters[darkIdx].Color, clusters[lightIdx].Color, conf
}

// colorfulPair: the dominant cluster is the background; the text is the
// cluster farthest from it in Lab space.
func colorfulPair(clusters []Cluster) (bg, text colorful.Color, conf float64) {
	bgC := clusters[0]
	txt := farthestFrom(clusters, bgC)
	return bgC.Color, txt.Color, 0.5 + bgC.Weight/2
}

// gradientPair: no single background exists; use the heaviest cluster as an
// anchor and force text by luminance later if needed.
func gradientPair(clusters []Cluster) (bg, text colorful.Color, conf float64) {
	bgC := clusters[0]
	return bgC.Color, forcedText(bgC.Color), 0.4
}

// complexPair: heaviest cluster as background, maximally distant cluster as
// text, low confidence.
func complexPair(clusters []Cluster) (bg, text colorful.Color, conf float64) {
	bgC := clusters[0]
	txt := farthestFrom(clusters, bgC)
	return bgC.Color, txt.Color, 0.35
}

func farthestFrom(clusters []Cluster, ref Cluster) Cluster {
	best := ref
	bestDist := -1.0
	for _, c := range clusters {
		d := c.Color.DistanceLab(ref.Color)
		if d > bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// saturatedCandidate returns the most saturated cluster color, when any
// cluster is meaningfully saturated at all.
func saturatedCandidate(clusters []Cluster) (colorful.Color, bool) {
	bestSat := 0.35
	var best colorful.Color
	found := false
	for _, c := range clusters {
		_, s, _ := c.Color.Hsv()
		if s > bestSat {
			bestSat = s
			best = c.Color
			found = true
		}
	}
	return best, found
}

// forcedText picks pure black or white against the background luminance.
func forcedText(background colorful.Color) colorful.Color {
	if relativeLuminance(background) > 0.179 {
		return black
	}
	return white
}
