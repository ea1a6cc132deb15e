package coloranalysis

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// relativeLuminance computes the WCAG relative luminance of an sRGB color.
func relativeLuminance(c colorful.Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colors, in
// [1, 21]. Argument order does not matter.
func ContrastRatio(a, b colorful.Color) float64 {
	la := relativeLuminance(a)
	lb := relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
