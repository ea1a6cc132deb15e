package coloranalysis

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"
)

func TestComputeDistribution_Uniform(t *testing.T) {
	gray := colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	pixels := make([]pixel, 64)
	for i := range pixels {
		pixels[i] = labPixel(gray, 0, 0)
	}
	d := computeDistribution(pixels, 0.15)
	require.InDelta(t, 0.0, d.Variance, 1e-9)
	require.InDelta(t, 0.0, d.Entropy, 1e-9)
	require.InDelta(t, 0.0, d.MeanSaturation, 1e-9)
	require.InDelta(t, 0.0, d.SaturatedFraction, 1e-9)
}

func TestComputeDistribution_TwoColors(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{R: 0, G: 0, B: 0}
	pixels := append(
		[]pixel{labPixel(white, 0, 0), labPixel(white, 1, 0)},
		labPixel(black, 0, 1), labPixel(black, 1, 1),
	)
	d := computeDistribution(pixels, 0.15)
	// Two equally likely bins: one bit of entropy.
	require.InDelta(t, 1.0, d.Entropy, 1e-9)
	require.Greater(t, d.Variance, 0.1)
	require.InDelta(t, 0.5, d.MeanBrightness, 1e-9)
}

func TestComputeDistribution_DominantHue(t *testing.T) {
	red := colorful.Color{R: 0.9, G: 0.1, B: 0.1}
	darkRed := colorful.Color{R: 0.6, G: 0.05, B: 0.05}
	pixels := make([]pixel, 0, 40)
	for i := range 40 {
		c := red
		if i%2 == 0 {
			c = darkRed
		}
		pixels = append(pixels, labPixel(c, 0, 0))
	}
	d := computeDistribution(pixels, 0.15)
	require.InDelta(t, 1.0, d.SaturatedFraction, 1e-9)
	require.Greater(t, d.HueConcentration, 0.95)
	// Both colors sit on the red hue axis.
	require.True(t, d.MeanHue < 15 || d.MeanHue > 345, "hue=%f", d.MeanHue)
}

func TestComputeDistribution_Empty(t *testing.T) {
	d := computeDistribution(nil, 0.15)
	require.Zero(t, d.Entropy)
	require.Zero(t, d.Variance)
}

func TestClassifyScheme(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		dist     Distribution
		clusters int
		want     Scheme
	}{
		{
			name: "high variance and entropy is gradient",
			dist: Distribution{Variance: 0.09, Entropy: 4.2, MeanBrightness: 0.6},
			want: SchemeGradient,
		},
		{
			name: "dark mean brightness is inverted",
			dist: Distribution{Variance: 0.001, Entropy: 0.5, MeanBrightness: 0.2},
			want: SchemeInverted,
		},
		{
			name: "dominant hue with high saturation is colorful",
			dist: Distribution{
				MeanBrightness: 0.7, MeanSaturation: 0.6,
				HueConcentration: 0.95, SaturatedFraction: 0.8,
			},
			want: SchemeColorful,
		},
		{
			name:     "many clusters with moderate entropy is complex",
			dist:     Distribution{MeanBrightness: 0.7, Entropy: 3.0},
			clusters: 5,
			want:     SchemeComplex,
		},
		{
			name: "plain light region is standard",
			dist: Distribution{MeanBrightness: 0.9, Entropy: 0.4},
			want: SchemeStandard,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classifyScheme(tt.dist, tt.clusters, cfg))
		})
	}
}

func TestScheme_String(t *testing.T) {
	require.Equal(t, "standard", SchemeStandard.String())
	require.Equal(t, "inverted", SchemeInverted.String())
	require.Equal(t, "colorful", SchemeColorful.String())
	require.Equal(t, "gradient", SchemeGradient.String())
	require.Equal(t, "complex", SchemeComplex.String())
}
