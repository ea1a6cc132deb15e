package coloranalysis

import "math"

// Distribution summarizes the un-clustered pixel population of a sampled
// crop. It drives scheme classification independently of the k-means result.
type Distribution struct {
	Variance          float64 // summed per-channel Lab variance
	Entropy           float64 // Shannon entropy of a coarse RGB histogram, bits
	MeanSaturation    float64
	VarSaturation     float64
	MeanBrightness    float64
	VarBrightness     float64
	MeanHue           float64 // circular mean hue in degrees, saturated pixels only
	HueConcentration  float64 // resultant length of the hue distribution, [0,1]
	SaturatedFraction float64 // fraction of pixels above the saturation floor
}

// histogramBins quantizes each RGB channel into this many levels.
const histogramBins = 4

// computeDistribution derives the histogram statistics for the sample.
// satFloor is the minimum HSV saturation for a pixel to contribute hue.
func computeDistribution(pixels []pixel, satFloor float64) Distribution {
	var d Distribution
	if len(pixels) == 0 {
		return d
	}
	n := float64(len(pixels))

	// Lab variance around the mean.
	var meanL, meanA, meanB float64
	for _, p := range pixels {
		meanL += p.l
		meanA += p.a
		meanB += p.b
	}
	meanL /= n
	meanA /= n
	meanB /= n
	for _, p := range pixels {
		d.Variance += (p.l-meanL)*(p.l-meanL) + (p.a-meanA)*(p.a-meanA) + (p.b-meanB)*(p.b-meanB)
	}
	d.Variance /= n

	// Coarse RGB histogram entropy.
	hist := make(map[int]int)
	for _, p := range pixels {
		r := quantize(p.col.R)
		g := quantize(p.col.G)
		b := quantize(p.col.B)
		hist[(r*histogramBins+g)*histogramBins+b]++
	}
	for _, count := range hist {
		f := float64(count) / n
		d.Entropy -= f * math.Log2(f)
	}

	// Saturation and brightness statistics, plus a circular hue mean over
	// sufficiently saturated pixels.
	var sumSin, sumCos float64
	saturated := 0
	sats := make([]float64, len(pixels))
	vals := make([]float64, len(pixels))
	for i, p := range pixels {
		h, s, v := p.col.Hsv()
		sats[i] = s
		vals[i] = v
		d.MeanSaturation += s
		d.MeanBrightness += v
		if s >= satFloor {
			saturated++
			rad := h * math.Pi / 180
			sumSin += math.Sin(rad)
			sumCos += math.Cos(rad)
		}
	}
	d.MeanSaturation /= n
	d.MeanBrightness /= n
	for i := range pixels {
		d.VarSaturation += (sats[i] - d.MeanSaturation) * (sats[i] - d.MeanSaturation)
		d.VarBrightness += (vals[i] - d.MeanBrightness) * (vals[i] - d.MeanBrightness)
	}
	d.VarSaturation /= n
	d.VarBrightness /= n

	d.SaturatedFraction = float64(saturated) / n
	if saturated > 0 {
		d.MeanHue = math.Atan2(sumSin, sumCos) * 180 / math.Pi
		if d.MeanHue < 0 {
			d.MeanHue += 360
		}
		d.HueConcentration = math.Hypot(sumSin, sumCos) / float64(saturated)
	}
	return d
}

func quantize(v float64) int {
	idx := int(v * histogramBins)
	if idx >= histogramBins {
		idx = histogramBins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
