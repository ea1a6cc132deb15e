package utils

// FitTransform maps image-space coordinates into a display area using
// uniform "aspect-fit" scaling: the whole source image is scaled to fit
// inside the destination while preserving aspect ratio, centered along the
// non-binding dimension.
type FitTransform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewFitTransform computes the aspect-fit transform from an image of size
// (imgW, imgH) into a display area of size (dstW, dstH). Degenerate sizes
// yield the identity transform.
func NewFitTransform(imgW, imgH, dstW, dstH float64) FitTransform {
	if imgW <= 0 || imgH <= 0 || dstW <= 0 || dstH <= 0 {
		return FitTransform{Scale: 1}
	}
	imageAspect := imgW / imgH
	displayAspect := dstW / dstH
	var scale float64
	if imageAspect > displayAspect {
		// Width is the binding constraint; center vertically.
		scale = dstW / imgW
	} else {
		scale = dstH / imgH
	}
	return FitTransform{
		Scale:   scale,
		OffsetX: (dstW - imgW*scale) / 2,
		OffsetY: (dstH - imgH*scale) / 2,
	}
}

// Apply maps an image-space point into display space.
func (t FitTransform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.OffsetX, Y: p.Y*t.Scale + t.OffsetY}
}

// Invert maps a display-space point back into image space.
// The transform must have a non-zero scale.
func (t FitTransform) Invert(p Point) Point {
	return Point{X: (p.X - t.OffsetX) / t.Scale, Y: (p.Y - t.OffsetY) / t.Scale}
}

// ApplyAll maps a slice of image-space points into display space.
func (t FitTransform) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}
