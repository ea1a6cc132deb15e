package layout

import (
	"github.com/golang/freetype/truetype"
)

// lineSpacing is the wrapped-line height multiplier used for fit measurement.
const lineSpacing = 1.2

// measureWrapped lays text out at the given size and weight, word-wrapped to
// width, and returns the occupied width and height in points.
func (e *Engine) measureWrapped(text string, weight FontWeight, size, width float64) (w, h float64) {
	face := truetype.NewFace(e.fonts.font(weight), &truetype.Options{Size: size})
	e.mu.Lock()
	defer e.mu.Unlock()
	e.measurer.SetFontFace(face)

	lines := e.measurer.WordWrap(text, width)
	if len(lines) == 0 {
		return 0, 0
	}
	for _, line := range lines {
		lw, _ := e.measurer.MeasureString(line)
		if lw > w {
			w = lw
		}
	}
	h = float64(len(lines)) * e.measurer.FontHeight() * lineSpacing
	return w, h
}

// FitFontSize binary-searches the largest font size in [MinFontSize, maxSize]
// whose word-wrapped layout of text fits the target rectangle, converging to
// FontPrecision. When nothing fits the floor size is returned: a slightly
// overflowing line beats hidden text.
func (e *Engine) FitFontSize(text string, weight FontWeight, targetW, targetH, maxSize float64) float64 {
	if text == "" || targetW <= 0 || targetH <= 0 {
		return e.cfg.MinFontSize
	}
	if maxSize < e.cfg.MinFontSize {
		maxSize = e.cfg.MinFontSize
	}

	fits := func(size float64) bool {
		w, h := e.measureWrapped(text, weight, size, targetW)
		return w <= targetW && h <= targetH
	}

	low, high := e.cfg.MinFontSize, maxSize
	if !fits(low) {
		return e.cfg.MinFontSize
	}
	for high-low > e.cfg.FontPrecision {
		mid := (low + high) / 2
		if fits(mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}
