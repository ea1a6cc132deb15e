package layout

import (
	"math"

	"github.com/lenslate/lenslate/internal/utils"
)

// EstimateRotation derives the text baseline angle in radians from a quad's
// top and bottom edges. Corners follow the OCR order: top-left, top-right,
// bottom-right, bottom-left.
//
// Under strong perspective skew the two edges disagree; when the shorter
// edge is less than skewRatio of the longer one, the longer edge's angle is
// trusted alone, otherwise the two angles are averaged. The result is
// normalized into (-π/4, π/4] so text is never rendered upside-down or
// sideways.
func EstimateRotation(corners []utils.Point, skewRatio float64) float64 {
	if len(corners) != 4 {
		return 0
	}
	top := edge{corners[0], corners[1]}
	bottom := edge{corners[3], corners[2]}

	topLen, bottomLen := top.length(), bottom.length()
	if topLen == 0 && bottomLen == 0 {
		return 0
	}

	var angle float64
	shorter, longer := topLen, bottomLen
	longerAngle := bottom.angle()
	if topLen > bottomLen {
		shorter, longer = bottomLen, topLen
		longerAngle = top.angle()
	}
	if longer > 0 && shorter/longer < skewRatio {
		angle = longerAngle
	} else {
		angle = averageAngles(top.angle(), bottom.angle())
	}
	return normalizeRotation(angle)
}

type edge struct {
	a, b utils.Point
}

func (e edge) length() float64 { return e.a.Distance(e.b) }

func (e edge) angle() float64 {
	return math.Atan2(e.b.Y-e.a.Y, e.b.X-e.a.X)
}

// averageAngles averages two angles on the unit circle, avoiding the wrap
// artifact a plain arithmetic mean has near ±π.
func averageAngles(a, b float64) float64 {
	return math.Atan2((math.Sin(a)+math.Sin(b))/2, (math.Cos(a)+math.Cos(b))/2)
}

// normalizeRotation maps an arbitrary edge angle into (-π/4, π/4]. A half
// turn leaves a text line's footprint unchanged, so ±π shifts remove the
// upside-down branch; near-vertical readings are folded by a quarter turn.
func normalizeRotation(angle float64) float64 {
	for angle > math.Pi/2 {
		angle -= math.Pi
	}
	for angle <= -math.Pi/2 {
		angle += math.Pi
	}
	if angle > math.Pi/4 {
		angle -= math.Pi / 2
	} else if angle <= -math.Pi/4 {
		angle += math.Pi / 2
	}
	return angle
}
