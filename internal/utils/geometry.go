package utils

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Inset shrinks the box by m on every side. The box collapses to its
// center point when m exceeds half of a dimension.
func (b Box) Inset(m float64) Box {
	out := Box{MinX: b.MinX + m, MinY: b.MinY + m, MaxX: b.MaxX - m, MaxY: b.MaxY - m}
	if out.MinX > out.MaxX {
		c := (b.MinX + b.MaxX) / 2
		out.MinX, out.MaxX = c, c
	}
	if out.MinY > out.MaxY {
		c := (b.MinY + b.MaxY) / 2
		out.MinY, out.MaxY = c, c
	}
	return out
}

// ToRect converts a Box to an image.Rectangle, clamped to image bounds.
func (b Box) ToRect(bounds image.Rectangle) image.Rectangle {
	x1 := clampInt(int(math.Floor(b.MinX)), bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Floor(b.MinY)), bounds.Min.Y, bounds.Max.Y)
	x2 := clampInt(int(math.Ceil(b.MaxX)), bounds.Min.X, bounds.Max.X)
	y2 := clampInt(int(math.Ceil(b.MaxY)), bounds.Min.Y, bounds.Max.Y)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return image.Rect(x1, y1, x2, y2)
}

// Corners synthesizes the four corner points of the box in
// top-left, top-right, bottom-right, bottom-left order.
func (b Box) Corners() []Point {
	return []Point{
		{b.MinX, b.MinY},
		{b.MaxX, b.MinY},
		{b.MaxX, b.MaxY},
		{b.MinX, b.MaxY},
	}
}

// IoU computes the Intersection-over-Union overlap of two boxes.
func IoU(a, b Box) float64 {
	left := math.Max(a.MinX, b.MinX)
	top := math.Max(a.MinY, b.MinY)
	right := math.Min(a.MaxX, b.MaxX)
	bottom := math.Min(a.MaxY, b.MaxY)
	if left >= right || top >= bottom {
		return 0.0
	}
	intersection := (right - left) * (bottom - top)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0.0
	}
	return intersection / union
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BoundingBox returns the axis-aligned bounding box for a set of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Centroid returns the average of the given points.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	cx, cy := 0.0, 0.0
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	return Point{X: cx / n, Y: cy / n}
}

// QuadCenter returns the center of a quadrilateral as the intersection of
// its diagonals. The diagonal intersection is stable under arbitrary point
// order for convex quads; for non-quad or degenerate input it falls back to
// the centroid.
func QuadCenter(pts []Point) Point {
	if len(pts) != 4 {
		return Centroid(pts)
	}
	p, ok := segmentIntersection(pts[0], pts[2], pts[1], pts[3])
	if !ok {
		return Centroid(pts)
	}
	return p
}

// segmentIntersection returns the intersection of lines ab and cd.
// Returns false when the lines are (near-)parallel.
func segmentIntersection(a, b, c, d Point) (Point, bool) {
	r := Point{X: b.X - a.X, Y: b.Y - a.Y}
	s := Point{X: d.X - c.X, Y: d.Y - c.Y}
	denom := r.X*s.Y - r.Y*s.X
	if math.Abs(denom) < 1e-12 {
		return Point{}, false
	}
	t := ((c.X-a.X)*s.Y - (c.Y-a.Y)*s.X) / denom
	return Point{X: a.X + t*r.X, Y: a.Y + t*r.Y}, true
}

// ExpandPolygon scales polygon points outward from the centroid by scale
// (>1 grows, <1 shrinks). Non-positive scale returns a copy of the input.
func ExpandPolygon(pts []Point, scale float64) []Point {
	if len(pts) == 0 || scale == 1.0 || scale <= 0 {
		return append([]Point(nil), pts...)
	}
	c := Centroid(pts)
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: c.X + (p.X-c.X)*scale, Y: c.Y + (p.Y-c.Y)*scale}
	}
	return out
}
