package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBox_Ordering(t *testing.T) {
	b := NewBox(10, 20, 2, 4)
	require.InDelta(t, 2.0, b.MinX, 1e-9)
	require.InDelta(t, 4.0, b.MinY, 1e-9)
	require.InDelta(t, 10.0, b.MaxX, 1e-9)
	require.InDelta(t, 20.0, b.MaxY, 1e-9)
	require.InDelta(t, 8.0, b.Width(), 1e-9)
	require.InDelta(t, 16.0, b.Height(), 1e-9)
}

func TestBoxInset(t *testing.T) {
	tests := []struct {
		name   string
		box    Box
		margin float64
		want   Box
	}{
		{
			name:   "normal inset",
			box:    NewBox(0, 0, 100, 50),
			margin: 5,
			want:   NewBox(5, 5, 95, 45),
		},
		{
			name:   "collapses to center when margin too large",
			box:    NewBox(0, 0, 10, 10),
			margin: 20,
			want:   NewBox(5, 5, 5, 5),
		},
		{
			name:   "zero margin is identity",
			box:    NewBox(1, 2, 3, 4),
			margin: 0,
			want:   NewBox(1, 2, 3, 4),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.box.Inset(tt.margin)
			require.InDelta(t, tt.want.MinX, got.MinX, 1e-9)
			require.InDelta(t, tt.want.MinY, got.MinY, 1e-9)
			require.InDelta(t, tt.want.MaxX, got.MaxX, 1e-9)
			require.InDelta(t, tt.want.MaxY, got.MaxY, 1e-9)
		})
	}
}

func TestBoxCorners_Order(t *testing.T) {
	b := NewBox(0, 0, 10, 4)
	c := b.Corners()
	require.Len(t, c, 4)
	require.Equal(t, Point{0, 0}, c[0])
	require.Equal(t, Point{10, 0}, c[1])
	require.Equal(t, Point{10, 4}, c[2])
	require.Equal(t, Point{0, 4}, c[3])
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a    Box
		b    Box
		want float64
	}{
		{
			name: "identical boxes",
			a:    NewBox(0, 0, 10, 10),
			b:    NewBox(0, 0, 10, 10),
			want: 1.0,
		},
		{
			name: "disjoint boxes",
			a:    NewBox(0, 0, 10, 10),
			b:    NewBox(20, 20, 30, 30),
			want: 0.0,
		},
		{
			name: "half overlap",
			a:    NewBox(0, 0, 10, 10),
			b:    NewBox(5, 0, 15, 10),
			want: 50.0 / 150.0,
		},
		{
			name: "touching edges",
			a:    NewBox(0, 0, 10, 10),
			b:    NewBox(10, 0, 20, 10),
			want: 0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, IoU(tt.a, tt.b), 1e-9)
			require.InDelta(t, tt.want, IoU(tt.b, tt.a), 1e-9)
		})
	}
}

func TestQuadCenter_DiagonalIntersection(t *testing.T) {
	// Axis-aligned square: diagonals cross at the middle.
	sq := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	c := QuadCenter(sq)
	require.InDelta(t, 5.0, c.X, 1e-9)
	require.InDelta(t, 5.0, c.Y, 1e-9)

	// Skewed trapezoid: diagonal intersection is not the centroid.
	trap := []Point{{0, 0}, {20, 0}, {14, 10}, {6, 10}}
	c = QuadCenter(trap)
	require.InDelta(t, 10.0, c.X, 1e-9)
	require.Greater(t, c.Y, 0.0)
	require.Less(t, c.Y, 10.0)
}

func TestQuadCenter_Fallbacks(t *testing.T) {
	// Not a quad: centroid fallback.
	tri := []Point{{0, 0}, {6, 0}, {3, 3}}
	c := QuadCenter(tri)
	require.InDelta(t, 3.0, c.X, 1e-9)
	require.InDelta(t, 1.0, c.Y, 1e-9)

	// Degenerate quad (all points collinear): centroid fallback, no panic.
	deg := []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	c = QuadCenter(deg)
	require.InDelta(t, 1.5, c.X, 1e-9)
	require.InDelta(t, 0.0, c.Y, 1e-9)
}

func TestExpandPolygon(t *testing.T) {
	sq := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	grown := ExpandPolygon(sq, 2.0)
	require.Len(t, grown, 4)
	require.InDelta(t, -5.0, grown[0].X, 1e-9)
	require.InDelta(t, -5.0, grown[0].Y, 1e-9)
	require.InDelta(t, 15.0, grown[2].X, 1e-9)

	shrunk := ExpandPolygon(sq, 0.5)
	require.InDelta(t, 2.5, shrunk[0].X, 1e-9)

	same := ExpandPolygon(sq, 1.0)
	require.Equal(t, sq, same)

	require.Empty(t, ExpandPolygon(nil, 2.0))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{{3, 7}, {-1, 2}, {5, 0}}
	b := BoundingBox(pts)
	require.InDelta(t, -1.0, b.MinX, 1e-9)
	require.InDelta(t, 0.0, b.MinY, 1e-9)
	require.InDelta(t, 5.0, b.MaxX, 1e-9)
	require.InDelta(t, 7.0, b.MaxY, 1e-9)

	require.Equal(t, Box{}, BoundingBox(nil))
}
