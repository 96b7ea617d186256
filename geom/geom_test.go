package geom

import (
	"math"
	"testing"
)

func TestPolygonAreaAndCentroidSquare(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := square.Area(); got != 100 {
		t.Fatalf("Area() = %v, want 100", got)
	}
	c := square.Centroid()
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Fatalf("Centroid() = %v, want (5,5)", c)
	}
}

func TestPolygonCentroidDegenerate(t *testing.T) {
	line := Polygon{{0, 0}, {10, 0}}
	c := line.Centroid()
	if math.Abs(c.X-5) > 1e-9 || c.Y != 0 {
		t.Fatalf("degenerate Centroid() = %v, want vertex-average fallback (5,0)", c)
	}
}

func TestPolygonBoundingBox(t *testing.T) {
	poly := Polygon{{2, 3}, {8, -1}, {5, 9}}
	box := poly.BoundingBox()
	want := Rect{MinX: 2, MinY: -1, MaxX: 8, MaxY: 9}
	if box != want {
		t.Fatalf("BoundingBox() = %+v, want %+v", box, want)
	}
}

func TestPolygonContainsPoint(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !square.ContainsPoint(Point{5, 5}) {
		t.Fatal("expected (5,5) inside square")
	}
	if square.ContainsPoint(Point{15, 5}) {
		t.Fatal("expected (15,5) outside square")
	}
}

func TestDistinctVertexCountCollapsesDuplicates(t *testing.T) {
	poly := Polygon{{0, 0}, {0, 0.0000001}, {10, 0}, {10, 10}}
	if got := poly.DistinctVertexCount(); got != 3 {
		t.Fatalf("DistinctVertexCount() = %d, want 3", got)
	}
}

func TestClipToRectFullyInside(t *testing.T) {
	square := Polygon{{1, 1}, {9, 1}, {9, 9}, {1, 9}}
	clip := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	out := ClipToRect(square, clip)
	if out.DistinctVertexCount() != 4 {
		t.Fatalf("expected unmodified square, got %v", out)
	}
}

func TestClipToRectTruncatesOverhang(t *testing.T) {
	square := Polygon{{-5, -5}, {5, -5}, {5, 5}, {-5, 5}}
	clip := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	out := ClipToRect(square, clip)
	box := out.BoundingBox()
	if box.MinX != 0 || box.MinY != 0 || box.MaxX != 5 || box.MaxY != 5 {
		t.Fatalf("clipped bounding box = %+v, want (0,0,5,5)", box)
	}
}

func TestClipToRectEmptyOutsideYieldsEmpty(t *testing.T) {
	square := Polygon{{100, 100}, {110, 100}, {110, 110}, {100, 110}}
	clip := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	out := ClipToRect(square, clip)
	if len(out) != 0 {
		t.Fatalf("expected empty clip result, got %v", out)
	}
}

func TestRectClamp(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	got := r.Clamp(Point{X: -5, Y: 20})
	if got != (Point{X: 0, Y: 10}) {
		t.Fatalf("Clamp() = %v, want (0,10)", got)
	}
}
