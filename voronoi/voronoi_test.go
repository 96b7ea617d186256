package voronoi

import (
	"math/rand"
	"testing"

	"stainedglass/geom"
)

func TestTessellateFourCellsPartitionSquare(t *testing.T) {
	clip := geom.Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}
	points := []geom.Point{{1, 1}, {3, 1}, {1, 3}, {3, 3}}
	cells := Tessellate(points, clip)
	if len(cells) != 4 {
		t.Fatalf("len(cells) = %d, want 4", len(cells))
	}

	totalArea := 0.0
	for _, c := range cells {
		a := c.Polygon.Area()
		if a < 0 {
			a = -a
		}
		totalArea += a
	}
	if diff := totalArea - clip.Width()*clip.Height(); diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("cell areas sum to %v, want %v (full square)", totalArea, clip.Width()*clip.Height())
	}
}

func TestTessellateSinglePointFillsClip(t *testing.T) {
	clip := geom.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	cells := Tessellate([]geom.Point{{5, 5}}, clip)
	if len(cells) != 1 {
		t.Fatalf("len(cells) = %d, want 1", len(cells))
	}
	a := cells[0].Polygon.Area()
	if a < 0 {
		a = -a
	}
	if diff := a - 100; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("single-cell area = %v, want 100", a)
	}
}

func TestTessellateEveryCentroidLiesInsideOwnCell(t *testing.T) {
	clip := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	rng := rand.New(rand.NewSource(42))
	points := make([]geom.Point, 30)
	for i := range points {
		points[i] = geom.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}
	cells := Tessellate(points, clip)
	for _, c := range cells {
		if !c.Polygon.ContainsPoint(c.Centroid) && c.Polygon.DistinctVertexCount() >= 3 {
			t.Errorf("cell %d centroid %v not inside its own polygon", c.Index, c.Centroid)
		}
	}
}

func TestRelaxMovesPointsTowardCentroid(t *testing.T) {
	clip := geom.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	points := []geom.Point{{1, 1}, {9, 1}, {1, 9}, {9, 9}}
	relaxed := Relax(points, clip)
	if len(relaxed) != len(points) {
		t.Fatalf("len(relaxed) = %d, want %d", len(relaxed), len(points))
	}
	for i, p := range points {
		if relaxed[i] == p {
			t.Errorf("point %d did not move after relaxation", i)
		}
	}
}

func TestCellsRenumberedContiguously(t *testing.T) {
	clip := geom.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50}
	points := []geom.Point{{5, 5}, {45, 5}, {5, 45}, {45, 45}, {25, 25}}
	cells := Tessellate(points, clip)
	for i, c := range cells {
		if c.Index != i {
			t.Fatalf("cell at position %d has Index %d, want %d", i, c.Index, i)
		}
	}
}
