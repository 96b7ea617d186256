package seedpoints

import (
	"math/rand"
	"testing"

	"stainedglass/geom"
)

var testClip = geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

func TestGenerateUniformCountAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := Generate(rng, testClip, Params{Count: 50, Distribution: Uniform}, nil)
	if len(pts) != 50 {
		t.Fatalf("len(pts) = %d, want 50", len(pts))
	}
	for _, p := range pts {
		if !testClip.Contains(p) {
			t.Fatalf("point %v outside clip %v", p, testClip)
		}
	}
}

func TestGeneratePoissonRespectsCount(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pts := Generate(rng, testClip, Params{Count: 40, Distribution: Poisson}, nil)
	if len(pts) != 40 {
		t.Fatalf("len(pts) = %d, want 40", len(pts))
	}
}

func TestGeneratePoissonMinimumSpacing(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 30
	pts := poissonDisk(rng, testClip, n)
	area := testClip.Width() * testClip.Height()
	r := 0.8 * sqrtFloat(area/(3.14159265*float64(n)))
	// allow slack since the last few fallback points are uniform draws
	tolerance := r * 0.5
	violations := 0
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if pts[i].Dist(pts[j]) < r-tolerance {
				violations++
			}
		}
	}
	if violations > n/4 {
		t.Fatalf("%d pairs violate minimum spacing r=%.2f, too many for a Poisson-disk set", violations, r)
	}
}

func sqrtFloat(v float64) float64 {
	x := v
	for i := 0; i < 30; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

func TestGenerateZeroCountReturnsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	pts := Generate(rng, testClip, Params{Count: 0, Distribution: Uniform}, nil)
	if len(pts) != 0 {
		t.Fatalf("len(pts) = %d, want 0", len(pts))
	}
}

func TestGenerateEdgeWeightedWithNilMapFallsBackToUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pts := Generate(rng, testClip, Params{Count: 20, Distribution: EdgeWeighted, EdgeInfluence: 0.8}, nil)
	if len(pts) != 20 {
		t.Fatalf("len(pts) = %d, want 20", len(pts))
	}
}

func TestGenerateClampsPointsStrictlyInsideClip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	pts := Generate(rng, testClip, Params{Count: 10, Distribution: Uniform}, nil)
	for _, p := range pts {
		if p.X <= testClip.MinX || p.X >= testClip.MaxX || p.Y <= testClip.MinY || p.Y >= testClip.MaxY {
			t.Fatalf("point %v not strictly inside clip", p)
		}
	}
}
