package lighting

import (
	"math"
	"math/rand"
	"testing"

	"stainedglass/colorsample"
	"stainedglass/colorutil"
	"stainedglass/geom"
)

// makeCells tiles bounds into an n-ish square grid so clusters spread
// across both axes, not just one row.
func makeCells(n int, bounds geom.Rect) []colorsample.ColoredCell {
	side := 1
	for side*side < n {
		side++
	}
	stepX := bounds.Width() / float64(side)
	stepY := bounds.Height() / float64(side)

	var cells []colorsample.ColoredCell
	for gy := 0; gy < side && len(cells) < n; gy++ {
		for gx := 0; gx < side && len(cells) < n; gx++ {
			x0 := bounds.MinX + float64(gx)*stepX
			x1 := x0 + stepX
			y0 := bounds.MinY + float64(gy)*stepY
			y1 := y0 + stepY
			cells = append(cells, colorsample.ColoredCell{
				Polygon: geom.Polygon{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
				Color:   colorutil.RGB{R: 200, G: 100, B: 50},
			})
		}
	}
	return cells
}

func TestApplyDisabledReturnsCellsUnchanged(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	cells := makeCells(5, bounds)
	result := Apply(cells, bounds, Settings{Enabled: false})
	if len(result.Shaded) != len(cells) {
		t.Fatalf("len(Shaded) = %d, want %d", len(result.Shaded), len(cells))
	}
	for i, c := range result.Shaded {
		if c.Color != cells[i].Color {
			t.Fatalf("cell %d color changed while lighting disabled: %v -> %v", i, cells[i].Color, c.Color)
		}
	}
	if len(result.Rays) != 0 || len(result.Glow) != 0 {
		t.Fatal("expected no rays/glow while lighting disabled")
	}
}

func TestApplyTopLeftFiveRaysProducesTenRayPolygons(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 400, MaxY: 300}
	cells := makeCells(40, bounds)
	result := Apply(cells, bounds, Settings{
		Enabled: true, Preset: PresetTopLeft, Ambient: 0.3, Intensity: 1,
		RayCount: 5, RaySpread: 45, RayLength: 0.6, RayIntensity: 1, Seed: 1,
	})
	if len(result.Rays) != 10 {
		t.Fatalf("len(Rays) = %d, want 10 (5 back + 5 front)", len(result.Rays))
	}
	var front, back int
	for _, r := range result.Rays {
		if r.Front {
			front++
		} else {
			back++
		}
	}
	if front != 5 || back != 5 {
		t.Fatalf("front=%d back=%d, want 5 and 5", front, back)
	}
}

func TestApplyGlowProducesOnePerCell(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	cells := makeCells(7, bounds)
	result := Apply(cells, bounds, Settings{
		Enabled: true, Preset: PresetLeft, Ambient: 0.3, Intensity: 1,
		GlowRadius: 20, GlowIntensity: 1, Seed: 2,
	})
	if len(result.Glow) != len(cells) {
		t.Fatalf("len(Glow) = %d, want %d", len(result.Glow), len(cells))
	}
}

func TestApplyIntensityZeroDarkensToBlack(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	cells := makeCells(3, bounds)
	result := Apply(cells, bounds, Settings{
		Enabled: true, Preset: PresetRight, Ambient: 0.3, Intensity: 0, Seed: 3,
	})
	for _, c := range result.Shaded {
		_, _, l := colorutil.ToHSL(c.Color)
		if l > 0.01 {
			t.Fatalf("zero-intensity cell lightness = %v, want near 0", l)
		}
	}
}

func TestBuildRaysBackOriginShiftsTowardLight(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	cells := makeCells(4, bounds)
	lightPos := geom.Point{X: -500, Y: 50}
	settings := Settings{RayCount: 3, RaySpread: 45, RayLength: 0.6, RayIntensity: 1, Seed: 7}
	diagonal := math.Hypot(bounds.Width(), bounds.Height())
	rng := rand.New(rand.NewSource(settings.Seed))

	rays := buildRays(cells, bounds, lightPos, false, diagonal, bounds.Width(), settings, rng)
	if len(rays) == 0 || len(rays)%2 != 0 {
		t.Fatalf("buildRays() produced %d rays, want a positive even count (back/front pairs)", len(rays))
	}

	// rays are appended back,front per cluster in order. rayTrapezoid's
	// base edge is vertices [0] and [3], whose perp offsets cancel, so
	// their midpoint recovers the exact origin point passed in.
	baseOrigin := func(r Ray) geom.Point {
		v0, v3 := r.Polygon[0], r.Polygon[3]
		return geom.Point{X: (v0.X + v3.X) / 2, Y: (v0.Y + v3.Y) / 2}
	}
	for i := 0; i+1 < len(rays); i += 2 {
		back, front := rays[i], rays[i+1]
		if back.Front || !front.Front {
			t.Fatalf("ray pair at index %d not in expected back,front order", i)
		}
		backOrigin := baseOrigin(back)
		frontOrigin := baseOrigin(front) // front ray originates exactly at the cluster centroid
		distBack := math.Hypot(backOrigin.X-lightPos.X, backOrigin.Y-lightPos.Y)
		distFront := math.Hypot(frontOrigin.X-lightPos.X, frontOrigin.Y-lightPos.Y)
		if distBack >= distFront {
			t.Fatalf("back ray origin (dist %v from light) should sit closer to the light than the front ray origin (dist %v)", distBack, distFront)
		}
	}
}

func TestRayAndGlowIntensityIndependentFromMainIntensity(t *testing.T) {
	bounds := geom.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	cells := makeCells(4, bounds)
	result := Apply(cells, bounds, Settings{
		Enabled: true, Preset: PresetLeft, Ambient: 0.3, Intensity: 2,
		RayCount: 3, RaySpread: 45, RayLength: 0.6, RayIntensity: 0.5,
		GlowRadius: 10, GlowIntensity: 0.5, Seed: 4,
	})
	for _, r := range result.Rays {
		if r.Opacity > 0.5+1e-9 {
			t.Fatalf("ray opacity %v exceeds RayIntensity-bounded max of 0.5 despite Intensity=2", r.Opacity)
		}
	}
	const wantGlowOpacity = 0.5 * 0.7 // GlowIntensity * darkFactor(1) * 0.7
	for _, g := range result.Glow {
		if diff := g.Opacity - wantGlowOpacity; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("glow opacity = %v, want %v (GlowIntensity-bounded, independent of Intensity=2)", g.Opacity, wantGlowOpacity)
		}
	}
}

func TestSettingsClampRanges(t *testing.T) {
	s := Settings{
		Elevation: 200, Ambient: 5, Intensity: 10,
		RayCount: 100, RayLength: 10, RayIntensity: 5,
		GlowRadius: 1000, GlowIntensity: 5,
	}.clamp()
	if s.Elevation != 90 || s.Ambient != 1 || s.Intensity != 2 ||
		s.RayCount != 12 || s.RayLength != 2 || s.RayIntensity != 1 ||
		s.GlowRadius != 50 || s.GlowIntensity != 1 {
		t.Fatalf("clamp() = %+v, want all fields at their max", s)
	}
}
