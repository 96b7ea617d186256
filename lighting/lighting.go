// Package lighting implements transmitted-light shading, ray geometry,
// and the glow layer. It shares the polygon/geometry vocabulary used by
// voronoi and colorsample, built from small, explicitly-parameterized
// structs over implicit global state, with an explicit *rand.Rand for
// deterministic ray placement.
package lighting

import (
	"math"
	"math/rand"
	"sort"

	"stainedglass/colorsample"
	"stainedglass/colorutil"
	"stainedglass/geom"
)

// Preset selects a canned light source angle: left=0, bottom-left=45,
// ..., top-left=315, measured clockwise from the positive X axis in
// image coordinates.
type Preset int

const (
	PresetLeft Preset = iota
	PresetBottomLeft
	PresetBottom
	PresetBottomRight
	PresetRight
	PresetTopRight
	PresetTop
	PresetTopLeft
	PresetCenter
	PresetCustom
)

var presetDegrees = map[Preset]float64{
	PresetLeft:        0,
	PresetBottomLeft:  45,
	PresetBottom:      90,
	PresetBottomRight: 135,
	PresetRight:       180,
	PresetTopRight:    225,
	PresetTop:         270,
	PresetTopLeft:     315,
}

// Settings bundles stage-G inputs.
type Settings struct {
	Enabled       bool
	Preset        Preset
	CustomAngle   float64 // degrees, only used by PresetCustom
	Elevation     float64 // degrees, [0,90]
	Ambient       float64 // [0,1]
	Intensity     float64 // [0,2]
	RayCount      int     // [3,12]
	RaySpread     float64 // degrees, nominal 45
	RayLength     float64 // [0,2], multiple of the image diagonal
	RayIntensity  float64 // [0,1], ray opacity multiplier
	GlowRadius    float64 // [0,50], Gaussian-blur sigma multiplier
	GlowIntensity float64 // [0,1], glow opacity multiplier
	DarkMode      bool
	Seed          int64
}

func (s Settings) clamp() Settings {
	if s.Elevation < 0 {
		s.Elevation = 0
	} else if s.Elevation > 90 {
		s.Elevation = 90
	}
	if s.Ambient < 0 {
		s.Ambient = 0
	} else if s.Ambient > 1 {
		s.Ambient = 1
	}
	if s.Intensity < 0 {
		s.Intensity = 0
	} else if s.Intensity > 2 {
		s.Intensity = 2
	}
	if s.RayCount != 0 {
		if s.RayCount < 3 {
			s.RayCount = 3
		} else if s.RayCount > 12 {
			s.RayCount = 12
		}
	}
	if s.RayLength < 0 {
		s.RayLength = 0
	} else if s.RayLength > 2 {
		s.RayLength = 2
	}
	if s.RayIntensity < 0 {
		s.RayIntensity = 0
	} else if s.RayIntensity > 1 {
		s.RayIntensity = 1
	}
	if s.GlowRadius < 0 {
		s.GlowRadius = 0
	} else if s.GlowRadius > 50 {
		s.GlowRadius = 50
	}
	if s.GlowIntensity < 0 {
		s.GlowIntensity = 0
	} else if s.GlowIntensity > 1 {
		s.GlowIntensity = 1
	}
	return s
}

// angleDegrees resolves the effective light angle; PresetCenter has no
// direction and is handled separately by callers.
func (s Settings) angleDegrees() float64 {
	if s.Preset == PresetCustom {
		return s.CustomAngle
	}
	return presetDegrees[s.Preset]
}

// Ray is a single light-ray trapezoid layered either behind or in
// front of the artwork, with a linear gradient from BrightColor at the
// origin to zero alpha at the far end.
type Ray struct {
	Polygon     geom.Polygon
	BrightColor colorutil.RGB
	Opacity     float64
	Front       bool // front rays render soft-light/screen above the artwork
}

// Glow is one cell's saturation-boosted glow polygon.
type Glow struct {
	Polygon geom.Polygon
	Color   colorutil.RGB
	Opacity float64
}

// Result bundles every lighting output. GlowBlurSigma is carried
// alongside so the vector emitter can build the matching glow filter
// def; the ray-blur filter's deviation is fixed by the emitter.
type Result struct {
	Shaded        []colorsample.ColoredCell
	Rays          []Ray
	Glow          []Glow
	GlowBlurSigma float64
}

// Apply implements component G end to end. cells must already be
// colored by colorsample.Sample; bounds is the artwork rectangle
// (frame.Result.Inner).
func Apply(cells []colorsample.ColoredCell, bounds geom.Rect, settings Settings) Result {
	if !settings.Enabled {
		return Result{Shaded: cells}
	}
	settings = settings.clamp()
	center := bounds.Center()
	diagonal := math.Hypot(bounds.Width(), bounds.Height())
	W := bounds.Width()

	isCenter := settings.Preset == PresetCenter
	angleRad := settings.angleDegrees() * math.Pi / 180
	// Light source sits 2*max(W,H) outside the image along the angle
	// from the image center; center mode places it at the center.
	maxSide := math.Max(bounds.Width(), bounds.Height())
	var lightPos geom.Point
	var n geom.Point // unit vector from image center toward the light
	if isCenter {
		lightPos = center
	} else {
		n = geom.Point{X: math.Cos(angleRad), Y: math.Sin(angleRad)}
		lightPos = geom.Point{X: center.X + n.X*2*maxSide, Y: center.Y + n.Y*2*maxSide}
	}
	shaded := make([]colorsample.ColoredCell, len(cells))
	for i, cell := range cells {
		b := transmission(cell, center, n, diagonal, isCenter, settings.Elevation, settings.Ambient, settings.Intensity)
		shaded[i] = colorsample.ColoredCell{
			Polygon: cell.Polygon,
			Color:   colorutil.AdjustLightness(cell.Color, b),
		}
	}

	result := Result{Shaded: shaded}
	if settings.RayCount > 0 {
		rng := rand.New(rand.NewSource(settings.Seed))
		result.Rays = buildRays(shaded, bounds, lightPos, isCenter, diagonal, W, settings, rng)
	}
	if settings.GlowRadius > 0 {
		darkFactor := 1.0
		if settings.DarkMode {
			darkFactor = 1.5
		}
		glowOpacity := settings.GlowIntensity * darkFactor * 0.7
		result.Glow = buildGlow(shaded, glowOpacity)
		result.GlowBlurSigma = settings.GlowRadius * settings.GlowIntensity
	}
	return result
}

// transmission computes the per-cell brightness contribution from a light source.
func transmission(cell colorsample.ColoredCell, center, n geom.Point, diagonal float64, isCenter bool, elevation, ambient, intensity float64) float64 {
	var b float64
	if isCenter {
		b = 0.5 + 0.5*(elevation/90)
	} else {
		c := cell.Polygon.Centroid()
		offset := geom.Point{X: c.X - center.X, Y: c.Y - center.Y}
		p := (offset.X*n.X + offset.Y*n.Y) / (diagonal / 2)
		p = (p + 1) / 2
		base := 0.3 + 0.7*p
		gradient := 1 - 0.7*(elevation/90)
		b = 0.5 + (base-0.5)*gradient
		b = colorutil.Clamp01(b)
		if b < 0.2 {
			b = 0.2
		}
	}
	return (ambient + (1-ambient)*b) * intensity
}

type cluster struct {
	centroid geom.Point
	color    colorutil.RGB
	vibrance float64
}

// buildRays grids colored cells into clusters, ranks by vibrance, and
// emits back/front ray pairs for the top rayCount clusters.
func buildRays(cells []colorsample.ColoredCell, bounds geom.Rect, lightPos geom.Point, isCenter bool, diagonal, W float64, settings Settings, rng *rand.Rand) []Ray {
	g := int(math.Ceil(math.Sqrt(2 * float64(settings.RayCount))))
	if g < 1 {
		g = 1
	}
	cellW := bounds.Width() / float64(g)
	cellH := bounds.Height() / float64(g)

	type bucket struct {
		sumX, sumY   float64
		sumR, sumG, sumB float64
		count        int
	}
	buckets := map[[2]int]*bucket{}
	for _, cell := range cells {
		c := cell.Polygon.Centroid()
		gx := int((c.X - bounds.MinX) / cellW)
		gy := int((c.Y - bounds.MinY) / cellH)
		gx = clampInt(gx, 0, g-1)
		gy = clampInt(gy, 0, g-1)
		key := [2]int{gx, gy}
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.sumX += c.X
		bk.sumY += c.Y
		bk.sumR += float64(cell.Color.R)
		bk.sumG += float64(cell.Color.G)
		bk.sumB += float64(cell.Color.B)
		bk.count++
	}

	clusters := make([]cluster, 0, len(buckets))
	for key, bk := range buckets {
		n := float64(bk.count)
		col := colorutil.RGB{R: uint8(bk.sumR / n), G: uint8(bk.sumG / n), B: uint8(bk.sumB / n)}
		cx := bounds.MinX + (float64(key[0])+0.5)*cellW
		cy := bounds.MinY + (float64(key[1])+0.5)*cellH
		clusters = append(clusters, cluster{
			centroid: geom.Point{X: cx, Y: cy},
			color:    col,
			vibrance: colorutil.Vibrance(col),
		})
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].vibrance > clusters[j].vibrance })

	count := settings.RayCount
	if count > len(clusters) {
		count = len(clusters)
	}
	clusters = clusters[:count]

	spread := settings.RaySpread
	if spread == 0 {
		spread = 45
	}
	bw := (W / float64(settings.RayCount)) * (spread / 45)
	frontLength := diagonal * settings.RayLength
	backLength := 0.25 * frontLength

	rays := make([]Ray, 0, 2*len(clusters))
	for i, cl := range clusters {
		var dir geom.Point
		if isCenter {
			theta := (float64(i) / float64(settings.RayCount)) * 2 * math.Pi
			dir = geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
		} else {
			theta := math.Atan2(cl.centroid.Y-lightPos.Y, cl.centroid.X-lightPos.X)
			dir = geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
		}
		perp := geom.Point{X: -dir.Y, Y: dir.X}

		backOrigin := geom.Point{X: cl.centroid.X - dir.X*0.3*backLength, Y: cl.centroid.Y - dir.Y*0.3*backLength}
		u := rng.Float64() * 0.5
		backWidth := 0.7 * bw * (0.5 + u)
		backLen := backLength * (0.7 + rng.Float64()*0.3)
		bright := colorutil.AdjustLightness(cl.color, 1.4)

		rays = append(rays, Ray{
			Polygon:     rayTrapezoid(backOrigin, dir, perp, backWidth, backLen),
			BrightColor: bright,
			Opacity:     0.8 * settings.RayIntensity,
			Front:       false,
		})

		frontWidth := bw * (0.5 + rng.Float64()*0.5)
		frontLen := frontLength * (0.7 + rng.Float64()*0.3)
		rays = append(rays, Ray{
			Polygon:     rayTrapezoid(cl.centroid, dir, perp, frontWidth, frontLen),
			BrightColor: bright,
			Opacity:     0.5 * settings.RayIntensity,
			Front:       true,
		})
	}
	return rays
}

// rayTrapezoid builds a trapezoid from origin extending length along
// dir, narrowing from width at the base to half-width at the tip.
func rayTrapezoid(origin, dir, perp geom.Point, width, length float64) geom.Polygon {
	tip := geom.Point{X: origin.X + dir.X*length, Y: origin.Y + dir.Y*length}
	return geom.Polygon{
		{X: origin.X + perp.X*width/2, Y: origin.Y + perp.Y*width/2},
		{X: tip.X + perp.X*width/4, Y: tip.Y + perp.Y*width/4},
		{X: tip.X - perp.X*width/4, Y: tip.Y - perp.Y*width/4},
		{X: origin.X - perp.X*width/2, Y: origin.Y - perp.Y*width/2},
	}
}

// buildGlow emits one glow polygon per cell, reusing the cell's own
// polygon with saturation boosted by 1.3.
func buildGlow(cells []colorsample.ColoredCell, opacity float64) []Glow {
	glows := make([]Glow, len(cells))
	for i, cell := range cells {
		glows[i] = Glow{
			Polygon: cell.Polygon,
			Color:   colorutil.BoostSaturation(cell.Color, 1.3),
			Opacity: opacity,
		}
	}
	return glows
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
