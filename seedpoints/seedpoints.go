// Package seedpoints generates the seed-point sets consumed by the
// Voronoi stage: uniform, Poisson-disk (Bridson), and edge-weighted
// sampling, each taking an explicit *rand.Rand for deterministic
// output.
package seedpoints

import (
	"math"
	"math/rand"
	"sort"

	"stainedglass/edgemap"
	"stainedglass/geom"
)

// Distribution selects the seed placement strategy.
type Distribution int

const (
	Uniform Distribution = iota
	Poisson
	EdgeWeighted
)

// Params bundles stage-C inputs.
type Params struct {
	Count         int
	Distribution  Distribution
	EdgeInfluence float64 // [0,1], only used by EdgeWeighted
}

// Generate produces exactly Count points strictly within clip (after
// clamping), using rng for all randomness. edges, when non-nil, is
// addressed in full-image coordinates; clip describes the region (in
// full-image coordinates too) that generated points must land in —
// this lets a clip-rect offset be applied without re-deriving the
// edge map.
func Generate(rng *rand.Rand, clip geom.Rect, params Params, edges *edgemap.Map) []geom.Point {
	n := params.Count
	if n <= 0 {
		return nil
	}

	var pts []geom.Point
	switch params.Distribution {
	case Poisson:
		pts = poissonDisk(rng, clip, n)
	case EdgeWeighted:
		pts = edgeWeighted(rng, clip, n, params.EdgeInfluence, edges)
	default:
		pts = uniform(rng, clip, n)
	}

	// Invariant: exactly n points, each strictly within clip.
	for i := range pts {
		pts[i] = clampStrict(clip, pts[i])
	}
	for len(pts) < n {
		pts = append(pts, clampStrict(clip, uniform(rng, clip, 1)[0]))
	}
	if len(pts) > n {
		pts = pts[:n]
	}
	return pts
}

func clampStrict(clip geom.Rect, p geom.Point) geom.Point {
	const eps = 1e-6
	x, y := p.X, p.Y
	if x <= clip.MinX {
		x = clip.MinX + eps
	}
	if x >= clip.MaxX {
		x = clip.MaxX - eps
	}
	if y <= clip.MinY {
		y = clip.MinY + eps
	}
	if y >= clip.MaxY {
		y = clip.MaxY - eps
	}
	return geom.Point{X: x, Y: y}
}

func uniform(rng *rand.Rand, clip geom.Rect, n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = geom.Point{
			X: clip.MinX + rng.Float64()*clip.Width(),
			Y: clip.MinY + rng.Float64()*clip.Height(),
		}
	}
	return pts
}

// poissonDisk implements Bridson's algorithm: minimum distance
// r = 0.8*sqrt(area/(pi*N)), background grid of cell side r/sqrt(2),
// up to k=30 candidates per active point.
func poissonDisk(rng *rand.Rand, clip geom.Rect, n int) []geom.Point {
	area := clip.Width() * clip.Height()
	if area <= 0 || n <= 0 {
		return nil
	}
	r := 0.8 * math.Sqrt(area/(math.Pi*float64(n)))
	if r <= 0 {
		return uniform(rng, clip, n)
	}
	cellSize := r / math.Sqrt2

	gridW := int(clip.Width()/cellSize) + 1
	gridH := int(clip.Height()/cellSize) + 1
	grid := make([][]int, gridW*gridH) // stores indices into points

	gridIndex := func(p geom.Point) (int, int) {
		gx := int((p.X - clip.MinX) / cellSize)
		gy := int((p.Y - clip.MinY) / cellSize)
		if gx < 0 {
			gx = 0
		} else if gx >= gridW {
			gx = gridW - 1
		}
		if gy < 0 {
			gy = 0
		} else if gy >= gridH {
			gy = gridH - 1
		}
		return gx, gy
	}

	var points []geom.Point
	addPoint := func(p geom.Point) {
		points = append(points, p)
		gx, gy := gridIndex(p)
		idx := gy*gridW + gx
		grid[idx] = append(grid[idx], len(points)-1)
	}

	tooClose := func(p geom.Point) bool {
		gx, gy := gridIndex(p)
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				nx, ny := gx+dx, gy+dy
				if nx < 0 || ny < 0 || nx >= gridW || ny >= gridH {
					continue
				}
				for _, idx := range grid[ny*gridW+nx] {
					if points[idx].Dist(p) < r {
						return true
					}
				}
			}
		}
		return false
	}

	start := geom.Point{
		X: clip.MinX + rng.Float64()*clip.Width(),
		Y: clip.MinY + rng.Float64()*clip.Height(),
	}
	addPoint(start)
	active := []int{0}

	for len(active) > 0 && len(points) < 2*n {
		ai := rng.Intn(len(active))
		base := points[active[ai]]

		accepted := false
		for k := 0; k < 30; k++ {
			dist := r + rng.Float64()*r
			angle := rng.Float64() * 2 * math.Pi
			cand := geom.Point{
				X: base.X + dist*math.Cos(angle),
				Y: base.Y + dist*math.Sin(angle),
			}
			if !clip.Contains(cand) || tooClose(cand) {
				continue
			}
			addPoint(cand)
			active = append(active, len(points)-1)
			accepted = true
			break
		}
		if !accepted {
			active = append(active[:ai], active[ai+1:]...)
		}
	}

	if len(points) > n {
		points = points[:n]
	}
	for len(points) < n {
		points = append(points, uniform(rng, clip, 1)[0])
	}
	return points
}

// edgeWeighted builds a prefix sum over the edge map, restricted to
// the pixels that fall inside clip, and binary searches it for each
// of n draws. The edge map is always addressed in
// full-image coordinates; when clip is a sub-rectangle (a frame inset
// offsets it away from the image origin) the sampled indices already
// land inside it, since clip itself is expressed in full-image
// coordinates, so no further translation is needed.
func edgeWeighted(rng *rand.Rand, clip geom.Rect, n int, influence float64, edges *edgemap.Map) []geom.Point {
	if edges == nil {
		return uniform(rng, clip, n)
	}

	w, h := edges.Width, edges.Height
	x0 := clamp(int(clip.MinX), 0, w-1)
	x1 := clamp(int(clip.MaxX), x0+1, w)
	y0 := clamp(int(clip.MinY), 0, h-1)
	y1 := clamp(int(clip.MaxY), y0+1, h)

	type cell struct{ x, y int }
	var cells []cell
	var prefix []float64
	total := 0.0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			e := edges.At(x, y)
			weight := (1 - influence) + influence*(e+0.1)
			total += weight
			cells = append(cells, cell{x, y})
			prefix = append(prefix, total)
		}
	}
	if len(cells) == 0 {
		return uniform(rng, clip, n)
	}

	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		u := rng.Float64() * total
		idx := sort.Search(len(prefix), func(k int) bool { return prefix[k] >= u })
		if idx >= len(cells) {
			idx = len(cells) - 1
		}
		px := float64(cells[idx].x) + (rng.Float64() - 0.5)
		py := float64(cells[idx].y) + (rng.Float64() - 0.5)
		pts[i] = geom.Point{X: px, Y: py}
	}
	return pts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
