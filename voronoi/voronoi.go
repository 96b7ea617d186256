// Package voronoi tessellates a set of seed points into a Voronoi
// diagram clipped to a rectangle, and implements Lloyd relaxation.
// Cells need an explicit polygon for vector emission, so this package
// builds the Delaunay dual (Bowyer-Watson incremental triangulation,
// surrounded by a super-triangle enclosing every seed) and derives
// Voronoi polygons from the circumcenters of the triangles around each
// seed.
package voronoi

import (
	"math"
	"sort"

	"stainedglass/geom"
)

// Cell is a single Voronoi region: its position in the output array,
// its clipped polygon, and its centroid.
type Cell struct {
	Index    int
	Polygon  geom.Polygon
	Centroid geom.Point
}

type triangle struct{ a, b, c int }

func (t triangle) edges() [3][2]int {
	return [3][2]int{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}}
}

func normalizeEdge(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Tessellate computes the Voronoi diagram of points, clipped to clip.
// Degenerate cells (fewer than 3 distinct vertices after clipping) are
// dropped silently. Surviving cells preserve seed ordering and are
// renumbered 0..len(result)-1 to match their position in the result.
func Tessellate(points []geom.Point, clip geom.Rect) []Cell {
	cells, _ := tessellateIndexed(points, clip)
	return cells
}

// tessellateIndexed is the shared implementation behind Tessellate and
// Relax: it returns the surviving cells (renumbered) alongside, for
// every original seed index, a pointer into that result slice (nil if
// the seed's cell was dropped).
func tessellateIndexed(points []geom.Point, clip geom.Rect) ([]Cell, []*Cell) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		poly := geom.ClipToRect(geom.Polygon{
			{clip.MinX, clip.MinY}, {clip.MaxX, clip.MinY},
			{clip.MaxX, clip.MaxY}, {clip.MinX, clip.MaxY},
		}, clip)
		cells := []Cell{{Index: 0, Polygon: poly, Centroid: poly.Centroid()}}
		return cells, []*Cell{&cells[0]}
	}

	tris := delaunay(points, clip)
	incident := make([][]int, n+3)
	for ti, t := range tris {
		for _, v := range [3]int{t.a, t.b, t.c} {
			incident[v] = append(incident[v], ti)
		}
	}
	ext := extendedPoints(points, clip)

	cells := make([]Cell, 0, n)
	byOriginal := make([]*Cell, n)
	for i := 0; i < n; i++ {
		polygon := cellPolygon(i, tris, incident[i], ext)
		clipped := geom.ClipToRect(polygon, clip)
		if clipped.DistinctVertexCount() < 3 {
			continue
		}
		cells = append(cells, Cell{
			Index:    len(cells),
			Polygon:  clipped,
			Centroid: clipped.Centroid(),
		})
		byOriginal[i] = &cells[len(cells)-1]
	}
	// Re-point byOriginal at the final slice's backing array: appends
	// above may have reallocated, invalidating earlier &cells[...]
	// addresses, so rebuild by position.
	cursor := 0
	for i := 0; i < n; i++ {
		if byOriginal[i] == nil {
			continue
		}
		byOriginal[i] = &cells[cursor]
		cursor++
	}
	return cells, byOriginal
}

// Relax performs one Lloyd relaxation pass: p' = 0.3*p + 0.7*centroid.
// Points whose cell was dropped are left unchanged. Callers loop this
// function for as many iterations as configured.
func Relax(points []geom.Point, clip geom.Rect) []geom.Point {
	_, byOriginal := tessellateIndexed(points, clip)
	out := make([]geom.Point, len(points))
	copy(out, points)
	for i, c := range byOriginal {
		if c == nil {
			continue
		}
		out[i] = geom.Point{
			X: 0.3*points[i].X + 0.7*c.Centroid.X,
			Y: 0.3*points[i].Y + 0.7*c.Centroid.Y,
		}
	}
	return out
}

// cellPolygon builds the (possibly unbounded-before-clip) cell polygon
// for real point i: the circumcenters of every triangle incident to
// it, ordered by angle around it.
func cellPolygon(i int, tris []triangle, triIdxs []int, ext []geom.Point) geom.Polygon {
	p := ext[i]
	type centerAngle struct {
		pt    geom.Point
		angle float64
	}
	pts := make([]centerAngle, 0, len(triIdxs))
	for _, ti := range triIdxs {
		t := tris[ti]
		center, _, ok := circumcenter(ext[t.a], ext[t.b], ext[t.c])
		if !ok {
			continue
		}
		angle := math.Atan2(center.Y-p.Y, center.X-p.X)
		pts = append(pts, centerAngle{center, angle})
	}
	sort.Slice(pts, func(a, b int) bool { return pts[a].angle < pts[b].angle })

	poly := make(geom.Polygon, len(pts))
	for k, c := range pts {
		poly[k] = c.pt
	}
	return poly
}

// extendedPoints returns points with three super-triangle vertices
// appended, sized generously around clip so their circumcenters with
// boundary real points land well outside clip after clipping.
func extendedPoints(points []geom.Point, clip geom.Rect) []geom.Point {
	cx, cy := clip.Center().X, clip.Center().Y
	diag := math.Hypot(clip.Width(), clip.Height())
	if diag == 0 {
		diag = 1
	}
	radius := diag * 20
	a := geom.Point{X: cx - radius, Y: cy - radius}
	b := geom.Point{X: cx + 2*radius, Y: cy - radius}
	c := geom.Point{X: cx - radius, Y: cy + 2*radius}

	ext := make([]geom.Point, len(points)+3)
	copy(ext, points)
	ext[len(points)] = a
	ext[len(points)+1] = b
	ext[len(points)+2] = c
	return ext
}

// delaunay performs Bowyer-Watson incremental triangulation over
// points plus a surrounding super-triangle (indices n, n+1, n+2).
func delaunay(points []geom.Point, clip geom.Rect) []triangle {
	n := len(points)
	ext := extendedPoints(points, clip)

	tris := []triangle{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := ext[i]

		var badIdx []int
		for ti, t := range tris {
			if inCircumcircle(p, ext[t.a], ext[t.b], ext[t.c]) {
				badIdx = append(badIdx, ti)
			}
		}
		if len(badIdx) == 0 {
			// No circumcircle strictly contains p, so it coincides with
			// an existing vertex. It is left out of the triangulation:
			// its cell comes out empty and tessellateIndexed drops it as
			// degenerate.
			continue
		}

		edgeCount := map[[2]int]int{}
		for _, ti := range badIdx {
			t := tris[ti]
			for _, e := range t.edges() {
				edgeCount[normalizeEdge(e[0], e[1])]++
			}
		}
		var boundary [][2]int
		for _, ti := range badIdx {
			t := tris[ti]
			for _, e := range t.edges() {
				if edgeCount[normalizeEdge(e[0], e[1])] == 1 {
					boundary = append(boundary, e)
				}
			}
		}

		badSet := make(map[int]bool, len(badIdx))
		for _, ti := range badIdx {
			badSet[ti] = true
		}
		next := make([]triangle, 0, len(tris)-len(badIdx)+len(boundary))
		for ti, t := range tris {
			if !badSet[ti] {
				next = append(next, t)
			}
		}
		for _, e := range boundary {
			next = append(next, triangle{e[0], e[1], i})
		}
		tris = next
	}
	return tris
}

func circumcenter(a, b, c geom.Point) (geom.Point, float64, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-9 {
		return geom.Point{}, 0, false
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	ux := (aa*(b.Y-c.Y) + bb*(c.Y-a.Y) + cc*(a.Y-b.Y)) / d
	uy := (aa*(c.X-b.X) + bb*(a.X-c.X) + cc*(b.X-a.X)) / d
	center := geom.Point{X: ux, Y: uy}
	r2 := (a.X-ux)*(a.X-ux) + (a.Y-uy)*(a.Y-uy)
	return center, r2, true
}

func inCircumcircle(p, a, b, c geom.Point) bool {
	center, r2, ok := circumcenter(a, b, c)
	if !ok {
		return false
	}
	d2 := (p.X-center.X)*(p.X-center.X) + (p.Y-center.Y)*(p.Y-center.Y)
	return d2 < r2-1e-7
}
