// Package geom holds the small 2D primitives shared by every pipeline
// stage: points, axis-aligned rectangles, and polygon operations
// (area, centroid, point-in-polygon, and Sutherland-Hodgman clipping).
package geom

import "math"

// Point is a location in image coordinates.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle, MinX <= MaxX and MinY <= MaxY.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX-MinX.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY-MinY.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies within r, inclusive of the border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Clamp moves p to the nearest point inside r.
func (r Rect) Clamp(p Point) Point {
	x, y := p.X, p.Y
	if x < r.MinX {
		x = r.MinX
	} else if x > r.MaxX {
		x = r.MaxX
	}
	if y < r.MinY {
		y = r.MinY
	} else if y > r.MaxY {
		y = r.MaxY
	}
	return Point{x, y}
}

// Polygon is a closed sequence of vertices; the edge from the last
// vertex back to the first is implicit (it is not repeated in the
// slice).
type Polygon []Point

// Area returns the signed area of the polygon via the shoelace
// formula; positive for counterclockwise vertex order.
func (poly Polygon) Area() float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Centroid returns the polygon's area centroid. For degenerate
// (zero-area) polygons it falls back to the vertex average.
func (poly Polygon) Centroid() Point {
	n := len(poly)
	if n == 0 {
		return Point{}
	}
	area := poly.Area()
	if math.Abs(area) < 1e-9 {
		var sx, sy float64
		for _, p := range poly {
			sx += p.X
			sy += p.Y
		}
		return Point{sx / float64(n), sy / float64(n)}
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * cross
		cy += (poly[i].Y + poly[j].Y) * cross
	}
	factor := 1 / (6 * area)
	return Point{cx * factor, cy * factor}
}

// BoundingBox returns the smallest Rect enclosing the polygon.
func (poly Polygon) BoundingBox() Rect {
	if len(poly) == 0 {
		return Rect{}
	}
	r := Rect{poly[0].X, poly[0].Y, poly[0].X, poly[0].Y}
	for _, p := range poly[1:] {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r
}

// ContainsPoint reports whether p lies inside the polygon using a ray
// casting test against the horizontal ray extending toward +X.
func (poly Polygon) ContainsPoint(p Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xIntersect := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// DistinctVertexCount returns the number of vertices that are not
// within epsilon of their predecessor, used to detect degenerate
// polygons collapsed by clipping.
func (poly Polygon) DistinctVertexCount() int {
	const eps = 1e-7
	if len(poly) == 0 {
		return 0
	}
	count := 1
	last := poly[0]
	for _, p := range poly[1:] {
		if p.Dist(last) > eps {
			count++
			last = p
		}
	}
	if count > 1 && poly[0].Dist(last) <= eps {
		count--
	}
	return count
}

// ClipToRect clips poly against the axis-aligned rectangle r using the
// Sutherland-Hodgman algorithm. poly may be open (unbounded regions
// are represented by vertices placed far outside r); the result is
// always a closed polygon fully contained in r, possibly empty.
func ClipToRect(poly Polygon, r Rect) Polygon {
	if len(poly) == 0 {
		return nil
	}
	out := clipEdge(poly, func(p Point) bool { return p.X >= r.MinX }, func(a, b Point) Point {
		return lerpX(a, b, r.MinX)
	})
	out = clipEdge(out, func(p Point) bool { return p.X <= r.MaxX }, func(a, b Point) Point {
		return lerpX(a, b, r.MaxX)
	})
	out = clipEdge(out, func(p Point) bool { return p.Y >= r.MinY }, func(a, b Point) Point {
		return lerpY(a, b, r.MinY)
	})
	out = clipEdge(out, func(p Point) bool { return p.Y <= r.MaxY }, func(a, b Point) Point {
		return lerpY(a, b, r.MaxY)
	})
	return out
}

func lerpX(a, b Point, x float64) Point {
	if b.X == a.X {
		return Point{x, a.Y}
	}
	t := (x - a.X) / (b.X - a.X)
	return Point{x, a.Y + t*(b.Y-a.Y)}
}

func lerpY(a, b Point, y float64) Point {
	if b.Y == a.Y {
		return Point{a.X, y}
	}
	t := (y - a.Y) / (b.Y - a.Y)
	return Point{a.X + t*(b.X-a.X), y}
}

func clipEdge(poly Polygon, inside func(Point) bool, intersect func(a, b Point) Point) Polygon {
	if len(poly) == 0 {
		return nil
	}
	out := make(Polygon, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevIn := inside(prev)
	for _, cur := range poly {
		curIn := inside(cur)
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur))
		}
		prev, prevIn = cur, curIn
	}
	return out
}
