// Package frame synthesizes the decorative border around the artwork:
// none/simple/segmented styles, with edge-sampled colors and a
// palette-map -> hue-shift -> saturation/brightness post-processing
// chain, built on the same polygon/color vocabulary as colorsample.
package frame

import (
	"math"

	"stainedglass/colorutil"
	"stainedglass/geom"
	"stainedglass/palette"
	"stainedglass/pixbuf"
)

// Style selects the frame geometry.
type Style int

const (
	None Style = iota
	Simple
	Segmented
)

// Element is one frame polygon plus its fill color.
type Element struct {
	Polygon geom.Polygon
	Color   colorutil.RGB
}

// Params bundles stage-F inputs.
type Params struct {
	Style        Style
	WidthPercent float64 // [2,15], percent of min(W,H)
	CellSize     float64 // [30,150]
	ColorPalette string
	HueShift     float64 // [0,360)
	Saturation   float64 // [0,2]
	Brightness   float64 // [0,2]
}

func (p Params) clamp() Params {
	if p.WidthPercent < 2 {
		p.WidthPercent = 2
	} else if p.WidthPercent > 15 {
		p.WidthPercent = 15
	}
	if p.CellSize < 30 {
		p.CellSize = 30
	} else if p.CellSize > 150 {
		p.CellSize = 150
	}
	if p.HueShift < 0 || p.HueShift >= 360 {
		p.HueShift = math.Mod(math.Mod(p.HueShift, 360)+360, 360)
	}
	if p.Saturation < 0 {
		p.Saturation = 0
	} else if p.Saturation > 2 {
		p.Saturation = 2
	}
	if p.Brightness < 0 {
		p.Brightness = 0
	} else if p.Brightness > 2 {
		p.Brightness = 2
	}
	return p
}

// Result bundles the inner artwork rectangle and the frame elements
// that cover the annulus between it and the full image rectangle.
type Result struct {
	Inner    geom.Rect
	Elements []Element
}

// Synthesize implements component F end to end.
func Synthesize(buf *pixbuf.Buffer, params Params) Result {
	params = params.clamp()
	w, h := float64(buf.Width), float64(buf.Height)

	minSide := w
	if h < minSide {
		minSide = h
	}
	depth := math.Round(minSide * params.WidthPercent / 100)
	inner := geom.Rect{MinX: depth, MinY: depth, MaxX: w - depth, MaxY: h - depth}

	var elements []Element
	switch params.Style {
	case Simple:
		elements = simpleFrame(buf, w, h, depth, inner)
	case Segmented:
		elements = segmentedFrame(buf, w, h, depth, inner, params.CellSize)
	default:
		return Result{Inner: geom.Rect{MinX: 0, MinY: 0, MaxX: w, MaxY: h}}
	}

	pal := palette.Resolve(params.ColorPalette)
	for i, el := range elements {
		c := el.Color
		if pal != nil {
			c = palette.Nearest(c, pal)
		}
		c = colorutil.HueRotate(c, params.HueShift)
		c = colorutil.AdjustSaturationLightness(c, params.Saturation, params.Brightness)
		elements[i].Color = c
	}

	return Result{Inner: inner, Elements: elements}
}

// simpleFrame builds four mitered trapezoids whose outer edge is the
// image border and inner edge is the artwork rectangle, each colored
// by the mean of 10 samples along the corresponding image edge, taken
// at depth+5 into the image.
func simpleFrame(buf *pixbuf.Buffer, w, h, depth float64, inner geom.Rect) []Element {
	d := depth + 5

	top := geom.Polygon{{0, 0}, {w, 0}, {inner.MaxX, inner.MinY}, {inner.MinX, inner.MinY}}
	right := geom.Polygon{{w, 0}, {w, h}, {inner.MaxX, inner.MaxY}, {inner.MaxX, inner.MinY}}
	bottom := geom.Polygon{{w, h}, {0, h}, {inner.MinX, inner.MaxY}, {inner.MaxX, inner.MaxY}}
	left := geom.Polygon{{0, h}, {0, 0}, {inner.MinX, inner.MinY}, {inner.MinX, inner.MaxY}}

	return []Element{
		{Polygon: top, Color: sampleEdge(buf, w, h, d, "top")},
		{Polygon: right, Color: sampleEdge(buf, w, h, d, "right")},
		{Polygon: bottom, Color: sampleEdge(buf, w, h, d, "bottom")},
		{Polygon: left, Color: sampleEdge(buf, w, h, d, "left")},
	}
}

// sampleEdge averages 10 samples along the given image edge at depth
// d into the image.
func sampleEdge(buf *pixbuf.Buffer, w, h, d float64, side string) colorutil.RGB {
	var sumR, sumG, sumB float64
	const n = 10
	for i := 0; i < n; i++ {
		t := (float64(i) + 0.5) / n
		var x, y float64
		switch side {
		case "top":
			x, y = t*w, d
		case "bottom":
			x, y = t*w, h-d
		case "left":
			x, y = d, t*h
		default: // right
			x, y = w-d, t*h
		}
		c := buf.AtRounded(x, y)
		sumR += float64(c.R)
		sumG += float64(c.G)
		sumB += float64(c.B)
	}
	return colorutil.RGB{R: uint8(sumR / n), G: uint8(sumG / n), B: uint8(sumB / n)}
}

// segmentedFrame builds four corner squares of side depth, plus
// evenly-sized top/bottom/left/right segments, each colored by a 7x7
// neighborhood mean sampled at the nearest image edge point (depth+5
// inward) closest to the segment's center.
func segmentedFrame(buf *pixbuf.Buffer, w, h, depth float64, inner geom.Rect, cellSize float64) []Element {
	s := math.Max(cellSize, 20)
	nh := maxInt(1, roundInt((w-2*depth)/s))
	nv := maxInt(1, roundInt((h-2*depth)/s))
	d := depth + 5

	var elements []Element

	// Corners.
	elements = append(elements,
		Element{Polygon: geom.Polygon{{0, 0}, {depth, 0}, {depth, depth}, {0, depth}}, Color: sampleNeighborhood(buf, depth/2, depth/2)},
		Element{Polygon: geom.Polygon{{w - depth, 0}, {w, 0}, {w, depth}, {w - depth, depth}}, Color: sampleNeighborhood(buf, w-depth/2, depth/2)},
		Element{Polygon: geom.Polygon{{w - depth, h - depth}, {w, h - depth}, {w, h}, {w - depth, h}}, Color: sampleNeighborhood(buf, w-depth/2, h-depth/2)},
		Element{Polygon: geom.Polygon{{0, h - depth}, {depth, h - depth}, {depth, h}, {0, h}}, Color: sampleNeighborhood(buf, depth/2, h-depth/2)},
	)

	segW := (w - 2*depth) / float64(nh)
	for i := 0; i < nh; i++ {
		x0 := depth + float64(i)*segW
		x1 := depth + float64(i+1)*segW
		cx := (x0 + x1) / 2
		elements = append(elements,
			Element{Polygon: geom.Polygon{{x0, 0}, {x1, 0}, {x1, depth}, {x0, depth}}, Color: sampleNeighborhood(buf, cx, d)},
			Element{Polygon: geom.Polygon{{x0, h - depth}, {x1, h - depth}, {x1, h}, {x0, h}}, Color: sampleNeighborhood(buf, cx, h-d)},
		)
	}

	segH := (h - 2*depth) / float64(nv)
	for i := 0; i < nv; i++ {
		y0 := depth + float64(i)*segH
		y1 := depth + float64(i+1)*segH
		cy := (y0 + y1) / 2
		elements = append(elements,
			Element{Polygon: geom.Polygon{{0, y0}, {depth, y0}, {depth, y1}, {0, y1}}, Color: sampleNeighborhood(buf, d, cy)},
			Element{Polygon: geom.Polygon{{w - depth, y0}, {w, y0}, {w, y1}, {w - depth, y1}}, Color: sampleNeighborhood(buf, w-d, cy)},
		)
	}

	_ = inner
	return elements
}

// sampleNeighborhood averages a fixed 7x7 window centered at (cx,cy).
func sampleNeighborhood(buf *pixbuf.Buffer, cx, cy float64) colorutil.RGB {
	const radius = 3
	var sumR, sumG, sumB float64
	var count int
	cxi, cyi := int(cx), int(cy)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := buf.At(cxi+dx, cyi+dy)
			sumR += float64(c.R)
			sumG += float64(c.G)
			sumB += float64(c.B)
			count++
		}
	}
	return colorutil.RGB{R: uint8(sumR / float64(count)), G: uint8(sumG / float64(count)), B: uint8(sumB / float64(count))}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
