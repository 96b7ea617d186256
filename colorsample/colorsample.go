// Package colorsample implements per-cell color sampling: exact/
// average/palette modes, k-means palette quantization, named-palette
// mapping, and HSL saturation/brightness adjustment, sampled directly
// from the source image in a fixed processing order.
package colorsample

import (
	"stainedglass/colorutil"
	"stainedglass/geom"
	"stainedglass/palette"
	"stainedglass/pixbuf"
	"stainedglass/voronoi"
)

// Mode selects how a cell's raw color is derived from the image.
type Mode int

const (
	Exact Mode = iota
	Average
	Palette
)

// Params bundles stage-E inputs.
type Params struct {
	Mode        Mode
	PaletteSize int     // [4,64], only used by Palette mode
	Saturation  float64 // [0,2]
	Brightness  float64 // [0,2]
	ColorPalette string // palette id, "original" = no mapping
}

func (p Params) clamp() Params {
	if p.PaletteSize < 4 {
		p.PaletteSize = 4
	} else if p.PaletteSize > 64 {
		p.PaletteSize = 64
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

// ColoredCell is a Voronoi cell with a sampled, adjusted color.
type ColoredCell struct {
	Polygon geom.Polygon
	Color   colorutil.RGB
}

// Sample implements color sampling end to end: raw sample -> (palette
// quantization) -> (named-palette mapping) -> HSL adjustment. That
// order is fixed and must not be reordered.
func Sample(buf *pixbuf.Buffer, cells []voronoi.Cell, params Params) []ColoredCell {
	params = params.clamp()

	raw := make([]colorutil.RGB, len(cells))
	for i, cell := range cells {
		raw[i] = sampleRaw(buf, cell, params.Mode)
	}

	quantized := raw
	if params.Mode == Palette {
		quantized = palette.Quantize(raw, params.PaletteSize)
	}

	mapped := quantized
	if pal := palette.Resolve(params.ColorPalette); pal != nil {
		mapped = make([]colorutil.RGB, len(quantized))
		for i, c := range quantized {
			mapped[i] = palette.Nearest(c, pal)
		}
	}

	out := make([]ColoredCell, len(cells))
	for i, cell := range cells {
		out[i] = ColoredCell{
			Polygon: cell.Polygon,
			Color:   colorutil.AdjustSaturationLightness(mapped[i], params.Saturation, params.Brightness),
		}
	}
	return out
}

func sampleRaw(buf *pixbuf.Buffer, cell voronoi.Cell, mode Mode) colorutil.RGB {
	switch mode {
	case Average:
		if c, ok := averageOverPolygon(buf, cell.Polygon); ok {
			return c
		}
		fallthrough
	default:
		return buf.AtRounded(cell.Centroid.X, cell.Centroid.Y)
	}
}

// averageOverPolygon computes the pixel mean over the polygon's
// bounding box, counting pixels whose center (x+0.5, y+0.5) is inside
// the polygon. Returns ok=false on an empty intersection, signalling
// the caller to fall back to exact sampling.
func averageOverPolygon(buf *pixbuf.Buffer, poly geom.Polygon) (colorutil.RGB, bool) {
	bb := poly.BoundingBox()
	x0 := clampInt(int(bb.MinX), 0, buf.Width-1)
	x1 := clampInt(int(bb.MaxX)+1, 0, buf.Width)
	y0 := clampInt(int(bb.MinY), 0, buf.Height-1)
	y1 := clampInt(int(bb.MaxY)+1, 0, buf.Height)

	var sumR, sumG, sumB float64
	var count int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := geom.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if !poly.ContainsPoint(p) {
				continue
			}
			c := buf.At(x, y)
			sumR += float64(c.R)
			sumG += float64(c.G)
			sumB += float64(c.B)
			count++
		}
	}
	if count == 0 {
		return colorutil.RGB{}, false
	}
	return colorutil.RGB{
		R: uint8(sumR / float64(count)),
		G: uint8(sumG / float64(count)),
		B: uint8(sumB / float64(count)),
	}, true
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
