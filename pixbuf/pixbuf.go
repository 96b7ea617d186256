// Package pixbuf holds the decoded pixel surface the rest of the
// pipeline operates on: a flat row-major RGBA byte slice extracted
// from a decoded image.Image, with bounds-checked addressing and an
// area-preserving downscale contract for oversized inputs.
package pixbuf

import (
	"errors"
	"image"

	"golang.org/x/image/draw"

	"stainedglass/colorutil"
)

// MaxDimension is the longest-side contract: any input is shrunk so
// that max(width,height) <= MaxDimension before the pipeline touches
// it, because every downstream stage is O(area).
const MaxDimension = 2048

// Buffer is a decoded RGBA surface addressed row-major, four bytes per
// pixel. Alpha is decoded but treated as opaque: transparent source
// pixels behave as white.
type Buffer struct {
	Width, Height int
	Pix           []uint8
}

// ErrEmptyImage is returned when the input has zero area.
var ErrEmptyImage = errors.New("pixbuf: image has zero width or height")

// FromImage copies img into a Buffer, resolving alpha to opaque white
// and shrinking the result so its longest side is at most
// MaxDimension, preserving aspect ratio.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	if longest := max(w, h); longest > MaxDimension {
		scale := float64(MaxDimension) / float64(longest)
		nw := int(float64(w)*scale + 0.5)
		nh := int(float64(h)*scale + 0.5)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		resized := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
		bounds = resized.Bounds()
		w, h = nw, nh
	}

	buf := &Buffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pos := (y*w + x) * 4
			if a == 0 {
				// Fully transparent pixels resolve to white.
				buf.Pix[pos] = 255
				buf.Pix[pos+1] = 255
				buf.Pix[pos+2] = 255
				buf.Pix[pos+3] = 255
				continue
			}
			// Un-premultiply: image.Image.At returns alpha-premultiplied
			// 16-bit channels.
			buf.Pix[pos] = uint8(r * 0xff / a)
			buf.Pix[pos+1] = uint8(g * 0xff / a)
			buf.Pix[pos+2] = uint8(b * 0xff / a)
			buf.Pix[pos+3] = 255
		}
	}
	return buf, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// At returns the pixel at (x,y), clamping out-of-bounds coordinates to
// the buffer's edge.
func (b *Buffer) At(x, y int) colorutil.RGB {
	if x < 0 {
		x = 0
	} else if x >= b.Width {
		x = b.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= b.Height {
		y = b.Height - 1
	}
	pos := (y*b.Width + x) * 4
	return colorutil.RGB{R: b.Pix[pos], G: b.Pix[pos+1], B: b.Pix[pos+2]}
}

// AtRounded samples the pixel nearest to (x,y), clamping to bounds.
func (b *Buffer) AtRounded(x, y float64) colorutil.RGB {
	return b.At(int(x+0.5), int(y+0.5))
}

// Each calls fn for every pixel in row-major order.
func (b *Buffer) Each(fn func(x, y int, c colorutil.RGB)) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			fn(x, y, b.At(x, y))
		}
	}
}
