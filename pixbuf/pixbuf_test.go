package pixbuf

import (
	"image"
	"image/color"
	"testing"

	"stainedglass/colorutil"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImageSolidRed(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{R: 255, A: 255})
	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	if buf.Width != 4 || buf.Height != 4 {
		t.Fatalf("buffer dims = %dx%d, want 4x4", buf.Width, buf.Height)
	}
	c := buf.At(2, 2)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("At(2,2) = %v, want pure red", c)
	}
}

func TestFromImageTransparentResolvesToWhite(t *testing.T) {
	img := solidImage(2, 2, color.RGBA{})
	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	c := buf.At(0, 0)
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Fatalf("transparent pixel = %v, want white", c)
	}
}

func TestFromImageEmptyReturnsError(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := FromImage(img); err != ErrEmptyImage {
		t.Fatalf("FromImage(empty) error = %v, want ErrEmptyImage", err)
	}
}

func TestFromImageShrinksOverMaxDimension(t *testing.T) {
	img := solidImage(MaxDimension+100, 50, color.RGBA{G: 255, A: 255})
	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	if buf.Width > MaxDimension || buf.Height > MaxDimension {
		t.Fatalf("buffer dims = %dx%d, want <= %d", buf.Width, buf.Height, MaxDimension)
	}
	wantAspect := float64(img.Bounds().Dx()) / float64(img.Bounds().Dy())
	gotAspect := float64(buf.Width) / float64(buf.Height)
	// Both sides round to whole pixels, so compare relative to the ratio:
	// 2148x50 scales to 2048x48, an aspect of 42.667 against 42.960.
	if rel := (wantAspect - gotAspect) / wantAspect; rel > 0.01 || rel < -0.01 {
		t.Fatalf("aspect ratio not preserved within 1%%: want %.3f got %.3f", wantAspect, gotAspect)
	}
}

func TestAtClampsOutOfBounds(t *testing.T) {
	img := solidImage(3, 3, color.RGBA{B: 255, A: 255})
	buf, _ := FromImage(img)
	c := buf.At(-5, 100)
	if c.B != 255 {
		t.Fatalf("out-of-bounds At() = %v, want clamped blue pixel", c)
	}
}

func TestEachVisitsEveryPixel(t *testing.T) {
	img := solidImage(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	buf, _ := FromImage(img)
	count := 0
	buf.Each(func(x, y int, c colorutil.RGB) {
		count++
		if c.R != 10 || c.G != 20 || c.B != 30 {
			t.Fatalf("Each pixel (%d,%d) = %v, want {10 20 30}", x, y, c)
		}
	})
	if count != 6 {
		t.Fatalf("Each visited %d pixels, want 6", count)
	}
}
