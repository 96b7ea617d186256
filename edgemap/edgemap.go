// Package edgemap computes the normalized edge-magnitude map that
// drives edge-weighted seed placement and governs later cache
// invalidation, fanning independent per-row work out across a worker
// pool of real parallel goroutines.
package edgemap

import (
	"context"
	"math"
	"sync"

	"stainedglass/pixbuf"
)

// Method selects the edge detector.
type Method int

const (
	Sobel Method = iota
	Canny
)

// Map is a normalized edge-magnitude surface, width*height values in
// [0,1], row-major.
type Map struct {
	Width, Height int
	Values        []float64
}

// At returns the edge value at (x,y), clamping to bounds.
func (m *Map) At(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= m.Width {
		x = m.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.Height {
		y = m.Height - 1
	}
	return m.Values[y*m.Width+x]
}

// Params bundles the stage-B settings.
type Params struct {
	PreBlur     float64 // radius >= 0
	Contrast    float64 // in [0.5, 2.0]
	Method      Method
	Sensitivity float64 // in [0,100]
}

// clamp applies the UI contract: out-of-range values are
// clamped silently at stage entry rather than rejected.
func (p Params) clamp() Params {
	if p.PreBlur < 0 {
		p.PreBlur = 0
	}
	if p.Contrast < 0.5 {
		p.Contrast = 0.5
	} else if p.Contrast > 2.0 {
		p.Contrast = 2.0
	}
	if p.Sensitivity < 0 {
		p.Sensitivity = 0
	} else if p.Sensitivity > 100 {
		p.Sensitivity = 100
	}
	return p
}

// Compute runs grayscale -> blur -> contrast -> (sobel|canny) and
// returns the resulting normalized map. ctx is checked at row
// boundaries inside the row-parallel stages so a stale in-flight run
// can be abandoned cheaply.
func Compute(ctx context.Context, buf *pixbuf.Buffer, params Params) (*Map, error) {
	params = params.clamp()
	w, h := buf.Width, buf.Height

	gray := grayscale(buf)
	blurred := gaussianBlur(ctx, gray, w, h, params.PreBlur)
	contrasted := applyContrast(blurred, params.Contrast)

	switch params.Method {
	case Canny:
		return canny(ctx, contrasted, w, h, params.Sensitivity)
	default:
		return sobel(ctx, contrasted, w, h, params.Sensitivity)
	}
}

// grayscale converts the buffer to luma using Y = 0.299R+0.587G+0.114B.
func grayscale(buf *pixbuf.Buffer) []float64 {
	w, h := buf.Width, buf.Height
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := buf.At(x, y)
			out[y*w+x] = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return out
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel with
// sigma = radius/2 and size 2*ceil(radius)+1.
func gaussianKernel1D(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	sigma := radius / 2
	size := 2*int(math.Ceil(radius)) + 1
	half := size / 2
	kernel := make([]float64, size)
	sum := 0.0
	for i := -half; i <= half; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+half] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies a separable Gaussian blur with clamp-to-edge
// sampling, row-parallel across a worker pool.
func gaussianBlur(ctx context.Context, in []float64, w, h int, radius float64) []float64 {
	if radius <= 0 {
		return in
	}
	kernel := gaussianKernel1D(radius)
	half := len(kernel) / 2

	clampIdx := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v >= max {
			return max - 1
		}
		return v
	}

	horiz := make([]float64, w*h)
	parallelRows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			sum := 0.0
			for k := -half; k <= half; k++ {
				sx := clampIdx(x+k, w)
				sum += in[y*w+sx] * kernel[k+half]
			}
			horiz[y*w+x] = sum
		}
	})

	out := make([]float64, w*h)
	parallelRows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			sum := 0.0
			for k := -half; k <= half; k++ {
				sy := clampIdx(y+k, h)
				sum += horiz[sy*w+x] * kernel[k+half]
			}
			out[y*w+x] = sum
		}
	})
	return out
}

// applyContrast: out = clamp((in-128)*c + 128, 0, 255).
func applyContrast(in []float64, c float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		nv := (v-128)*c + 128
		if nv < 0 {
			nv = 0
		} else if nv > 255 {
			nv = 255
		}
		out[i] = nv
	}
	return out
}

var sobelGx = [3][3]float64{
	{-1, 0, 1},
	{-2, 0, 2},
	{-1, 0, 1},
}
var sobelGy = [3][3]float64{
	{-1, -2, -1},
	{0, 0, 0},
	{1, 2, 1},
}

func sobelGradients(ctx context.Context, in []float64, w, h int) (gx, gy, mag []float64) {
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	mag = make([]float64, w*h)
	parallelRows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			var sx, sy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px := clamp(x+kx, 0, w-1)
					py := clamp(y+ky, 0, h-1)
					v := in[py*w+px]
					sx += v * sobelGx[ky+1][kx+1]
					sy += v * sobelGy[ky+1][kx+1]
				}
			}
			gx[y*w+x] = sx
			gy[y*w+x] = sy
			mag[y*w+x] = math.Sqrt(sx*sx + sy*sy)
		}
	})
	return
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

func sobel(ctx context.Context, in []float64, w, h int, sensitivity float64) (*Map, error) {
	_, _, mag := sobelGradients(ctx, in, w, h)

	maxV := 0.0
	for _, v := range mag {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, w*h)
	if maxV > 0 {
		for i, v := range mag {
			out[i] = v / maxV
		}
	}

	threshold := (100 - sensitivity) / 100 * 0.3
	for i, v := range out {
		if v < threshold {
			out[i] = 0
		}
	}

	return &Map{Width: w, Height: h, Values: out}, nil
}

// canny implements gradient -> non-maximum suppression (binned to
// 0/45/90/135 degrees) -> hysteresis thresholding, producing a binary
// (0/1) edge map.
func canny(ctx context.Context, in []float64, w, h int, sensitivity float64) (*Map, error) {
	gx, gy, mag := sobelGradients(ctx, in, w, h)

	suppressed := make([]float64, w*h)
	parallelRows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				suppressed[idx] = 0
				continue
			}
			angle := math.Atan2(gy[idx], gx[idx]) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var n1, n2 float64
			switch binAngle(angle) {
			case 0:
				n1, n2 = mag[idx-1], mag[idx+1]
			case 45:
				n1, n2 = mag[idx-w+1], mag[idx+w-1]
			case 90:
				n1, n2 = mag[idx-w], mag[idx+w]
			default: // 135
				n1, n2 = mag[idx-w-1], mag[idx+w+1]
			}
			if mag[idx] >= n1 && mag[idx] >= n2 {
				suppressed[idx] = mag[idx]
			}
		}
	})

	low := math.Max(5, 50-0.4*sensitivity)
	high := math.Max(20, 100-0.7*sensitivity)

	strong := make([]bool, w*h)
	weak := make([]bool, w*h)
	for i, v := range suppressed {
		if v >= high {
			strong[i] = true
		} else if v >= low {
			weak[i] = true
		}
	}

	// Promote weak neighbors of strong edges until fixed point.
	changed := true
	for changed {
		changed = false
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				idx := y*w + x
				if !weak[idx] || strong[idx] {
					continue
				}
				if hasStrongNeighbor(strong, w, x, y) {
					strong[idx] = true
					weak[idx] = false
					changed = true
				}
			}
		}
	}

	out := make([]float64, w*h)
	for i, v := range strong {
		if v {
			out[i] = 1
		}
	}
	return &Map{Width: w, Height: h, Values: out}, nil
}

func binAngle(angle float64) int {
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 0
	case angle < 67.5:
		return 45
	case angle < 112.5:
		return 90
	default:
		return 135
	}
}

func hasStrongNeighbor(strong []bool, w, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if strong[(y+dy)*w+(x+dx)] {
				return true
			}
		}
	}
	return false
}

// parallelRows fans work out across a worker pool of rows, cancelling
// early (best-effort) if ctx is done.
func parallelRows(ctx context.Context, rows int, work func(y int)) {
	if ctx == nil {
		ctx = context.Background()
	}
	workers := 8
	if rows < workers {
		workers = rows
	}
	if workers <= 0 {
		return
	}

	rowCh := make(chan int, rows)
	for y := 0; y < rows; y++ {
		rowCh <- y
	}
	close(rowCh)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rowCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				work(y)
			}
		}()
	}
	wg.Wait()
}
