// Package palette implements the closed catalogue of named color
// palettes, redmean nearest-color mapping, and k-means color
// quantization. See DESIGN.md for why this is hand-rolled rather than
// built on an ecosystem palette library.
package palette

import (
	"math/rand"
	"sort"

	"stainedglass/colorutil"
)

// Original is the identity palette identifier: colors pass through
// unmapped.
const Original = "original"

// Named is the closed set of palettes recognized by the pipeline,
// keyed by stable string id. "monochrome-blue" intentionally holds
// exactly 13 colors.
var Named = map[string][]colorutil.RGB{
	"monochrome-blue": {
		{R: 0x03, G: 0x04, B: 0x5e}, {R: 0x06, G: 0x1a, B: 0x40}, {R: 0x09, G: 0x1d, B: 0x87},
		{R: 0x0b, G: 0x31, B: 0x6f}, {R: 0x13, G: 0x48, B: 0xaa}, {R: 0x1a, G: 0x5e, B: 0xc4},
		{R: 0x2b, G: 0x7d, B: 0xd4}, {R: 0x4c, G: 0x9a, B: 0xe0}, {R: 0x72, G: 0xb5, B: 0xe8},
		{R: 0x9c, G: 0xce, B: 0xf0}, {R: 0xc3, G: 0xe2, B: 0xf6}, {R: 0xe4, G: 0xf1, B: 0xfb},
		{R: 0xff, G: 0xff, B: 0xff},
	},
	"autumn": {
		{R: 0x58, G: 0x18, B: 0x08}, {R: 0x8a, G: 0x2a, B: 0x0b}, {R: 0xb8, G: 0x3e, B: 0x0f},
		{R: 0xd9, G: 0x5f, B: 0x1a}, {R: 0xe8, G: 0x87, B: 0x2b}, {R: 0xf0, G: 0xaa, B: 0x47},
		{R: 0xf4, G: 0xc6, B: 0x6f}, {R: 0x6b, G: 0x3a, B: 0x12}, {R: 0x9c, G: 0x5a, B: 0x1e},
	},
	"pastel": {
		{R: 0xf4, G: 0xc6, B: 0xd7}, {R: 0xf9, G: 0xe2, B: 0xae}, {R: 0xc7, G: 0xe9, B: 0xd0},
		{R: 0xb5, G: 0xd8, B: 0xea}, {R: 0xd6, G: 0xc3, B: 0xe8}, {R: 0xfd, G: 0xe2, B: 0xe4},
	},
	"neon": {
		{R: 0xff, G: 0x00, B: 0x6e}, {R: 0xfb, G: 0x5a, B: 0x00}, {R: 0xff, G: 0xd6, B: 0x00},
		{R: 0x8b, G: 0xff, B: 0x00}, {R: 0x00, G: 0xf5, B: 0xd4}, {R: 0x00, G: 0xb8, B: 0xff},
		{R: 0x9b, G: 0x00, B: 0xff},
	},
	"grayscale": {
		{R: 0x00, G: 0x00, B: 0x00}, {R: 0x33, G: 0x33, B: 0x33}, {R: 0x66, G: 0x66, B: 0x66},
		{R: 0x99, G: 0x99, B: 0x99}, {R: 0xcc, G: 0xcc, B: 0xcc}, {R: 0xff, G: 0xff, B: 0xff},
	},
	"sepia": {
		{R: 0x2b, G: 0x1a, B: 0x0e}, {R: 0x4a, G: 0x2f, B: 0x17}, {R: 0x70, G: 0x4a, B: 0x25},
		{R: 0x9c, G: 0x6b, B: 0x3c}, {R: 0xc2, G: 0x96, B: 0x67}, {R: 0xe0, G: 0xc2, B: 0x9c},
		{R: 0xf2, G: 0xe3, B: 0xd0},
	},
	"jewel-tone": {
		{R: 0x4b, G: 0x00, B: 0x82}, {R: 0x00, G: 0x64, B: 0x00}, {R: 0x8b, G: 0x00, B: 0x00},
		{R: 0x00, G: 0x20, B: 0x8b}, {R: 0xb8, G: 0x86, B: 0x0b}, {R: 0x6a, G: 0x0d, B: 0xad},
		{R: 0x0d, G: 0x6a, B: 0x6a},
	},
}

// Resolve returns the palette for id, or nil for Original / unknown
// ids (both mean "pass colors through unmapped").
func Resolve(id string) []colorutil.RGB {
	if id == Original {
		return nil
	}
	return Named[id]
}

// Nearest maps c to the closest color in pal using the redmean
// distance. If pal is empty, c is returned unchanged.
func Nearest(c colorutil.RGB, pal []colorutil.RGB) colorutil.RGB {
	if len(pal) == 0 {
		return c
	}
	best := pal[0]
	bestDist := colorutil.RedmeanDistance(c, best)
	for _, candidate := range pal[1:] {
		d := colorutil.RedmeanDistance(c, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Quantize runs k-means (k=size, fixed 10 iterations, squared-RGB
// distance, centroid init by even stride through colors) and returns,
// for each input color, the RGB of its nearest resulting centroid —
// i.e. len(result) == len(colors).
func Quantize(colors []colorutil.RGB, size int) []colorutil.RGB {
	n := len(colors)
	if n == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if size > n {
		size = n
	}

	centroids := make([]colorutil.RGB, size)
	for i := 0; i < size; i++ {
		stride := i * n / size
		centroids[i] = colors[stride]
	}

	assignment := make([]int, n)
	const iterations = 10
	for iter := 0; iter < iterations; iter++ {
		for i, c := range colors {
			best, bestDist := 0, colorutil.SquaredDistance(c, centroids[0])
			for k := 1; k < size; k++ {
				d := colorutil.SquaredDistance(c, centroids[k])
				if d < bestDist {
					best, bestDist = k, d
				}
			}
			assignment[i] = best
		}

		sumR := make([]float64, size)
		sumG := make([]float64, size)
		sumB := make([]float64, size)
		count := make([]int, size)
		for i, c := range colors {
			k := assignment[i]
			sumR[k] += float64(c.R)
			sumG[k] += float64(c.G)
			sumB[k] += float64(c.B)
			count[k]++
		}
		for k := 0; k < size; k++ {
			if count[k] == 0 {
				continue
			}
			centroids[k] = colorutil.RGB{
				R: uint8(sumR[k] / float64(count[k])),
				G: uint8(sumG[k] / float64(count[k])),
				B: uint8(sumB[k] / float64(count[k])),
			}
		}
	}

	out := make([]colorutil.RGB, n)
	for i, c := range colors {
		best, bestDist := 0, colorutil.SquaredDistance(c, centroids[0])
		for k := 1; k < size; k++ {
			if d := colorutil.SquaredDistance(c, centroids[k]); d < bestDist {
				best, bestDist = k, d
			}
		}
		out[i] = centroids[best]
	}
	return out
}

// SortedKeys is used by callers that want deterministic iteration over
// Named (e.g. CLI help text).
func SortedKeys() []string {
	keys := make([]string, 0, len(Named)+1)
	keys = append(keys, Original)
	for k := range Named {
		keys = append(keys, k)
	}
	sort.Strings(keys[1:])
	return keys
}

// ShuffledSample is a small helper kept for callers that want to
// preview a palette's colors in a random but seeded order (used by the
// CLI's --list-palettes demo mode).
func ShuffledSample(id string, rng *rand.Rand) []colorutil.RGB {
	pal := Resolve(id)
	out := make([]colorutil.RGB, len(pal))
	copy(out, pal)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
