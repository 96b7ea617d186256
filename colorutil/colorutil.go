// Package colorutil provides the RGB<->HSL conversions, the redmean
// perceptual color distance, and small blend helpers shared by color
// sampling, frame synthesis, and lighting. The teacher repo represents
// color with image/color.RGBA; this package uses its own 24-bit RGB
// type instead and adds the HSL math the stained-glass pipeline needs that a raw
// Voronoi renderer never did.
package colorutil

import "math"

// RGB is a 24-bit color, alpha is not tracked by the pipeline because
// the source image's alpha is resolved to opaque white at load time.
type RGB struct {
	R, G, B uint8
}

// Clamp01 restricts v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToHSL converts c to hue in [0,360), saturation and lightness in [0,1].
func ToHSL(c RGB) (h, s, l float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, l
}

// FromHSL converts hue (degrees, any range), saturation and lightness
// in [0,1] back to RGB. Grayscale (s == 0) short-circuits to l*255 on
// every channel, matching the spec's grayscale fast path.
func FromHSL(h, s, l float64) RGB {
	s = Clamp01(s)
	l = Clamp01(l)
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return RGB{v, v, v}
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	hk := h / 360
	r := hueToChannel(p, q, hk+1.0/3)
	g := hueToChannel(p, q, hk)
	b := hueToChannel(p, q, hk-1.0/3)

	return RGB{
		R: uint8(math.Round(Clamp01(r) * 255)),
		G: uint8(math.Round(Clamp01(g) * 255)),
		B: uint8(math.Round(Clamp01(b) * 255)),
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

// AdjustSaturationLightness applies s' = clamp(s*saturation,0,1) and
// l' = clamp(l*brightness,0,1) in HSL space.
func AdjustSaturationLightness(c RGB, saturation, brightness float64) RGB {
	h, s, l := ToHSL(c)
	s = Clamp01(s * saturation)
	l = Clamp01(l * brightness)
	return FromHSL(h, s, l)
}

// HueRotate rotates c's hue by degrees (wrapping into [0,360)).
func HueRotate(c RGB, degrees float64) RGB {
	h, s, l := ToHSL(c)
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	return FromHSL(h, s, l)
}

// AdjustLightness multiplies the lightness channel by the given
// HSL-space scalar factor, clamping to [0,1].
func AdjustLightness(c RGB, factor float64) RGB {
	h, s, l := ToHSL(c)
	return FromHSL(h, s, Clamp01(l*factor))
}

// BoostSaturation multiplies saturation by factor, clamping to [0,1].
func BoostSaturation(c RGB, factor float64) RGB {
	h, s, l := ToHSL(c)
	return FromHSL(h, Clamp01(s*factor), l)
}

// Vibrance returns s*l in HSL space, used to rank ray clusters.
func Vibrance(c RGB) float64 {
	_, s, l := ToHSL(c)
	return s * l
}

// RedmeanDistance computes the perceptually weighted distance between
// two colors:
//
//	sqrt((2+rbar/256)*dr^2 + 4*dg^2 + (2+(255-rbar)/256)*db^2)
func RedmeanDistance(a, b RGB) float64 {
	rbar := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt((2+rbar/256)*dr*dr + 4*dg*dg + (2+(255-rbar)/256)*db*db)
}

// SquaredDistance returns the plain squared-RGB distance used by
// k-means quantization.
func SquaredDistance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

// ParseHex parses a "#rrggbb" or "rrggbb" string into an RGB. Invalid
// input returns black, matching the UI contract of clamping rather
// than rejecting malformed settings.
func ParseHex(hex string) RGB {
	s := hex
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi := hexDigit(s[i*2])
		lo := hexDigit(s[i*2+1])
		if hi < 0 || lo < 0 {
			return RGB{}
		}
		v[i] = uint8(hi<<4 | lo)
	}
	return RGB{v[0], v[1], v[2]}
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// Hex formats c as a lowercase "#rrggbb" string.
func Hex(c RGB) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 7)
	buf[0] = '#'
	buf[1] = hexDigits[c.R>>4]
	buf[2] = hexDigits[c.R&0xf]
	buf[3] = hexDigits[c.G>>4]
	buf[4] = hexDigits[c.G&0xf]
	buf[5] = hexDigits[c.B>>4]
	buf[6] = hexDigits[c.B&0xf]
	return string(buf)
}
