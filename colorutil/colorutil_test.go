package colorutil

import (
	"math"
	"testing"
)

func TestHSLRoundTrip(t *testing.T) {
	cases := []RGB{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{128, 64, 200},
		{10, 10, 10},
	}
	for _, c := range cases {
		h, s, l := ToHSL(c)
		got := FromHSL(h, s, l)
		if diff(got.R, c.R) > 1 || diff(got.G, c.G) > 1 || diff(got.B, c.B) > 1 {
			t.Errorf("round trip %v -> (%v,%v,%v) -> %v, want within 1", c, h, s, l, got)
		}
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestGrayscaleFastPath(t *testing.T) {
	got := FromHSL(0, 0, 0.5)
	want := uint8(math.Round(0.5 * 255))
	if got.R != want || got.G != want || got.B != want {
		t.Fatalf("FromHSL(0,0,0.5) = %v, want gray %d", got, want)
	}
}

func TestHueRotateWraps(t *testing.T) {
	c := RGB{255, 0, 0}
	got := HueRotate(c, 720)
	h, _, _ := ToHSL(got)
	if h < 0 || h >= 360 {
		t.Fatalf("HueRotate hue out of range: %v", h)
	}
}

func TestRedmeanDistanceZeroForIdenticalColors(t *testing.T) {
	c := RGB{10, 20, 30}
	if d := RedmeanDistance(c, c); d != 0 {
		t.Fatalf("RedmeanDistance(c,c) = %v, want 0", d)
	}
}

func TestRedmeanDistanceSymmetric(t *testing.T) {
	a, b := RGB{255, 0, 0}, RGB{0, 0, 255}
	if RedmeanDistance(a, b) != RedmeanDistance(b, a) {
		t.Fatal("RedmeanDistance should be symmetric")
	}
}

func TestParseHexAndHexRoundTrip(t *testing.T) {
	c := ParseHex("#1a2b3c")
	if c != (RGB{0x1a, 0x2b, 0x3c}) {
		t.Fatalf("ParseHex = %v, want {1a 2b 3c}", c)
	}
	if got := Hex(c); got != "#1a2b3c" {
		t.Fatalf("Hex() = %s, want #1a2b3c", got)
	}
}

func TestParseHexInvalidReturnsBlack(t *testing.T) {
	if got := ParseHex("not-a-color"); got != (RGB{}) {
		t.Fatalf("ParseHex(invalid) = %v, want zero value", got)
	}
}

func TestAdjustSaturationLightnessClamps(t *testing.T) {
	c := RGB{200, 50, 50}
	got := AdjustSaturationLightness(c, 5, 5)
	_, s, l := ToHSL(got)
	if s > 1.0001 || l > 1.0001 {
		t.Fatalf("expected clamped saturation/lightness, got s=%v l=%v", s, l)
	}
}

func TestVibranceGrayIsZero(t *testing.T) {
	if v := Vibrance(RGB{128, 128, 128}); v != 0 {
		t.Fatalf("Vibrance(gray) = %v, want 0", v)
	}
}
