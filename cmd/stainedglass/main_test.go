package main

import (
	"testing"

	"stainedglass/colorsample"
	"stainedglass/edgemap"
	"stainedglass/frame"
	"stainedglass/lighting"
	"stainedglass/seedpoints"
)

func TestOutputBaseStripsExtension(t *testing.T) {
	got := outputBase("/tmp/photo.JPG")
	if got != "/tmp/photo" {
		t.Fatalf("outputBase() = %q, want /tmp/photo", got)
	}
	if got := outputBase("noext"); got != "noext" {
		t.Fatalf("outputBase() = %q, want noext", got)
	}
}

func TestParseHexArrayValid(t *testing.T) {
	got := parseHexArray("#ff8800")
	want := [3]uint8{0xff, 0x88, 0x00}
	if got != want {
		t.Fatalf("parseHexArray() = %v, want %v", got, want)
	}
}

func TestParseHexArrayInvalidFallsBackToDefault(t *testing.T) {
	got := parseHexArray("nope")
	want := [3]uint8{0x1a, 0x1a, 0x1a}
	if got != want {
		t.Fatalf("parseHexArray() = %v, want default %v", got, want)
	}
}

func TestParseDistribution(t *testing.T) {
	cases := map[string]seedpoints.Distribution{
		"uniform":       seedpoints.Uniform,
		"edge-weighted": seedpoints.EdgeWeighted,
		"edgeweighted":  seedpoints.EdgeWeighted,
		"poisson":       seedpoints.Poisson,
		"garbage":       seedpoints.Poisson,
	}
	for in, want := range cases {
		if got := parseDistribution(in); got != want {
			t.Errorf("parseDistribution(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseEdgeMethod(t *testing.T) {
	if parseEdgeMethod("Canny") != edgemap.Canny {
		t.Error("parseEdgeMethod(\"Canny\") should be case-insensitive")
	}
	if parseEdgeMethod("sobel") != edgemap.Sobel {
		t.Error("parseEdgeMethod(\"sobel\") should be Sobel")
	}
	if parseEdgeMethod("") != edgemap.Sobel {
		t.Error("parseEdgeMethod(\"\") should default to Sobel")
	}
}

func TestParseColorMode(t *testing.T) {
	cases := map[string]colorsample.Mode{
		"exact":   colorsample.Exact,
		"palette": colorsample.Palette,
		"average": colorsample.Average,
		"bogus":   colorsample.Average,
	}
	for in, want := range cases {
		if got := parseColorMode(in); got != want {
			t.Errorf("parseColorMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFrameStyle(t *testing.T) {
	cases := map[string]frame.Style{
		"none":      frame.None,
		"segmented": frame.Segmented,
		"simple":    frame.Simple,
		"":          frame.Simple,
	}
	for in, want := range cases {
		if got := parseFrameStyle(in); got != want {
			t.Errorf("parseFrameStyle(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLightPreset(t *testing.T) {
	cases := map[string]lighting.Preset{
		"left":        lighting.PresetLeft,
		"bottom-left": lighting.PresetBottomLeft,
		"top-right":   lighting.PresetTopRight,
		"center":      lighting.PresetCenter,
		"custom":      lighting.PresetCustom,
		"unknown":     lighting.PresetTopLeft,
	}
	for in, want := range cases {
		if got := parseLightPreset(in); got != want {
			t.Errorf("parseLightPreset(%q) = %v, want %v", in, got, want)
		}
	}
}
