// Command stainedglass is the CLI host for the stained-glass pipeline:
// it decodes an input image, assembles a pipeline.Settings record from
// flags, drives one Orchestrator run to completion, and writes the
// resulting vector document and colored-cell array to disk. Flags use
// urfave/cli/v2: the app's single root action, with Destination-bound
// flags covering the full settings surface the pipeline exposes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"stainedglass/colorsample"
	"stainedglass/colorutil"
	"stainedglass/edgemap"
	"stainedglass/frame"
	"stainedglass/lighting"
	"stainedglass/palette"
	"stainedglass/pipeline"
	"stainedglass/pixbuf"
	"stainedglass/seedpoints"
)

func main() {
	var (
		inputPath string

		seed int64

		cellCount    int
		distribution string
		edgeInfl     float64
		relax        int

		preBlur     float64
		contrast    float64
		edgeMethod  string
		sensitivity float64

		lineWidth float64
		lineColor string

		colorMode   string
		paletteSize int
		saturation  float64
		brightness  float64
		colorPal    string

		frameStyle  string
		frameWidth  float64
		frameCell   float64
		framePal    string
		frameHue    float64
		frameSat    float64
		frameBright float64

		lightEnabled  bool
		lightPreset   string
		lightAngle    float64
		elevation     float64
		ambient       float64
		intensity     float64
		rayCount      int
		raySpread     float64
		rayLength     float64
		rayIntensity  float64
		glowRadius    float64
		glowIntensity float64
		darkMode      bool

		watch        bool
		preview      bool
		listPalettes bool
	)

	app := &cli.App{
		Name:      "stainedglass",
		Usage:     "Render a raster image as a stained-glass vector artwork",
		UsageText: "stainedglass [options] <input-image>",

		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "seed", Value: 1, Destination: &seed},

			&cli.IntFlag{Name: "cell-count", Aliases: []string{"n"}, Value: 400, Destination: &cellCount},
			&cli.StringFlag{Name: "distribution", Value: "poisson", Usage: "uniform|poisson|edge-weighted", Destination: &distribution},
			&cli.Float64Flag{Name: "edge-influence", Value: 0.6, Destination: &edgeInfl},
			&cli.IntFlag{Name: "relax", Value: 2, Usage: "Lloyd relaxation iterations", Destination: &relax},

			&cli.Float64Flag{Name: "pre-blur", Value: 1.5, Destination: &preBlur},
			&cli.Float64Flag{Name: "contrast", Value: 1.2, Destination: &contrast},
			&cli.StringFlag{Name: "edge-method", Value: "sobel", Usage: "sobel|canny", Destination: &edgeMethod},
			&cli.Float64Flag{Name: "edge-sensitivity", Value: 50, Destination: &sensitivity},

			&cli.Float64Flag{Name: "line-width", Value: 2, Destination: &lineWidth},
			&cli.StringFlag{Name: "line-color", Value: "#1a1a1a", Destination: &lineColor},

			&cli.StringFlag{Name: "color-mode", Value: "average", Usage: "exact|average|palette", Destination: &colorMode},
			&cli.IntFlag{Name: "palette-size", Value: 16, Destination: &paletteSize},
			&cli.Float64Flag{Name: "saturation", Value: 1.1, Destination: &saturation},
			&cli.Float64Flag{Name: "brightness", Value: 1.0, Destination: &brightness},
			&cli.StringFlag{Name: "color-palette", Value: "original", Destination: &colorPal},

			&cli.StringFlag{Name: "frame-style", Value: "simple", Usage: "none|simple|segmented", Destination: &frameStyle},
			&cli.Float64Flag{Name: "frame-width", Value: 6, Destination: &frameWidth},
			&cli.Float64Flag{Name: "frame-cell-size", Value: 60, Destination: &frameCell},
			&cli.StringFlag{Name: "frame-palette", Value: "original", Destination: &framePal},
			&cli.Float64Flag{Name: "frame-hue-shift", Value: 0, Destination: &frameHue},
			&cli.Float64Flag{Name: "frame-saturation", Value: 1.0, Destination: &frameSat},
			&cli.Float64Flag{Name: "frame-brightness", Value: 1.0, Destination: &frameBright},

			&cli.BoolFlag{Name: "lighting", Destination: &lightEnabled},
			&cli.StringFlag{Name: "light-preset", Value: "top-left", Destination: &lightPreset},
			&cli.Float64Flag{Name: "light-angle", Value: 0, Usage: "degrees, only used by preset=custom", Destination: &lightAngle},
			&cli.Float64Flag{Name: "elevation", Value: 45, Usage: "degrees, [0,90]", Destination: &elevation},
			&cli.Float64Flag{Name: "ambient", Value: 0.3, Destination: &ambient},
			&cli.Float64Flag{Name: "intensity", Value: 1.0, Destination: &intensity},
			&cli.IntFlag{Name: "ray-count", Value: 6, Destination: &rayCount},
			&cli.Float64Flag{Name: "ray-spread", Value: 45, Destination: &raySpread},
			&cli.Float64Flag{Name: "ray-length", Value: 0.6, Destination: &rayLength},
			&cli.Float64Flag{Name: "ray-intensity", Value: 1.0, Usage: "[0,1], ray opacity multiplier", Destination: &rayIntensity},
			&cli.Float64Flag{Name: "glow-radius", Value: 20, Destination: &glowRadius},
			&cli.Float64Flag{Name: "glow-intensity", Value: 1.0, Usage: "[0,1], glow opacity multiplier", Destination: &glowIntensity},
			&cli.BoolFlag{Name: "dark-mode", Destination: &darkMode},

			&cli.BoolFlag{Name: "watch", Usage: "Re-submit this run on an interval, demonstrating debounce/cancellation", Destination: &watch},
			&cli.BoolFlag{Name: "preview", Usage: "Open a live raster preview window", Destination: &preview},
			&cli.BoolFlag{Name: "list-palettes", Usage: "Print the named palette catalogue and exit", Destination: &listPalettes},
		},

		Action: func(cCtx *cli.Context) error {
			if listPalettes {
				printPalettes(seed)
				return nil
			}
			if cCtx.NArg() < 1 {
				return cli.Exit("missing input image path", 1)
			}
			inputPath = cCtx.Args().Get(0)

			buf, err := loadImage(inputPath)
			if err != nil {
				return fmt.Errorf("stainedglass: load image: %w", err)
			}

			settings := pipeline.Settings{
				Seed: seed,

				CellCount:            cellCount,
				PointDistribution:    parseDistribution(distribution),
				EdgeInfluence:        edgeInfl,
				RelaxationIterations: relax,

				PreBlur:         preBlur,
				Contrast:        contrast,
				EdgeMethod:      parseEdgeMethod(edgeMethod),
				EdgeSensitivity: sensitivity,

				LineWidth: lineWidth,
				LineColor: parseHexArray(lineColor),

				ColorMode:    parseColorMode(colorMode),
				PaletteSize:  paletteSize,
				Saturation:   saturation,
				Brightness:   brightness,
				ColorPalette: colorPal,

				FrameStyle:        parseFrameStyle(frameStyle),
				FrameWidth:        frameWidth,
				FrameCellSize:     frameCell,
				FrameColorPalette: framePal,
				FrameHueShift:     frameHue,
				FrameSaturation:   frameSat,
				FrameBrightness:   frameBright,

				Lighting: lighting.Settings{
					Enabled:       lightEnabled,
					Preset:        parseLightPreset(lightPreset),
					CustomAngle:   lightAngle,
					Elevation:     elevation,
					Ambient:       ambient,
					Intensity:     intensity,
					RayCount:      rayCount,
					RaySpread:     raySpread,
					RayLength:     rayLength,
					RayIntensity:  rayIntensity,
					GlowRadius:    glowRadius,
					GlowIntensity: glowIntensity,
					DarkMode:      darkMode,
					Seed:          seed,
				},
			}

			orch := pipeline.NewOrchestrator(buf)

			if watch {
				return runWatch(orch, settings, inputPath, preview)
			}

			result, err := orch.Run(context.Background(), settings)
			if err != nil {
				return fmt.Errorf("stainedglass: run: %w", err)
			}
			if err := writeOutputs(inputPath, result); err != nil {
				return fmt.Errorf("stainedglass: write outputs: %w", err)
			}
			fmt.Printf("wrote %s (%d cells)\n", outputBase(inputPath)+".svg", len(result.Cells))

			if preview {
				return runPreview(buf.Width, buf.Height, result.Cells)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadImage(path string) (*pixbuf.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return pipeline.FromImage(img)
}

func outputBase(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext)
}

func writeOutputs(inputPath string, result pipeline.RunResult) error {
	base := outputBase(inputPath)

	if err := os.WriteFile(base+".svg", []byte(result.Document), 0o644); err != nil {
		return err
	}

	cellsJSON, err := json.MarshalIndent(result.Cells, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+".json", cellsJSON, 0o644)
}

// runWatch re-submits the same settings to a DebounceRunner on a fixed
// interval, standing in for a UI that streams live settings changes,
// without requiring a GUI control surface.
func runWatch(orch *pipeline.Orchestrator, settings pipeline.Settings, inputPath string, preview bool) error {
	done := make(chan struct{})
	var lastErr error
	runner := pipeline.NewDebounceRunner(orch, 250*time.Millisecond, func(result pipeline.RunResult, err error) {
		if err != nil {
			lastErr = err
			fmt.Fprintln(os.Stderr, "run failed:", err)
			return
		}
		if werr := writeOutputs(inputPath, result); werr != nil {
			fmt.Fprintln(os.Stderr, "write failed:", werr)
			return
		}
		fmt.Printf("watch: refreshed %s (%d cells)\n", outputBase(inputPath)+".svg", len(result.Cells))
	})
	defer runner.Stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	fmt.Println("watch mode: press Ctrl+C to stop")
	for i := 0; i < 5; i++ {
		runner.Submit(settings)
		<-ticker.C
	}
	close(done)
	return lastErr
}

// printPalettes lists every named palette along with a seeded shuffled
// sample of its colors, so operators can eyeball a palette's range
// without rendering an image.
func printPalettes(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for _, id := range palette.SortedKeys() {
		if id == palette.Original {
			fmt.Println(id, "(identity, no mapping)")
			continue
		}
		sample := palette.ShuffledSample(id, rng)
		hexes := make([]string, len(sample))
		for i, c := range sample {
			hexes[i] = colorutil.Hex(c)
		}
		fmt.Printf("%s: %s\n", id, strings.Join(hexes, " "))
	}
}

func parseHexArray(hex string) [3]uint8 {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return [3]uint8{0x1a, 0x1a, 0x1a}
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		var b int
		fmt.Sscanf(s[i*2:i*2+2], "%02x", &b)
		v[i] = uint8(b)
	}
	return v
}

func parseDistribution(s string) seedpoints.Distribution {
	switch strings.ToLower(s) {
	case "uniform":
		return seedpoints.Uniform
	case "edge-weighted", "edgeweighted":
		return seedpoints.EdgeWeighted
	default:
		return seedpoints.Poisson
	}
}

func parseEdgeMethod(s string) edgemap.Method {
	if strings.ToLower(s) == "canny" {
		return edgemap.Canny
	}
	return edgemap.Sobel
}

func parseColorMode(s string) colorsample.Mode {
	switch strings.ToLower(s) {
	case "exact":
		return colorsample.Exact
	case "palette":
		return colorsample.Palette
	default:
		return colorsample.Average
	}
}

func parseFrameStyle(s string) frame.Style {
	switch strings.ToLower(s) {
	case "segmented":
		return frame.Segmented
	case "none":
		return frame.None
	default:
		return frame.Simple
	}
}

func parseLightPreset(s string) lighting.Preset {
	switch strings.ToLower(s) {
	case "left":
		return lighting.PresetLeft
	case "bottom-left":
		return lighting.PresetBottomLeft
	case "bottom":
		return lighting.PresetBottom
	case "bottom-right":
		return lighting.PresetBottomRight
	case "right":
		return lighting.PresetRight
	case "top-right":
		return lighting.PresetTopRight
	case "top":
		return lighting.PresetTop
	case "center":
		return lighting.PresetCenter
	case "custom":
		return lighting.PresetCustom
	default:
		return lighting.PresetTopLeft
	}
}
