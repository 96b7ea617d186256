// Package pipeline wires stages A-H into an Orchestrator with per-stage
// caching and a minimal-recompute invalidation policy: a run-one-step,
// check-for-cancellation, repeat loop generalized into a five-stage
// cache with explicit dependency-class invalidation, plus the
// debounce/cancellation machinery a live-editing host needs.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"stainedglass/colorsample"
	"stainedglass/colorutil"
	"stainedglass/edgemap"
	"stainedglass/frame"
	"stainedglass/geom"
	"stainedglass/lighting"
	"stainedglass/pixbuf"
	"stainedglass/seedpoints"
	"stainedglass/vectoremit"
	"stainedglass/voronoi"
)

// Settings is the complete user-configurable parameter record.
// Out-of-range values are clamped silently rather than rejected: Clamp
// covers the fields listed on it, and each stage clamps its own
// parameters at stage entry.
type Settings struct {
	Seed int64

	CellCount             int
	PointDistribution     seedpoints.Distribution
	EdgeInfluence         float64
	RelaxationIterations  int

	PreBlur         float64
	Contrast        float64
	EdgeMethod      edgemap.Method
	EdgeSensitivity float64

	LineWidth float64
	LineColor [3]uint8

	ColorMode    colorsample.Mode
	PaletteSize  int
	Saturation   float64
	Brightness   float64
	ColorPalette string

	FrameStyle        frame.Style
	FrameWidth        float64
	FrameCellSize     float64
	FrameColorPalette string
	FrameHueShift     float64
	FrameSaturation   float64
	FrameBrightness   float64

	Lighting lighting.Settings
}

// Clamp silently clamps CellCount, EdgeInfluence, RelaxationIterations
// and LineWidth. The remaining fields are left as given here; the
// stage packages (edgemap, colorsample, frame, lighting) clamp them at
// stage entry.
func (s Settings) Clamp() Settings {
	if s.CellCount < 50 {
		s.CellCount = 50
	} else if s.CellCount > 2000 {
		s.CellCount = 2000
	}
	if s.EdgeInfluence < 0 {
		s.EdgeInfluence = 0
	} else if s.EdgeInfluence > 1 {
		s.EdgeInfluence = 1
	}
	if s.RelaxationIterations < 0 {
		s.RelaxationIterations = 0
	} else if s.RelaxationIterations > 5 {
		s.RelaxationIterations = 5
	}
	if s.LineWidth < 0.5 {
		s.LineWidth = 0.5
	} else if s.LineWidth > 10 {
		s.LineWidth = 10
	}
	return s
}

// changeClass identifies which cache slot a settings diff invalidates.
type changeClass int

const (
	classNone changeClass = iota
	classEdgeMap
	classCells
	classFrame
	classColoredCells
	classDocument
)

// diff returns the EARLIEST invalidation class touched by any changed
// field between old and next: an edge-map change (class B, the
// smallest/broadest class) must win over a simultaneous frame-only
// change, since recomputing from B cascades through every later stage
// anyway. classNone means nothing changed.
func diff(old, next Settings) changeClass {
	const unset = changeClass(-1)
	earliest := unset

	note := func(touched bool, class changeClass) {
		if touched && (earliest == unset || class < earliest) {
			earliest = class
		}
	}

	note(old.PreBlur != next.PreBlur || old.Contrast != next.Contrast ||
		old.EdgeMethod != next.EdgeMethod || old.EdgeSensitivity != next.EdgeSensitivity,
		classEdgeMap)
	note(old.CellCount != next.CellCount ||
		old.PointDistribution != next.PointDistribution ||
		old.EdgeInfluence != next.EdgeInfluence ||
		old.RelaxationIterations != next.RelaxationIterations,
		classCells)
	note(old.FrameStyle != next.FrameStyle ||
		old.FrameWidth != next.FrameWidth || old.FrameCellSize != next.FrameCellSize ||
		old.FrameColorPalette != next.FrameColorPalette || old.FrameHueShift != next.FrameHueShift ||
		old.FrameSaturation != next.FrameSaturation || old.FrameBrightness != next.FrameBrightness,
		classFrame)
	note(old.ColorMode != next.ColorMode ||
		old.PaletteSize != next.PaletteSize || old.Saturation != next.Saturation ||
		old.Brightness != next.Brightness || old.ColorPalette != next.ColorPalette,
		classColoredCells)
	note(old.LineWidth != next.LineWidth || old.LineColor != next.LineColor ||
		old.Lighting != next.Lighting,
		classDocument)

	if earliest == unset {
		return classNone
	}
	return earliest
}

// cacheSlot records whether a stage's cached value (held in the
// Orchestrator's own fields) is valid and the version it was computed
// at.
type cacheSlot struct {
	version int
	valid   bool
}

// RunResult is the Orchestrator's terminal output.
type RunResult struct {
	Document string
	Cells    []colorsample.ColoredCell
	Settings Settings
}

// Orchestrator maintains cached intermediate products across runs and
// recomputes only the minimal suffix a settings change requires. Run
// holds an internal mutex, so concurrent Run calls (e.g. from the
// debounce loop below) execute one at a time.
type Orchestrator struct {
	mu sync.Mutex

	buf      *pixbuf.Buffer
	settings Settings
	hasRun   bool

	version int
	edgeSlot    cacheSlot
	cellsSlot   cacheSlot
	frameSlot   cacheSlot
	coloredSlot cacheSlot
	docSlot     cacheSlot

	edges   *edgemap.Map
	cells   []voronoi.Cell
	clip    geom.Rect
	fr      frame.Result
	colored []colorsample.ColoredCell
	lit     lighting.Result
	doc     string
}

// NewOrchestrator constructs an Orchestrator bound to a decoded image.
func NewOrchestrator(buf *pixbuf.Buffer) *Orchestrator {
	return &Orchestrator{buf: buf}
}

// Run executes the pipeline for the given settings, recomputing only
// the stages invalidated relative to the previous run. ctx is checked
// at each stage boundary; a cancelled context aborts the run and
// returns ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, settings Settings) (RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	settings = settings.Clamp()

	trigger := classDocument
	if o.hasRun {
		trigger = diff(o.settings, settings)
	}
	o.settings = settings
	o.hasRun = true
	o.version++

	// diff reports only the earliest class touched, so every stage from
	// that class onward is recomputed, in the order B, C/D, F, E; any
	// stage landing recomputed forces H to recompute too.
	documentNeeded := trigger >= classDocument || !o.docSlot.valid

	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	cellsNeeded := trigger >= classEdgeMap && trigger <= classCells || !o.cellsSlot.valid
	if trigger == classEdgeMap || !o.edgeSlot.valid {
		edges, err := edgemap.Compute(ctx, o.buf, edgemap.Params{
			PreBlur: settings.PreBlur, Contrast: settings.Contrast,
			Method: settings.EdgeMethod, Sensitivity: settings.EdgeSensitivity,
		})
		if err != nil {
			return RunResult{}, fmt.Errorf("pipeline: edge map: %w", err)
		}
		o.edges = edges
		o.edgeSlot = cacheSlot{o.version, true}
		cellsNeeded = true
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	coloredNeeded := trigger >= classEdgeMap && trigger <= classColoredCells || !o.coloredSlot.valid
	if cellsNeeded {
		clip := geom.Rect{MinX: 0, MinY: 0, MaxX: float64(o.buf.Width), MaxY: float64(o.buf.Height)}
		rng := rand.New(rand.NewSource(settings.Seed + 1))
		pts := seedpoints.Generate(rng, clip, seedpoints.Params{
			Count: settings.CellCount, Distribution: settings.PointDistribution,
			EdgeInfluence: settings.EdgeInfluence,
		}, o.edges)
		for i := 0; i < settings.RelaxationIterations; i++ {
			pts = voronoi.Relax(pts, clip)
		}
		o.cells = voronoi.Tessellate(pts, clip)
		o.clip = clip
		o.cellsSlot = cacheSlot{o.version, true}
		coloredNeeded = true
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	if trigger >= classEdgeMap && trigger <= classFrame || !o.frameSlot.valid {
		o.fr = frame.Synthesize(o.buf, frame.Params{
			Style: settings.FrameStyle, WidthPercent: settings.FrameWidth,
			CellSize: settings.FrameCellSize, ColorPalette: settings.FrameColorPalette,
			HueShift: settings.FrameHueShift, Saturation: settings.FrameSaturation,
			Brightness: settings.FrameBrightness,
		})
		o.frameSlot = cacheSlot{o.version, true}
		documentNeeded = true
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	if coloredNeeded {
		o.colored = colorsample.Sample(o.buf, o.cells, colorsample.Params{
			Mode: settings.ColorMode, PaletteSize: settings.PaletteSize,
			Saturation: settings.Saturation, Brightness: settings.Brightness,
			ColorPalette: settings.ColorPalette,
		})
		o.coloredSlot = cacheSlot{o.version, true}
		documentNeeded = true
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	if documentNeeded {
		o.lit = lighting.Apply(o.colored, o.fr.Inner, settings.Lighting)
		doc := vectoremit.Document{
			Width: o.buf.Width, Height: o.buf.Height,
			DarkMode: settings.Lighting.DarkMode, LightingOn: settings.Lighting.Enabled,
			Line: vectoremit.LineStyle{
				Width: settings.LineWidth,
				Color: colorFromArray(settings.LineColor),
			},
			Frame:    o.fr,
			Artwork:  o.lit.Shaded,
			Lighting: o.lit,
		}
		o.doc = doc.Render()
		o.docSlot = cacheSlot{o.version, true}
	}

	return RunResult{Document: o.doc, Cells: o.lit.Shaded, Settings: settings}, nil
}

func colorFromArray(v [3]uint8) colorutil.RGB { return colorutil.RGB{R: v[0], G: v[1], B: v[2]} }

// DebounceRunner serializes rapid settings changes behind a debounce
// timer (200-300ms nominal): every call to Submit resets the timer;
// only the last settings snapshot within the debounce window is
// actually run, and any in-flight run is cancelled when a newer one is
// submitted.
type DebounceRunner struct {
	orch  *Orchestrator
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	pending Settings
	onDone  func(RunResult, error)
}

// NewDebounceRunner wraps orch with a debounce window; onDone is
// called (from a background goroutine) once a debounced run completes
// or fails, never for a run that was superseded before it started.
func NewDebounceRunner(orch *Orchestrator, delay time.Duration, onDone func(RunResult, error)) *DebounceRunner {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &DebounceRunner{orch: orch, delay: delay, onDone: onDone}
}

// Submit schedules settings to run after the debounce delay, replacing
// any pending submission and cancelling any run already in flight.
func (d *DebounceRunner) Submit(settings Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = settings
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *DebounceRunner) fire() {
	d.mu.Lock()
	settings := d.pending
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	result, err := d.orch.Run(ctx, settings)
	// Release only this run's context: d.cancel may already belong to a
	// newer run started while this one was finishing.
	cancel()

	if d.onDone != nil {
		d.onDone(result, err)
	}
}

// Stop cancels any pending or in-flight debounced run.
func (d *DebounceRunner) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// image is imported only for the FromImage convenience wrapper used by
// the CLI host; the orchestrator itself never decodes images.
func FromImage(img image.Image) (*pixbuf.Buffer, error) {
	return pixbuf.FromImage(img)
}
