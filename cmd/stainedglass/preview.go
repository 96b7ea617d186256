package main

import (
	"fmt"
	"image"
	"image/color"

	ebiten "github.com/hajimehoshi/ebiten/v2"

	"stainedglass/colorsample"
)

// previewGame is a host-side, ebiten-backed raster preview of one
// run's colored cells, implementing the ebiten.Game idiom
// (Update/Draw/Layout). Core packages never import ebiten; this file
// is the only place that does.
type previewGame struct {
	width, height int
	cells         []colorsample.ColoredCell
	img           *ebiten.Image
}

func newPreviewGame(width, height int, cells []colorsample.ColoredCell) *previewGame {
	g := &previewGame{width: width, height: height, cells: cells}
	g.img = ebiten.NewImage(width, height)
	g.render()
	return g
}

// render rasterizes each cell by filling its polygon's bounding box
// with its color, per SPEC_FULL.md 4.K's simplified preview contract.
func (g *previewGame) render() {
	rgba := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	for _, cell := range g.cells {
		box := cell.Polygon.BoundingBox()
		c := color.RGBA{R: cell.Color.R, G: cell.Color.G, B: cell.Color.B, A: 0xff}
		x0, y0 := clampInt(int(box.MinX), 0, g.width), clampInt(int(box.MinY), 0, g.height)
		x1, y1 := clampInt(int(box.MaxX), 0, g.width), clampInt(int(box.MaxY), 0, g.height)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				rgba.SetRGBA(x, y, c)
			}
		}
	}
	g.img.WritePixels(rgba.Pix)
}

func (g *previewGame) Update() error {
	return nil
}

func (g *previewGame) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.img, nil)
}

func (g *previewGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func runPreview(width, height int, cells []colorsample.ColoredCell) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("stainedglass preview")
	if err := ebiten.RunGame(newPreviewGame(width, height, cells)); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
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
