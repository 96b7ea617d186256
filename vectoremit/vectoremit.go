// Package vectoremit renders the pipeline's final colored cells, frame,
// and lighting layers into a textual SVG document, building a string
// document with fmt.Fprintf/strings.Builder in a plain, allocation-light
// style.
package vectoremit

import (
	"fmt"
	"strings"

	"stainedglass/colorsample"
	"stainedglass/colorutil"
	"stainedglass/frame"
	"stainedglass/geom"
	"stainedglass/lighting"
)

// LineStyle controls the stroke drawn around each artwork cell.
type LineStyle struct {
	Width float64
	Color colorutil.RGB
}

// Document bundles every input the emitter needs to produce the final
// SVG's fixed element list.
type Document struct {
	Width, Height int
	DarkMode      bool
	LightingOn    bool
	Line          LineStyle
	Frame         frame.Result
	Artwork       []colorsample.ColoredCell
	Lighting      lighting.Result
}

// Render produces the complete SVG text, with elements emitted in
// strict back-to-front order:
//  1. filter defs for glow/ray blur
//  2. background rectangle
//  3. back-ray layer
//  4. frame layer
//  5. artwork layer
//  6. front-ray layer
//  7. glow layer
func (d Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		d.Width, d.Height, d.Width, d.Height)

	writeDefs(&b, d.Lighting, d.LightingOn)
	writeBackground(&b, d.Width, d.Height, d.LightingOn, d.DarkMode)

	if d.LightingOn {
		writeRayLayer(&b, d.Lighting.Rays, false, d.DarkMode)
	}
	writeFrameLayer(&b, d.Frame.Elements)
	writeArtworkLayer(&b, d.Artwork, d.Line)
	if d.LightingOn {
		writeRayLayer(&b, d.Lighting.Rays, true, d.DarkMode)
		writeGlowLayer(&b, d.Lighting.Glow, d.DarkMode)
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func writeDefs(b *strings.Builder, lit lighting.Result, enabled bool) {
	if !enabled || (lit.GlowBlurSigma <= 0 && len(lit.Rays) == 0) {
		return
	}
	b.WriteString("  <defs>\n")
	if lit.GlowBlurSigma > 0 {
		fmt.Fprintf(b, `    <filter id="glowBlur" x="-50%%" y="-50%%" width="200%%" height="200%%">`+"\n")
		fmt.Fprintf(b, `      <feGaussianBlur stdDeviation="%.3f"/>`+"\n", lit.GlowBlurSigma)
		b.WriteString("    </filter>\n")
	}
	for i, ray := range lit.Rays {
		// The gradient runs along the ray's axis: from the midpoint of
		// its base edge (first and last vertices) to the midpoint of its
		// tip edge (second and second-to-last vertices).
		var x1, y1, x2, y2 float64
		if n := len(ray.Polygon); n >= 3 {
			p := ray.Polygon
			x1, y1 = (p[0].X+p[n-1].X)/2, (p[0].Y+p[n-1].Y)/2
			x2, y2 = (p[1].X+p[n-2].X)/2, (p[1].Y+p[n-2].Y)/2
		}
		fmt.Fprintf(b, `    <linearGradient id="rayGrad%d" gradientUnits="userSpaceOnUse" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f">`+"\n", i, x1, y1, x2, y2)
		fmt.Fprintf(b, `      <stop offset="0%%" stop-color="%s" stop-opacity="%.3f"/>`+"\n", colorutil.Hex(ray.BrightColor), ray.Opacity)
		fmt.Fprintf(b, `      <stop offset="100%%" stop-color="%s" stop-opacity="0"/>`+"\n", colorutil.Hex(ray.BrightColor))
		b.WriteString("    </linearGradient>\n")
	}
	if hasRayBlur := len(lit.Rays) > 0; hasRayBlur {
		b.WriteString(`    <filter id="rayBlur" x="-20%" y="-20%" width="140%" height="140%">` + "\n")
		b.WriteString(`      <feGaussianBlur stdDeviation="1.5"/>` + "\n")
		b.WriteString("    </filter>\n")
	}
	b.WriteString("  </defs>\n")
}

func writeBackground(b *strings.Builder, w, h int, lit, dark bool) {
	fill := "#ffffff"
	if lit && dark {
		fill = "#1a1a1a"
	}
	fmt.Fprintf(b, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", w, h, fill)
}

func writeFrameLayer(b *strings.Builder, elements []frame.Element) {
	if len(elements) == 0 {
		return
	}
	b.WriteString("  <g id=\"frame\">\n")
	for _, el := range elements {
		fmt.Fprintf(b, `    <path d="%s" fill="%s"/>`+"\n", polygonPath(el.Polygon), colorutil.Hex(el.Color))
	}
	b.WriteString("  </g>\n")
}

func writeArtworkLayer(b *strings.Builder, cells []colorsample.ColoredCell, line LineStyle) {
	b.WriteString("  <g id=\"artwork\">\n")
	for _, cell := range cells {
		fmt.Fprintf(b, `    <path d="%s" fill="%s" stroke="%s" stroke-width="%.3f" stroke-linejoin="round"/>`+"\n",
			polygonPath(cell.Polygon), colorutil.Hex(cell.Color), colorutil.Hex(line.Color), line.Width)
	}
	b.WriteString("  </g>\n")
}

func writeRayLayer(b *strings.Builder, rays []lighting.Ray, front, dark bool) {
	var selected []int
	for i, ray := range rays {
		if ray.Front == front {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return
	}
	blend := "screen"
	if front {
		blend = "soft-light"
		if dark {
			blend = "screen"
		}
	}
	fmt.Fprintf(b, `  <g id="rays-%s" style="mix-blend-mode:%s" filter="url(#rayBlur)">`+"\n", layerName(front), blend)
	for _, i := range selected {
		ray := rays[i]
		fmt.Fprintf(b, `    <path d="%s" fill="url(#rayGrad%d)"/>`+"\n", polygonPath(ray.Polygon), i)
	}
	b.WriteString("  </g>\n")
}

func layerName(front bool) string {
	if front {
		return "front"
	}
	return "back"
}

func writeGlowLayer(b *strings.Builder, glows []lighting.Glow, dark bool) {
	if len(glows) == 0 {
		return
	}
	blend := "multiply"
	if dark {
		blend = "screen"
	}
	fmt.Fprintf(b, `  <g id="glow" style="mix-blend-mode:%s" filter="url(#glowBlur)">`+"\n", blend)
	for _, glow := range glows {
		fmt.Fprintf(b, `    <path d="%s" fill="%s" opacity="%.3f"/>`+"\n", polygonPath(glow.Polygon), colorutil.Hex(glow.Color), glow.Opacity)
	}
	b.WriteString("  </g>\n")
}

// polygonPath renders poly as an SVG path "M x y L x y ... Z".
func polygonPath(poly geom.Polygon) string {
	if len(poly) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%.2f,%.2f", poly[0].X, poly[0].Y)
	for _, p := range poly[1:] {
		fmt.Fprintf(&b, " L%.2f,%.2f", p.X, p.Y)
	}
	b.WriteString(" Z")
	return b.String()
}
