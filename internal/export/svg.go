// Package export renders recorded throws as standalone SVG files.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dicebox/internal/viz"
)

const background = "#0a0a0a"

// Palette cycles through these for successive height series.
var Palette = []string{"#00ff00", "#00bfff", "#ff8c00", "#ff69b4", "#ffd700", "#9370db"}

// CanvasToSVG draws every set dot of the canvas as a circle. scale is the
// pixel size of one dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}

	dw, dh := canvas.Dots()
	width := float64(dw) * scale
	height := float64(dh) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, Palette[0])

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// Series is one named line of a chart, sampled at uniform intervals.
type Series struct {
	Label  string
	Values []float64
}

// SeriesToSVG plots all series against a shared y range. The x axis spans the
// longest series.
func SeriesToSVG(series []Series, width, height int) string {
	if len(series) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	maxLen := 0
	for _, s := range series {
		for _, v := range s.Values {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
	}
	if maxLen == 0 {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	spanX := float64(maxLen - 1)
	if spanX == 0 {
		spanX = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		color := Palette[i%len(Palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		for j, v := range s.Values {
			x := float64(j) / spanX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
		if s.Label != "" {
			fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
				16*(i+1), color, escape(s.Label))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
