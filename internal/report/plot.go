// Package report renders analytics output for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is one named line on a plot.
type Series struct {
	Name   string
	Values []float64
}

// plotRange is the value span a series is scaled against. Deep-memory counts,
// minutes, and accuracy live on very different scales, so every series gets
// its own range and the shared axis only carries relative marks.
type plotRange struct {
	lo float64
	hi float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	axisMarkHigh      = "high"
	axisMarkMid       = "mid"
	axisMarkLow       = "low"
	axisSeparator     = " │ "
	scaleNote         = "Each series is scaled to its own min/max below."
	colorReset        = "\x1b[0m"
	fallbackTermWidth = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// PlotSeries renders a multi-line braille plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a multi-line braille plot with optional forced
// color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = dropEmpty(series)
	if len(series) == 0 {
		return nil
	}

	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	cv := newCanvas(len(series), width, height)
	ranges := make([]plotRange, len(series))
	for i, s := range series {
		values := resampleSeries(s.Values, width)
		ranges[i] = rangeOf(values)
		cv.drawSeries(i, values, ranges[i], lineStyles[i%len(lineStyles)])
	}

	useColor := shouldUseColor(w, forceColor)
	gutter := utf8.RuneCountInString(axisMarkHigh)
	marks := axisMarks(height)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, scaleNote); err != nil {
		return err
	}
	for i, s := range series {
		if _, err := fmt.Fprintf(w, "%s: min=%.2f max=%.2f\n", s.Name, ranges[i].lo, ranges[i].hi); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		line := fmt.Sprintf("%*s%s%s", gutter, marks[y], axisSeparator, cv.renderRow(y, useColor))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func dropEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits the axis gutter within the
// total available columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	gutter := utf8.RuneCountInString(axisMarkHigh) + utf8.RuneCountInString(axisSeparator)
	plotWidth := totalWidth - gutter
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// axisMarks places the relative high/mid/low marks along the gutter.
func axisMarks(height int) []string {
	marks := make([]string, height)
	if height <= 0 {
		return marks
	}
	marks[0] = axisMarkHigh
	if height > 2 {
		marks[height/2] = axisMarkMid
	}
	if height > 1 {
		marks[height-1] = axisMarkLow
	}
	return marks
}

// canvas is a braille dot grid with one layer per series, so overlapping
// lines merge their dots per cell while color follows the first layer drawn.
type canvas struct {
	width  int
	height int
	layers [][][]uint8
}

func newCanvas(layerCount, width, height int) *canvas {
	layers := make([][][]uint8, layerCount)
	for l := range layers {
		layers[l] = make([][]uint8, height)
		for y := 0; y < height; y++ {
			layers[l][y] = make([]uint8, width)
		}
	}
	return &canvas{width: width, height: height, layers: layers}
}

// drawSeries rasterizes one series into its layer, connecting neighboring
// samples with line segments in the layer's dash style.
func (c *canvas) drawSeries(layer int, values []float64, r plotRange, style lineStyle) {
	prevX, prevY := -1, -1
	for i, v := range values {
		x := i * 2
		y := dotRowFor(v, r, c.height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, x, y, func(dx, dy int) {
				if style.shouldPlot(dx) {
					c.setDot(layer, dx, dy)
				}
			})
		} else if style.shouldPlot(x) {
			c.setDot(layer, x, y)
		}
		prevX, prevY = x, y
	}
}

func (c *canvas) setDot(layer, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= c.height || cellX >= c.width {
		return
	}
	c.layers[layer][cellY][cellX] |= dotMask(x%2, y%4)
}

// cellAt merges all layers at one cell; the color index is the first layer
// with a dot there, or -1 for an empty cell.
func (c *canvas) cellAt(x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for l := range c.layers {
		m := c.layers[l][y][x]
		if m == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = l
		}
		mask |= m
	}
	return mask, colorIdx
}

func (c *canvas) renderRow(y int, useColor bool) string {
	var row strings.Builder
	for x := 0; x < c.width; x++ {
		mask, colorIdx := c.cellAt(x, y)
		ch := brailleGlyph(mask)
		if useColor && colorIdx >= 0 {
			row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
			row.WriteRune(ch)
			row.WriteString(colorReset)
		} else {
			row.WriteRune(ch)
		}
	}
	return row.String()
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) > width {
		// Downsample by averaging each bucket of source samples.
		for i := 0; i < width; i++ {
			start := int(float64(i) * float64(len(values)) / float64(width))
			end := int(float64(i+1) * float64(len(values)) / float64(width))
			if end <= start {
				end = start + 1
			}
			if end > len(values) {
				end = len(values)
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	if width == 1 {
		out[0] = values[0]
		return out
	}
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	// Upsample by linear interpolation between source samples.
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

// rangeOf finds the series span, widening degenerate flat series so they
// draw as a midline instead of dividing by zero.
func rangeOf(values []float64) plotRange {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == math.Inf(1) {
		lo = 0
	}
	if hi == math.Inf(-1) {
		hi = 0
	}
	if math.Abs(hi-lo) < 1e-9 {
		lo--
		hi++
	}
	return plotRange{lo: lo, hi: hi}
}

// dotRowFor maps a value into a dot row, row 0 being the top of the plot.
func dotRowFor(v float64, r plotRange, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - r.lo) / (r.hi - r.lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleGlyph(0x01)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// drawLine rasterizes a segment between two dot coordinates (Bresenham).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

// dotMask maps a dot position within a 2x4 braille cell to its bit.
func dotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleGlyph(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
