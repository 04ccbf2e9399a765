package core

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gizak/termui/v3/drawille"
)

// braille cells are 2 dots wide and 4 dots tall
const (
	dotsPerCellX = 2
	dotsPerCellY = 4
)

// Plot draws points as a line chart on a braille canvas of Width x Height cells.
type Plot struct {
	Width  int
	Height int
	XLabel string
}

type bounds struct {
	min float64
	max float64
}

func (b bounds) span() float64 {
	return b.max - b.min
}

func rangeOf(points []Point, value func(Point) float64) bounds {
	b := bounds{min: math.Inf(1), max: math.Inf(-1)}
	for _, p := range points {
		v := value(p)
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
	// a flat range would collapse the axis
	if b.span() == 0 {
		b.min -= 1
		b.max += 1
	}
	return b
}

func scale(v float64, b bounds, dots int) int {
	pos := int(math.Round((v - b.min) / b.span() * float64(dots-1)))
	if pos < 0 {
		return 0
	} else if pos > dots-1 {
		return dots - 1
	}
	return pos
}

func formatTick(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

// Render returns the chart as Height lines of text plus an x-axis legend.
func (p *Plot) Render(points []Point) string {
	if len(points) == 0 {
		return "no data in window\n"
	}

	xs := rangeOf(points, func(pt Point) float64 { return pt.X })
	ys := rangeOf(points, func(pt Point) float64 { return pt.Y })
	dotsX := p.Width * dotsPerCellX
	dotsY := p.Height * dotsPerCellY

	toDot := func(pt Point) image.Point {
		// the canvas grows downwards
		return image.Pt(scale(pt.X, xs, dotsX), dotsY-1-scale(pt.Y, ys, dotsY))
	}

	canvas := drawille.NewCanvas()
	prev := toDot(points[0])
	canvas.SetPoint(prev, drawille.Color(0))
	for _, pt := range points[1:] {
		next := toDot(pt)
		canvas.SetLine(prev, next, drawille.Color(0))
		prev = next
	}

	grid := make([][]rune, p.Height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", p.Width))
	}
	for at, cell := range canvas.GetCells() {
		if at.X >= 0 && at.X < p.Width && at.Y >= 0 && at.Y < p.Height {
			grid[at.Y][at.X] = cell.Rune
		}
	}

	top, bottom := formatTick(ys.max), formatTick(ys.min)
	gutter := len(top)
	if len(bottom) > gutter {
		gutter = len(bottom)
	}

	sb := strings.Builder{}
	for y, line := range grid {
		label := ""
		if y == 0 {
			label = top
		} else if y == p.Height-1 {
			label = bottom
		}
		sb.WriteString(fmt.Sprintf("%*s │%s\n", gutter, label, string(line)))
	}

	left, right := formatTick(xs.min), formatTick(xs.max)
	pad := p.Width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	sb.WriteString(fmt.Sprintf("%*s └%s\n", gutter, "", strings.Repeat("─", p.Width)))
	sb.WriteString(fmt.Sprintf("%*s  %s%s%s\n", gutter, "", left, strings.Repeat(" ", pad), right))
	if p.XLabel != "" {
		sb.WriteString(fmt.Sprintf("%*s  %s\n", gutter, "", p.XLabel))
	}

	return sb.String()
}
