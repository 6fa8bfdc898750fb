package terminal

import (
	"math"

	"github.com/RyanBlaney/pcmscope/pkg/plot"
)

const (
	dotsX = 2
	dotsY = 4

	brailleBase = 0x2800
)

// dot bit for (x, y) inside one braille cell
var dotBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Braille is a dot raster where every terminal cell holds a 2x4 braille
// pattern. Each cell also remembers the last pen that touched it so
// polylines can be coloured independently.
type Braille struct {
	cols, rows int
	cells      []uint8
	pens       []uint8
	pen        uint8
}

// NewBraille allocates a raster of cols x rows terminal cells
func NewBraille(cols, rows int) *Braille {
	b := &Braille{}
	b.Resize(cols, rows)
	return b
}

// Resize changes the raster size, clearing it
func (b *Braille) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols != b.cols || rows != b.rows {
		b.cols, b.rows = cols, rows
		b.cells = make([]uint8, cols*rows)
		b.pens = make([]uint8, cols*rows)
	}
	b.Clear()
}

// Clear removes every dot
func (b *Braille) Clear() {
	clear(b.cells)
	clear(b.pens)
	b.pen = 0
}

// Canvas is the drawable area in dots
func (b *Braille) Canvas() plot.Canvas {
	return plot.Canvas{Width: float64(b.cols * dotsX), Height: float64(b.rows * dotsY)}
}

// Size returns the raster size in terminal cells
func (b *Braille) Size() (int, int) {
	return b.cols, b.rows
}

// SetPen selects the pen recorded for subsequent dots
func (b *Braille) SetPen(pen uint8) {
	b.pen = pen
}

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (b *Braille) Set(x, y int) {
	if x < 0 || y < 0 || x >= b.cols*dotsX || y >= b.rows*dotsY {
		return
	}
	i := (y/dotsY)*b.cols + x/dotsX
	b.cells[i] |= dotBits[x%dotsX][y%dotsY]
	b.pens[i] = b.pen
}

// Line draws a segment with Bresenham's algorithm. Segments entirely on one
// side of the raster are skipped.
func (b *Braille) Line(x0, y0, x1, y1 int) {
	w, h := b.cols*dotsX, b.rows*dotsY
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= w && x1 >= w) || (y0 >= h && y1 >= h) {
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	e := dx + dy
	for {
		b.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Polyline connects consecutive points. Coordinates are in dots; points far
// outside the raster are clamped so a segment never walks unbounded.
func (b *Braille) Polyline(line plot.Polyline) {
	if len(line) == 0 {
		return
	}

	px, py := b.clamp(line[0])
	if len(line) == 1 {
		b.Set(px, py)
		return
	}
	for _, p := range line[1:] {
		x, y := b.clamp(p)
		b.Line(px, py, x, y)
		px, py = x, y
	}
}

func (b *Braille) clamp(p plot.Point) (int, int) {
	w, h := float64(b.cols*dotsX), float64(b.rows*dotsY)
	return clampDot(p.X, w), clampDot(p.Y, h)
}

// clampDot rounds v to a dot index limited to one raster size beyond each edge
func clampDot(v, size float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return int(math.Round(math.Max(-size-1, math.Min(v, 2*size))))
}

// Cell returns the braille rune and pen of a terminal cell, or ok=false if
// the cell is blank
func (b *Braille) Cell(col, row int) (rune, uint8, bool) {
	if col < 0 || row < 0 || col >= b.cols || row >= b.rows {
		return ' ', 0, false
	}
	i := row*b.cols + col
	if b.cells[i] == 0 {
		return ' ', 0, false
	}
	return rune(brailleBase + int(b.cells[i])), b.pens[i], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
