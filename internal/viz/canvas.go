package viz

import (
	"math"
	"strings"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y).
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Bounds is an axis aligned box in plane coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoundsOf returns the box around every point of every path, padded by 5%
// on each side. Degenerate extents are widened to 1.
func BoundsOf(paths ...[]pursuit.Point) Bounds {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, path := range paths {
		for _, p := range path {
			b.MinX = math.Min(b.MinX, p.X)
			b.MaxX = math.Max(b.MaxX, p.X)
			b.MinY = math.Min(b.MinY, p.Y)
			b.MaxY = math.Max(b.MaxY, p.Y)
		}
	}
	if math.IsInf(b.MinX, 1) {
		return Bounds{MaxX: 1, MaxY: 1}
	}
	for _, ax := range [][2]*float64{{&b.MinX, &b.MaxX}, {&b.MinY, &b.MaxY}} {
		lo, hi := ax[0], ax[1]
		span := *hi - *lo
		if span == 0 {
			span = 1
		}
		*lo -= span * 0.05
		*hi += span * 0.05
	}
	return b
}

// Map converts p into a w by h pixel grid with y pointing down, keeping
// the aspect ratio of b.
func (b Bounds) Map(p pursuit.Point, w, h int) (int, int) {
	sx := float64(w-1) / (b.MaxX - b.MinX)
	sy := float64(h-1) / (b.MaxY - b.MinY)
	s := math.Min(sx, sy)
	ox := (float64(w-1) - s*(b.MaxX-b.MinX)) / 2
	oy := (float64(h-1) - s*(b.MaxY-b.MinY)) / 2
	x := ox + (p.X-b.MinX)*s
	y := float64(h-1) - (oy + (p.Y-b.MinY)*s)
	return int(math.Round(x)), int(math.Round(y))
}

// DrawPath joins consecutive points of path.
func (c *Canvas) DrawPath(path []pursuit.Point, b Bounds) {
	w, h := c.Width*2, c.Height*4
	for i := range path {
		x1, y1 := b.Map(path[i], w, h)
		if i == 0 {
			c.Set(x1, y1)
			continue
		}
		x0, y0 := b.Map(path[i-1], w, h)
		c.DrawLine(x0, y0, x1, y1)
	}
}
