package render

import (
	"math"

	"github.com/lixenwraith/stardrift/vmath"
)

// Dot glyphs by increasing visual weight
var dotGlyphs = [...]rune{'·', '•', '●', '█'}

func glyphRank(r rune) int {
	for i, g := range dotGlyphs {
		if g == r {
			return i
		}
	}
	return -1
}

// dotGlyph picks a glyph for a circle of radius covering a fraction of one cell
func dotGlyph(radius float64, s Scale) rune {
	d := 2 * radius / s.CellW
	switch {
	case d < 0.5:
		return dotGlyphs[0]
	case d < 1:
		return dotGlyphs[1]
	default:
		return dotGlyphs[2]
	}
}

// drawDot composites a filled circle onto dst
// The cell holding the center always receives the dot; neighbor cells whose centers
// fall inside the circle are filled solid
func drawDot(dst *Buffer, s Scale, center vmath.Vec2, radius float64, color RGB, alpha float64) {
	if !(alpha > 0) || !(radius > 0) || !s.Valid() {
		return
	}
	if math.IsNaN(center.X) || math.IsNaN(center.Y) || math.IsInf(center.X, 0) || math.IsInf(center.Y, 0) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	cx, cy := s.ToCell(center)
	plot(dst, cx, cy, dotGlyph(radius, s), color, alpha)

	if radius < s.CellW && radius < s.CellH {
		return
	}
	w, h := dst.Bounds()
	ext := s.Viewport(w, h)
	if w == 0 || h == 0 ||
		center.X+radius < 0 || center.Y+radius < 0 ||
		center.X-radius >= ext.X || center.Y-radius >= ext.Y {
		return
	}

	// Only cells inside dst are visited, whatever the radius
	lastX, lastY := float64(w-1)*s.CellW, float64(h-1)*s.CellH
	minX, minY := s.ToCell(vmath.V2(vmath.Clamp(center.X-radius, 0, lastX), vmath.Clamp(center.Y-radius, 0, lastY)))
	maxX, maxY := s.ToCell(vmath.V2(vmath.Clamp(center.X+radius, 0, lastX), vmath.Clamp(center.Y+radius, 0, lastY)))
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x == cx && y == cy {
				continue
			}
			if s.CellCenter(x, y).Sub(center).MagSq() <= r2 {
				plot(dst, x, y, dotGlyphs[3], color, alpha)
			}
		}
	}
}

// plot blends color into the cell foreground, keeping the heavier glyph
func plot(dst *Buffer, x, y int, glyph rune, color RGB, alpha float64) {
	if !dst.inBounds(x, y) {
		return
	}
	c := &dst.cells[y*dst.width+x]
	base := c.Bg
	if c.Rune != 0 && c.Rune != ' ' {
		base = c.Fg
	}
	c.Fg = Blend(base, color, alpha)
	if glyphRank(glyph) > glyphRank(c.Rune) {
		c.Rune = glyph
	}
}
