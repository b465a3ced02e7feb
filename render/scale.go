package render

import (
	"math"

	"github.com/lixenwraith/stardrift/vmath"
)

// Scale maps terminal cells to logical pixels
type Scale struct {
	CellW float64
	CellH float64
}

// ToCell returns the cell containing logical pixel p
func (s Scale) ToCell(p vmath.Vec2) (int, int) {
	return int(math.Floor(p.X / s.CellW)), int(math.Floor(p.Y / s.CellH))
}

// CellCenter returns the logical pixel at the center of cell (col, row)
func (s Scale) CellCenter(col, row int) vmath.Vec2 {
	return vmath.V2((float64(col)+0.5)*s.CellW, (float64(row)+0.5)*s.CellH)
}

// Viewport returns the logical pixel extent of a cols x rows grid
func (s Scale) Viewport(cols, rows int) vmath.Vec2 {
	return vmath.V2(float64(cols)*s.CellW, float64(rows)*s.CellH)
}

// Valid reports whether both cell dimensions are positive
func (s Scale) Valid() bool {
	return s.CellW > 0 && s.CellH > 0
}
