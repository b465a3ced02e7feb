package render

// Cell is one terminal cell; Rune 0 renders as a space
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// Buffer is a row-major cell grid
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a buffer filled with blank cells on bg
func NewBuffer(width, height int, bg RGB) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	b.Fill(bg)
	return b
}

// Resize adjusts dimensions, reallocating only when capacity is insufficient
// Contents are undefined until the next Fill
func (b *Buffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
}

// Fill resets every cell to blank on bg using exponential copy
func (b *Buffer) Fill(bg RGB) {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Fg: bg, Bg: bg}
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Bounds returns width and height in cells
func (b *Buffer) Bounds() (int, int) {
	return b.width, b.height
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at (x, y), zero Cell when out of bounds
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// Set replaces the cell at (x, y); out-of-bounds writes are dropped
func (b *Buffer) Set(x, y int, c Cell) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = c
}

// Cells exposes the backing slice, row-major
func (b *Buffer) Cells() []Cell {
	return b.cells
}

// CopyFrom overwrites b with src where dimensions overlap
func (b *Buffer) CopyFrom(src *Buffer) {
	if src.width == b.width && src.height == b.height {
		copy(b.cells, src.cells)
		return
	}
	for y := 0; y < min(b.height, src.height); y++ {
		copy(b.cells[y*b.width:y*b.width+min(b.width, src.width)], src.cells[y*src.width:])
	}
}
