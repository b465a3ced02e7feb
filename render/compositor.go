package render

type surfaceEntry struct {
	surface Surface
	z       int
	index   int // Registration order for stable sort
}

// Compositor draws registered surfaces in z order into one buffer
type Compositor struct {
	buf      *Buffer
	bg       RGB
	entries  []surfaceEntry
	regCount int
}

// NewCompositor creates a compositor for a cols x rows grid
func NewCompositor(cols, rows int, bg RGB) *Compositor {
	return &Compositor{
		buf:     NewBuffer(cols, rows, bg),
		bg:      bg,
		entries: make([]surfaceEntry, 0, 4),
	}
}

// Register mounts s at z; lower z draws first. Maintains order via insertion sort
func (c *Compositor) Register(s Surface, z int) {
	entry := surfaceEntry{surface: s, z: z, index: c.regCount}
	c.regCount++

	pos := len(c.entries)
	for i, e := range c.entries {
		if z < e.z || (z == e.z && entry.index < e.index) {
			pos = i
			break
		}
	}
	c.entries = append(c.entries, surfaceEntry{})
	copy(c.entries[pos+1:], c.entries[pos:])
	c.entries[pos] = entry

	w, h := c.buf.Bounds()
	s.Resize(w, h)
}

// Unregister unmounts s and detaches it
func (c *Compositor) Unregister(s Surface) {
	for i, e := range c.entries {
		if e.surface == s {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			s.Detach()
			return
		}
	}
}

// Resize changes the grid and resizes every surface
func (c *Compositor) Resize(cols, rows int) {
	c.buf.Resize(cols, rows)
	c.buf.Fill(c.bg)
	for _, e := range c.entries {
		e.surface.Resize(cols, rows)
	}
}

// Compose clears the buffer and draws all surfaces
func (c *Compositor) Compose() *Buffer {
	c.buf.Fill(c.bg)
	for _, e := range c.entries {
		e.surface.Composite(c.buf)
	}
	return c.buf
}

// Buffer returns the last composed buffer
func (c *Compositor) Buffer() *Buffer {
	return c.buf
}

// Close detaches every surface
func (c *Compositor) Close() {
	for _, e := range c.entries {
		e.surface.Detach()
	}
	c.entries = c.entries[:0]
}
