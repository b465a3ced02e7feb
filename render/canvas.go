package render

import (
	"github.com/lixenwraith/stardrift/vmath"
)

// Canvas is an opaque immediate-mode surface in logical pixels
// Drawing goes through a Context, which is unavailable until the canvas is
// registered with a compositor and has a non-empty size
type Canvas struct {
	buf      *Buffer
	scale    Scale
	bg       RGB
	attached bool
}

// NewCanvas creates a detached canvas cleared to bg
func NewCanvas(scale Scale, bg RGB) *Canvas {
	return &Canvas{
		buf:   NewBuffer(0, 0, bg),
		scale: scale,
		bg:    bg,
	}
}

// Resize attaches the canvas at cols x rows cells
func (c *Canvas) Resize(cols, rows int) {
	c.buf.Resize(cols, rows)
	c.buf.Fill(c.bg)
	c.attached = true
}

// Detach makes Context unavailable
func (c *Canvas) Detach() {
	c.attached = false
}

// Composite copies the canvas over dst
func (c *Canvas) Composite(dst *Buffer) {
	if !c.attached {
		return
	}
	dst.CopyFrom(c.buf)
}

// Context returns the drawing context, false if the canvas cannot be drawn on
func (c *Canvas) Context() (*Context, bool) {
	if c == nil || !c.attached || !c.scale.Valid() {
		return nil, false
	}
	if w, h := c.buf.Bounds(); w == 0 || h == 0 {
		return nil, false
	}
	return &Context{c: c}, true
}

// Context draws on a Canvas
type Context struct {
	c *Canvas
}

// Size returns the canvas extent in logical pixels
func (ctx *Context) Size() vmath.Vec2 {
	w, h := ctx.c.buf.Bounds()
	return ctx.c.scale.Viewport(w, h)
}

// Clear resets the whole canvas to its background
func (ctx *Context) Clear() {
	ctx.c.buf.Fill(ctx.c.bg)
}

// FillCircle draws a filled circle with color at alpha
func (ctx *Context) FillCircle(center vmath.Vec2, radius float64, color RGB, alpha float64) {
	drawDot(ctx.c.buf, ctx.c.scale, center, radius, color, alpha)
}

// Cell reads back a canvas cell, for inspection
func (ctx *Context) Cell(col, row int) Cell {
	return ctx.c.buf.Get(col, row)
}
