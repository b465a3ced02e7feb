package render

import (
	"github.com/lixenwraith/stardrift/vmath"
)

// NodeStyle is the inline style of one layer node
type NodeStyle struct {
	Pos     vmath.Vec2 // Center, logical pixels
	Size    float64    // Diameter, logical pixels
	Opacity float64
	Color   RGB
}

// Node is one positioned element owned by a single particle for its lifetime
type Node struct {
	layer   *Layer
	style   NodeStyle
	removed bool
}

// SetStyle writes the node's inline style
func (n *Node) SetStyle(s NodeStyle) {
	n.style = s
}

// Style returns the current inline style
func (n *Node) Style() NodeStyle {
	return n.style
}

// Remove takes the node out of its layer. Safe to call multiple times
func (n *Node) Remove() {
	if n == nil || n.removed {
		return
	}
	n.removed = true
	n.layer.remove(n)
}

// Removed reports whether the node left its layer
func (n *Node) Removed() bool {
	return n.removed
}

// Layer is a transparent retained-mode surface of independent nodes
// No pooling: every Insert creates a distinct node
type Layer struct {
	nodes    []*Node
	scale    Scale
	cols     int
	rows     int
	attached bool
}

// NewLayer creates a detached layer
func NewLayer(scale Scale) *Layer {
	return &Layer{scale: scale}
}

// Attached reports whether the layer is mounted in a compositor
func (l *Layer) Attached() bool {
	return l != nil && l.attached
}

// Resize attaches the layer at cols x rows cells
func (l *Layer) Resize(cols, rows int) {
	l.cols, l.rows = cols, rows
	l.attached = true
}

// Detach unmounts the layer; nodes are kept until removed by their owner
func (l *Layer) Detach() {
	l.attached = false
}

// Insert appends a node with the given style
func (l *Layer) Insert(s NodeStyle) *Node {
	n := &Node{layer: l, style: s}
	l.nodes = append(l.nodes, n)
	return n
}

// Len returns the number of nodes in the layer
func (l *Layer) Len() int {
	return len(l.nodes)
}

func (l *Layer) remove(n *Node) {
	for i, m := range l.nodes {
		if m == n {
			copy(l.nodes[i:], l.nodes[i+1:])
			l.nodes[len(l.nodes)-1] = nil
			l.nodes = l.nodes[:len(l.nodes)-1]
			return
		}
	}
}

// Composite blends each node over dst in insertion order
func (l *Layer) Composite(dst *Buffer) {
	if !l.attached {
		return
	}
	for _, n := range l.nodes {
		drawDot(dst, l.scale, n.style.Pos, n.style.Size/2, n.style.Color, n.style.Opacity)
	}
}
