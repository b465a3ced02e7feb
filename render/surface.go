package render

// Surface is a drawing target owned by one effect and composited by the host
type Surface interface {
	// Resize sets the grid size in cells; called on registration and on host resize
	Resize(cols, rows int)
	// Composite draws the surface onto dst
	Composite(dst *Buffer)
	// Detach marks the surface unmounted; drawing contexts become unavailable
	Detach()
}
