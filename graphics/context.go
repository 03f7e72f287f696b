package graphics

// Context defines the interface for an OpenGL context provided by the
// drawing surface (a window, or an offscreen pbuffer for exports).
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	// GetFramebufferSize returns the drawable size in device pixels.
	GetFramebufferSize() (int, int)
	Time() float64
	// IsGLES reports whether the context speaks OpenGL ES, which selects the
	// shader dialect the renderer compiles.
	IsGLES() bool
}
