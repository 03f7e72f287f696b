package graphics

import "fmt"

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// FramebufferStatus is the result of a framebuffer completeness check.
type FramebufferStatus uint32

// FramebufferComplete matches GL_FRAMEBUFFER_COMPLETE.
const FramebufferComplete FramebufferStatus = 0x8CD5

func (s FramebufferStatus) String() string {
	if s == FramebufferComplete {
		return "complete"
	}
	return fmt.Sprintf("0x%X", uint32(s))
}

// Device is the set of GL object operations the renderer needs. Object names
// are the raw GL names; zero is never a valid object except for the default
// framebuffer.
//
// All calls must be made on the thread that owns the current context.
type Device interface {
	// CompileShader creates and compiles a shader object. The returned name
	// is valid even when ok is false, and the caller must delete it.
	CompileShader(stage ShaderStage, source string) (shader uint32, infoLog string, ok bool)
	DeleteShader(shader uint32)
	// LinkProgram creates a program from two compiled shaders. As with
	// CompileShader, the program name must be deleted by the caller on failure.
	LinkProgram(vertex, fragment uint32) (program uint32, infoLog string, ok bool)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// UniformLocation returns -1 if the program has no active uniform by
	// that name.
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)

	// NewQuad uploads a static vertex buffer of 2D positions (attribute 0)
	// and returns the vertex array and buffer names.
	NewQuad(vertices []float32) (vao, vbo uint32)
	DeleteQuad(vao, vbo uint32)
	// DrawTriangles draws count vertices from vao as GL_TRIANGLES.
	DrawTriangles(vao uint32, count int32)

	// NewTexture allocates an RGBA8 texture with linear filtering and
	// clamp-to-edge wrapping.
	NewTexture(width, height int) uint32
	// ResizeTexture re-specifies the texture storage at a new size.
	ResizeTexture(texture uint32, width, height int)
	DeleteTexture(texture uint32)
	BindTexture(unit int, texture uint32)

	// NewFramebuffer creates a framebuffer with texture as its color
	// attachment and reports its completeness. The framebuffer is left bound.
	NewFramebuffer(texture uint32) (fbo uint32, status FramebufferStatus)
	CheckFramebuffer(fbo uint32) FramebufferStatus
	DeleteFramebuffer(fbo uint32)
	BindFramebuffer(fbo uint32)
	// BoundFramebuffer returns the framebuffer currently bound for drawing.
	BoundFramebuffer() uint32

	Viewport(width, height int)
	Clear(r, g, b, a float32)
	// ReadPixels reads the bound framebuffer as RGBA8 into dst in GL row
	// order (bottom row first). len(dst) must be at least width*height*4.
	ReadPixels(width, height int, dst []byte)
}
