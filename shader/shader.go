// Package shader holds the GLSL sources the renderer compiles: the shared
// fullscreen vertex shader, the pattern presets and the post-process effects.
// Fragment sources are written in GLSL ES 3.00 and may be translated to the
// dialect of the current context before compilation.
package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// VertexSource returns the passthrough vertex shader shared by every pass.
func VertexSource(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

// Translation is a fragment shader rewritten for the target dialect.
type Translation struct {
	Code string
	// Uniforms maps each uniform name in the original source to its name in
	// Code. A nil map means names are unchanged; a non-nil map omits uniforms
	// the translator removed.
	Uniforms map[string]string
}

// Translator converts GLSL ES 3.00 fragment sources for the current context.
type Translator interface {
	TranslateFragment(source string) (*Translation, error)
}

// Passthrough is a Translator that returns the source unchanged. It is
// sufficient for OpenGL ES 3 contexts.
type Passthrough struct{}

func (Passthrough) TranslateFragment(source string) (*Translation, error) {
	return &Translation{Code: source}, nil
}
