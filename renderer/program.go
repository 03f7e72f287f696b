package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/graphics"
	"github.com/megakode/wallrus/shader"
)

// Program is a linked vertex+fragment shader pair. It is owned by whoever
// compiled it and must be released with Delete.
type Program struct {
	dev graphics.Device
	id  uint32
	// mapped translates uniform names when the fragment source was rewritten
	// by a shader.Translator; nil means names are used as-is.
	mapped map[string]string
	locs   map[string]int32
}

// Compile compiles both stages and links them. On failure every shader or
// program object created for the attempt is deleted before returning a
// *CompileError or *LinkError.
func Compile(dev graphics.Device, vertexSource, fragmentSource string) (*Program, error) {
	vs, infoLog, ok := dev.CompileShader(graphics.VertexStage, vertexSource)
	if !ok {
		dev.DeleteShader(vs)
		return nil, &CompileError{Stage: graphics.VertexStage, Log: infoLog}
	}
	fs, infoLog, ok := dev.CompileShader(graphics.FragmentStage, fragmentSource)
	if !ok {
		dev.DeleteShader(fs)
		dev.DeleteShader(vs)
		return nil, &CompileError{Stage: graphics.FragmentStage, Log: infoLog}
	}

	id, infoLog, ok := dev.LinkProgram(vs, fs)
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)
	if !ok {
		dev.DeleteProgram(id)
		return nil, &LinkError{Log: infoLog}
	}
	return &Program{dev: dev, id: id, locs: make(map[string]int32)}, nil
}

// compileTranslated runs the fragment source through tr before compiling.
func compileTranslated(dev graphics.Device, tr shader.Translator, vertexSource, fragmentSource string) (*Program, error) {
	t, err := tr.TranslateFragment(fragmentSource)
	if err != nil {
		return nil, &CompileError{Stage: graphics.FragmentStage, Log: err.Error()}
	}
	p, err := Compile(dev, vertexSource, t.Code)
	if err != nil {
		return nil, err
	}
	p.mapped = t.Uniforms
	return p, nil
}

// ID returns the GL program name, or 0 once deleted.
func (p *Program) ID() uint32 { return p.id }

// Lookup returns the location of a uniform. ok is false when the program
// does not declare it (or the compiler optimized it away); callers skip such
// uniforms.
func (p *Program) Lookup(name string) (location int32, ok bool) {
	if loc, cached := p.locs[name]; cached {
		return loc, loc >= 0
	}
	glName := name
	if p.mapped != nil {
		m, found := p.mapped[name]
		if !found {
			p.locs[name] = -1
			return -1, false
		}
		glName = m
	}
	loc := p.dev.UniformLocation(p.id, glName)
	p.locs[name] = loc
	return loc, loc >= 0
}

// Use makes p the current program.
func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

// The setters below act on the current program and silently skip uniforms
// the program does not declare.

func (p *Program) SetInt(name string, v int32) {
	if loc, ok := p.Lookup(name); ok {
		p.dev.Uniform1i(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc, ok := p.Lookup(name); ok {
		p.dev.Uniform1f(loc, v)
	}
}

func (p *Program) SetBool(name string, v bool) {
	var f float32
	if v {
		f = 1
	}
	p.SetFloat(name, f)
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc, ok := p.Lookup(name); ok {
		p.dev.Uniform3f(loc, v[0], v[1], v[2])
	}
}

// Delete releases the GL program. Calling it again is a no-op.
func (p *Program) Delete() {
	if p == nil || p.id == 0 {
		return
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
	p.locs = nil
}
