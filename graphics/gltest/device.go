// Package gltest provides a software graphics.Device for tests. It tracks
// every GL object it hands out, records draw calls and framebuffer binds, and
// rasterizes fullscreen draws by running Go shade functions per fragment, so
// pipeline behavior can be checked without a GPU.
package gltest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/megakode/wallrus/graphics"
)

// Surface is an RGBA8 image stored in GL row order: row 0 is the bottom row.
type Surface struct {
	Width, Height int
	Pix           []byte
}

func newSurface(width, height int) *Surface {
	return &Surface{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// At returns the pixel at (x, y), y counted from the bottom.
func (s *Surface) At(x, y int) [4]byte {
	i := (y*s.Width + x) * 4
	return [4]byte{s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]}
}

func (s *Surface) set(x, y int, c [4]byte) {
	i := (y*s.Width + x) * 4
	copy(s.Pix[i:i+4], c[:])
}

// Fragment is the input to a ShadeFunc.
type Fragment struct {
	X, Y          int
	Width, Height int

	program *programObject
	source  *Surface
}

// Uniform returns the last value set for the named uniform, or nil.
func (f *Fragment) Uniform(name string) []float32 {
	loc, ok := f.program.locations[name]
	if !ok {
		return nil
	}
	return f.program.values[loc]
}

// Float returns the first component of the named uniform (0 if unset).
func (f *Fragment) Float(name string) float32 {
	if v := f.Uniform(name); len(v) > 0 {
		return v[0]
	}
	return 0
}

// Scene returns the texel of the texture bound to unit 0 at the same
// relative position as the fragment. ok is false when nothing is bound.
func (f *Fragment) Scene() (c [4]byte, ok bool) {
	if f.source == nil {
		return c, false
	}
	x := f.X * f.source.Width / f.Width
	y := f.Y * f.source.Height / f.Height
	return f.source.At(x, y), true
}

// ShadeFunc computes one output pixel.
type ShadeFunc func(f *Fragment) [4]byte

// Draw describes one recorded draw call.
type Draw struct {
	Program     uint32
	Framebuffer uint32
	Texture0    uint32
	Fragment    string
}

type shaderObject struct {
	stage  graphics.ShaderStage
	source string
}

type programObject struct {
	fragment  string
	linked    bool
	locations map[string]int32
	values    map[int32][]float32
}

type shadeEntry struct {
	marker string
	fn     ShadeFunc
}

// Device is a software implementation of graphics.Device.
type Device struct {
	// Default is the surface behind framebuffer 0.
	Default *Surface

	// Draws lists every draw call in submission order.
	Draws []Draw
	// FramebufferBinds counts BindFramebuffer calls.
	FramebufferBinds int
	// TextureAllocations counts texture storage allocations (new or resized).
	TextureAllocations int
	// Errors collects GL misuse: deleting unknown names, drawing without a
	// program, sampling the texture being rendered to, and so on.
	Errors []string

	nextName     uint32
	shaders      map[uint32]*shaderObject
	programs     map[uint32]*programObject
	textures     map[uint32]*Surface
	framebuffers map[uint32]uint32
	quads        map[uint32]uint32
	units        [8]uint32
	current      uint32
	bound        uint32
	viewW, viewH int

	shades           []shadeEntry
	failCompile      []string
	failLink         []string
	failFramebuffers bool
}

var _ graphics.Device = (*Device)(nil)

// NewDevice returns a device whose default framebuffer is width×height.
func NewDevice(width, height int) *Device {
	return &Device{
		Default:      newSurface(width, height),
		shaders:      make(map[uint32]*shaderObject),
		programs:     make(map[uint32]*programObject),
		textures:     make(map[uint32]*Surface),
		framebuffers: make(map[uint32]uint32),
		quads:        make(map[uint32]uint32),
		viewW:        width,
		viewH:        height,
	}
}

// Shade registers fn for programs whose fragment source contains marker.
// The first matching registration wins.
func (d *Device) Shade(marker string, fn ShadeFunc) {
	d.shades = append(d.shades, shadeEntry{marker: marker, fn: fn})
}

// FailCompile makes every shader whose source contains marker fail to compile.
func (d *Device) FailCompile(marker string) {
	d.failCompile = append(d.failCompile, marker)
}

// FailLink makes linking fail for programs whose fragment source contains marker.
func (d *Device) FailLink(marker string) {
	d.failLink = append(d.failLink, marker)
}

// FailFramebuffers makes every new framebuffer report an incomplete status.
func (d *Device) FailFramebuffers() {
	d.failFramebuffers = true
}

// ResetStats clears recorded draws, binds, allocations and errors.
func (d *Device) ResetStats() {
	d.Draws = nil
	d.FramebufferBinds = 0
	d.TextureAllocations = 0
	d.Errors = nil
}

func (d *Device) LiveShaders() int      { return len(d.shaders) }
func (d *Device) LivePrograms() int     { return len(d.programs) }
func (d *Device) LiveTextures() int     { return len(d.textures) }
func (d *Device) LiveFramebuffers() int { return len(d.framebuffers) }
func (d *Device) LiveQuads() int        { return len(d.quads) }

// Live returns the total number of undeleted objects of any kind.
func (d *Device) Live() int {
	return d.LiveShaders() + d.LivePrograms() + d.LiveTextures() + d.LiveFramebuffers() + d.LiveQuads()
}

// Texture returns the storage of a texture, or nil.
func (d *Device) Texture(texture uint32) *Surface {
	return d.textures[texture]
}

// Uniform returns the value last set on a program's uniform.
func (d *Device) Uniform(program uint32, name string) ([]float32, bool) {
	p, ok := d.programs[program]
	if !ok {
		return nil, false
	}
	loc, ok := p.locations[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// ProgramSource returns the fragment source a program was linked from.
func (d *Device) ProgramSource(program uint32) string {
	if p, ok := d.programs[program]; ok {
		return p.fragment
	}
	return ""
}

func (d *Device) errorf(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

func (d *Device) name() uint32 {
	d.nextName++
	return d.nextName
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func (d *Device) CompileShader(stage graphics.ShaderStage, source string) (uint32, string, bool) {
	id := d.name()
	d.shaders[id] = &shaderObject{stage: stage, source: source}
	if strings.TrimSpace(source) == "" {
		return id, "ERROR: 0:1: empty shader source", false
	}
	if containsAny(source, d.failCompile) {
		return id, fmt.Sprintf("ERROR: 0:1: injected %s compile failure", stage), false
	}
	return id, "", true
}

func (d *Device) DeleteShader(shader uint32) {
	if _, ok := d.shaders[shader]; !ok {
		d.errorf("DeleteShader(%d): unknown shader", shader)
		return
	}
	delete(d.shaders, shader)
}

var uniformDecl = regexp.MustCompile(`uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)`)

func (d *Device) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	id := d.name()
	p := &programObject{
		locations: make(map[string]int32),
		values:    make(map[int32][]float32),
	}
	d.programs[id] = p

	vs, vok := d.shaders[vertex]
	fs, fok := d.shaders[fragment]
	if !vok || !fok {
		return id, "ERROR: unknown shader object", false
	}
	if vs.stage != graphics.VertexStage || fs.stage != graphics.FragmentStage {
		return id, "ERROR: shader stages do not match", false
	}
	p.fragment = fs.source
	if containsAny(fs.source, d.failLink) {
		return id, "ERROR: injected link failure", false
	}
	for _, src := range []string{vs.source, fs.source} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, ok := p.locations[m[1]]; !ok {
				p.locations[m[1]] = int32(len(p.locations))
			}
		}
	}
	p.linked = true
	return id, "", true
}

func (d *Device) DeleteProgram(program uint32) {
	if _, ok := d.programs[program]; !ok {
		d.errorf("DeleteProgram(%d): unknown program", program)
		return
	}
	delete(d.programs, program)
	if d.current == program {
		d.current = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	if program != 0 {
		if p, ok := d.programs[program]; !ok || !p.linked {
			d.errorf("UseProgram(%d): not a linked program", program)
		}
	}
	d.current = program
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	p, ok := d.programs[program]
	if !ok {
		d.errorf("UniformLocation(%d, %q): unknown program", program, name)
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) setUniform(location int32, v ...float32) {
	if location < 0 {
		d.errorf("uniform set at location %d", location)
		return
	}
	p, ok := d.programs[d.current]
	if !ok {
		d.errorf("uniform set with no program in use")
		return
	}
	p.values[location] = v
}

func (d *Device) Uniform1i(location int32, v int32)   { d.setUniform(location, float32(v)) }
func (d *Device) Uniform1f(location int32, v float32) { d.setUniform(location, v) }
func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.setUniform(location, x, y, z)
}

func (d *Device) NewQuad(vertices []float32) (uint32, uint32) {
	vao, vbo := d.name(), d.name()
	d.quads[vao] = vbo
	return vao, vbo
}

func (d *Device) DeleteQuad(vao, vbo uint32) {
	if got, ok := d.quads[vao]; !ok || got != vbo {
		d.errorf("DeleteQuad(%d, %d): unknown quad", vao, vbo)
		return
	}
	delete(d.quads, vao)
}

func (d *Device) target() *Surface {
	if d.bound == 0 {
		return d.Default
	}
	return d.textures[d.framebuffers[d.bound]]
}

func (d *Device) DrawTriangles(vao uint32, count int32) {
	if _, ok := d.quads[vao]; !ok {
		d.errorf("DrawTriangles(%d): unknown vertex array", vao)
		return
	}
	p, ok := d.programs[d.current]
	if !ok {
		d.errorf("DrawTriangles with no program in use")
		return
	}
	dst := d.target()
	if dst == nil {
		d.errorf("DrawTriangles into framebuffer %d without storage", d.bound)
		return
	}
	d.Draws = append(d.Draws, Draw{
		Program:     d.current,
		Framebuffer: d.bound,
		Texture0:    d.units[0],
		Fragment:    p.fragment,
	})

	var src *Surface
	if d.units[0] != 0 {
		src = d.textures[d.units[0]]
		if d.bound != 0 && d.framebuffers[d.bound] == d.units[0] {
			d.errorf("feedback loop: texture %d sampled while bound as render target", d.units[0])
		}
	}

	fn := d.shadeFor(p)
	out := newSurface(dst.Width, dst.Height)
	copy(out.Pix, dst.Pix)
	w, h := min(d.viewW, dst.Width), min(d.viewH, dst.Height)
	frag := &Fragment{Width: d.viewW, Height: d.viewH, program: p, source: src}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frag.X, frag.Y = x, y
			out.set(x, y, fn(frag))
		}
	}
	copy(dst.Pix, out.Pix)
}

func (d *Device) shadeFor(p *programObject) ShadeFunc {
	for _, s := range d.shades {
		if strings.Contains(p.fragment, s.marker) {
			return s.fn
		}
	}
	return func(*Fragment) [4]byte { return [4]byte{0xff, 0x00, 0xff, 0xff} }
}

func (d *Device) NewTexture(width, height int) uint32 {
	id := d.name()
	d.textures[id] = newSurface(width, height)
	d.TextureAllocations++
	return id
}

func (d *Device) ResizeTexture(texture uint32, width, height int) {
	if _, ok := d.textures[texture]; !ok {
		d.errorf("ResizeTexture(%d): unknown texture", texture)
		return
	}
	d.textures[texture] = newSurface(width, height)
	d.TextureAllocations++
}

func (d *Device) DeleteTexture(texture uint32) {
	if _, ok := d.textures[texture]; !ok {
		d.errorf("DeleteTexture(%d): unknown texture", texture)
		return
	}
	delete(d.textures, texture)
	for i, t := range d.units {
		if t == texture {
			d.units[i] = 0
		}
	}
}

func (d *Device) BindTexture(unit int, texture uint32) {
	if unit < 0 || unit >= len(d.units) {
		d.errorf("BindTexture: unit %d out of range", unit)
		return
	}
	if texture != 0 {
		if _, ok := d.textures[texture]; !ok {
			d.errorf("BindTexture(%d, %d): unknown texture", unit, texture)
		}
	}
	d.units[unit] = texture
}

func (d *Device) NewFramebuffer(texture uint32) (uint32, graphics.FramebufferStatus) {
	id := d.name()
	d.framebuffers[id] = texture
	d.bound = id
	d.FramebufferBinds++
	return id, d.CheckFramebuffer(id)
}

func (d *Device) CheckFramebuffer(fbo uint32) graphics.FramebufferStatus {
	tex, ok := d.framebuffers[fbo]
	if !ok || d.failFramebuffers {
		return graphics.FramebufferStatus(0x8CD6) // GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	if _, ok := d.textures[tex]; !ok {
		return graphics.FramebufferStatus(0x8CD7) // GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}
	return graphics.FramebufferComplete
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	if _, ok := d.framebuffers[fbo]; !ok {
		d.errorf("DeleteFramebuffer(%d): unknown framebuffer", fbo)
		return
	}
	delete(d.framebuffers, fbo)
	if d.bound == fbo {
		d.bound = 0
	}
}

func (d *Device) BindFramebuffer(fbo uint32) {
	if fbo != 0 {
		if _, ok := d.framebuffers[fbo]; !ok {
			d.errorf("BindFramebuffer(%d): unknown framebuffer", fbo)
		}
	}
	d.bound = fbo
	d.FramebufferBinds++
}

func (d *Device) BoundFramebuffer() uint32 { return d.bound }

func (d *Device) Viewport(width, height int) {
	d.viewW, d.viewH = width, height
}

func (d *Device) Clear(r, g, b, a float32) {
	dst := d.target()
	if dst == nil {
		d.errorf("Clear of framebuffer %d without storage", d.bound)
		return
	}
	c := [4]byte{unorm(r), unorm(g), unorm(b), unorm(a)}
	w, h := min(d.viewW, dst.Width), min(d.viewH, dst.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.set(x, y, c)
		}
	}
}

func (d *Device) ReadPixels(width, height int, dst []byte) {
	src := d.target()
	if src == nil {
		d.errorf("ReadPixels from framebuffer %d without storage", d.bound)
		return
	}
	if width > src.Width || height > src.Height || len(dst) < width*height*4 {
		d.errorf("ReadPixels(%d, %d) out of bounds of %dx%d", width, height, src.Width, src.Height)
		return
	}
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Width*4 : y*src.Width*4+width*4]
		copy(dst[y*width*4:], row)
	}
}

func unorm(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
