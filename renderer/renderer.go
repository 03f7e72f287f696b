package renderer

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/megakode/wallrus/graphics"
	"github.com/megakode/wallrus/shader"
)

// DefaultPreset is loaded when a Renderer is created.
const DefaultPreset = "Bars"

// ErrReleased is returned by operations on a Renderer after Release.
var ErrReleased = errors.New("renderer has been released")

// effectSlot holds a post-process program, or the error that kept it from
// building. A slot without a program stays disabled for the renderer's life.
type effectSlot struct {
	program *Program
	err     error
}

func (s *effectSlot) available() bool { return s.program != nil }

type Options struct {
	// GLES selects the GLSL ES vertex shader; set it for EGL/GLES contexts.
	GLES bool
	// Translator rewrites fragment sources for the current context. Nil
	// compiles them unchanged, which only works on GLES 3 contexts.
	Translator shader.Translator
	// Now overrides the clock used for the animation time.
	Now func() time.Time
}

// Renderer owns every GPU object of the render pipeline. It must be created
// and used on the thread that owns the current GL context, and released
// exactly once with Release when the drawing surface goes away.
type Renderer struct {
	// Params is read by every render call and may be changed freely between
	// calls.
	Params Params

	dev          graphics.Device
	tr           shader.Translator
	vertexSource string

	quad    *quad
	pattern *Program
	preset  shader.Preset
	effects [shader.NumEffects]effectSlot
	targets *pingPong

	start    time.Time
	now      func() time.Time
	released bool
}

// New builds the shared quad and the post-process programs, then loads
// DefaultPreset. Post-process programs that fail to build are logged and
// their effect is disabled; that is not an error.
func New(dev graphics.Device, opts Options) *Renderer {
	r := &Renderer{
		Params:       DefaultParams(),
		dev:          dev,
		tr:           opts.Translator,
		vertexSource: shader.VertexSource(opts.GLES),
		now:          opts.Now,
	}
	if r.tr == nil {
		r.tr = shader.Passthrough{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.start = r.now()

	r.quad = newQuad(dev)
	r.targets = newPingPong(dev)

	for _, e := range shader.Effects() {
		p, err := compileTranslated(dev, r.tr, r.vertexSource, shader.PostProcessSource(e))
		if err != nil {
			log.Printf("Post-process effect %s unavailable: %v", e, err)
		}
		r.effects[e] = effectSlot{program: p, err: err}
	}

	if err := r.LoadPreset(DefaultPreset); err != nil {
		log.Printf("Failed to load initial preset: %v", err)
	}
	return r
}

// LoadPreset compiles the named preset and makes it the active pattern. The
// previous program is deleted only after the new one builds, so a failure
// leaves the current preset in place.
func (r *Renderer) LoadPreset(name string) error {
	if r.released {
		return ErrReleased
	}
	preset, ok := shader.Lookup(name)
	if !ok {
		return &UnknownPresetError{Name: name}
	}

	p, err := compileTranslated(r.dev, r.tr, r.vertexSource, preset.Fragment)
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}

	r.pattern.Delete()
	r.pattern = p
	r.preset = preset
	log.Printf("Loaded preset %s", name)
	return nil
}

// SelectPreset is LoadPreset for a user switching presets: on success the
// speed control returns to the new preset's default.
func (r *Renderer) SelectPreset(name string) error {
	if err := r.LoadPreset(name); err != nil {
		return err
	}
	r.Params.Speed = float32(r.preset.Controls.SpeedRange.Default)
	return nil
}

// Preset returns the name of the active preset, or "" if none loaded.
func (r *Renderer) Preset() string { return r.preset.Name }

// Controls returns the control metadata of the active preset.
func (r *Renderer) Controls() shader.Controls { return r.preset.Controls }

// EffectErr reports why a post-process effect is unavailable, or nil if it
// can run.
func (r *Renderer) EffectErr(e shader.Effect) error {
	if e < 0 || int(e) >= len(r.effects) {
		return fmt.Errorf("unknown effect %s", e)
	}
	return r.effects[e].err
}

// Elapsed returns the animation time in seconds since the renderer was created.
func (r *Renderer) Elapsed() float32 {
	return float32(r.now().Sub(r.start).Seconds())
}

// Release deletes every GPU object the renderer owns. Further calls are no-ops.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	r.pattern.Delete()
	r.pattern = nil
	for i := range r.effects {
		r.effects[i].program.Delete()
		r.effects[i] = effectSlot{err: ErrReleased}
	}
	r.targets.destroy()
	r.quad.destroy()
	log.Println("Renderer released")
}
