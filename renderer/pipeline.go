package renderer

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/shader"
)

// activePasses lists the post-process passes that will run, in pipeline
// order. A pass runs when the user enabled it and its program built.
func (r *Renderer) activePasses() (passes [shader.NumEffects]shader.Effect, n int) {
	for _, e := range shader.Effects() {
		if r.enabled(e) && r.effects[e].available() {
			passes[n] = e
			n++
		}
	}
	return passes, n
}

func (r *Renderer) enabled(e shader.Effect) bool {
	switch e {
	case shader.Blur:
		return r.Params.BlurType != BlurNone
	case shader.Bloom:
		return r.Params.BloomEnabled
	case shader.Chromatic:
		return r.Params.ChromaticEnabled
	default:
		return false
	}
}

// Render draws a frame at the current animation time into whatever
// framebuffer is bound.
func (r *Renderer) Render(width, height int) {
	r.RenderAt(r.Elapsed(), width, height)
}

// RenderAt draws a frame for animation time t into the bound framebuffer.
//
// With no post-process pass active the pattern is drawn straight into the
// bound framebuffer: one draw, no binds, no allocations. Otherwise the
// pattern goes to the first ping-pong target and each pass reads the
// previous output, the last pass writing to the framebuffer that was bound
// on entry.
func (r *Renderer) RenderAt(t float32, width, height int) {
	if r.released || width <= 0 || height <= 0 {
		return
	}

	passes, n := r.activePasses()
	if n == 0 || r.pattern == nil {
		r.renderPattern(t, width, height)
		return
	}

	dst := r.dev.BoundFramebuffer()
	if err := r.targets.ensure(width, height); err != nil {
		log.Printf("Post-processing target: %v", err)
	}

	src := 0
	r.dev.BindFramebuffer(r.targets.framebuffer(src))
	r.renderPattern(t, width, height)

	for i := 0; i < n; i++ {
		last := i == n-1
		if last {
			r.dev.BindFramebuffer(dst)
		} else {
			r.dev.BindFramebuffer(r.targets.framebuffer(1 - src))
		}
		r.runPass(passes[i], r.targets.texture(src), width, height)
		if !last {
			src = 1 - src
		}
	}
	// leave no ping-pong texture bound so the next pattern pass can write it
	r.dev.BindTexture(0, 0)
}

func (r *Renderer) renderPattern(t float32, width, height int) {
	r.dev.Viewport(width, height)
	r.dev.Clear(0, 0, 0, 1)
	if r.pattern == nil {
		return
	}

	p := r.pattern
	params := &r.Params
	p.Use()
	p.SetVec3("iResolution", mgl32.Vec3{float32(width), float32(height), 1})
	p.SetFloat("iTime", t)
	p.SetVec3("uColor1", params.Color1)
	p.SetVec3("uColor2", params.Color2)
	p.SetVec3("uColor3", params.Color3)
	p.SetVec3("uColor4", params.Color4)
	p.SetFloat("uAngle", params.Angle)
	p.SetFloat("uScale", params.Scale)
	p.SetFloat("uSpeed", params.Speed)
	p.SetFloat("uBlend", params.Blend)
	p.SetInt("uDistortType", int32(params.DistortType))
	p.SetFloat("uDistortStrength", params.DistortStrength)
	p.SetFloat("uRippleFreq", params.RippleFreq)
	p.SetFloat("uNoise", params.Noise)
	p.SetFloat("uCenter", params.Center)
	p.SetBool("uDither", params.Dither)
	p.SetInt("uLightingType", int32(params.LightingType))
	p.SetFloat("uLightStrength", params.LightStrength)
	p.SetFloat("uBevelWidth", params.BevelWidth)
	p.SetFloat("uLightAngle", params.LightAngle)
	r.quad.draw()
}

// runPass draws one post-process effect into the bound framebuffer, sampling
// source on texture unit 0.
func (r *Renderer) runPass(e shader.Effect, source uint32, width, height int) {
	p := r.effects[e].program
	params := &r.Params

	r.dev.Viewport(width, height)
	p.Use()
	r.dev.BindTexture(0, source)
	p.SetVec3("iResolution", mgl32.Vec3{float32(width), float32(height), 1})
	p.SetInt(shader.SceneUniform, 0)

	switch e {
	case shader.Blur:
		p.SetInt("uBlurType", int32(params.BlurType))
		p.SetFloat("uBlurStrength", params.BlurStrength)
		p.SetFloat("uBlurAngle", params.BlurAngle)
	case shader.Bloom:
		p.SetFloat("uBloomThreshold", params.BloomThreshold)
		p.SetFloat("uBloomIntensity", params.BloomIntensity)
	case shader.Chromatic:
		p.SetFloat("uChromaticStrength", params.ChromaticStrength)
		p.SetFloat("uChromaticAngle", params.ChromaticAngle)
	}
	r.quad.draw()
}
