package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/graphics"
	"github.com/megakode/wallrus/graphics/gltest"
	"github.com/megakode/wallrus/shader"
)

// callerTarget binds a framebuffer of its own, standing in for whatever the
// host has bound before calling Render.
func callerTarget(t *testing.T, d *gltest.Device, width, height int) (fbo, texture uint32) {
	t.Helper()
	texture = d.NewTexture(width, height)
	fbo, status := d.NewFramebuffer(texture)
	if status != graphics.FramebufferComplete {
		t.Fatalf("caller framebuffer status %s", status)
	}
	t.Cleanup(func() {
		d.DeleteFramebuffer(fbo)
		d.DeleteTexture(texture)
	})
	return fbo, texture
}

func passMarker(fragment string) string {
	switch {
	case strings.Contains(fragment, "uBlurType"):
		return "blur"
	case strings.Contains(fragment, "uBloomThreshold"):
		return "bloom"
	case strings.Contains(fragment, "uChromaticStrength"):
		return "chromatic"
	case strings.Contains(fragment, "paletteColor"):
		return "pattern"
	default:
		return "?"
	}
}

func TestPassOrder(t *testing.T) {
	const w, h = 6, 4
	tests := []struct {
		blur, bloom, chromatic bool
		want                   byte
		draws                  string
	}{
		{false, false, false, 0, "pattern"},
		{true, false, false, blurID, "pattern,blur"},
		{false, true, false, bloomID, "pattern,bloom"},
		{false, false, true, chromaticID, "pattern,chromatic"},
		{true, true, false, blurID*4 + bloomID, "pattern,blur,bloom"},
		{true, false, true, blurID*4 + chromaticID, "pattern,blur,chromatic"},
		{false, true, true, bloomID*4 + chromaticID, "pattern,bloom,chromatic"},
		{true, true, true, (blurID*4+bloomID)*4 + chromaticID, "pattern,blur,bloom,chromatic"},
	}
	for _, tt := range tests {
		t.Run(tt.draws, func(t *testing.T) {
			d := newTestDevice(w, h)
			r := newTestRenderer(t, d)
			fbo, texture := callerTarget(t, d, w, h)

			if tt.blur {
				r.Params.BlurType = BlurGaussian
			}
			r.Params.BloomEnabled = tt.bloom
			r.Params.ChromaticEnabled = tt.chromatic

			d.ResetStats()
			r.RenderAt(0, w, h)

			var order []string
			for _, draw := range d.Draws {
				order = append(order, passMarker(draw.Fragment))
			}
			if got := strings.Join(order, ","); got != tt.draws {
				t.Errorf("draw order = %s, want %s", got, tt.draws)
			}
			last := d.Draws[len(d.Draws)-1]
			if last.Framebuffer != fbo {
				t.Errorf("last pass drew into framebuffer %d, want the caller's %d", last.Framebuffer, fbo)
			}
			if d.BoundFramebuffer() != fbo {
				t.Errorf("framebuffer %d bound after render, want %d", d.BoundFramebuffer(), fbo)
			}

			out := d.Texture(texture)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					want := [4]byte{byte(y), byte(x), tt.want, 0xff}
					if got := out.At(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestPassesNeverReadTheirTarget(t *testing.T) {
	d := newTestDevice(8, 8)
	r := newTestRenderer(t, d)
	r.Params.BlurType = BlurRadial
	r.Params.BloomEnabled = true
	r.Params.ChromaticEnabled = true

	for i := 0; i < 3; i++ {
		r.RenderAt(float32(i), 8, 8)
	}
	for _, draw := range d.Draws {
		if passMarker(draw.Fragment) == "pattern" {
			if draw.Texture0 != 0 {
				t.Errorf("pattern pass drawn with texture %d bound", draw.Texture0)
			}
			continue
		}
		if draw.Texture0 == 0 {
			t.Errorf("%s pass drawn without a scene texture", passMarker(draw.Fragment))
		}
	}
	// the fake device reports feedback loops as errors, checked at cleanup
}

func TestFastPathHasNoOverhead(t *testing.T) {
	const w, h = 10, 7
	d := newTestDevice(w, h)
	r := newTestRenderer(t, d)
	// a strength without a blur type does not enable the pass
	r.Params.BlurStrength = 1
	r.Params.BloomThreshold = 0

	d.ResetStats()
	r.RenderAt(1.5, w, h)
	if len(d.Draws) != 1 {
		t.Errorf("%d draws, want 1", len(d.Draws))
	}
	if d.FramebufferBinds != 0 {
		t.Errorf("%d framebuffer binds, want 0", d.FramebufferBinds)
	}
	if d.TextureAllocations != 0 || d.LiveTextures() != 0 {
		t.Errorf("fast path allocated textures: allocations=%d live=%d", d.TextureAllocations, d.LiveTextures())
	}

	direct := newTestDevice(w, h)
	rd := newTestRenderer(t, direct)
	rd.renderPattern(1.5, w, h)
	if !bytes.Equal(d.Default.Pix, direct.Default.Pix) {
		t.Error("fast path output differs from a pattern-only render")
	}
}

func TestPingPongAllocatedLazily(t *testing.T) {
	d := newTestDevice(32, 32)
	r := newTestRenderer(t, d)
	r.Params.BloomEnabled = true

	r.Render(16, 16)
	if d.LiveTextures() != 2 || d.LiveFramebuffers() != 2 {
		t.Fatalf("after first render: textures=%d framebuffers=%d, want 2 and 2", d.LiveTextures(), d.LiveFramebuffers())
	}

	d.ResetStats()
	r.Render(16, 16)
	if d.TextureAllocations != 0 {
		t.Errorf("second render at the same size allocated %d textures", d.TextureAllocations)
	}

	d.ResetStats()
	r.Render(24, 20)
	if d.TextureAllocations != 2 {
		t.Errorf("resize allocated %d textures, want 2", d.TextureAllocations)
	}
	if d.LiveTextures() != 2 || d.LiveFramebuffers() != 2 {
		t.Errorf("resize changed object counts: textures=%d framebuffers=%d", d.LiveTextures(), d.LiveFramebuffers())
	}
	a, b := d.Texture(r.targets.texture(0)), d.Texture(r.targets.texture(1))
	if a.Width != 24 || a.Height != 20 || b.Width != a.Width || b.Height != a.Height {
		t.Errorf("ping-pong sizes %dx%d and %dx%d, want 24x20", a.Width, a.Height, b.Width, b.Height)
	}
}

func TestIncompleteTargetsAreNotFatal(t *testing.T) {
	d := newTestDevice(8, 8)
	d.FailFramebuffers()
	r := newTestRenderer(t, d)
	r.Params.ChromaticEnabled = true

	d.ResetStats()
	r.Render(8, 8)
	if len(d.Draws) != 2 {
		t.Errorf("%d draws with incomplete targets, want 2", len(d.Draws))
	}
	if err := r.targets.ensure(8, 8); err != nil {
		t.Errorf("ensure at an unchanged size = %v, want nil", err)
	}
	var incomplete *FramebufferIncompleteError
	if err := r.targets.ensure(9, 9); !errors.As(err, &incomplete) {
		t.Errorf("ensure = %v, want *FramebufferIncompleteError", err)
	}
}

func TestFailedEffectIsSkipped(t *testing.T) {
	const w, h = 4, 4
	d := newTestDevice(w, h)
	d.FailCompile("uBloomThreshold")
	r := newTestRenderer(t, d)

	var compileErr *CompileError
	if err := r.EffectErr(shader.Bloom); !errors.As(err, &compileErr) || compileErr.Stage != graphics.FragmentStage {
		t.Fatalf("EffectErr(bloom) = %v, want fragment *CompileError", err)
	}
	if r.EffectErr(shader.Blur) != nil || r.EffectErr(shader.Chromatic) != nil {
		t.Fatal("unrelated effects reported unavailable")
	}
	if d.LivePrograms() != 3 {
		t.Errorf("%d live programs, want 3", d.LivePrograms())
	}

	r.Params.BlurType = BlurDirectional
	r.Params.BloomEnabled = true
	r.Params.ChromaticEnabled = true
	d.ResetStats()
	r.RenderAt(0, w, h)

	if len(d.Draws) != 3 {
		t.Fatalf("%d draws, want pattern, blur and chromatic", len(d.Draws))
	}
	want := byte(blurID*4 + chromaticID)
	if got := d.Default.At(1, 2); got[2] != want {
		t.Errorf("pass trace = %d, want %d", got[2], want)
	}
}

func TestPatternUniforms(t *testing.T) {
	d := newTestDevice(8, 8)
	r := newTestRenderer(t, d)
	if err := r.LoadPreset("Waves"); err != nil {
		t.Fatal(err)
	}

	r.Params.Color3 = mgl32.Vec3{0.1, 0.2, 0.3}
	r.Params.Angle = 7
	// out of UI range values go through unchanged
	r.Params.Scale = 100
	r.Params.Blend = -3
	r.Params.Dither = true
	r.Params.DistortType = DistortRipple
	r.Params.LightingType = LightingEmboss
	r.RenderAt(4, 8, 6)

	id := r.pattern.ID()
	checks := map[string][]float32{
		"iResolution":   {8, 6, 1},
		"iTime":         {4},
		"uColor3":       {0.1, 0.2, 0.3},
		"uAngle":        {7},
		"uScale":        {100},
		"uBlend":        {-3},
		"uDither":       {1},
		"uDistortType":  {float32(DistortRipple)},
		"uLightingType": {float32(LightingEmboss)},
		"uRippleFreq":   {15},
	}
	for name, want := range checks {
		got, ok := d.Uniform(id, name)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if _, ok := d.Uniform(id, "uCenter"); ok {
		t.Error("uCenter is not declared by Waves but was reported")
	}
}

func TestPostUniforms(t *testing.T) {
	d := newTestDevice(8, 8)
	r := newTestRenderer(t, d)
	r.Params.BlurType = BlurRadial
	r.Params.BlurStrength = 0.75
	r.Params.ChromaticEnabled = true
	r.Params.ChromaticAngle = 2
	r.RenderAt(0, 8, 8)

	blur := r.effects[shader.Blur].program.ID()
	if v, _ := d.Uniform(blur, "uBlurType"); len(v) != 1 || v[0] != float32(BlurRadial) {
		t.Errorf("uBlurType = %v", v)
	}
	if v, _ := d.Uniform(blur, "uBlurStrength"); len(v) != 1 || v[0] != 0.75 {
		t.Errorf("uBlurStrength = %v", v)
	}
	chromatic := r.effects[shader.Chromatic].program.ID()
	if v, _ := d.Uniform(chromatic, "uChromaticAngle"); len(v) != 1 || v[0] != 2 {
		t.Errorf("uChromaticAngle = %v", v)
	}
	for _, id := range []uint32{blur, chromatic} {
		if v, _ := d.Uniform(id, shader.SceneUniform); len(v) != 1 || v[0] != 0 {
			t.Errorf("program %d: %s = %v, want unit 0", id, shader.SceneUniform, v)
		}
	}
	bloom := r.effects[shader.Bloom].program.ID()
	if _, ok := d.Uniform(bloom, "uBloomThreshold"); ok {
		t.Error("disabled bloom pass received uniforms")
	}
}

// barsShade evaluates the Bars gradient on the CPU with hard palette steps.
func barsShade(f *gltest.Fragment) [4]byte {
	res := f.Uniform("iResolution")
	u := (float64(f.X) + 0.5) / float64(res[0])
	v := (float64(f.Y) + 0.5) / float64(res[1])
	a := float64(f.Float("uAngle"))
	t := (u-0.5)*math.Cos(a) + (v-0.5)*math.Sin(a) + 0.5

	band := 1
	for _, edge := range []float64{0.25, 0.5, 0.75} {
		if t >= edge {
			band++
		}
	}
	c := f.Uniform(fmt.Sprintf("uColor%d", band))
	return [4]byte{unorm(c[0]), unorm(c[1]), unorm(c[2]), 0xff}
}

func unorm(v float32) byte {
	return byte(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

func TestBarsGradientDirection(t *testing.T) {
	const size = 64
	d := gltest.NewDevice(size, size)
	d.Shade("paletteColor", barsShade)
	r := newTestRenderer(t, d)
	r.Params.Angle = mgl32.DegToRad(45)
	r.Params.SetPalette(grayRamp)

	r.RenderAt(0, size, size)
	pix := make([]byte, size*size*4)
	d.ReadPixels(size, size, pix)
	flipRows(pix, size*4, size)

	left := averageRegion(pix, size, 0, 0, size/2, size)
	if dist(left, r.Params.Color1) >= dist(left, r.Params.Color3) {
		t.Errorf("left half average %v is not closer to color1 than color3", left)
	}
	right := averageRegion(pix, size, size/2, 0, size, size)
	if dist(right, r.Params.Color1) <= dist(right, r.Params.Color3) {
		t.Errorf("right half average %v is closer to color1 than color3", right)
	}
}

// grayRamp is a palette whose colours are ordered by brightness.
var grayRamp = [4]mgl32.Vec3{
	{0, 0, 0},
	{0.33, 0.33, 0.33},
	{0.67, 0.67, 0.67},
	{1, 1, 1},
}

// averageRegion averages a top-down RGBA image over [x0,x1)×[y0,y1).
func averageRegion(pix []byte, width, x0, y0, x1, y1 int) mgl32.Vec3 {
	var sum mgl32.Vec3
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*width + x) * 4
			sum = sum.Add(mgl32.Vec3{float32(pix[i]), float32(pix[i+1]), float32(pix[i+2])}.Mul(1.0 / 255))
		}
	}
	return sum.Mul(1 / float32((x1-x0)*(y1-y0)))
}

func dist(a, b mgl32.Vec3) float32 {
	return a.Sub(b).Len()
}
