//go:build gpu && linux

package renderer

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/graphics"
	"github.com/megakode/wallrus/headless"
	"github.com/megakode/wallrus/shader"
)

// newGPURenderer creates a renderer on a real EGL context. Run with
// `go test -tags gpu ./renderer` on a machine with an EGL driver.
func newGPURenderer(t *testing.T, width, height int) (*Renderer, *graphics.GLDevice) {
	t.Helper()
	runtime.LockOSThread()

	ctx, err := headless.NewHeadless(width, height)
	if err != nil {
		runtime.UnlockOSThread()
		t.Skipf("no EGL context: %v", err)
	}
	dev, err := graphics.NewGLDevice()
	if err != nil {
		ctx.Shutdown()
		runtime.UnlockOSThread()
		t.Fatalf("NewGLDevice: %v", err)
	}
	t.Logf("GL: %s", dev.Describe())

	r := New(dev, Options{GLES: ctx.IsGLES()})
	t.Cleanup(func() {
		r.Release()
		ctx.Shutdown()
		runtime.UnlockOSThread()
	})
	return r, dev
}

func TestGPUPresetsAndEffectsBuild(t *testing.T) {
	r, _ := newGPURenderer(t, 16, 16)
	for _, e := range shader.Effects() {
		if err := r.EffectErr(e); err != nil {
			t.Errorf("%s: %v", e, err)
		}
	}
	for _, name := range shader.Names() {
		if err := r.LoadPreset(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestGPUBarsGradientDirection(t *testing.T) {
	r, _ := newGPURenderer(t, 64, 64)
	r.Params.Angle = mgl32.DegToRad(45)
	r.Params.SetPalette(grayRamp)

	pix, err := r.CaptureFrameAt(0, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	left := averageRegion(pix, 64, 0, 0, 32, 64)
	if dist(left, r.Params.Color1) >= dist(left, r.Params.Color3) {
		t.Errorf("left half average %v is not closer to color1 than color3", left)
	}
}

func TestGPUResolutionIndependence(t *testing.T) {
	r, _ := newGPURenderer(t, 16, 16)
	if err := r.LoadPreset("Waves"); err != nil {
		t.Fatal(err)
	}
	r.Params.BlurType = BlurGaussian
	r.Params.BloomEnabled = true

	quadrants := func(w, h int) [4]mgl32.Vec3 {
		pix, err := r.CaptureFrameAt(1, w, h)
		if err != nil {
			t.Fatal(err)
		}
		return [4]mgl32.Vec3{
			averageRegion(pix, w, 0, 0, w/2, h/2),
			averageRegion(pix, w, w/2, 0, w, h/2),
			averageRegion(pix, w, 0, h/2, w/2, h),
			averageRegion(pix, w, w/2, h/2, w, h),
		}
	}
	hd, uhd := quadrants(1920, 1080), quadrants(3840, 2160)
	for i := range hd {
		if d := dist(hd[i], uhd[i]); d > 0.02 {
			t.Errorf("quadrant %d: 1080p %v vs 2160p %v (distance %.4f)", i, hd[i], uhd[i], d)
		}
	}
}

func TestGPUCaptureMatchesInteractiveRender(t *testing.T) {
	const w, h = 48, 32
	r, dev := newGPURenderer(t, w, h)
	r.Params.ChromaticEnabled = true
	r.Params.ChromaticStrength = 0.02

	dev.BindFramebuffer(0)
	r.RenderAt(2, w, h)
	interactive := make([]byte, w*h*4)
	dev.ReadPixels(w, h, interactive)
	flipRows(interactive, w*4, h)

	captured, err := r.CaptureFrameAt(2, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(captured, interactive) {
		t.Error("capture differs from the interactive frame")
	}
}
