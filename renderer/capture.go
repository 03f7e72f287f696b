package renderer

import (
	"fmt"
	"log"

	"github.com/megakode/wallrus/graphics"
)

// CaptureFrame renders the current frame at width×height into a dedicated
// target and returns its RGBA pixels, top row first.
func (r *Renderer) CaptureFrame(width, height int) ([]byte, error) {
	return r.CaptureFrameAt(r.Elapsed(), width, height)
}

// CaptureFrameAt is CaptureFrame for a fixed animation time.
//
// The capture target, and the intermediates post-processing needs at the
// capture size, are separate from the preview's ping-pong pair, so exporting
// at a large size does not resize the preview's targets. They are deleted
// before returning, and the framebuffer bound on entry is bound again.
func (r *Renderer) CaptureFrameAt(t float32, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	if r.released {
		return nil, ErrReleased
	}

	prev := r.dev.BoundFramebuffer()
	texture := r.dev.NewTexture(width, height)
	fbo, status := r.dev.NewFramebuffer(texture)
	// post-processing at capture size gets its own intermediates
	preview := r.targets
	r.targets = newPingPong(r.dev)
	defer func() {
		r.targets.destroy()
		r.targets = preview
		r.dev.BindFramebuffer(prev)
		r.dev.DeleteFramebuffer(fbo)
		r.dev.DeleteTexture(texture)
	}()
	if status != graphics.FramebufferComplete {
		log.Printf("Capture: %v", &FramebufferIncompleteError{Target: "capture", Status: status})
	}

	// the last draw of RenderAt always targets the framebuffer bound on entry
	r.RenderAt(t, width, height)

	pixels := make([]byte, width*height*4)
	r.dev.ReadPixels(width, height, pixels)
	flipRows(pixels, width*4, height)
	return pixels, nil
}

// flipRows reverses the row order of an image in place.
func flipRows(pix []byte, stride, height int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
