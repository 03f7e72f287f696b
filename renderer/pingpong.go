package renderer

import (
	"log"

	"github.com/megakode/wallrus/graphics"
)

// pingPong is a pair of framebuffer/texture targets that post-process passes
// alternate between, so no pass samples the image it is writing.
//
// Both textures always share one size. Storage is allocated on the first
// ensure call and re-specified only when the requested size changes.
type pingPong struct {
	dev       graphics.Device
	fbo       [2]uint32
	textureID [2]uint32
	width     int
	height    int
}

func newPingPong(dev graphics.Device) *pingPong {
	return &pingPong{dev: dev}
}

func (p *pingPong) allocated() bool {
	return p.textureID[0] != 0
}

// ensure makes both targets width×height. It leaves an arbitrary framebuffer
// bound when it had to allocate; callers rebind before drawing. Both targets
// are always (re)specified; an incomplete one is reported but stays usable
// for the size bookkeeping.
func (p *pingPong) ensure(width, height int) error {
	if p.allocated() && width == p.width && height == p.height {
		return nil
	}

	var err error
	if !p.allocated() {
		for i := 0; i < 2; i++ {
			p.textureID[i] = p.dev.NewTexture(width, height)
			fbo, status := p.dev.NewFramebuffer(p.textureID[i])
			p.fbo[i] = fbo
			if status != graphics.FramebufferComplete && err == nil {
				err = &FramebufferIncompleteError{Target: "ping-pong", Status: status}
			}
		}
	} else {
		for i := 0; i < 2; i++ {
			p.dev.ResizeTexture(p.textureID[i], width, height)
			if status := p.dev.CheckFramebuffer(p.fbo[i]); status != graphics.FramebufferComplete && err == nil {
				err = &FramebufferIncompleteError{Target: "ping-pong", Status: status}
			}
		}
		log.Printf("Resized ping-pong targets to %dx%d", width, height)
	}
	p.width, p.height = width, height
	return err
}

func (p *pingPong) framebuffer(i int) uint32 { return p.fbo[i] }
func (p *pingPong) texture(i int) uint32     { return p.textureID[i] }

func (p *pingPong) destroy() {
	for i := 0; i < 2; i++ {
		if p.fbo[i] != 0 {
			p.dev.DeleteFramebuffer(p.fbo[i])
		}
		if p.textureID[i] != 0 {
			p.dev.DeleteTexture(p.textureID[i])
		}
	}
	p.fbo = [2]uint32{}
	p.textureID = [2]uint32{}
	p.width, p.height = 0, 0
}
