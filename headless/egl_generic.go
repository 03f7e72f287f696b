//go:build !linux

package headless

import (
	"fmt"

	"github.com/megakode/wallrus/graphics"
)

// Headless is unavailable off Linux; NewHeadless always fails.
type Headless struct{}

var _ graphics.Context = (*Headless)(nil)

func NewHeadless(width, height int) (*Headless, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}

func (h *Headless) MakeCurrent()                   {}
func (h *Headless) Shutdown()                      {}
func (h *Headless) ShouldClose() bool              { return true }
func (h *Headless) EndFrame()                      {}
func (h *Headless) GetFramebufferSize() (int, int) { return 0, 0 }
func (h *Headless) Time() float64                  { return 0 }
func (h *Headless) IsGLES() bool                   { return true }
