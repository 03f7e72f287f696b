package export

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is an export size in pixels.
type Resolution struct {
	Name          string
	Width, Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d)", r.Name, r.Width, r.Height)
}

var (
	HD    = Resolution{"HD", 1920, 1080}
	QHD   = Resolution{"QHD", 2560, 1440}
	UHD4K = Resolution{"4K", 3840, 2160}
	// Phone is portrait, 9:20.
	Phone = Resolution{"Phone", 1080, 2400}
)

// Display is the resolution of the current monitor or preview surface.
func Display(width, height int) Resolution {
	return Resolution{"Display", width, height}
}

// Resolutions lists the choices offered for export, display size first.
func Resolutions(displayWidth, displayHeight int) []Resolution {
	return []Resolution{Display(displayWidth, displayHeight), HD, QHD, UHD4K, Phone}
}

// ParseResolution accepts a preset name (display, hd, qhd, 4k, phone; case
// insensitive) or an explicit WxH size. "display" resolves to the given
// display size.
func ParseResolution(s string, displayWidth, displayHeight int) (Resolution, error) {
	for _, r := range Resolutions(displayWidth, displayHeight) {
		if strings.EqualFold(s, r.Name) {
			return r, nil
		}
	}
	if strings.EqualFold(s, "uhd") {
		return UHD4K, nil
	}

	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("unknown resolution %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return Resolution{}, fmt.Errorf("resolution %q must be positive", s)
	}
	return Resolution{Name: "Custom", Width: w, Height: h}, nil
}
