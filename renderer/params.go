package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DistortType selects the UV distortion applied before the pattern.
type DistortType int32

const (
	DistortNone DistortType = iota
	DistortSwirl
	DistortRipple
	DistortWave
)

// LightingType selects the relief lighting applied to the palette output.
type LightingType int32

const (
	LightingNone LightingType = iota
	LightingBevel
	LightingEmboss
)

// BlurType selects the blur pass kernel. BlurNone disables the pass.
type BlurType int32

const (
	BlurNone BlurType = iota
	BlurGaussian
	BlurDirectional
	BlurRadial
)

var blurNames = []string{"none", "gaussian", "directional", "radial"}

func (b BlurType) String() string {
	if b >= 0 && int(b) < len(blurNames) {
		return blurNames[b]
	}
	return fmt.Sprintf("blur(%d)", int32(b))
}

// ParseBlurType accepts the names printed by BlurType.String.
func ParseBlurType(s string) (BlurType, error) {
	for i, name := range blurNames {
		if strings.EqualFold(s, name) {
			return BlurType(i), nil
		}
	}
	return BlurNone, fmt.Errorf("unknown blur type %q", s)
}

// Params is the full set of user-adjustable render parameters. The UI writes
// it between frames; a render only reads it. Values outside the UI ranges are
// passed through and clamped by the shaders.
type Params struct {
	Color1, Color2, Color3, Color4 mgl32.Vec3

	Angle float32 // radians
	Scale float32
	// Speed doubles as the time value for presets whose slider is labeled "Time".
	Speed float32
	Blend float32

	DistortType     DistortType
	DistortStrength float32
	RippleFreq      float32
	Noise           float32
	Center          float32
	Dither          bool

	LightingType  LightingType
	LightStrength float32
	BevelWidth    float32
	LightAngle    float32 // radians

	BlurType     BlurType
	BlurStrength float32
	BlurAngle    float32 // radians

	BloomEnabled   bool
	BloomThreshold float32
	BloomIntensity float32

	ChromaticEnabled  bool
	ChromaticStrength float32
	ChromaticAngle    float32 // radians
}

// DefaultParams returns the startup palette and parameters. All
// post-process effects are off.
func DefaultParams() Params {
	return Params{
		Color1: mgl32.Vec3{0.11, 0.25, 0.60},
		Color2: mgl32.Vec3{0.90, 0.35, 0.50},
		Color3: mgl32.Vec3{0.20, 0.60, 0.40},
		Color4: mgl32.Vec3{0.80, 0.70, 0.20},

		Angle: math.Pi / 4,
		Scale: 1.0,
		Speed: 1.0,
		Blend: 0.5,

		RippleFreq: 15.0,

		BevelWidth: 0.05,
		LightAngle: mgl32.DegToRad(45 - 90),

		BlurStrength: 0.5,

		BloomThreshold: 0.7,
		BloomIntensity: 0.5,

		ChromaticStrength: 0.005,
	}
}

// SetPalette replaces the four palette colours.
func (p *Params) SetPalette(colors [4]mgl32.Vec3) {
	p.Color1, p.Color2, p.Color3, p.Color4 = colors[0], colors[1], colors[2], colors[3]
}
