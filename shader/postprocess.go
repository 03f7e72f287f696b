package shader

import "fmt"

// Effect identifies a post-process pass.
type Effect int

const (
	Blur Effect = iota
	Bloom
	Chromatic
)

// NumEffects is the number of post-process effects.
const NumEffects = 3

// Effects returns every effect in pipeline order.
func Effects() [NumEffects]Effect {
	return [NumEffects]Effect{Blur, Bloom, Chromatic}
}

func (e Effect) String() string {
	switch e {
	case Blur:
		return "blur"
	case Bloom:
		return "bloom"
	case Chromatic:
		return "chromatic"
	default:
		return fmt.Sprintf("effect(%d)", int(e))
	}
}

// SceneUniform is the sampler every post-process shader reads its input from.
const SceneUniform = "uScene"

// PostProcessSource returns the fragment source of an effect.
func PostProcessSource(e Effect) string {
	switch e {
	case Blur:
		return postPreamble + blurFragment
	case Bloom:
		return postPreamble + bloomFragment
	case Chromatic:
		return postPreamble + chromaticFragment
	default:
		return ""
	}
}

const postPreamble = `#version 300 es
precision highp float;
precision highp int;

uniform vec3      iResolution;
uniform sampler2D uScene;

out vec4 fragColor;
`

const blurFragment = `
uniform int   uBlurType;
uniform float uBlurStrength;
uniform float uBlurAngle;

vec3 gaussian(vec2 uv, vec2 texel, float radius) {
    vec3 sum = vec3(0.0);
    float total = 0.0;
    for (int x = -4; x <= 4; x++) {
        for (int y = -4; y <= 4; y++) {
            vec2 o = vec2(float(x), float(y));
            float w = exp(-dot(o, o) / 8.0);
            sum += texture(uScene, uv + o * texel * radius).rgb * w;
            total += w;
        }
    }
    return sum / total;
}

vec3 directional(vec2 uv, vec2 texel, float radius) {
    vec2 dir = vec2(cos(uBlurAngle), sin(uBlurAngle)) * texel * radius;
    vec3 sum = vec3(0.0);
    float total = 0.0;
    for (int i = -8; i <= 8; i++) {
        float w = exp(-float(i * i) / 32.0);
        sum += texture(uScene, uv + dir * float(i)).rgb * w;
        total += w;
    }
    return sum / total;
}

vec3 radial(vec2 uv, float amount) {
    vec2 toCenter = vec2(0.5) - uv;
    vec3 sum = vec3(0.0);
    for (int i = 0; i < 16; i++) {
        float s = float(i) / 15.0;
        sum += texture(uScene, uv + toCenter * s * amount).rgb;
    }
    return sum / 16.0;
}

void main() {
    vec2 uv = gl_FragCoord.xy / iResolution.xy;
    vec2 texel = 1.0 / iResolution.xy;
    float strength = clamp(uBlurStrength, 0.0, 1.0);
    // kernel radius follows the short side so exports match the preview
    float radius = strength * min(iResolution.x, iResolution.y) / 90.0;

    vec3 color;
    if (uBlurType == 1) {
        color = gaussian(uv, texel, radius);
    } else if (uBlurType == 2) {
        color = directional(uv, texel, radius);
    } else if (uBlurType == 3) {
        color = radial(uv, strength * 0.2);
    } else {
        color = texture(uScene, uv).rgb;
    }
    fragColor = vec4(color, 1.0);
}
`

const bloomFragment = `
uniform float uBloomThreshold;
uniform float uBloomIntensity;

vec3 bright(vec2 uv) {
    vec3 c = texture(uScene, uv).rgb;
    float luma = dot(c, vec3(0.2126, 0.7152, 0.0722));
    float t = clamp(uBloomThreshold, 0.0, 1.0);
    return c * smoothstep(t, t + 0.1, luma);
}

void main() {
    vec2 uv = gl_FragCoord.xy / iResolution.xy;
    vec2 texel = 1.0 / iResolution.xy;
    float radius = min(iResolution.x, iResolution.y) / 180.0;

    vec3 glow = vec3(0.0);
    float total = 0.0;
    for (int x = -4; x <= 4; x++) {
        for (int y = -4; y <= 4; y++) {
            vec2 o = vec2(float(x), float(y));
            float w = exp(-dot(o, o) / 8.0);
            glow += bright(uv + o * texel * radius) * w;
            total += w;
        }
    }
    vec3 base = texture(uScene, uv).rgb;
    vec3 color = base + glow / total * clamp(uBloomIntensity, 0.0, 4.0);
    fragColor = vec4(clamp(color, 0.0, 1.0), 1.0);
}
`

const chromaticFragment = `
uniform float uChromaticStrength;
uniform float uChromaticAngle;

void main() {
    vec2 uv = gl_FragCoord.xy / iResolution.xy;
    vec2 offset = vec2(cos(uChromaticAngle), sin(uChromaticAngle)) * clamp(uChromaticStrength, 0.0, 0.1);
    float r = texture(uScene, uv + offset).r;
    float g = texture(uScene, uv).g;
    float b = texture(uScene, uv - offset).b;
    fragColor = vec4(r, g, b, 1.0);
}
`
