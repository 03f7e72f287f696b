package shader

// Range describes a slider: bounds, step and default value.
type Range struct {
	Min, Max, Step, Default float64
}

// Controls lists which parameter controls apply to a preset.
type Controls struct {
	HasAngle  bool
	HasScale  bool
	HasSpeed  bool
	HasCenter bool
	// SpeedLabel is the label for the speed slider ("Speed" or "Time").
	SpeedLabel string
	SpeedRange Range
	ScaleRange Range
}

// Preset is a named pattern shader.
type Preset struct {
	Name     string
	Fragment string
	Controls Controls
}

var (
	defaultSpeed = Range{0.0, 3.0, 0.1, 1.0}
	timeRange    = Range{0.0, 20.0, 0.1, 0.0}
	defaultScale = Range{0.1, 5.0, 0.1, 1.0}
)

// presets in display order.
var presets = []Preset{
	{
		Name:     "Bars",
		Fragment: patternSource(barsUniforms, barsPattern),
		Controls: Controls{HasAngle: true, SpeedLabel: "Speed", SpeedRange: defaultSpeed, ScaleRange: defaultScale},
	},
	{
		Name:     "Circle",
		Fragment: patternSource(circleUniforms, circlePattern),
		Controls: Controls{HasScale: true, HasCenter: true, SpeedLabel: "Time", SpeedRange: timeRange, ScaleRange: Range{0.5, 3.0, 0.1, 1.0}},
	},
	{
		Name:     "Plasma",
		Fragment: patternSource(plasmaUniforms, plasmaPattern),
		Controls: Controls{HasScale: true, HasSpeed: true, SpeedLabel: "Time", SpeedRange: timeRange, ScaleRange: defaultScale},
	},
	{
		Name:     "Waves",
		Fragment: patternSource(wavesUniforms, wavesPattern),
		Controls: Controls{HasAngle: true, HasScale: true, HasSpeed: true, SpeedLabel: "Time", SpeedRange: timeRange, ScaleRange: defaultScale},
	},
	{
		Name:     "Terrain",
		Fragment: patternSource(terrainUniforms, terrainPattern),
		Controls: Controls{HasScale: true, HasSpeed: true, SpeedLabel: "Time", SpeedRange: timeRange, ScaleRange: Range{0.1, 2.0, 0.01, 0.5}},
	},
}

var presetIndex = func() map[string]int {
	m := make(map[string]int, len(presets))
	for i, p := range presets {
		m[p.Name] = i
	}
	return m
}()

// Names returns the preset names in display order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the preset with the given name.
func Lookup(name string) (Preset, bool) {
	i, ok := presetIndex[name]
	if !ok {
		return Preset{}, false
	}
	return presets[i], true
}

func patternSource(uniforms, pattern string) string {
	return patternPreamble + uniforms + pattern + patternMain
}

const patternPreamble = `#version 300 es
precision highp float;
precision highp int;

uniform vec3  iResolution;
uniform float iTime;
uniform vec3  uColor1;
uniform vec3  uColor2;
uniform vec3  uColor3;
uniform vec3  uColor4;
uniform float uBlend;
uniform int   uDistortType;
uniform float uDistortStrength;
uniform float uRippleFreq;
uniform float uNoise;
uniform float uDither;
uniform int   uLightingType;
uniform float uLightStrength;
uniform float uBevelWidth;
uniform float uLightAngle;

out vec4 fragColor;

vec2 rotate2(vec2 p, float a) {
    float c = cos(a);
    float s = sin(a);
    return vec2(c * p.x - s * p.y, s * p.x + c * p.y);
}

vec2 distortUV(vec2 uv) {
    float strength = clamp(uDistortStrength, 0.0, 1.0);
    if (uDistortType == 0 || strength <= 0.0) {
        return uv;
    }
    vec2 c = uv - 0.5;
    float r = length(c);
    float freq = clamp(uRippleFreq, 1.0, 100.0);
    if (uDistortType == 1) {
        // swirl
        return rotate2(c, strength * 6.2831853 * (1.0 - clamp(r * 2.0, 0.0, 1.0))) + 0.5;
    }
    if (uDistortType == 2) {
        // ripple
        vec2 dir = r > 0.0001 ? c / r : vec2(0.0);
        return uv + dir * sin(r * freq * 6.2831853) * strength * 0.05;
    }
    // wave
    return uv + vec2(sin(uv.y * freq), sin(uv.x * freq)) * strength * 0.05;
}

vec3 paletteColor(float t) {
    t = clamp(t, 0.0, 1.0);
    float fw = clamp(uBlend, 0.0, 1.0) * 0.25;
    float f1 = (fw > 0.0001) ? smoothstep(0.25 - fw, 0.25 + fw, t) : step(0.25, t);
    float f2 = (fw > 0.0001) ? smoothstep(0.50 - fw, 0.50 + fw, t) : step(0.50, t);
    float f3 = (fw > 0.0001) ? smoothstep(0.75 - fw, 0.75 + fw, t) : step(0.75, t);
    vec3 color = uColor1;
    color = mix(color, uColor2, f1);
    color = mix(color, uColor3, f2);
    color = mix(color, uColor4, f3);
    return color;
}

float hash(vec2 p) {
    vec3 p3 = fract(vec3(p.xyx) * 0.1031);
    p3 += dot(p3, p3.yzx + 33.33);
    return fract((p3.x + p3.y) * p3.z);
}

float bayer4x4(vec2 p) {
    ivec2 i = ivec2(p) & 3;
    int idx = i.x + i.y * 4;
    int b[16] = int[16](0, 8, 2, 10, 12, 4, 14, 6, 3, 11, 1, 9, 15, 7, 13, 5);
    return float(b[idx]) / 16.0;
}

vec3 applyDither(vec3 color, vec2 fragCoord) {
    if (uDither < 0.5) {
        return color;
    }
    float levels = 4.0;
    float threshold = bayer4x4(fragCoord) - 0.5;
    float step_ = 1.0 / levels;
    return floor(color / step_ + threshold + 0.5) * step_;
}

vec3 applyLighting(vec3 color, float t) {
    if (uLightingType == 0) {
        return color;
    }
    float strength = clamp(uLightStrength, 0.0, 1.0);
    vec2 light = vec2(cos(uLightAngle), sin(uLightAngle));
    // height gradient in units of the short side, so the look is resolution independent
    vec2 grad = vec2(dFdx(t), dFdy(t)) * min(iResolution.x, iResolution.y);
    float shade;
    if (uLightingType == 1) {
        // bevel: light the band boundaries only
        float width = clamp(uBevelWidth, 0.001, 0.5);
        float edge = abs(fract(t * 4.0) - 0.5) * 2.0;
        float mask = smoothstep(1.0 - width * 4.0, 1.0, edge);
        float len = length(grad);
        shade = len > 0.0001 ? dot(grad / len, light) * mask : 0.0;
    } else {
        // emboss
        shade = clamp(dot(grad, light) * 0.5, -1.0, 1.0);
    }
    return clamp(color + shade * strength * 0.5, 0.0, 1.0);
}
`

const patternMain = `
void main() {
    vec2 uv = distortUV(gl_FragCoord.xy / iResolution.xy);
    float t = clamp(pattern(uv), 0.0, 1.0);
    vec3 color = paletteColor(t);
    color = applyLighting(color, t);
    color += hash(gl_FragCoord.xy) * clamp(uNoise, 0.0, 1.0) * 0.3;
    color = clamp(color, 0.0, 1.0);
    color = applyDither(color, gl_FragCoord.xy);
    fragColor = vec4(color, 1.0);
}
`

const barsUniforms = `
uniform float uAngle;
`

const barsPattern = `
float pattern(vec2 uv) {
    vec2 dir = vec2(cos(uAngle), sin(uAngle));
    return dot(uv - 0.5, dir) + 0.5;
}
`

const circleUniforms = `
uniform float uScale;
uniform float uCenter;
`

const circlePattern = `
float pattern(vec2 uv) {
    vec2 center = vec2(0.5 + clamp(uCenter, -1.0, 1.0) * 0.4, 0.5);
    return length(uv - center) * clamp(uScale, 0.01, 10.0);
}
`

const plasmaUniforms = `
uniform float uScale;
uniform float uSpeed;
`

const plasmaPattern = `
float pattern(vec2 uv) {
    float time = uSpeed;
    vec2 p = (uv - 0.5) * clamp(uScale, 0.01, 10.0) * 10.0;

    float v = 0.0;
    v += sin(p.x + time);
    v += sin((p.y + time) * 0.5);
    v += sin((p.x + p.y + time) * 0.5);
    float cx = p.x + 0.5 * sin(time * 0.33);
    float cy = p.y + 0.5 * cos(time * 0.5);
    v += sin(sqrt(cx * cx + cy * cy + 1.0) + time);

    v = v * 0.5;
    return sin(v * 3.14159) * 0.5 + 0.5;
}
`

const wavesUniforms = `
uniform float uAngle;
uniform float uScale;
uniform float uSpeed;
`

const wavesPattern = `
float pattern(vec2 uv) {
    float time = uSpeed;
    float scale = clamp(uScale, 0.01, 10.0);
    vec2 center = uv - 0.5;
    vec2 ruv = rotate2(center, uAngle) + 0.5;

    float wave = 0.0;
    wave += sin(ruv.x * scale * 20.0 + time * 2.0) * 0.25;
    wave += sin(ruv.x * scale * 10.0 - time * 1.5 + ruv.y * 5.0) * 0.25;
    wave += sin(ruv.y * scale * 15.0 + time * 1.0) * 0.15;
    wave += sin(length(center) * scale * 15.0 - time * 2.0) * 0.2;

    float t = clamp(wave + ruv.y, 0.0, 1.0);
    return t * t * (3.0 - 2.0 * t);
}
`

const terrainUniforms = `
uniform float uScale;
uniform float uSpeed;
`

const terrainPattern = `
vec2 hash2(vec2 p) {
    p = vec2(dot(p, vec2(127.1, 311.7)), dot(p, vec2(269.5, 183.3)));
    return -1.0 + 2.0 * fract(sin(p) * 43758.5453123);
}

float gnoise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    vec2 u = f * f * f * (f * (f * 6.0 - 15.0) + 10.0);

    float a = dot(hash2(i + vec2(0.0, 0.0)), f - vec2(0.0, 0.0));
    float b = dot(hash2(i + vec2(1.0, 0.0)), f - vec2(1.0, 0.0));
    float c = dot(hash2(i + vec2(0.0, 1.0)), f - vec2(0.0, 1.0));
    float d = dot(hash2(i + vec2(1.0, 1.0)), f - vec2(1.0, 1.0));

    return mix(mix(a, b, u.x), mix(c, d, u.x), u.y) * 0.5 + 0.5;
}

float pattern(vec2 uv) {
    vec2 p = (uv - 0.5) * clamp(uScale, 0.01, 10.0) * 2.0;
    p += vec2(uSpeed * 1.7, uSpeed * 1.3);

    float height = gnoise(p);
    height = clamp((height - 0.15) * 1.4, 0.0, 1.0);
    // two smoothsteps for round contours
    height = height * height * (3.0 - 2.0 * height);
    return height * height * (3.0 - 2.0 * height);
}
`
