// Package translator adapts goshadertranslator to shader.Translator so the
// GLSL ES 3.00 sources can be compiled on desktop core-profile contexts.
package translator

import (
	"context"
	"fmt"

	"github.com/megakode/wallrus/shader"
	gst "github.com/richinsley/goshadertranslator"
)

// Translator rewrites WebGL2 fragment shaders for one output dialect.
type Translator struct {
	st     *gst.ShaderTranslator
	isGLES bool
}

// New creates a translator targeting ESSL when isGLES is set and GLSL 4.10
// otherwise.
func New(ctx context.Context, isGLES bool) (*Translator, error) {
	st, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	return &Translator{st: st, isGLES: isGLES}, nil
}

var _ shader.Translator = (*Translator)(nil)

// TranslateFragment translates source and records the mapped uniform names.
func (t *Translator) TranslateFragment(source string) (*shader.Translation, error) {
	outputFormat := gst.OutputFormatGLSL410
	if t.isGLES {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := t.st.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	uniforms := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		uniforms[name] = v.MappedName
	}
	return &shader.Translation{Code: out.Code, Uniforms: uniforms}, nil
}
