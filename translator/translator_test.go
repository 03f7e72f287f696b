package translator

import (
	"context"
	"strings"
	"testing"

	"github.com/megakode/wallrus/shader"
)

func TestTranslateFragment(t *testing.T) {
	for _, isGLES := range []bool{false, true} {
		tr, err := New(context.Background(), isGLES)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		out, err := tr.TranslateFragment(shader.PostProcessSource(shader.Chromatic))
		if err != nil {
			t.Fatalf("gles=%t: %v", isGLES, err)
		}
		if !strings.Contains(out.Code, "main") {
			t.Errorf("gles=%t: translated code has no main:\n%s", isGLES, out.Code)
		}
		for _, name := range []string{"uScene", "uChromaticStrength"} {
			if mapped, ok := out.Uniforms[name]; !ok || mapped == "" {
				t.Errorf("gles=%t: uniform %s not mapped (%v)", isGLES, name, out.Uniforms)
			}
		}
	}
}

func TestTranslateFragmentError(t *testing.T) {
	tr, err := New(context.Background(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tr.TranslateFragment("#version 300 es\nvoid main() { undefined(); }\n"); err == nil {
		t.Error("invalid source translated without error")
	}
}
