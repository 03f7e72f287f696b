package renderer

import (
	"fmt"

	"github.com/megakode/wallrus/graphics"
)

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Stage graphics.ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// UnknownPresetError is returned by LoadPreset for names the registry lacks.
type UnknownPresetError struct {
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown preset: %q", e.Name)
}

// FramebufferIncompleteError reports a render target that failed the
// completeness check after allocation.
type FramebufferIncompleteError struct {
	Target string
	Status graphics.FramebufferStatus
}

func (e *FramebufferIncompleteError) Error() string {
	return fmt.Sprintf("%s framebuffer is not complete (status %s)", e.Target, e.Status)
}
