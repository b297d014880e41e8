package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources, one per primitive pipeline.

//go:embed shaders/rect.wgsl
var rectShaderSource string

//go:embed shaders/shadow.wgsl
var shadowShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

//go:embed shaders/underline.wgsl
var underlineShaderSource string

//go:embed shaders/host_texture.wgsl
var hostTextureShaderSource string

//go:embed shaders/path.wgsl
var pathShaderSource string

// shaderSources maps shader names to their WGSL source, in pipeline
// creation order.
func shaderSources() map[string]string {
	return map[string]string{
		"rect":         rectShaderSource,
		"shadow":       shadowShaderSource,
		"glyph":        glyphShaderSource,
		"image":        imageShaderSource,
		"underline":    underlineShaderSource,
		"host_texture": hostTextureShaderSource,
		"path":         pathShaderSource,
	}
}

// ValidateShaders compiles every embedded shader through naga and
// returns the first failure. Drivers report shader errors lazily at
// draw time; running the sources through naga up front surfaces them
// at renderer construction instead.
func ValidateShaders() error {
	for name, src := range shaderSources() {
		if src == "" {
			return fmt.Errorf("gpu: shader %s is empty", name)
		}
		if _, err := naga.Compile(src); err != nil {
			return fmt.Errorf("gpu: validate shader %s: %w", name, err)
		}
	}
	return nil
}

// CompileShaderToSPIRV compiles WGSL source to a SPIR-V word slice for
// backends that consume SPIR-V directly.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
