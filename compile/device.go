package compile

import (
	"strings"

	"github.com/gogpu/malioc/capability"
)

// DeviceCapabilities describes what a target device's GL driver accepts.
// The adapter uses it to specialize generic GLSL.
type DeviceCapabilities struct {
	Target capability.TargetAPI

	// ES3ShadingLanguage is set when the driver accepts GLSL ES 3.00.
	ES3ShadingLanguage bool

	StandardDerivatives   bool
	HalfFloatRenderTarget bool

	// FramebufferFetch is set for any of the EXT, NV or ARM framebuffer
	// fetch extensions.
	FramebufferFetch bool

	ShaderTextureLOD bool

	// ShaderTextureCubeLOD is false on Mali-400 regardless of extensions.
	ShaderTextureCubeLOD bool

	MaxVaryingVectors int
}

// Extension names consulted by CapabilitiesFor.
const (
	ExtStandardDerivatives = "GL_OES_standard_derivatives"
	ExtShaderTextureLOD    = "GL_EXT_shader_texture_lod"
	ExtFramebufferFetchEXT = "GL_EXT_shader_framebuffer_fetch"
	ExtFramebufferFetchNV  = "GL_NV_shader_framebuffer_fetch"
	ExtFramebufferFetchARM = "GL_ARM_shader_framebuffer_fetch"
)

// CapabilitiesFor derives the device capabilities of a platform from its
// driver's max API version and extension list.
func CapabilitiesFor(p capability.Platform) DeviceCapabilities {
	d := p.Driver()
	es3 := d.MaxAPI() >= 300
	fetch := d.HasExtension(ExtFramebufferFetchEXT) ||
		d.HasExtension(ExtFramebufferFetchNV) ||
		d.HasExtension(ExtFramebufferFetchARM)
	return DeviceCapabilities{
		Target:                p.Target(),
		ES3ShadingLanguage:    es3,
		StandardDerivatives:   es3 || d.HasExtension(ExtStandardDerivatives),
		HalfFloatRenderTarget: d.HasExtension(capability.ExtColorBufferHalfFloat),
		FramebufferFetch:      fetch,
		ShaderTextureLOD:      d.HasExtension(ExtShaderTextureLOD),
		ShaderTextureCubeLOD:  !strings.Contains(d.Revision().Core().Name(), "Mali-400"),
		MaxVaryingVectors:     12,
	}
}
