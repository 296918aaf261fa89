// Package material defines the contract between the analysis pipeline and
// the host material system, and provides NagaSystem, a cross-compiler that
// turns WGSL materials into GLSL ES shader maps with github.com/gogpu/naga.
//
// A Resource compiles one material asynchronously:
//
//	res := sys.NewResource(m)
//	if !res.CacheShaders(capability.TargetES2) {
//		// request rejected
//	}
//	for !res.IsCompilationFinished() {
//		// poll
//	}
//	res.FinishCompilation()
//	if sm := res.ShaderMap(); sm != nil {
//		// sm.Shaders
//	}
package material

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/capability"
)

// Material is a host material: shader source plus the vertex factories it
// is compiled against.
type Material struct {
	// Name identifies the material in logs and reports.
	Name string

	// Source is the WGSL source holding every entry point.
	Source string

	// VertexFactories lists the vertex factory type names the material
	// is used with. Empty compiles each entry point once with no factory.
	VertexFactories []string

	// Descriptions maps entry point names to human-readable usage, e.g.
	// "fs_main" → "Base pass pixel shader".
	Descriptions map[string]string
}

// Shader is one cross-compiled shader of a shader map.
type Shader struct {
	// Name is the entry point name.
	Name string

	// Stage is the pipeline stage. Only vertex and fragment shaders are
	// compiled by the offline compiler.
	Stage gputypes.ShaderStage

	// VertexFactory is the vertex factory type name, or "".
	VertexFactory string

	// Source is the generated GLSL ES source.
	Source string
}

// ShaderMap is the output of a successful cross-compilation.
type ShaderMap struct {
	Material string
	Target   capability.TargetAPI
	Shaders  []Shader
}

// Len returns the number of shaders.
func (m *ShaderMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Shaders)
}

// Resource is the per-material handle to the host cross-compiler.
//
// Methods are called from a single orchestrating goroutine; the
// cross-compilation itself runs in the background.
type Resource interface {
	// CacheShaders requests an asynchronous cross-compilation for target.
	// It returns false when the request is rejected synchronously.
	// A new request replaces the results of the previous one.
	CacheShaders(target capability.TargetAPI) bool

	// IsCompilationFinished reports whether the last request completed.
	// It never blocks.
	IsCompilationFinished() bool

	// FinishCompilation blocks until the last request completes.
	FinishCompilation()

	// ShaderMap returns the compiled shaders, or nil when the last request
	// produced none.
	ShaderMap() *ShaderMap

	// CompileErrors returns the errors reported by the last request.
	CompileErrors() []string

	// ShaderDescriptions maps shader names to human-readable usage.
	ShaderDescriptions() map[string]string
}

// System creates Resources for materials.
type System interface {
	NewResource(m Material) Resource
}
