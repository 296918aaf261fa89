package material

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/internal/logging"
)

// NagaSystem is a System that cross-compiles WGSL materials to GLSL ES.
//
// ES 2.0 targets are emitted as GLSL ES 3.00, the oldest dialect naga
// writes; the compile stage lowers them to GLSL ES 1.00 for the device.
//
// NagaSystem is safe for concurrent use.
type NagaSystem struct {
	cache *translationCache
}

var _ System = (*NagaSystem)(nil)

// NagaOption configures a NagaSystem.
type NagaOption func(*NagaSystem)

// WithCacheSize sets the number of cached translations. Zero disables the
// cache.
func WithCacheSize(n int) NagaOption {
	return func(s *NagaSystem) {
		s.cache = newTranslationCache(n)
	}
}

// NewNagaSystem returns a cross-compiler backed by naga.
func NewNagaSystem(opts ...NagaOption) *NagaSystem {
	s := &NagaSystem{cache: newTranslationCache(DefaultCacheSize)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewResource implements System.
func (s *NagaSystem) NewResource(m Material) Resource {
	return &nagaResource{sys: s, mat: m}
}

// CacheStats returns translation cache statistics.
func (s *NagaSystem) CacheStats() CacheStats { return s.cache.stats() }

// glslVersion returns the dialect naga emits for target.
func glslVersion(target capability.TargetAPI) glsl.Version {
	switch target {
	case capability.TargetES31AEP:
		return glsl.VersionES310
	default:
		return glsl.VersionES300
	}
}

func stageOf(s ir.ShaderStage) gputypes.ShaderStage {
	switch s {
	case ir.StageVertex:
		return gputypes.ShaderStageVertex
	case ir.StageFragment:
		return gputypes.ShaderStageFragment
	case ir.StageCompute:
		return gputypes.ShaderStageCompute
	default:
		return gputypes.ShaderStageNone
	}
}

func (s *NagaSystem) translate(source string, target capability.TargetAPI) translation {
	key := translationKey{source: source, target: target}
	if t, ok := s.cache.get(key); ok {
		return t
	}
	t := crossCompile(source, target)
	s.cache.put(key, t)
	return t
}

// crossCompile runs WGSL → IR → GLSL for every entry point. Any error
// discards the whole translation.
func crossCompile(source string, target capability.TargetAPI) translation {
	ast, err := naga.Parse(source)
	if err != nil {
		return translation{errs: []string{err.Error()}}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return translation{errs: []string{err.Error()}}
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return translation{errs: []string{err.Error()}}
	}
	if len(verrs) > 0 {
		errs := make([]string, len(verrs))
		for i, e := range verrs {
			errs[i] = e.Error()
		}
		return translation{errs: errs}
	}

	var t translation
	version := glslVersion(target)
	for _, ep := range module.EntryPoints {
		st := stageOf(ep.Stage)
		if st == gputypes.ShaderStageCompute && !version.SupportsCompute() {
			// Kept so the compile stage reports it as unsupported.
			t.entries = append(t.entries, entryPoint{name: ep.Name, stage: st})
			continue
		}
		src, _, err := glsl.Compile(module, glsl.Options{
			LangVersion:        version,
			EntryPoint:         ep.Name,
			ForceHighPrecision: true,
		})
		if err != nil {
			t.errs = append(t.errs, fmt.Sprintf("%s: %v", ep.Name, err))
			continue
		}
		t.entries = append(t.entries, entryPoint{name: ep.Name, stage: st, source: src})
	}
	if len(t.errs) > 0 {
		t.entries = nil
	}
	return t
}

// nagaResource runs one cross-compilation at a time on its own goroutine.
type nagaResource struct {
	sys *NagaSystem
	mat Material

	mu        sync.Mutex
	done      chan struct{}
	shaderMap *ShaderMap
	errs      []string
}

func (r *nagaResource) CacheShaders(target capability.TargetAPI) bool {
	if strings.TrimSpace(r.mat.Source) == "" {
		logging.Logger().Warn("material: no shader source", "material", r.mat.Name)
		return false
	}

	r.FinishCompilation()

	done := make(chan struct{})
	r.mu.Lock()
	r.done = done
	r.shaderMap = nil
	r.errs = nil
	r.mu.Unlock()

	go func() {
		defer close(done)
		t := r.sys.translate(r.mat.Source, target)
		sm, errs := r.build(t, target)

		r.mu.Lock()
		r.shaderMap = sm
		r.errs = errs
		r.mu.Unlock()

		logging.Logger().Debug("material: cross-compilation finished",
			"material", r.mat.Name, "target", target.String(), "shaders", sm.Len(), "errors", len(errs))
	}()
	return true
}

// build expands a translation into a shader map, one shader per entry
// point and vertex factory.
func (r *nagaResource) build(t translation, target capability.TargetAPI) (*ShaderMap, []string) {
	if len(t.errs) > 0 {
		return nil, append([]string(nil), t.errs...)
	}
	if len(t.entries) == 0 {
		return nil, nil
	}

	factories := r.mat.VertexFactories
	if len(factories) == 0 {
		factories = []string{""}
	}
	sm := &ShaderMap{Material: r.mat.Name, Target: target}
	for _, vf := range factories {
		for _, ep := range t.entries {
			sm.Shaders = append(sm.Shaders, Shader{
				Name:          ep.name,
				Stage:         ep.stage,
				VertexFactory: vf,
				Source:        ep.source,
			})
		}
	}
	return sm, nil
}

func (r *nagaResource) IsCompilationFinished() bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

func (r *nagaResource) FinishCompilation() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (r *nagaResource) ShaderMap() *ShaderMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shaderMap
}

func (r *nagaResource) CompileErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errs...)
}

func (r *nagaResource) ShaderDescriptions() map[string]string {
	return r.mat.Descriptions
}
