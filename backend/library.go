package backend

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/malioc/internal/logging"
)

// live guards the single-instance invariant.
var live atomic.Bool

// funcTable holds the compiler manager entry points. Each field is bound to
// the exported symbol named in symbols().
type funcTable struct {
	initializeLibraries     func(libraryPath string) bool
	releaseLibraries        func()
	getManagerVersion       func(v *cVersion)
	releaseCompilerOutputs  func(o *cOutputs)
	getDriverName           func(c uint32) string
	getCoreName             func(c uint32) string
	getCoreRevision         func(c uint32) string
	isBinaryOutputSupported func(c uint32) bool
	isPrerotateSupported    func(c uint32) bool
	getAPIName              func(c uint32) string
	getHighestAPIVersion    func(c uint32) uint32
	getExtensions           func(c uint32) string
	getCompilers            func(compilers *unsafe.Pointer, n *uint32, driverName, coreName, coreVersion, compilerType, binaryOutput *byte, highestAPIVersion uint32)
	releaseCompilers        func(compilers *unsafe.Pointer, n uint32)
	compile                 func(o *cOutputs, code, shaderType string, names unsafe.Pointer, namesSize int32, binaryOutput, prerotate bool, defines unsafe.Pointer, definesSize int32, compiler uint32) bool
}

type symbol struct {
	name string
	fptr any
}

func (f *funcTable) symbols() []symbol {
	return []symbol{
		{"malicm_initialize_libraries", &f.initializeLibraries},
		{"malicm_release_libraries", &f.releaseLibraries},
		{"malicm_get_manager_version", &f.getManagerVersion},
		{"malicm_release_compiler_outputs", &f.releaseCompilerOutputs},
		{"malicm_get_driver_name", &f.getDriverName},
		{"malicm_get_core_name", &f.getCoreName},
		{"malicm_get_core_revision", &f.getCoreRevision},
		{"malicm_is_binary_output_supported", &f.isBinaryOutputSupported},
		{"malicm_is_prerotate_supported", &f.isPrerotateSupported},
		{"malicm_get_api_name", &f.getAPIName},
		{"malicm_get_highest_api_version", &f.getHighestAPIVersion},
		{"malicm_get_extensions", &f.getExtensions},
		{"malicm_get_compilers", &f.getCompilers},
		{"malicm_release_compilers", &f.releaseCompilers},
		{"malicm_compile", &f.compile},
	}
}

// Library is a loaded compiler manager. It implements Backend.
//
// A Library is read-only after Initialize and may be shared across
// goroutines, but Compile must not be called concurrently.
type Library struct {
	config  Config
	handle  uintptr
	fn      funcTable
	version Version
	ready   bool
}

var _ Backend = (*Library)(nil)

// Initialize loads the compiler manager described by cfg.
//
// It returns false when the library is missing, cannot be loaded, lacks an
// entry point, fails to initialize its compilers or reports a version other
// than ExpectedVersion. Failures are logged unless silent is set.
//
// Initialize panics if another Library is live.
func Initialize(cfg Config, silent bool) (*Library, bool) {
	if !live.CompareAndSwap(false, true) {
		panic("backend: compiler manager already initialized")
	}

	lib, err := load(cfg)
	if err != nil {
		live.Store(false)
		if !silent {
			logging.Logger().Error("backend: compiler manager unavailable",
				"path", cfg.LibraryPath(), "err", err)
		}
		return nil, false
	}

	logging.Logger().Info("backend: compiler manager loaded",
		"path", cfg.LibraryPath(), "version", lib.version.String())
	return lib, true
}

// load runs the initialization sequence. On failure everything acquired
// so far is released.
func load(cfg Config) (*Library, error) {
	path := cfg.LibraryPath()
	if !cfg.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, path)
	}

	handle, err := openLibrary(path)
	if err != nil || handle == 0 {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, err)
	}

	lib := &Library{config: cfg, handle: handle}
	if err := lib.bind(); err != nil {
		lib.unload()
		return nil, err
	}

	if !lib.fn.initializeLibraries(cfg.Dir) {
		lib.unload()
		return nil, ErrInitFailed
	}
	lib.ready = true

	var v cVersion
	lib.fn.getManagerVersion(&v)
	lib.version = Version{Major: v.major, Minor: v.minor, Patch: v.patch}
	if lib.version != ExpectedVersion {
		lib.fn.releaseLibraries()
		lib.ready = false
		lib.unload()
		return nil, fmt.Errorf("%w: got %s, want %s", ErrVersionMismatch, lib.version, ExpectedVersion)
	}

	return lib, nil
}

// bind resolves every entry point. A single missing symbol fails the bind.
func (l *Library) bind() error {
	for _, s := range l.fn.symbols() {
		addr, err := lookupSymbol(l.handle, s.name)
		if err != nil || addr == 0 {
			return fmt.Errorf("%w: %s", ErrSymbolNotFound, s.name)
		}
		registerFunc(s.fptr, addr)
	}
	return nil
}

func (l *Library) unload() {
	if l.handle == 0 {
		return
	}
	if err := closeLibrary(l.handle); err != nil {
		logging.Logger().Warn("backend: failed to close compiler manager", "err", err)
	}
	l.handle = 0
}

// Deinitialize releases the compiler libraries and the native handle.
// It is safe on a nil Library and safe to call more than once.
//
// All compile jobs must have finished first: unloading the library under a
// running job crashes the process.
func (l *Library) Deinitialize() {
	if l == nil || l.handle == 0 {
		return
	}
	if l.ready {
		l.fn.releaseLibraries()
		l.ready = false
	}
	l.unload()
	live.Store(false)
	logging.Logger().Info("backend: compiler manager released")
}

// Version returns the version reported by the compiler manager.
func (l *Library) Version() Version { return l.version }

// Config returns the configuration the library was loaded with.
func (l *Library) Config() Config { return l.config }

// Compilers implements Backend.
func (l *Library) Compilers(f CompilerFilter) []CompilerID {
	var list unsafe.Pointer
	var n uint32
	l.fn.getCompilers(&list, &n,
		cString(f.Driver), cString(f.Core), cString(f.CoreVersion),
		cString(f.Type), cString(f.BinaryOutput), f.HighestAPIVersion)
	if list == nil {
		return nil
	}
	ids := make([]CompilerID, n)
	for i, c := range unsafe.Slice((*uint32)(list), n) {
		ids[i] = CompilerID(c)
	}
	l.fn.releaseCompilers(&list, n)
	return ids
}

// DriverName implements Backend.
func (l *Library) DriverName(c CompilerID) string { return l.fn.getDriverName(uint32(c)) }

// CoreName implements Backend.
func (l *Library) CoreName(c CompilerID) string { return l.fn.getCoreName(uint32(c)) }

// CoreRevision implements Backend.
func (l *Library) CoreRevision(c CompilerID) string { return l.fn.getCoreRevision(uint32(c)) }

// APIName implements Backend.
func (l *Library) APIName(c CompilerID) string { return l.fn.getAPIName(uint32(c)) }

// HighestAPIVersion implements Backend.
func (l *Library) HighestAPIVersion(c CompilerID) uint32 {
	return l.fn.getHighestAPIVersion(uint32(c))
}

// Extensions implements Backend.
func (l *Library) Extensions(c CompilerID) string { return l.fn.getExtensions(uint32(c)) }

// IsBinaryOutputSupported implements Backend.
func (l *Library) IsBinaryOutputSupported(c CompilerID) bool {
	return l.fn.isBinaryOutputSupported(uint32(c))
}

// IsPrerotateSupported implements Backend.
func (l *Library) IsPrerotateSupported(c CompilerID) bool {
	return l.fn.isPrerotateSupported(uint32(c))
}

// Compile implements Backend. Outputs are copied before the native outputs
// are released.
func (l *Library) Compile(req CompileRequest) (Outputs, bool) {
	var o cOutputs
	ran := l.fn.compile(&o, req.Source, req.Stage, nil, 0, req.BinaryOutput, req.Prerotate, nil, 0, uint32(req.Compiler))
	var out Outputs
	if ran {
		out = copyOutputs(&o)
	}
	l.fn.releaseCompilerOutputs(&o)
	return out, ran
}
