package backend

import (
	"errors"
	"fmt"
)

// Common backend errors.
var (
	// ErrLibraryNotFound is returned when the compiler manager library is not on disk.
	ErrLibraryNotFound = errors.New("backend: compiler manager library not found")

	// ErrLoadFailed is returned when the library exists but cannot be loaded.
	ErrLoadFailed = errors.New("backend: failed to load compiler manager library")

	// ErrSymbolNotFound is returned when a required entry point is missing.
	ErrSymbolNotFound = errors.New("backend: entry point not found")

	// ErrInitFailed is returned when the compiler manager refuses to initialize
	// its compiler libraries.
	ErrInitFailed = errors.New("backend: could not initialize compiler libraries")

	// ErrVersionMismatch is returned when the library reports a version other
	// than ExpectedVersion.
	ErrVersionMismatch = errors.New("backend: compiler manager version is not the expected version")

	// ErrUnsupportedPlatform is returned on platforms without a loader.
	ErrUnsupportedPlatform = errors.New("backend: dynamic loading not supported on this platform")
)

// CompilerID is the opaque compiler token handed out by the compiler manager.
type CompilerID uint32

// Version is a compiler manager version triple.
type Version struct {
	Major, Minor, Patch uint32
}

// ExpectedVersion is the only compiler manager version this binding accepts.
var ExpectedVersion = Version{Major: 4, Minor: 0, Patch: 1}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Shader type tags accepted by Compile.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
)

// CompilerTypeGLES is the compiler type of the OpenGL ES shading language
// compilers, the only output language of the cross-compiler.
const CompilerTypeGLES = "openglessl"

// CompilerFilter narrows compiler enumeration. Empty strings and a zero
// HighestAPIVersion match everything.
type CompilerFilter struct {
	Driver            string
	Core              string
	CoreVersion       string
	Type              string
	BinaryOutput      string
	HighestAPIVersion uint32
}

// CompileRequest describes one invocation of the offline compiler.
type CompileRequest struct {
	// Source is the GLSL ES source text.
	Source string

	// Stage is StageVertex or StageFragment.
	Stage string

	// Compiler selects the driver/core to compile for.
	Compiler CompilerID

	// BinaryOutput requests a binary in Outputs.Binary.
	BinaryOutput bool

	// Prerotate enables pre-rotation of vertex positions.
	Prerotate bool
}

// KeyValue is a single flexible-output entry.
type KeyValue struct {
	Key   string
	Value string
}

// FlexibleOutput is one block of flexible output: an ordered list of
// key/value pairs whose schema depends on the GPU architecture.
type FlexibleOutput []KeyValue

// Lookup returns the value of the first entry with the given key.
func (f FlexibleOutput) Lookup(key string) (string, bool) {
	for _, kv := range f {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Outputs is the Go copy of a compiler invocation's results.
type Outputs struct {
	Flexible []FlexibleOutput
	Binary   []byte
	Errors   []string
	Warnings []string
}

// Backend is the compiler manager function table as seen by its consumers.
//
// Library implements Backend over the native library; tests substitute
// in-memory implementations.
type Backend interface {
	// Compilers enumerates the compilers matching the filter.
	Compilers(filter CompilerFilter) []CompilerID

	// DriverName returns the driver name of a compiler.
	DriverName(c CompilerID) string

	// CoreName returns the hardware core name, e.g. "Mali-T760".
	CoreName(c CompilerID) string

	// CoreRevision returns the core revision, e.g. "r1p0".
	CoreRevision(c CompilerID) string

	// APIName returns the compiler's API name.
	APIName(c CompilerID) string

	// HighestAPIVersion returns the highest shading language version
	// supported: 100 for ES 2.0, 300 for ES 3.0, 310 for ES 3.1.
	HighestAPIVersion(c CompilerID) uint32

	// Extensions returns the space-separated extension list.
	Extensions(c CompilerID) string

	// IsBinaryOutputSupported reports whether the compiler can emit binaries.
	IsBinaryOutputSupported(c CompilerID) bool

	// IsPrerotateSupported reports whether the compiler supports pre-rotation.
	IsPrerotateSupported(c CompilerID) bool

	// Compile runs the compiler. The boolean reports whether the compiler
	// ran at all; Outputs is only meaningful when it did.
	Compile(req CompileRequest) (Outputs, bool)
}
