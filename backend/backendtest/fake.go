// Package backendtest provides an in-memory backend.Backend for tests.
package backendtest

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/malioc/backend"
)

// Compiler describes one compiler the fake advertises.
type Compiler struct {
	Core       string
	Revision   string
	Driver     string
	API        string
	Type       string // empty means backend.CompilerTypeGLES
	MaxAPI     uint32
	Extensions string
	Binary     bool
	Prerotate  bool
}

// Fake implements backend.Backend. Compiler IDs are indexes into
// List. Compile calls CompileFunc, or reports "not run" when it is nil.
type Fake struct {
	List []Compiler

	// CompileFunc produces the outputs of a compile call.
	CompileFunc func(req backend.CompileRequest) (backend.Outputs, bool)

	mu       sync.Mutex
	requests []backend.CompileRequest

	running    atomic.Int32
	maxRunning atomic.Int32
}

var _ backend.Backend = (*Fake)(nil)

// New returns a fake advertising the given compilers.
func New(compilers ...Compiler) *Fake {
	return &Fake{List: compilers}
}

func (f *Fake) get(c backend.CompilerID) Compiler {
	if int(c) < len(f.List) {
		return f.List[c]
	}
	return Compiler{}
}

// Compilers implements backend.Backend.
func (f *Fake) Compilers(filter backend.CompilerFilter) []backend.CompilerID {
	var ids []backend.CompilerID
	for i, c := range f.List {
		typ := c.Type
		if typ == "" {
			typ = backend.CompilerTypeGLES
		}
		switch {
		case filter.Type != "" && filter.Type != typ:
		case filter.Core != "" && !strings.EqualFold(filter.Core, c.Core):
		case filter.CoreVersion != "" && !strings.EqualFold(filter.CoreVersion, c.Revision):
		case filter.Driver != "" && !strings.EqualFold(filter.Driver, c.Driver):
		case filter.HighestAPIVersion != 0 && c.MaxAPI < filter.HighestAPIVersion:
		default:
			ids = append(ids, backend.CompilerID(i))
		}
	}
	return ids
}

// DriverName implements backend.Backend.
func (f *Fake) DriverName(c backend.CompilerID) string { return f.get(c).Driver }

// CoreName implements backend.Backend.
func (f *Fake) CoreName(c backend.CompilerID) string { return f.get(c).Core }

// CoreRevision implements backend.Backend.
func (f *Fake) CoreRevision(c backend.CompilerID) string { return f.get(c).Revision }

// APIName implements backend.Backend.
func (f *Fake) APIName(c backend.CompilerID) string { return f.get(c).API }

// HighestAPIVersion implements backend.Backend.
func (f *Fake) HighestAPIVersion(c backend.CompilerID) uint32 { return f.get(c).MaxAPI }

// Extensions implements backend.Backend.
func (f *Fake) Extensions(c backend.CompilerID) string { return f.get(c).Extensions }

// IsBinaryOutputSupported implements backend.Backend.
func (f *Fake) IsBinaryOutputSupported(c backend.CompilerID) bool { return f.get(c).Binary }

// IsPrerotateSupported implements backend.Backend.
func (f *Fake) IsPrerotateSupported(c backend.CompilerID) bool { return f.get(c).Prerotate }

// Compile implements backend.Backend and records the request.
func (f *Fake) Compile(req backend.CompileRequest) (backend.Outputs, bool) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		m := f.maxRunning.Load()
		if n <= m || f.maxRunning.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.CompileFunc
	f.mu.Unlock()

	if fn == nil {
		return backend.Outputs{}, false
	}
	return fn(req)
}

// Requests returns a copy of every compile request seen so far.
func (f *Fake) Requests() []backend.CompileRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.CompileRequest(nil), f.requests...)
}

// MaxConcurrent returns the highest number of overlapping Compile calls.
func (f *Fake) MaxConcurrent() int { return int(f.maxRunning.Load()) }

// Midgard returns outputs shaped like a multi-output compiler run, one
// flexible block per render target.
func Midgard(blocks ...backend.FlexibleOutput) backend.Outputs {
	out := backend.Outputs{}
	for _, b := range blocks {
		block := append(backend.FlexibleOutput{{Key: "architecture", Value: "midgard"}}, b...)
		out.Flexible = append(out.Flexible, block)
	}
	return out
}

// Utgard returns outputs shaped like a single-output compiler run.
func Utgard(b backend.FlexibleOutput) backend.Outputs {
	block := append(backend.FlexibleOutput{{Key: "architecture", Value: "utgard"}}, b...)
	return backend.Outputs{Flexible: []backend.FlexibleOutput{block}}
}
