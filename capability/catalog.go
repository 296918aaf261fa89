// Package capability describes the hardware targets the offline compiler
// supports as a four-level hierarchy: Core → Revision → Driver → Platform.
//
// The hierarchy lives in a Catalog built once by Discover. Nodes are
// addressed through small value handles (Core, Revision, Driver, Platform)
// that index into the catalog; handles are comparable and remain valid for
// the catalog's lifetime. A Catalog is immutable after Discover returns and
// is safe for concurrent reads.
package capability

import (
	"fmt"
	"strings"

	"github.com/gogpu/malioc/backend"
)

// TargetAPI identifies the shading language the cross-compiler must emit
// for a Platform.
type TargetAPI uint8

const (
	// TargetES2 is OpenGL ES 2.0, supported by every driver.
	TargetES2 TargetAPI = iota

	// TargetES31AEP is OpenGL ES 3.1 with the Android Extension Pack.
	TargetES31AEP
)

// String returns the platform display name of the target.
func (t TargetAPI) String() string {
	switch t {
	case TargetES2:
		return "OpenGL ES 2.0"
	case TargetES31AEP:
		return "OpenGL ES 3.1 AEP"
	default:
		return fmt.Sprintf("TargetAPI(%d)", uint8(t))
	}
}

// LanguageVersion returns the GLSL ES version number of the target
// (100, 310).
func (t TargetAPI) LanguageVersion() uint32 {
	switch t {
	case TargetES31AEP:
		return 310
	default:
		return BaselineAPIVersion
	}
}

// BaselineAPIVersion is the oldest shading language version (GLSL ES 1.00).
const BaselineAPIVersion = 100

type coreNode struct {
	name      string
	key       string
	revisions []int32
}

type revisionNode struct {
	name    string
	key     string
	core    int32
	drivers []int32
}

type driverNode struct {
	name       string
	key        string
	revision   int32
	compiler   backend.CompilerID
	maxAPI     uint32
	extensions string
	platforms  []int32
}

type platformNode struct {
	name   string
	key    string
	driver int32
	target TargetAPI
}

// Catalog owns every node of the hierarchy. Nodes are only ever appended.
type Catalog struct {
	cores     []coreNode
	revisions []revisionNode
	drivers   []driverNode
	platforms []platformNode
}

// Empty reports whether the catalog has no cores. An empty catalog means
// the compiler supports nothing this pipeline can target.
func (c *Catalog) Empty() bool { return c == nil || len(c.cores) == 0 }

// Cores returns the cores in discovery order.
func (c *Catalog) Cores() []Core {
	if c == nil {
		return nil
	}
	out := make([]Core, len(c.cores))
	for i := range c.cores {
		out[i] = Core{cat: c, idx: int32(i)}
	}
	return out
}

// Core returns the core with the given name (case-insensitive).
func (c *Catalog) Core(name string) (Core, bool) {
	if c == nil {
		return Core{}, false
	}
	key := fold(name)
	for i := range c.cores {
		if c.cores[i].key == key {
			return Core{cat: c, idx: int32(i)}, true
		}
	}
	return Core{}, false
}

// Platforms returns every platform, depth-first in catalog order.
func (c *Catalog) Platforms() []Platform {
	var out []Platform
	for _, core := range c.Cores() {
		for _, rev := range core.Revisions() {
			for _, drv := range rev.Drivers() {
				out = append(out, drv.Platforms()...)
			}
		}
	}
	return out
}

// Lookup resolves a platform from its four names.
func (c *Catalog) Lookup(core, revision, driver, platform string) (Platform, bool) {
	co, ok := c.Core(core)
	if !ok {
		return Platform{}, false
	}
	rev, ok := co.Revision(revision)
	if !ok {
		return Platform{}, false
	}
	drv, ok := rev.Driver(driver)
	if !ok {
		return Platform{}, false
	}
	return drv.Platform(platform)
}

// Core is a hardware family such as "Mali-T760".
type Core struct {
	cat *Catalog
	idx int32
}

// IsValid reports whether the handle refers to a node.
func (c Core) IsValid() bool { return c.cat != nil }

// Name returns the core name.
func (c Core) Name() string { return c.cat.cores[c.idx].name }

// Revisions returns the core's revisions in discovery order.
func (c Core) Revisions() []Revision {
	ids := c.cat.cores[c.idx].revisions
	out := make([]Revision, len(ids))
	for i, id := range ids {
		out[i] = Revision{cat: c.cat, idx: id}
	}
	return out
}

// Revision returns the revision with the given name (case-insensitive).
func (c Core) Revision(name string) (Revision, bool) {
	key := fold(name)
	for _, id := range c.cat.cores[c.idx].revisions {
		if c.cat.revisions[id].key == key {
			return Revision{cat: c.cat, idx: id}, true
		}
	}
	return Revision{}, false
}

// Revision is a silicon revision of a Core, such as "r1p0".
type Revision struct {
	cat *Catalog
	idx int32
}

// IsValid reports whether the handle refers to a node.
func (r Revision) IsValid() bool { return r.cat != nil }

// Name returns the revision name.
func (r Revision) Name() string { return r.cat.revisions[r.idx].name }

// Core returns the owning core.
func (r Revision) Core() Core { return Core{cat: r.cat, idx: r.cat.revisions[r.idx].core} }

// Drivers returns the revision's drivers in discovery order.
func (r Revision) Drivers() []Driver {
	ids := r.cat.revisions[r.idx].drivers
	out := make([]Driver, len(ids))
	for i, id := range ids {
		out[i] = Driver{cat: r.cat, idx: id}
	}
	return out
}

// Driver returns the driver with the given name (case-insensitive).
func (r Revision) Driver(name string) (Driver, bool) {
	key := fold(name)
	for _, id := range r.cat.revisions[r.idx].drivers {
		if r.cat.drivers[id].key == key {
			return Driver{cat: r.cat, idx: id}, true
		}
	}
	return Driver{}, false
}

// Driver is a compiler build for a Revision.
type Driver struct {
	cat *Catalog
	idx int32
}

// IsValid reports whether the handle refers to a node.
func (d Driver) IsValid() bool { return d.cat != nil }

// Name returns the driver name.
func (d Driver) Name() string { return d.cat.drivers[d.idx].name }

// Revision returns the owning revision.
func (d Driver) Revision() Revision {
	return Revision{cat: d.cat, idx: d.cat.drivers[d.idx].revision}
}

// Compiler returns the backend compiler token.
func (d Driver) Compiler() backend.CompilerID { return d.cat.drivers[d.idx].compiler }

// MaxAPI returns the highest GLSL ES version supported: 100 means ES 2.0,
// 300 means ES 3.0, 310 means ES 3.1.
func (d Driver) MaxAPI() uint32 { return d.cat.drivers[d.idx].maxAPI }

// Extensions returns the space-separated extension list.
func (d Driver) Extensions() string { return d.cat.drivers[d.idx].extensions }

// HasExtension reports whether the driver advertises ext.
func (d Driver) HasExtension(ext string) bool {
	return hasExtension(d.cat.drivers[d.idx].extensions, ext)
}

// Platforms returns the driver's platforms.
func (d Driver) Platforms() []Platform {
	ids := d.cat.drivers[d.idx].platforms
	out := make([]Platform, len(ids))
	for i, id := range ids {
		out[i] = Platform{cat: d.cat, idx: id}
	}
	return out
}

// Platform returns the platform with the given name (case-insensitive).
func (d Driver) Platform(name string) (Platform, bool) {
	key := fold(name)
	for _, id := range d.cat.drivers[d.idx].platforms {
		if d.cat.platforms[id].key == key {
			return Platform{cat: d.cat, idx: id}, true
		}
	}
	return Platform{}, false
}

// Platform pairs a display name with the API target the cross-compiler
// must emit for a Driver.
type Platform struct {
	cat *Catalog
	idx int32
}

// IsValid reports whether the handle refers to a node.
func (p Platform) IsValid() bool { return p.cat != nil }

// Name returns the platform display name, e.g. "OpenGL ES 2.0".
func (p Platform) Name() string { return p.cat.platforms[p.idx].name }

// Driver returns the owning driver.
func (p Platform) Driver() Driver { return Driver{cat: p.cat, idx: p.cat.platforms[p.idx].driver} }

// Target returns the API target.
func (p Platform) Target() TargetAPI { return p.cat.platforms[p.idx].target }

// String returns "core / revision / driver / platform".
func (p Platform) String() string {
	if !p.IsValid() {
		return "<invalid platform>"
	}
	d := p.Driver()
	r := d.Revision()
	return strings.Join([]string{r.Core().Name(), r.Name(), d.Name(), p.Name()}, " / ")
}

// hasExtension matches ext against whole entries of a space-separated list.
func hasExtension(list, ext string) bool {
	for _, e := range strings.Fields(list) {
		if e == ext {
			return true
		}
	}
	return false
}
