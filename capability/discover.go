package capability

import (
	"golang.org/x/text/cases"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/internal/logging"
)

// Extensions a driver must advertise to get the ES 3.1 AEP platform.
const (
	ExtAndroidExtensionPack = "GL_ANDROID_extension_pack_es31a"
	ExtColorBufferHalfFloat = "GL_EXT_color_buffer_half_float"
)

// extensionPackEnabled gates the ES 3.1 AEP platform. The path is complete
// but the cross-compiler does not yet produce AEP shaders.
var extensionPackEnabled = false

// isCoreBlacklisted reports whether a core is excluded from discovery.
func isCoreBlacklisted(string) bool { return false }

// isDriverBlacklisted reports whether a driver is excluded from discovery.
func isDriverBlacklisted(string) bool { return false }

// fold returns the case-insensitive comparison key for a node name.
// A Caser holds state, so each call gets its own.
func fold(s string) string { return cases.Fold().String(s) }

// Discover enumerates the backend's GLSL ES compilers and builds the
// catalog. Entries whose core, revision and driver names match an existing
// node (ignoring case) are dropped; the first entry is kept whole.
func Discover(b backend.Backend) *Catalog {
	c := &Catalog{}
	ids := b.Compilers(backend.CompilerFilter{Type: backend.CompilerTypeGLES})

	for _, id := range ids {
		coreName := b.CoreName(id)
		revName := b.CoreRevision(id)
		drvName := b.DriverName(id)
		maxAPI := b.HighestAPIVersion(id)

		if isCoreBlacklisted(coreName) || isDriverBlacklisted(drvName) {
			continue
		}
		if maxAPI < BaselineAPIVersion {
			logging.Logger().Debug("capability: skipping driver below baseline",
				"core", coreName, "driver", drvName, "max_api", maxAPI)
			continue
		}

		extensions := b.Extensions(id)
		d, added := c.driver(c.revision(c.core(coreName), revName), drvName, id, maxAPI, extensions)
		if !added {
			logging.Logger().Debug("capability: duplicate driver ignored",
				"core", coreName, "revision", revName, "driver", drvName, "max_api", maxAPI)
			continue
		}

		c.addPlatform(d, TargetES2)
		if extensionPackEnabled && maxAPI >= TargetES31AEP.LanguageVersion() &&
			hasExtension(extensions, ExtAndroidExtensionPack) &&
			hasExtension(extensions, ExtColorBufferHalfFloat) {
			c.addPlatform(d, TargetES31AEP)
		}
	}

	logging.Logger().Debug("capability: discovery complete",
		"compilers", len(ids), "cores", len(c.cores), "drivers", len(c.drivers), "platforms", len(c.platforms))
	return c
}

func (c *Catalog) core(name string) int32 {
	key := fold(name)
	for i := range c.cores {
		if c.cores[i].key == key {
			return int32(i)
		}
	}
	c.cores = append(c.cores, coreNode{name: name, key: key})
	return int32(len(c.cores) - 1)
}

func (c *Catalog) revision(core int32, name string) int32 {
	key := fold(name)
	for _, id := range c.cores[core].revisions {
		if c.revisions[id].key == key {
			return id
		}
	}
	id := int32(len(c.revisions))
	c.revisions = append(c.revisions, revisionNode{name: name, key: key, core: core})
	c.cores[core].revisions = append(c.cores[core].revisions, id)
	return id
}

// driver finds or appends a driver and reports whether it was appended.
// An existing driver keeps the compiler token, max API and extensions of
// the entry that created it.
func (c *Catalog) driver(rev int32, name string, compiler backend.CompilerID, maxAPI uint32, extensions string) (int32, bool) {
	key := fold(name)
	for _, id := range c.revisions[rev].drivers {
		if c.drivers[id].key == key {
			return id, false
		}
	}
	id := int32(len(c.drivers))
	c.drivers = append(c.drivers, driverNode{
		name:       name,
		key:        key,
		revision:   rev,
		compiler:   compiler,
		maxAPI:     maxAPI,
		extensions: extensions,
	})
	c.revisions[rev].drivers = append(c.revisions[rev].drivers, id)
	return id, true
}

// addPlatform appends a platform for target unless the driver already has
// one with the same name.
func (c *Catalog) addPlatform(drv int32, target TargetAPI) {
	name := target.String()
	key := fold(name)
	for _, id := range c.drivers[drv].platforms {
		if c.platforms[id].key == key {
			return
		}
	}
	id := int32(len(c.platforms))
	c.platforms = append(c.platforms, platformNode{name: name, key: key, driver: drv, target: target})
	c.drivers[drv].platforms = append(c.drivers[drv].platforms, id)
}
