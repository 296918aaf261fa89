package backend

import (
	"os"
	"path/filepath"
)

// EnvCompilerDir names the environment variable that overrides the
// compiler directory.
const EnvCompilerDir = "MALIOC_COMPILER_DIR"

// Offline compiler distribution this binding targets.
const (
	// CompilerFolder is the folder extracted from the offline compiler download.
	CompilerFolder = "Mali_Offline_Compiler_v5.3.0"

	// DownloadBaseURL hosts the offline compiler downloads and EULA.
	DownloadBaseURL = "http://malideveloper.arm.com/downloads/tools/moc/5.3/"

	// EULAURL is the offline compiler license agreement.
	EULAURL = DownloadBaseURL + "EULA.txt"
)

// Config locates the compiler manager library.
type Config struct {
	// Dir is the offline compiler directory. It is passed to the compiler
	// manager so it can find the per-core compiler libraries.
	Dir string

	// Library overrides the library file name. Empty uses LibraryName.
	Library string
}

// DefaultConfig returns the configuration from the environment.
// MALIOC_COMPILER_DIR wins; otherwise CompilerFolder next to the running
// executable is used.
func DefaultConfig() Config {
	if dir := os.Getenv(EnvCompilerDir); dir != "" {
		return Config{Dir: dir}
	}
	base := "."
	if exe, err := os.Executable(); err == nil {
		base = filepath.Dir(exe)
	}
	return Config{Dir: filepath.Join(base, CompilerFolder)}
}

// LibraryPath returns the full path of the compiler manager library.
func (c Config) LibraryPath() string {
	name := c.Library
	if name == "" {
		name = LibraryName
	}
	return filepath.Join(c.Dir, name)
}

// Exists reports whether the compiler manager library is on disk.
func (c Config) Exists() bool {
	info, err := os.Stat(c.LibraryPath())
	return err == nil && !info.IsDir()
}

// DownloadURL returns the offline compiler download for this platform, or
// "" where none is published.
func DownloadURL() string {
	if DownloadName == "" {
		return ""
	}
	return DownloadBaseURL + DownloadName
}
