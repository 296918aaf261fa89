//go:build !linux && !darwin && !windows

package backend

const (
	// LibraryName is the compiler manager file name on this platform.
	LibraryName = "libcompiler_manager.so"

	// DownloadName is empty: no offline compiler is published for this platform.
	DownloadName = ""
)
