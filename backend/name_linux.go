//go:build linux

package backend

const (
	// LibraryName is the compiler manager file name on this platform.
	LibraryName = "libcompiler_manager.so"

	// DownloadName is the offline compiler archive for this platform.
	DownloadName = "Mali_Offline_Compiler_v5.3.0.1259ce_Linux_x64.tgz"
)
