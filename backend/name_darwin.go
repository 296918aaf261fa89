//go:build darwin

package backend

const (
	// LibraryName is the compiler manager file name on this platform.
	LibraryName = "libcompiler_manager.dylib"

	// DownloadName is the offline compiler archive for this platform.
	DownloadName = "Mali_Offline_Compiler_v5.3.0.1259ce_MacOSX_x64.tgz"
)
