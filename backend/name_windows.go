//go:build windows

package backend

const (
	// LibraryName is the compiler manager file name on this platform.
	LibraryName = "compiler_manager.dll"

	// DownloadName is the offline compiler archive for this platform.
	DownloadName = "Mali_Offline_Compiler_v5.3.0.1259ce_Windows_x64.zip"
)
