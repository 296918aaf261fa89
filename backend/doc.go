// Package backend binds the Mali offline compiler manager, a native library
// shipped with the Mali Offline Compiler.
//
// The library is located by a fixed per-platform file name inside the
// compiler directory and loaded at runtime without cgo:
//
//	lib, ok := backend.Initialize(backend.DefaultConfig(), false)
//	if !ok {
//		// compiler not installed or incompatible; feature unavailable
//	}
//	defer lib.Deinitialize()
//
// # Backend Interface
//
// Consumers depend on the Backend interface rather than on Library, so the
// capability model and compile jobs can run against any implementation.
// Every string and array returned by the native library is copied into Go
// memory and released through the library's own release entry points.
//
// # Single Instance
//
// Only one Library may be live per process. Calling Initialize while a
// Library is live panics; Deinitialize must run first.
//
// # Threading
//
// The compiler manager is not reentrant. Callers must not issue Compile
// calls from more than one goroutine at a time.
package backend
