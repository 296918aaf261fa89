//go:build !darwin && !linux && !freebsd && !windows

package backend

func openLibrary(string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

func lookupSymbol(uintptr, string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

func closeLibrary(uintptr) error { return nil }

func registerFunc(any, uintptr) {}
