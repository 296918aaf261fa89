//go:build windows

package backend

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func closeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}

func registerFunc(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}
