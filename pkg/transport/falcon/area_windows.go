//go:build windows

package falcon

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapSize is the view size requested from Falcon's mapping.
const mapSize = 4096

type viewArea struct {
	handle windows.Handle
	addr   uintptr
	data   []byte
}

// OpenArea opens an existing named mapping read-only. A mapping that would
// have to be created means Falcon is not running.
func OpenArea(name string) (Area, error) {
	n, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, mapSize, n)
	switch {
	case errors.Is(err, windows.ERROR_ALREADY_EXISTS):
		// Falcon owns the mapping.
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrAreaUnavailable, err)
	default:
		windows.CloseHandle(h)
		return nil, fmt.Errorf("%w: %s does not exist", ErrAreaUnavailable, name)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, mapSize)
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("map view of %s: %w", name, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), mapSize)
	return &viewArea{handle: h, addr: addr, data: data}, nil
}

func (a *viewArea) Bytes() []byte { return a.data }

func (a *viewArea) Close() error {
	if a.addr == 0 {
		return nil
	}
	err := windows.UnmapViewOfFile(a.addr)
	if cerr := windows.CloseHandle(a.handle); err == nil {
		err = cerr
	}
	a.addr, a.data = 0, nil
	return err
}
