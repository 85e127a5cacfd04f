//go:build unix

package falcon

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type mmapArea struct {
	data []byte
}

// OpenArea maps the file backing a flight data area read-only. A bare area
// name is looked up under /dev/shm, where Wine exposes named mappings.
func OpenArea(name string) (Area, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join("/dev/shm", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAreaUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAreaUnavailable, err)
	}
	size := int(info.Size())
	if size < MinAreaSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, want at least %d", ErrAreaUnavailable, path, size, MinAreaSize)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapArea{data: data}, nil
}

func (a *mmapArea) Bytes() []byte { return a.data }

func (a *mmapArea) Close() error {
	if a.data == nil {
		return nil
	}
	err := unix.Munmap(a.data)
	a.data = nil
	return err
}
