//go:build !unix && !windows

package falcon

// OpenArea is not supported on this platform.
func OpenArea(name string) (Area, error) {
	return nil, ErrAreaUnavailable
}
