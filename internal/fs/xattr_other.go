//go:build !linux && !darwin

package fs

import "errors"

// GetXattr is unavailable on this platform.
func GetXattr(string, string) ([]byte, error) {
	return nil, errors.ErrUnsupported
}

// SetXattr is unavailable on this platform.
func SetXattr(string, string, []byte) error {
	return errors.ErrUnsupported
}

// RemoveXattr is unavailable on this platform.
func RemoveXattr(string, string) error {
	return errors.ErrUnsupported
}
