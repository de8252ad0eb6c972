//go:build linux || darwin

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// GetXattr reads an extended attribute without following symlinks.
func GetXattr(path, name string) ([]byte, error) {
	size, err := unix.Lgetxattr(path, name, nil)
	if err != nil {
		return nil, mapXattrErr(err)
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	n, err := unix.Lgetxattr(path, name, buf)
	if err != nil {
		return nil, mapXattrErr(err)
	}
	return buf[:n], nil
}

// SetXattr writes an extended attribute without following symlinks.
func SetXattr(path, name string, value []byte) error {
	return mapXattrErr(unix.Lsetxattr(path, name, value, 0))
}

// RemoveXattr deletes an extended attribute. A missing attribute is not an error.
func RemoveXattr(path, name string) error {
	err := mapXattrErr(unix.Lremovexattr(path, name))
	if errors.Is(err, ErrNoAttribute) {
		return nil
	}
	return err
}

func mapXattrErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errNoAttr) {
		return ErrNoAttribute
	}
	if errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP) {
		return errors.ErrUnsupported
	}
	return err
}
