//go:build linux

package fs

import "golang.org/x/sys/unix"

var errNoAttr = unix.ENODATA
