//go:build darwin

package fs

import "golang.org/x/sys/unix"

var errNoAttr = unix.ENOATTR
