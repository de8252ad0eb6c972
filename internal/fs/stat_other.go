//go:build !linux && !darwin

package fs

import "os"

const hiddenFlag uint32 = 0

// Access and birth times are left unset; callers treat them as unsupported.
func fillPlatform(_ string, _ os.FileInfo, _ *Entry, _ bool) {}
