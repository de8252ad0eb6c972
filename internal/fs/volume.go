package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Volume describes the mounted file system that contains a path.
type Volume struct {
	Device     uint64
	MountPoint string
	FSType     string
}

// StatVolume identifies the volume holding path. The mount point is found by
// climbing parents until the device number changes.
func StatVolume(path string) (Volume, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Volume{}, err
	}
	entry, err := Probe(abs)
	if err != nil {
		return Volume{}, err
	}
	fsType, err := fileSystemType(abs)
	if err != nil {
		return Volume{}, fmt.Errorf("statfs %s: %w", abs, err)
	}
	return Volume{
		Device:     entry.Device,
		MountPoint: mountPointOf(abs, entry.Device),
		FSType:     fsType,
	}, nil
}

func mountPointOf(path string, device uint64) string {
	current := path
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		info, err := os.Lstat(parent)
		if err != nil {
			return current
		}
		if FromFileInfo(parent, info, false).Device != device {
			return current
		}
		current = parent
	}
}
