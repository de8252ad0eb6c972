//go:build linux

package fs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Magic numbers from linux/magic.h for the file systems we care to name.
var fsMagicNames = map[int64]string{
	0xEF53:     "ext4",
	0x9123683E: "btrfs",
	0x58465342: "xfs",
	0x2FC12FC1: "zfs",
	0xF2F52010: "f2fs",
	0x01021994: "tmpfs",
	0x794C7630: "overlay",
	0x4D44:     "vfat",
	0x2011BAB0: "exfat",
	0x5346544E: "ntfs",
	0x9660:     "iso9660",
	0x6969:     "nfs",
	0xFF534D42: "cifs",
	0xFE534D42: "smb2",
	0x65735546: "fuse",
	0x9FA0:     "proc",
	0x62656572: "sysfs",
	0x1CD1:     "devpts",
	0x63677270: "cgroup2",
	0x0187:     "autofs",
	0x73717368: "squashfs",
}

func fileSystemType(path string) (string, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return "", err
	}
	magic := int64(st.Type)
	if name, ok := fsMagicNames[magic]; ok {
		return name, nil
	}
	return fmt.Sprintf("0x%x", magic), nil
}
