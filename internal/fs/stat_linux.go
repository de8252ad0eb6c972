//go:build linux

package fs

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const hiddenFlag uint32 = 0

func fillPlatform(path string, info os.FileInfo, e *Entry, withBirth bool) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		e.UID = st.Uid
		e.GID = st.Gid
		e.Device = uint64(st.Dev)
		e.Inode = uint64(st.Ino)
		e.Blocks = int64(st.Blocks)
		e.Accessed = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	}
	if !withBirth {
		return
	}

	// Birth time is only reachable through statx, and not every file system
	// records it.
	var stx unix.Statx_t
	flags := unix.AT_SYMLINK_NOFOLLOW | unix.AT_STATX_DONT_SYNC
	if err := unix.Statx(unix.AT_FDCWD, path, flags, unix.STATX_BTIME, &stx); err != nil {
		return
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		e.Created = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
		e.HasCreated = true
	}
}
