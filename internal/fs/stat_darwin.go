//go:build darwin

package fs

import (
	"os"
	"syscall"
	"time"
)

// UF_HIDDEN from sys/stat.h.
const hiddenFlag uint32 = 0x8000

func fillPlatform(_ string, info os.FileInfo, e *Entry, _ bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	e.UID = st.Uid
	e.GID = st.Gid
	e.Device = uint64(st.Dev)
	e.Inode = st.Ino
	e.Blocks = st.Blocks
	e.Flags = st.Flags
	e.Accessed = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	if st.Birthtimespec.Sec != 0 || st.Birthtimespec.Nsec != 0 {
		e.Created = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
		e.HasCreated = true
	}
}
