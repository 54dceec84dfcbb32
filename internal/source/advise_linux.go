//go:build linux

package source

import (
	"os"

	"golang.org/x/sys/unix"
)

// advise hints the kernel that the file will be read once, front to
// back. The hints only tune readahead, so failures are ignored.
func advise(f *os.File) {
	fd := int(f.Fd())
	_ = unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(fd, 0, 0, unix.FADV_WILLNEED)
}
