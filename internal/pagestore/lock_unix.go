//go:build !windows

package pagestore

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory, non-blocking exclusive lock on f, mirroring
// the cross-process "single writer" story described in §5: a second
// process opening the same file concurrently gets an error here rather
// than silently racing page writes with the first.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
