//go:build !windows
// +build !windows

package transfer

import (
	"os"
	"syscall"
)

// TryExclusiveLock attempts a non-blocking exclusive lock on the destination
// file so two mirror runs cannot write it at the same time.
func TryExclusiveLock(file *os.File) bool {
	if file == nil {
		return false
	}
	return syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB) == nil
}

// UnlockFile releases a lock taken with TryExclusiveLock.
func UnlockFile(file *os.File) {
	if file == nil {
		return
	}
	_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
}
