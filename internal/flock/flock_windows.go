//go:build windows

// Package flock provides cross-platform advisory file locking.
package flock

import "golang.org/x/sys/windows"

// LockFileEx/UnlockFileEx parameters.
// See: https://learn.microsoft.com/en-us/windows/win32/api/fileapi/nf-fileapi-lockfileex
const (
	lockReserved  = 0 // must be zero
	lockBytesLow  = 1 // locking a single byte locks the whole file for our purposes
	lockBytesHigh = 0
)

// Exclusive takes an exclusive lock on the descriptor without blocking.
// It fails if another process already holds the lock.
func Exclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}

// Unlock releases the lock held on the descriptor.
func Unlock(fd uintptr) error {
	return windows.UnlockFileEx(
		windows.Handle(fd),
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}
