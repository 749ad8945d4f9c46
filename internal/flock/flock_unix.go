//go:build unix

// Package flock provides cross-platform advisory file locking.
package flock

import "syscall"

// Exclusive takes an exclusive lock on the descriptor without blocking.
// It fails if another process already holds the lock.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the lock held on the descriptor.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
