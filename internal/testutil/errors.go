// Package testutil provides testing utilities for COMPASS.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockExecutor indicates a mock executor failure (used in tests).
	ErrMockExecutor = errors.New("executor failed")

	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("connection refused")

	// ErrMockQuota indicates a mock quota exhaustion error (used in tests).
	ErrMockQuota = errors.New("rate limit exceeded")

	// ErrMockBadInput indicates a mock invalid-input error (used in tests).
	ErrMockBadInput = errors.New("invalid argument supplied")

	// ErrMockPermission indicates a mock permission error (used in tests).
	ErrMockPermission = errors.New("permission denied")

	// ErrMockSinkDown indicates a mock event sink outage (used in tests).
	ErrMockSinkDown = errors.New("sink unavailable")
)
