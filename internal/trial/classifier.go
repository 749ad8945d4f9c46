// Package trial provides the trial-and-error engine: bounded adaptive
// retries for a single task, failure-signature classification, known-fix
// parameter adjustment, a learning store of trial records, and insight
// extraction over that history.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/contracts,
//     internal/ctxutil, internal/domain, internal/errors, internal/events,
//     std lib
//   - MUST NOT import: internal/plan, internal/decompose, internal/cli
package trial

import (
	"strings"

	"github.com/mrz1836/compass/internal/constants"
)

// PatternMatcher checks if a string contains any of a list of patterns.
// It performs case-insensitive matching on the lowercased input.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
// All patterns should be lowercase for consistent matching.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches returns true if the input string contains any of the patterns.
// The input is lowercased before matching.
func (m *PatternMatcher) Matches(s string) bool {
	return m.MatchesLower(strings.ToLower(s))
}

// MatchesLower checks if an already-lowercased string matches any pattern.
// Use this when you've already lowercased the input.
func (m *PatternMatcher) MatchesLower(lower string) bool {
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// Common failure pattern matchers for reuse across the package.
//
//nolint:gochecknoglobals // Package-level immutable pattern matchers for performance
var (
	// transientPatterns matches network and other transient failures.
	transientPatterns = NewPatternMatcher(
		"could not resolve host",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"connection timed out",
		"operation timed out",
		"no route to host",
		"failed to connect",
		"broken pipe",
		"temporarily unavailable",
		"service unavailable",
		"timeout",
	)

	// resourcePatterns matches quota, memory, and rate-limit failures.
	resourcePatterns = NewPatternMatcher(
		"rate limit exceeded",
		"api rate limit",
		"too many requests",
		"quota exceeded",
		"out of memory",
		"disk full",
		"no space left",
		"resource exhausted",
		"capacity",
		"throttled",
	)

	// invalidInputPatterns matches malformed-parameter failures.
	invalidInputPatterns = NewPatternMatcher(
		"invalid argument",
		"invalid input",
		"invalid parameter",
		"malformed",
		"parse error",
		"validation failed",
		"bad request",
		"unsupported value",
	)

	// permissionPatterns matches authorization failures.
	permissionPatterns = NewPatternMatcher(
		"permission denied",
		"access denied",
		"unauthorized",
		"forbidden",
		"authentication failed",
		"invalid token",
		"token expired",
		"bad credentials",
		"not permitted",
	)
)

// Classifier maps executor failure messages onto error signatures.
// It consolidates all pattern matchers into a single struct for easier
// testing and extension.
type Classifier struct {
	transient    *PatternMatcher
	resource     *PatternMatcher
	invalidInput *PatternMatcher
	permission   *PatternMatcher
}

// defaultClassifier is the package-level classifier using standard patterns.
//
//nolint:gochecknoglobals // Singleton classifier for package use
var defaultClassifier = &Classifier{
	transient:    transientPatterns,
	resource:     resourcePatterns,
	invalidInput: invalidInputPatterns,
	permission:   permissionPatterns,
}

// ClassifySignature determines the error signature from an error.
// Returns SignatureUnknown if the error matches no known pattern.
//
// Classification priority (first match wins):
//  1. Resource exhaustion (most specific, usually recoverable with a fix)
//  2. Permission (actionable, never retried)
//  3. Invalid input (actionable, never retried)
//  4. Transient (broad, retry with backoff)
func ClassifySignature(err error) constants.ErrorSignature {
	if err == nil {
		return ""
	}
	return defaultClassifier.Classify(err.Error())
}

// Classify determines the error signature from an error string.
// See ClassifySignature for classification priority.
func (c *Classifier) Classify(errStr string) constants.ErrorSignature {
	lower := strings.ToLower(errStr)

	// Order matters: more specific patterns first. "rate limit" would also
	// match the transient "timeout"-style patterns in some backends.
	if c.resource.MatchesLower(lower) {
		return constants.SignatureResourceExhaustion
	}
	if c.permission.MatchesLower(lower) {
		return constants.SignaturePermission
	}
	if c.invalidInput.MatchesLower(lower) {
		return constants.SignatureInvalidInput
	}
	if c.transient.MatchesLower(lower) {
		return constants.SignatureTransient
	}
	return constants.SignatureUnknown
}
