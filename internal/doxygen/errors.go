package doxygen

import "errors"

var (
	// ErrToolNotFound indicates the generator binary is not on PATH or cannot report its version.
	ErrToolNotFound = errors.New("documentation generator not found")
	// ErrToolVersionTooLow indicates the generator is older than the configured minimum.
	ErrToolVersionTooLow = errors.New("documentation generator version too low")
	// ErrGeneratorFailed indicates the generator exited with a non-zero status.
	ErrGeneratorFailed = errors.New("documentation generator failed")
)
