// Package versioning parses and compares dotted MAJOR.MINOR[.PATCH] version strings.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidVersionFormat is returned when text does not start with MAJOR.MINOR.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// versionPattern is anchored at the start only; trailing text such as a
// build suffix ("1.9.8 (abc123)") is ignored.
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?`)

// Version is an immutable MAJOR.MINOR[.PATCH] value. PatchExplicit records
// whether the patch segment was present in the parsed text.
type Version struct {
	Major         uint64
	Minor         uint64
	Patch         uint64
	PatchExplicit bool
}

// New returns a version with an explicit patch segment.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch, PatchExplicit: true}
}

// Parse reads a version from the start of text.
func Parse(text string) (Version, error) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q (expected MAJOR.MINOR[.PATCH])", ErrInvalidVersionFormat, text)
	}
	var v Version
	var err error
	if v.Major, err = strconv.ParseUint(m[1], 10, 64); err != nil {
		return Version{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersionFormat, text, err)
	}
	if v.Minor, err = strconv.ParseUint(m[2], 10, 64); err != nil {
		return Version{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersionFormat, text, err)
	}
	if m[3] != "" {
		if v.Patch, err = strconv.ParseUint(m[3], 10, 64); err != nil {
			return Version{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersionFormat, text, err)
		}
		v.PatchExplicit = true
	}
	return v, nil
}

// MustParse is Parse for constants; it panics on invalid input.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders MAJOR.MINOR, or MAJOR.MINOR.PATCH when the patch was explicit.
func (v Version) String() string {
	if v.PatchExplicit {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
