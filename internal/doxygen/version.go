// Package doxygen locates, version-checks and runs the Doxygen binary.
package doxygen

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "doxygen"

// MinimumVersion is the oldest generator release whose layout and
// configuration format the build relies on.
var MinimumVersion = versioning.MustParse("1.9.6")

// DetectVersion runs "<binary> --version" and parses its output. Doxygen
// prints e.g. "1.9.8 (c2b5a1fe0e82)"; trailing text is ignored.
func DetectVersion(ctx context.Context, binary string) (versioning.Version, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return versioning.Version{}, fmt.Errorf("%w: %s: %w", ErrToolNotFound, binary, err)
	}

	// #nosec G204 -- path is from exec.LookPath on the configured binary name.
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		if ctx.Err() != nil {
			return versioning.Version{}, ctx.Err()
		}
		return versioning.Version{}, fmt.Errorf("%w: %s --version: %w", ErrToolNotFound, binary, err)
	}
	v, err := versioning.Parse(strings.TrimSpace(string(out)))
	if err != nil {
		return versioning.Version{}, fmt.Errorf("%s --version: %w", binary, err)
	}
	return v, nil
}

// CheckVersion detects the generator version and rejects anything below
// minimum under the given comparison (versioning.Less when nil).
func CheckVersion(ctx context.Context, binary string, minimum versioning.Version, less versioning.LessFunc) (versioning.Version, error) {
	v, err := DetectVersion(ctx, binary)
	if err != nil {
		return versioning.Version{}, err
	}
	if !versioning.Satisfies(v, minimum, less) {
		return v, fmt.Errorf("%w: found %s, need at least %s", ErrToolVersionTooLow, v, minimum)
	}
	return v, nil
}
