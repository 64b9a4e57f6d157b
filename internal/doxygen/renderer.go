package doxygen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// Output is what the generator printed.
type Output struct {
	Stdout string
	Stderr string
}

// Warnings returns the non-empty stderr lines; Doxygen reports documentation
// warnings there while still exiting 0.
func (o Output) Warnings() []string {
	var out []string
	for _, line := range strings.Split(o.Stderr, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Renderer performs the final generation step inside a prepared staging
// directory. BinaryRenderer runs Doxygen; tests inject fakes.
type Renderer interface {
	Execute(ctx context.Context, stagingDir, configFile string) (Output, error)
}

// BinaryRenderer invokes the generator binary as "<binary> -q <configFile>"
// with the staging directory as working directory.
type BinaryRenderer struct {
	Binary string
}

func (b *BinaryRenderer) Execute(ctx context.Context, stagingDir, configFile string) (Output, error) {
	bin := b.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %w", ErrToolNotFound, bin, err)
	}
	if st, err := os.Stat(stagingDir); err != nil || !st.IsDir() {
		return Output{}, fmt.Errorf("staging directory not found: %s", stagingDir)
	}

	// #nosec G204 -- path is from exec.LookPath; configFile is written by the build.
	cmd := exec.CommandContext(ctx, path, "-q", configFile)
	cmd.Dir = stagingDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking documentation generator", logfields.Tool(path), logfields.Path(stagingDir), logfields.File(configFile))

	err = cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if out.Stdout != "" {
		slog.Debug("generator stdout", "output", out.Stdout)
	}
	if out.Stderr != "" {
		slog.Warn("generator stderr", "error_output", out.Stderr)
	}

	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		output := strings.TrimSpace(out.Stderr)
		if output == "" {
			output = strings.TrimSpace(out.Stdout)
		}
		if output != "" {
			return out, fmt.Errorf("%w: %w: %s", ErrGeneratorFailed, err, output)
		}
		return out, fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}
	return out, nil
}
