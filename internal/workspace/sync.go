package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// DefaultTemplateSuffix marks template sources that are rendered rather than copied.
const DefaultTemplateSuffix = ".in"

// SyncOptions controls SyncDirectory.
type SyncOptions struct {
	// TemplateSuffix excludes files whose name ends with it. Empty means DefaultTemplateSuffix.
	TemplateSuffix string
	// Recursive descends into subdirectories, mirroring them under dst.
	Recursive bool
}

// SyncStats counts what a synchronization did.
type SyncStats struct {
	Copied   int
	Skipped  int
	Excluded int
}

// Add accumulates other into s.
func (s *SyncStats) Add(other SyncStats) {
	s.Copied += other.Copied
	s.Skipped += other.Skipped
	s.Excluded += other.Excluded
}

// EnsureDirectories creates every path (and parents). Existing directories are fine.
func EnsureDirectories(paths ...string) error {
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", p, err)
		}
	}
	return nil
}

// SyncDirectory mirrors the regular files of src into dst using CopyIfNewer.
// A missing src is not an error; nothing is copied.
func SyncDirectory(src, dst string, opts SyncOptions) (SyncStats, error) {
	var stats SyncStats
	suffix := opts.TemplateSuffix
	if suffix == "" {
		suffix = DefaultTemplateSuffix
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Source directory absent, nothing to sync", logfields.Path(src))
			return stats, nil
		}
		return stats, fmt.Errorf("list %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return stats, fmt.Errorf("create directory %s: %w", dst, err)
	}

	for _, e := range entries {
		name := e.Name()
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)

		if e.IsDir() {
			if !opts.Recursive {
				continue
			}
			sub, err := SyncDirectory(from, to, opts)
			stats.Add(sub)
			if err != nil {
				return stats, err
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			stats.Excluded++
			continue
		}
		copied, err := CopyIfNewer(from, to)
		if err != nil {
			return stats, err
		}
		if copied {
			stats.Copied++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

// NeedsCopy reports whether dst is absent or strictly older than src.
func NeedsCopy(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}
	return needsCopy(srcInfo, dst)
}

func needsCopy(srcInfo os.FileInfo, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	switch {
	case err == nil:
		return srcInfo.ModTime().After(dstInfo.ModTime()), nil
	case errors.Is(err, os.ErrNotExist):
		return true, nil
	default:
		return false, fmt.Errorf("stat %s: %w", dst, err)
	}
}

// CopyIfNewer copies src to dst when dst is absent or strictly older than
// src. The copy keeps src's permission bits and modification time, so an
// unchanged source is skipped on the next run.
func CopyIfNewer(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}
	ok, err := needsCopy(srcInfo, dst)
	if err != nil || !ok {
		return false, err
	}
	if err := copyFile(src, dst, srcInfo); err != nil {
		return false, err
	}
	slog.Debug("Copied file", logfields.Path(dst))
	return true, nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	// #nosec G304 -- src is a listed entry of a configured source directory.
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}
	// A read-only copy from an earlier run cannot be reopened for writing.
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	// #nosec G304 -- dst is inside the staging tree.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	return nil
}
