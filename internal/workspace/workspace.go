package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// Manager handles the staging directory (both ephemeral and persistent).
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
	created    bool
}

// NewManager creates a manager with an ephemeral, timestamped staging directory under baseDir.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a manager whose staging directory is dir and
// survives Cleanup.
func NewPersistentManager(dir string) *Manager {
	return &Manager{baseDir: filepath.Dir(dir), dir: dir, persistent: true}
}

// Create ensures the staging directory exists.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create staging directory: %w", err)
		}
		slog.Debug("Using persistent staging directory", logfields.Path(m.dir))
		m.created = true
		return nil
	}

	timestamp := time.Now().Format("20060102-150405")
	dir, err := os.MkdirTemp(m.baseDir, fmt.Sprintf("doxybuild-%s-", timestamp))
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	m.dir = dir
	m.created = true
	slog.Info("Created staging directory", logfields.Path(dir))
	return nil
}

// Path returns the staging root, empty before Create in ephemeral mode.
func (m *Manager) Path() string {
	return m.dir
}

// Persistent reports whether the staging root survives Cleanup.
func (m *Manager) Persistent() bool {
	return m.persistent
}

// Subdir creates and returns a directory inside the staging root. It fails
// until Create has run.
func (m *Manager) Subdir(name string) (string, error) {
	if !m.created {
		return "", errors.New("staging directory not created")
	}
	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return sub, nil
}

// Clean removes everything inside the staging root but keeps the root, so
// the next synchronization copies every file again.
func (m *Manager) Clean() error {
	if m.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read staging directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(m.dir, e.Name())); err != nil {
			return fmt.Errorf("clean staging directory: %w", err)
		}
	}
	slog.Info("Cleaned staging directory", logfields.Path(m.dir), logfields.Count(len(entries)))
	return nil
}

// Cleanup removes an ephemeral staging directory. Persistent directories are kept.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if m.persistent {
		slog.Debug("Keeping persistent staging directory", logfields.Path(m.dir))
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup staging directory: %w", err)
	}
	slog.Info("Removed staging directory", logfields.Path(m.dir))
	m.dir = ""
	m.created = false
	return nil
}
