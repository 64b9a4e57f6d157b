package pipeline

import (
	"path/filepath"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
	"git.home.luguber.info/inful/doxybuild/internal/workspace"
)

// BuildState carries the inputs and intermediate results of one build
// between stages.
type BuildState struct {
	Config    *config.Config
	Version   versioning.Version
	OutputDir string // absolute
	Staging   *workspace.Manager
	Report    *BuildReport

	// ConfigFile is the rendered generator configuration, relative to the staging root.
	ConfigFile string

	generator *Generator
}

// StagingPath joins elem onto the staging root.
func (bs *BuildState) StagingPath(elem ...string) string {
	return filepath.Join(append([]string{bs.Staging.Path()}, elem...)...)
}

func (bs *BuildState) recorder() metrics.Recorder {
	if bs.generator == nil || bs.generator.recorder == nil {
		return metrics.NoopRecorder{}
	}
	return bs.generator.recorder
}

func (bs *BuildState) observer() BuildObserver {
	if bs.generator == nil || bs.generator.observer == nil {
		return NoopObserver{}
	}
	return bs.generator.observer
}
