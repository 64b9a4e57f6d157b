package config

import (
	"os"

	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

const exampleHeader = `# doxybuild configuration.
# Relative paths resolve against source.root, which itself resolves
# against the directory of this file. ${VAR} references are expanded
# from the environment and from .env / .env.local; a bare $name such as
# the bibliography placeholder is kept as written. Set notify.nats_url
# to publish build events over NATS.
`

// Example returns the default configuration with link verification and
// build history switched on. Every value loads back unchanged.
func Example() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	cfg.Verify.Enabled = true
	cfg.History.Enabled = true
	return cfg
}

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("file", path).Build()
	}
	data, err := Example().Marshal()
	if err != nil {
		return ferrors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, append([]byte(exampleHeader), data...), 0o600); err != nil {
		return ferrors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("file", path).Build()
	}
	return nil
}
