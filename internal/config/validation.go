package config

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

// Validate checks a defaulted configuration and normalizes enum fields in place.
func Validate(c *Config) error {
	level, err := logLevelNormalizer.NormalizeWithValidation(c.Logging.Level)
	if err != nil {
		return invalid("logging.level", err)
	}
	c.Logging.Level = string(level)

	format, err := logFormatNormalizer.NormalizeWithValidation(c.Logging.Format)
	if err != nil {
		return invalid("logging.format", err)
	}
	c.Logging.Format = string(format)

	if _, err := versioning.Parse(c.Tool.MinVersion); err != nil {
		return invalid("tool.min_version", err)
	}

	known := c.categoryDirs()
	seen := make(map[string]struct{}, len(c.Sync.Categories))
	for _, name := range c.Sync.Categories {
		if _, ok := known[name]; !ok {
			return invalid("sync.categories", fmt.Errorf("unknown category %q", name))
		}
		if _, dup := seen[name]; dup {
			return invalid("sync.categories", fmt.Errorf("duplicate category %q", name))
		}
		seen[name] = struct{}{}
	}

	for lang, class := range c.Markdown.Fences {
		if strings.TrimSpace(lang) == "" || strings.TrimSpace(class) == "" {
			return invalid("markdown.fences", fmt.Errorf("empty fence mapping %q -> %q", lang, class))
		}
	}

	if c.Watch.Debounce < 0 || c.Watch.Interval < 0 {
		return invalid("watch", fmt.Errorf("durations must not be negative"))
	}
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		return invalid("notify.subject", fmt.Errorf("subject required when nats_url is set"))
	}
	return nil
}

func invalid(field string, err error) error {
	return ferrors.ConfigError("invalid configuration").WithCause(err).
		WithContext("field", field).Build()
}
