package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "doxybuild.yaml"

// Config is the doxybuild configuration.
type Config struct {
	Version      string             `yaml:"version"`
	Source       SourceConfig       `yaml:"source"`
	Staging      StagingConfig      `yaml:"staging"`
	Output       OutputConfig       `yaml:"output"`
	Tool         ToolConfig         `yaml:"tool"`
	Sync         SyncConfig         `yaml:"sync"`
	Layout       LayoutConfig       `yaml:"layout"`
	Markdown     MarkdownConfig     `yaml:"markdown"`
	Bibliography BibliographyConfig `yaml:"bibliography"`
	Verify       VerifyConfig       `yaml:"verify"`
	Logging      LoggingConfig      `yaml:"logging"`
	History      HistoryConfig      `yaml:"history"`
	Notify       NotifyConfig       `yaml:"notify"`
	Watch        WatchConfig        `yaml:"watch"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// SourceConfig locates the documentation sources. Directories are relative to Root.
type SourceConfig struct {
	Root                 string `yaml:"root"`
	Pages                string `yaml:"pages"`
	Tutorials            string `yaml:"tutorials"`
	Images               string `yaml:"images"`
	ExtraPages           string `yaml:"extra_pages"`
	Templates            string `yaml:"templates"`
	Resources            string `yaml:"resources"`
	ConfigTemplate       string `yaml:"config_template"`
	LayoutTemplate       string `yaml:"layout_template"`
	Bibliography         string `yaml:"bibliography"`
	BibliographyTemplate string `yaml:"bibliography_template"`
}

// StagingConfig controls the directory the generator runs in.
type StagingConfig struct {
	Directory string `yaml:"directory"`
	Ephemeral bool   `yaml:"ephemeral"` // use a throwaway directory removed after the build
	Clean     bool   `yaml:"clean"`     // empty the staging directory before the build
}

// OutputConfig controls where the generator writes the site.
type OutputConfig struct {
	Directory      string `yaml:"directory"`
	HTMLOutputName string `yaml:"html_output_name"`
}

// ToolConfig describes the external generator.
type ToolConfig struct {
	Binary               string `yaml:"binary"`
	MinVersion           string `yaml:"min_version"`
	LegacyVersionCompare bool   `yaml:"legacy_version_compare"`
	ConfigName           string `yaml:"config_name"` // rendered config file name inside staging
}

// SyncConfig controls resource synchronization into staging.
type SyncConfig struct {
	Recursive      bool     `yaml:"recursive"`
	TemplateSuffix string   `yaml:"template_suffix"`
	Categories     []string `yaml:"categories"`
}

// LayoutConfig controls navigation layout editing.
type LayoutConfig struct {
	RefPrefix        string `yaml:"ref_prefix"`
	TutorialsTitle   string `yaml:"tutorials_title"`
	IntroductionFile string `yaml:"introduction_file"`
	OutputName       string `yaml:"output_name"`
}

// MarkdownConfig controls tutorial rewriting.
type MarkdownConfig struct {
	Fences map[string]string `yaml:"fences"`
}

// BibliographyConfig controls script generation from the bibliography.
type BibliographyConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Placeholder string `yaml:"placeholder"`
	Output      string `yaml:"output"` // relative to staging
}

// VerifyConfig controls post-generation link verification.
type VerifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HistoryConfig controls the SQLite build history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig controls build-complete notifications over NATS.
type NotifyConfig struct {
	NATSURL string        `yaml:"nats_url"`
	Subject string        `yaml:"subject"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"` // extra publish attempts, exponential backoff
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval"` // periodic rebuild; zero disables
}

// MetricsConfig controls Prometheus exposure.
type MetricsConfig struct {
	Listen   string `yaml:"listen"`   // address for /metrics in watch mode
	Textfile string `yaml:"textfile"` // write metrics here after a one-shot build
}

// Load reads the configuration at path. An empty path loads DefaultFile when
// it exists and falls back to defaults otherwise. Environment variables from
// .env files are loaded first and ${VAR} references expanded.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, ferrors.ConfigError("failed to load .env file").WithCause(err).Build()
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected configuration file
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg := &Config{}
		if err := cfg.finalize("."); err != nil {
			return nil, err
		}
		return cfg, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
			WithContext("file", path).Fatal().Build()
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("file", path).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		var ce *ferrors.ClassifiedError
		if errors.As(err, &ce) {
			return nil, ce.WithContext("file", path)
		}
		return nil, err
	}
	if err := cfg.finalize(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse expands ${VAR} references in data, validates it against the
// configuration schema and decodes it. Defaults are not applied.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnv(data)
	if err := ValidateSchema(expanded); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to unmarshal config").WithCause(err).Build()
	}
	return &cfg, nil
}

// finalize resolves the source root against baseDir, applies defaults and validates.
func (c *Config) finalize(baseDir string) error {
	if err := applyDefaults(c); err != nil {
		return err
	}
	if !filepath.IsAbs(c.Source.Root) {
		c.Source.Root = filepath.Join(baseDir, c.Source.Root)
	}
	abs, err := filepath.Abs(c.Source.Root)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "cannot resolve source root").
			WithContext("root", c.Source.Root).Build()
	}
	c.Source.Root = abs
	return Validate(c)
}

// Resolve returns p unchanged when absolute, else joined onto the source root.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Source.Root, p)
}

// Category is a named resource directory mirrored into staging.
type Category struct {
	Name string
	Dir  string // absolute source directory
}

// Categories returns the configured sync categories in order.
func (c *Config) Categories() []Category {
	dirs := c.categoryDirs()
	out := make([]Category, 0, len(c.Sync.Categories))
	for _, name := range c.Sync.Categories {
		out = append(out, Category{Name: name, Dir: c.Resolve(dirs[name])})
	}
	return out
}

func (c *Config) categoryDirs() map[string]string {
	return map[string]string{
		CategoryTemplates:  c.Source.Templates,
		CategoryImages:     c.Source.Images,
		CategoryExtraPages: c.Source.ExtraPages,
		CategoryPages:      c.Source.Pages,
		CategoryResources:  c.Source.Resources,
	}
}

// BibliographyEnabled reports whether the bibliography stage runs.
func (c *Config) BibliographyEnabled() bool {
	return c.Bibliography.Enabled == nil || *c.Bibliography.Enabled
}

// Sync category names.
const (
	CategoryTemplates  = "templates"
	CategoryImages     = "images"
	CategoryExtraPages = "extra_pages"
	CategoryPages      = "pages"
	CategoryResources  = "resources"
)

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
