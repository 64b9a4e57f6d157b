package config

import (
	"maps"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	"git.home.luguber.info/inful/doxybuild/internal/markdown"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	&sourceDefaults{},
	&buildDefaults{},
	&layoutDefaults{},
	&runtimeDefaults{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

type sourceDefaults struct{}

func (sourceDefaults) Domain() string { return "source" }

func (sourceDefaults) ApplyDefaults(cfg *Config) error {
	s := &cfg.Source
	setDefault(&s.Root, ".")
	setDefault(&s.Pages, "pages")
	setDefault(&s.Tutorials, "tutorials")
	setDefault(&s.Images, "images")
	setDefault(&s.ExtraPages, "extra_pages")
	setDefault(&s.Templates, "templates")
	setDefault(&s.Resources, "resources")
	setDefault(&s.ConfigTemplate, "movetk-doxy-config.cfg.in")
	setDefault(&s.LayoutTemplate, "DoxygenLayout.xml")
	setDefault(&s.Bibliography, "movetk.bib")
	setDefault(&s.BibliographyTemplate, "resources/bibliography.js.in")
	return nil
}

type buildDefaults struct{}

func (buildDefaults) Domain() string { return "build" }

func (buildDefaults) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Version, "1")
	setDefault(&cfg.Staging.Directory, ".doxybuild/staging")
	setDefault(&cfg.Output.Directory, "../docs")
	setDefault(&cfg.Output.HTMLOutputName, "html")
	setDefault(&cfg.Tool.Binary, "doxygen")
	setDefault(&cfg.Tool.MinVersion, doxygen.MinimumVersion.String())
	setDefault(&cfg.Tool.ConfigName, "doxygen.cfg")
	setDefault(&cfg.Sync.TemplateSuffix, ".in")
	if len(cfg.Sync.Categories) == 0 {
		cfg.Sync.Categories = []string{CategoryTemplates, CategoryImages, CategoryExtraPages, CategoryPages, CategoryResources}
	}
	setDefault(&cfg.Bibliography.Placeholder, "$bibliography")
	setDefault(&cfg.Bibliography.Output, "resources/bibliography.js")
	if cfg.Markdown.Fences == nil {
		cfg.Markdown.Fences = maps.Clone(markdown.DefaultFenceLanguages)
	} else {
		cfg.Markdown.Fences = maps.Clone(cfg.Markdown.Fences)
	}
	return nil
}

type layoutDefaults struct{}

func (layoutDefaults) Domain() string { return "layout" }

func (layoutDefaults) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Layout.RefPrefix, "md_pages_")
	setDefault(&cfg.Layout.TutorialsTitle, "Tutorials")
	setDefault(&cfg.Layout.IntroductionFile, "introduction.md")
	setDefault(&cfg.Layout.OutputName, "DoxygenLayout.xml")
	return nil
}

type runtimeDefaults struct{}

func (runtimeDefaults) Domain() string { return "runtime" }

func (runtimeDefaults) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Logging.Level, string(LogLevelInfo))
	setDefault(&cfg.Logging.Format, string(LogFormatText))
	setDefault(&cfg.History.Path, ".doxybuild/history.db")
	setDefault(&cfg.Notify.Subject, "doxybuild.builds")
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 5 * time.Second
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	return nil
}
