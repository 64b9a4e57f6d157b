package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/doxybuild/internal/diff"
	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
)

// LayoutCmd implements the 'layout' command.
type LayoutCmd struct {
	Diff   bool   `help:"Print a unified diff against the layout template"`
	Tabs   bool   `help:"List the navigation tabs instead of the XML"`
	Output string `short:"o" help:"Write the layout to this file instead of stdout"`
}

func (l *LayoutCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	res, err := pipeline.ComposeLayout(cfg)
	if err != nil {
		return pipeline.Classify(err)
	}
	data, err := res.Document.Bytes()
	if err != nil {
		return pipeline.Classify(err)
	}

	if l.Tabs {
		tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "TAB\tTITLE\tURL")
		for _, tab := range res.Document.Tabs() {
			_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\n", strings.Repeat("  ", tab.Depth), tab.Type, dash(tab.Title), dash(tab.URL))
		}
		return tw.Flush()
	}

	if l.Diff {
		tmpl := cfg.Resolve(cfg.Source.LayoutTemplate)
		orig, err := os.ReadFile(tmpl) // #nosec G304 -- configured layout template
		if err != nil {
			return pipeline.Classify(err)
		}
		name := filepath.Base(tmpl)
		out, err := diff.Unified(name, name+" (edited)", orig, data, diff.DefaultContext)
		if err != nil {
			return ferrors.InternalError("failed to diff layout").WithCause(err).Build()
		}
		_, _ = fmt.Fprint(g.Stdout, out)
		return nil
	}

	if l.Output != "" {
		if err := os.WriteFile(l.Output, data, 0o600); err != nil {
			return ferrors.FileSystemError("failed to write layout").WithCause(err).
				WithContext("file", l.Output).Build()
		}
		_, _ = fmt.Fprintf(g.Stdout, "Layout with %d tutorials and %d pages written to %s\n", res.Tutorials, res.Pages, l.Output)
		return nil
	}
	_, _ = g.Stdout.Write(data)
	return nil
}
