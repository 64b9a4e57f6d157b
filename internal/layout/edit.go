package layout

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// Position selects which side of the anchor a new node goes.
type Position int

const (
	Before Position = iota
	After
)

// DefaultTutorialsTitle labels the tutorial group tab.
const DefaultTutorialsTitle = "Tutorials"

// DefaultIntroductionFile is the pages entry rendered as the main page and
// therefore never listed as its own tab.
const DefaultIntroductionFile = "introduction.md"

// InsertRelative inserts child into parent directly before or after anchor.
func InsertRelative(parent, anchor, child *etree.Element, pos Position) error {
	if anchor == nil || anchor.Parent() != parent {
		return ErrAnchorNotFound
	}
	idx := anchor.Index()
	if pos == After {
		idx++
	}
	parent.InsertChildAt(idx, child)
	return nil
}

// NewTab builds a tab element with the attribute order the generator's own layouts use.
func NewTab(tabType, url, title string) *etree.Element {
	tab := etree.NewElement("tab")
	tab.CreateAttr("type", tabType)
	tab.CreateAttr("visible", "yes")
	tab.CreateAttr("url", url)
	tab.CreateAttr("title", title)
	return tab
}

// EntryOptions tunes how directories become tabs.
type EntryOptions struct {
	RefPrefix        string
	TutorialsTitle   string
	IntroductionFile string
}

func (o EntryOptions) withDefaults() EntryOptions {
	if o.RefPrefix == "" {
		o.RefPrefix = DefaultRefPrefix
	}
	if o.TutorialsTitle == "" {
		o.TutorialsTitle = DefaultTutorialsTitle
	}
	if o.IntroductionFile == "" {
		o.IntroductionFile = DefaultIntroductionFile
	}
	return o
}

// AddTutorialPages groups the tutorials of dir under one usergroup tab
// inserted before the namespaces tab. Entries are numbered from 1 in file
// name order. No group is added when dir holds no tutorials.
func (d *Document) AddTutorialPages(dir string, opts EntryOptions) (int, error) {
	opts = opts.withDefaults()
	entries, err := CollectTutorials(dir, opts.RefPrefix)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		slog.Debug("No tutorials found", logfields.Path(dir))
		return 0, nil
	}
	anchor, err := d.FindTab(TabNamespaces)
	if err != nil {
		return 0, err
	}

	group := NewTab(TabUserGroup, "[none]", opts.TutorialsTitle)
	for i, e := range entries {
		group.AddChild(NewTab(TabUser, "@ref "+e.RefID, strconv.Itoa(i+1)+" "+e.Title))
		slog.Debug("Added tutorial tab", logfields.RefID(e.RefID), logfields.File(e.Path))
	}
	if err := InsertRelative(d.nav, anchor, group, Before); err != nil {
		return 0, fmt.Errorf("insert tutorials: %w", err)
	}
	return len(entries), nil
}

// AddPages adds a tab for every page of dir except the introduction,
// chained after the mainpage tab in file name order.
func (d *Document) AddPages(dir string, opts EntryOptions) (int, error) {
	opts = opts.withDefaults()
	entries, err := CollectEntries(dir, opts.RefPrefix, opts.IntroductionFile)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	anchor, err := d.FindTab(TabMainPage)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		tab := NewTab(TabUser, "@ref "+e.RefID, e.Title)
		if err := InsertRelative(d.nav, anchor, tab, After); err != nil {
			return 0, fmt.Errorf("insert page %s: %w", e.Path, err)
		}
		anchor = tab
		slog.Debug("Added page tab", logfields.RefID(e.RefID), logfields.File(e.Path))
	}
	return len(entries), nil
}
