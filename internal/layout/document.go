package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

var (
	// ErrMalformedLayout is returned for documents that are not XML or lack a navindex element.
	ErrMalformedLayout = errors.New("malformed layout document")
	// ErrAnchorNotFound is returned when an insertion anchor is not present.
	ErrAnchorNotFound = errors.New("layout anchor not found")
)

// Tab types used as anchors or created by the editor.
const (
	TabMainPage   = "mainpage"
	TabNamespaces = "namespaces"
	TabUser       = "user"
	TabUserGroup  = "usergroup"
)

// Document is a parsed navigation layout.
type Document struct {
	doc *etree.Document
	nav *etree.Element
}

// Parse reads a layout document from data.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLayout, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedLayout)
	}
	nav := doc.FindElement("//navindex")
	if nav == nil {
		return nil, fmt.Errorf("%w: no navindex element", ErrMalformedLayout)
	}
	return &Document{doc: doc, nav: nav}, nil
}

// Load reads and parses the layout document at path.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is the configured layout template.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// FindTab returns the first top-level tab of the given type.
func (d *Document) FindTab(tabType string) (*etree.Element, error) {
	for _, tab := range d.nav.ChildElements() {
		if tab.Tag == "tab" && tab.SelectAttrValue("type", "") == tabType {
			return tab, nil
		}
	}
	return nil, fmt.Errorf("%w: tab type=%q", ErrAnchorNotFound, tabType)
}

// Serialize writes the document without an XML declaration, indented with two spaces.
func (d *Document) Serialize(w io.Writer) error {
	out := d.doc.Copy()
	kept := out.Child[:0]
	for _, tok := range out.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			continue
		}
		kept = append(kept, tok)
	}
	out.Child = kept
	out.Indent(2)

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Bytes returns the serialized document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save serializes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create layout directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write layout %s: %w", path, err)
	}
	return nil
}

// Tab is a flattened view of one navigation tab.
type Tab struct {
	Depth int
	Type  string
	Title string
	URL   string
}

// Tabs lists every tab under navindex in document order; children of a
// group follow the group with Depth+1.
func (d *Document) Tabs() []Tab {
	var out []Tab
	var walk func(el *etree.Element, depth int)
	walk = func(el *etree.Element, depth int) {
		for _, child := range el.ChildElements() {
			if child.Tag != "tab" {
				continue
			}
			out = append(out, Tab{
				Depth: depth,
				Type:  child.SelectAttrValue("type", ""),
				Title: child.SelectAttrValue("title", ""),
				URL:   child.SelectAttrValue("url", ""),
			})
			walk(child, depth+1)
		}
	}
	walk(d.nav, 0)
	return out
}
