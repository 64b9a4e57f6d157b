// Package layout edits the generator's navigation layout document.
//
// The layout is an XML tree whose navindex element lists the top-level
// navigation tabs. Pages found in the pages directory are chained in after
// the mainpage tab, and tutorials are grouped under a single usergroup tab
// placed before the namespaces tab. Each entry points at the page with an
// "@ref" to the identifier the generator assigns to a Markdown page.
package layout
