// Package templates renders generator configuration templates.
//
// A template is plain text containing placeholders of the form
// {{ name }}, where name is one of a closed set of documentation
// parameters. Rendering is a single left-to-right pass: substituted values
// are never scanned again, and an unrecognized name stops rendering.
package templates
