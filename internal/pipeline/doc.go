// Package pipeline orchestrates a documentation build as a sequence of named,
// timed stages: tool check, staging preparation, bibliography, resource
// sync, tutorial conversion, layout editing, config rendering, generator
// invocation and optional output verification.
//
// Each build produces a BuildReport, including failed and canceled ones.
package pipeline
