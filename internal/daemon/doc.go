// Package daemon keeps the documentation up to date while sources change.
//
// A filesystem watcher and an optional periodic schedule request rebuilds;
// a single worker runs them one at a time. Requests that arrive while a
// build runs collapse into exactly one follow-up build.
package daemon
