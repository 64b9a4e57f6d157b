// Package errors provides the classified error primitives used across doxybuild.
//
// A ClassifiedError carries a category (what failed), a severity (how bad it
// is) and a small context map naming the offending input (file, anchor,
// version...). Build them with the fluent builder:
//
//	err := errors.WrapError(cause, errors.CategoryLayout, "anchor tab not found").
//		WithContext("anchor", "namespaces").
//		WithContext("file", layoutPath).
//		Build()
//
// The CLI adapter turns a classified error into a one-line message and a
// process exit code.
package errors
