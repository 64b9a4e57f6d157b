package eventstore

import (
	"git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

var (
	// ErrRecordNotFound indicates no build with the requested ID was recorded.
	ErrRecordNotFound = errors.NewError(errors.CategoryNotFound, "build record not found").Build()

	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.FileSystemError("could not open build history database").Build()
)
