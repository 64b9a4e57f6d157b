package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Recognized parameter names.
const (
	OutputFolder   = "output_folder"
	MovetkVersion  = "movetk_version"
	HTMLOutputName = "html_output_name"
	SourceRevision = "source_revision"
)

var knownParameters = map[string]struct{}{
	OutputFolder:   {},
	MovetkVersion:  {},
	HTMLOutputName: {},
	SourceRevision: {},
}

// ErrUnknownParameter matches every UnknownParameterError.
var ErrUnknownParameter = errors.New("unknown documentation parameter")

// UnknownParameterError names a parameter outside the recognized set.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown documentation parameter %q (known: %s)", e.Name, strings.Join(Names(), ", "))
}

func (e *UnknownParameterError) Is(target error) bool {
	return target == ErrUnknownParameter
}

// Parameters is the immutable value set available to templates. Recognized
// names that were not supplied resolve to the empty string.
type Parameters struct {
	values map[string]string
}

// NewParameters copies values, rejecting any name outside the recognized set.
func NewParameters(values map[string]string) (Parameters, error) {
	p := Parameters{values: make(map[string]string, len(knownParameters))}
	for name, v := range values {
		if _, ok := knownParameters[name]; !ok {
			return Parameters{}, &UnknownParameterError{Name: name}
		}
		p.values[name] = v
	}
	return p, nil
}

// Get returns the value of a recognized parameter.
func (p Parameters) Get(name string) (string, error) {
	if _, ok := knownParameters[name]; !ok {
		return "", &UnknownParameterError{Name: name}
	}
	return p.values[name], nil
}

// Names lists the recognized parameter names in sorted order.
func Names() []string {
	out := make([]string, 0, len(knownParameters))
	for n := range knownParameters {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
