package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://doxybuild.local/schema/config.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	errSchema      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			errSchema = fmt.Errorf("parse embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			errSchema = fmt.Errorf("add embedded schema: %w", err)
			return
		}
		compiledSchema, errSchema = c.Compile(schemaURL)
	})
	return compiledSchema, errSchema
}

// SchemaViolation is one failed schema constraint.
type SchemaViolation struct {
	Path    string
	Message string
}

// ValidateSchema checks a raw YAML document against the embedded JSON schema.
// An empty document is valid.
func ValidateSchema(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "configuration is not valid YAML").Fatal().Build()
	}
	if raw == nil {
		return nil
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "configuration cannot be represented as JSON").Fatal().Build()
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "re-read configuration").Build()
	}

	schema, err := loadSchema()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "configuration schema unavailable").Build()
	}
	if err := schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "configuration failed schema validation").Fatal().Build()
		}
		violations := flattenViolations(verr)
		b := ferrors.WrapError(err, ferrors.CategoryConfig, "configuration failed schema validation").Fatal()
		if len(violations) > 0 {
			b = b.WithContext("field", violations[0].Path)
		}
		return b.Build()
	}
	return nil
}

func flattenViolations(verr *jsonschema.ValidationError) []SchemaViolation {
	if len(verr.Causes) == 0 {
		path := "$"
		if len(verr.InstanceLocation) > 0 {
			path = strings.Join(verr.InstanceLocation, ".")
		}
		return []SchemaViolation{{Path: path, Message: verr.Error()}}
	}
	var out []SchemaViolation
	for _, c := range verr.Causes {
		out = append(out, flattenViolations(c)...)
	}
	return out
}
