package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is one leaf failure. Pointer is a JSON pointer into the document,
// "" for the root.
type Issue struct {
	Pointer string
	Message string
}

func (i Issue) String() string {
	pointer := "#" + strings.TrimPrefix(i.Pointer, "#")
	if i.Message == "" {
		return pointer
	}
	return pointer + ": " + i.Message
}

// DocumentError lists every issue found in a metadata document.
type DocumentError struct {
	Issues []Issue
}

func (e *DocumentError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func (e *DocumentError) Unwrap() error { return ErrSchemaValidation }

// Issues returns the issues carried by err. Errors that are not schema
// failures become a single root issue.
func Issues(err error) []Issue {
	var docErr *DocumentError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &docErr):
		return docErr.Issues
	default:
		return []Issue{{Message: err.Error()}}
	}
}

// Schema wraps a compiled draft 2020-12 schema.
type Schema struct {
	compiled *jsonschema.Schema
}

func CompileSchema(name string, document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks a YAML decoded document. Values are converted to their
// JSON form first so dates and non-string map keys compare the way the
// schema expects.
func (s *Schema) Validate(document map[string]any) error {
	if document == nil {
		document = map[string]any{}
	}
	encoded, err := json.Marshal(jsonKeys(document))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	err = s.compiled.Validate(instance)
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return &DocumentError{Issues: leafIssues(verr, nil)}
	}
	return err
}

func jsonKeys(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = jsonKeys(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = jsonKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonKeys(item)
		}
		return out
	}
	return value
}

func leafIssues(node *jsonschema.ValidationError, acc []Issue) []Issue {
	if len(node.Causes) == 0 {
		return append(acc, Issue{
			Pointer: node.InstanceLocation,
			Message: strings.TrimSpace(node.Message),
		})
	}
	for _, cause := range node.Causes {
		acc = leafIssues(cause, acc)
	}
	return acc
}
