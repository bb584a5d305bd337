package configtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaInvalid reports a schema that fails to compile.
var ErrSchemaInvalid = errors.New("configtree: schema invalid")

// ErrSchemaValidation reports a config tree that fails schema validation.
var ErrSchemaValidation = errors.New("configtree: schema validation failed")

// Issue is a single schema validation failure, located by JSON pointer into
// the materialized config.
type Issue struct {
	Location string
	Message  string
}

// SchemaValidationError aggregates every Issue produced by one validation call.
type SchemaValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *SchemaValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := strings.TrimSpace(issue.Location)
		if loc == "" {
			loc = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaValidationError) Unwrap() error { return ErrSchemaValidation }

// ValidateSchema validates a materialized ConfigValue tree against a JSON
// schema (draft 2020-12), after flattening the ConfigValue back into plain
// Go values via ToPlain.
func ValidateSchema(schema map[string]any, value *ConfigValue) error {
	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	payload := ToPlain(value)
	if err := compiled.Validate(payload); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &SchemaValidationError{Issues: collectIssues(ve), Cause: err}
		}
		return &SchemaValidationError{Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// ToPlain flattens a ConfigValue tree into plain Go values (map[string]any,
// []any, scalars) suitable for JSON-schema validation or JSON encoding.
// PandocInlines/PandocBlocks nodes flatten to nil, since schema validation
// only cares about front-matter shape.
func ToPlain(v *ConfigValue) any {
	if v == nil || v.Kind == Null {
		return nil
	}
	switch v.Kind {
	case Scalar:
		return v.Raw
	case Map:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key] = ToPlain(e.Value)
		}
		return out
	case Array:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = ToPlain(it)
		}
		return out
	default:
		return nil
	}
}
