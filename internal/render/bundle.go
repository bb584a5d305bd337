package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// currentBundleVersion is substituted whenever a bundle's version field is
// omitted; any other explicit version is rejected.
const currentBundleVersion = "1.0.0"

// ErrBundleInvalid reports a template bundle that fails schema validation
// or carries an unrecognized version.
var ErrBundleInvalid = errors.New("render: template bundle invalid")

// Bundle is the on-disk JSON shape of a template bundle: one main template
// plus named partials, resolved only from this map (no filesystem fallback).
type Bundle struct {
	Version  string            `json:"version,omitempty"`
	Main     string            `json:"main"`
	Partials map[string]string `json:"partials,omitempty"`
}

var bundleSchema = map[string]any{
	"type":                 "object",
	"additionalProperties":  false,
	"required":             []any{"main"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"main":    map[string]any{"type": "string"},
		"partials": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
	},
}

// ParseBundle decodes and schema-validates raw JSON into a Bundle. A missing
// version defaults to currentBundleVersion; any other explicit version is an
// error (no version negotiation is implemented).
func ParseBundle(raw []byte) (*Bundle, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	if err := validateBundleSchema(generic); err != nil {
		return nil, err
	}

	var bundle Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	if bundle.Version == "" {
		bundle.Version = currentBundleVersion
	} else if bundle.Version != currentBundleVersion {
		return nil, fmt.Errorf("%w: unsupported bundle version %q", ErrBundleInvalid, bundle.Version)
	}
	return &bundle, nil
}

func validateBundleSchema(doc map[string]any) error {
	encoded, err := json.Marshal(bundleSchema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("bundle-schema.json", bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	compiled, err := compiler.Compile("bundle-schema.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	return nil
}

// Context holds the bundle whose partials CompileShared expands, so several
// CompileShared calls can share it. It caches nothing: partials are expanded
// again on every call.
type Context struct {
	bundle *Bundle
}

// NewContext builds a shared Context from a parsed Bundle.
func NewContext(bundle *Bundle) *Context {
	return &Context{bundle: bundle}
}

// CompiledTemplate is a bundle's main template with its partials resolved
// into a single substitution template.
type CompiledTemplate struct {
	*Template
}

// Compile creates an internal Context for bundle and compiles its main
// template. Use this when a bundle is rendered once; for repeated renders
// against the same bundle prefer CompileShared.
func Compile(bundle *Bundle) (*CompiledTemplate, error) {
	return CompileShared(bundle, NewContext(bundle))
}

// CompileShared compiles bundle's main template, expanding the partials of
// ctx's bundle into it. Partials are resolved only from that bundle's map; a
// ${partial:name} reference with no matching partial is left in the output
// as literal text.
func CompileShared(bundle *Bundle, ctx *Context) (*CompiledTemplate, error) {
	if bundle == nil {
		return nil, fmt.Errorf("%w: nil bundle", ErrBundleInvalid)
	}
	source := bundle.Main
	for name, partial := range ctx.bundle.Partials {
		source = expandPartial(source, name, partial)
	}
	return &CompiledTemplate{Template: NewTemplate(source)}, nil
}

// expandPartial substitutes every ${partial:name} occurrence with body. This
// is a single, non-recursive pass: a partial referencing another partial is
// not itself expanded, avoiding unbounded recursion on a cyclic bundle.
func expandPartial(source, name, body string) string {
	token := "${partial:" + name + "}"
	return strings.ReplaceAll(source, token, body)
}
