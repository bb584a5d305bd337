// Package render turns a normalized document tree into HTML, and composes
// that body with a variable-substitution template (per-document metadata,
// collected artifact paths) into a final output document.
package render
