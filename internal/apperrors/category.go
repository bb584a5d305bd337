// Package apperrors centralizes the goerrors.Category values this module
// wraps boundary errors with, so every package reports failures under one
// consistent, query-able taxonomy (goerrors.IsCategory(err, ...)).
package apperrors

import goerrors "github.com/goliatone/go-errors"

// Categories named in SPEC_FULL.md §7, one per subsystem boundary. Command
// reuses the teacher's own goerrors.CategoryCommand rather than minting a
// duplicate.
const (
	CategoryParse      goerrors.Category = "parse"
	CategoryDiagnostic goerrors.Category = "diagnostic"
	CategoryTransform  goerrors.Category = "transform"
	CategoryPipeline   goerrors.Category = "pipeline"
	CategorySync       goerrors.Category = "sync"
	CategoryCommand                     = goerrors.CategoryCommand
)
