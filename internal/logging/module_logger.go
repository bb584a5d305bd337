package logging

import (
	"context"
	"strings"

	"github.com/qmd-toolchain/qmdcore/pkg/interfaces"
)

const (
	rootModule      = "qmd"
	parserModule    = "qmd.parser"
	pipelineModule  = "qmd.pipeline"
	transformModule = "qmd.transform"
	syncHubModule   = "qmd.synchub"
	kernelModule    = "qmd.kernel"
)

const (
	fieldSourcePath   = "source_path"
	fieldStageName    = "stage"
	fieldDiagnosticID = "code"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ParserLogger returns the logger namespace reserved for the parser adapter.
func ParserLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, parserModule)
}

// PipelineLogger returns the logger namespace reserved for the staged render pipeline.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// TransformLogger returns the logger namespace reserved for AST transforms.
func TransformLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, transformModule)
}

// SyncHubLogger returns the logger namespace reserved for the sync hub.
func SyncHubLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncHubModule)
}

// KernelLogger returns the logger namespace reserved for the kernel daemon.
func KernelLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, kernelModule)
}

// WithStageContext enriches the provided logger with common pipeline fields such as
// source path, stage name, and diagnostic code. Empty values are ignored.
func WithStageContext(logger interfaces.Logger, path, stage, code string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldStageName] = trimmed
	}
	if trimmed := strings.TrimSpace(code); trimmed != "" {
		fields[fieldDiagnosticID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
