package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/qmd-toolchain/qmdcore/internal/commands/render"
	"github.com/qmd-toolchain/qmdcore/internal/logging/console"
	"github.com/qmd-toolchain/qmdcore/internal/sandbox"
)

func main() {
	var (
		source   = flag.String("source", "", "Path to the .qmd source file to render")
		output   = flag.String("output", "", "Path to write rendered HTML (required unless -dry-run)")
		project  = flag.String("project-config", "", "Path to _quarto.yml (optional)")
		dryRun   = flag.Bool("dry-run", false, "Render without writing output")
		filters  = flag.String("filters", "", "Comma-separated filter chain: citeproc, *.lua paths, or JSON filter commands")
		allowRun = flag.String("allow-run", "", "Comma-separated glob patterns permitting Lua/JSON filter execution")
		theme    = flag.String("theme", "", "Path to a go-theme manifest directory (optional; default stylesheet otherwise)")
		variant  = flag.String("theme-variant", "", "Theme variant name (optional; falls back to the manifest's default)")
	)
	flag.Parse()

	if *source == "" {
		log.Fatalf("-source is required")
	}

	provider := console.NewProvider(console.Options{})

	var result render.Result
	handler := render.NewHandler(provider, func(_ render.Command, res render.Result) {
		result = res
	})

	var policy *sandbox.Policy
	if *allowRun != "" {
		policy = sandbox.NewPolicy()
		for _, pattern := range splitNonEmpty(*allowRun) {
			policy.AllowRun(pattern)
		}
	}

	cmd := render.Command{
		SourcePath:    *source,
		OutputPath:    *output,
		ProjectConfig: *project,
		DryRun:        *dryRun,
		Filters:       splitNonEmpty(*filters),
		Sandbox:       policy,
		ThemeDir:      *theme,
		ThemeVariant:  *variant,
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		log.Fatalf("render: %v", err)
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Kind.String(), d.Title)
	}

	if *dryRun {
		fmt.Fprintf(os.Stdout, "%s", result.Rendered)
		return
	}
	fmt.Fprintf(os.Stdout, "rendered %s -> %s\n", *source, *output)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
