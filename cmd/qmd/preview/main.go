package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/qmd-toolchain/qmdcore/internal/commands/preview"
	"github.com/qmd-toolchain/qmdcore/internal/logging/console"
)

func main() {
	var (
		source  = flag.String("source", "", "Path to the .qmd source file to preview")
		project = flag.String("project-config", "", "Path to _quarto.yml (optional)")
		addr    = flag.String("addr", "127.0.0.1:4200", "Address to listen on")
		theme   = flag.String("theme", "", "Path to a go-theme manifest directory (optional; default stylesheet otherwise)")
		variant = flag.String("theme-variant", "", "Theme variant name (optional; falls back to the manifest's default)")
	)
	flag.Parse()

	if *source == "" {
		log.Fatalf("-source is required")
	}

	provider := console.NewProvider(console.Options{})
	handler := preview.NewHandler(provider)

	cmd := preview.Command{
		SourcePath:    *source,
		ProjectConfig: *project,
		Addr:          *addr,
		ThemeDir:      *theme,
		ThemeVariant:  *variant,
	}

	fmt.Fprintf(os.Stdout, "previewing %s at http://%s\n", *source, *addr)
	if err := handler.Execute(context.Background(), cmd); err != nil {
		log.Fatalf("preview: %v", err)
	}
}
