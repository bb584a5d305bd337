package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/qmd-toolchain/qmdcore/internal/commands/sync"
	"github.com/qmd-toolchain/qmdcore/internal/logging/console"
)

func main() {
	var project = flag.String("project", ".", "Project root directory")
	flag.Parse()

	provider := console.NewProvider(console.Options{})

	var result sync.Result
	handler := sync.NewHandler(provider, nil, func(_ sync.Command, res sync.Result) {
		result = res
	})

	cmd := sync.Command{ProjectRoot: *project}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		log.Fatalf("sync: %v", err)
	}

	fmt.Fprintf(os.Stdout, "discovered=%d added=%d updated=%d unchanged=%d\n",
		result.Discovered, result.Added, result.Updated, result.Unchanged)
}
