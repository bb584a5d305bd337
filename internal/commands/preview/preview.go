// Package preview renders a single document and serves the result over a
// local HTTP listener, refreshing the rendered bytes on each request so a
// browser reload always reflects the file's current contents on disk.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/qmd-toolchain/qmdcore/internal/commands"
	"github.com/qmd-toolchain/qmdcore/internal/commands/render"
	"github.com/qmd-toolchain/qmdcore/pkg/interfaces"
)

// Command starts a preview server for a single source file.
type Command struct {
	SourcePath    string
	ProjectConfig string
	Addr          string // e.g. "127.0.0.1:4200"

	// ThemeDir/ThemeVariant are forwarded to each render.Command, see
	// render.Command's fields of the same name.
	ThemeDir     string
	ThemeVariant string
}

// Type implements command.Message.
func (Command) Type() string { return "qmd.preview" }

// Validate implements command.Message.
func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SourcePath, validation.Required),
		validation.Field(&c.Addr, validation.Required),
	)
}

// NewHandler builds a command.Commander[Command] that blocks serving HTTP
// until the process receives SIGINT/SIGTERM or the caller's context is
// cancelled. Every request re-runs the render pipeline so edits to
// SourcePath are visible on the next reload. A signal-driven shutdown ends
// the command without error, so callers that want the process's own
// interrupt handling (the common case) should pass context.Background().
// Cancelling the caller's ctx also stops the server, but Execute then
// returns a command context error, as the shared commands.Handler does for
// any cancelled context.
func NewHandler(provider interfaces.LoggerProvider) command.Commander[Command] {
	logger := commands.CommandLogger(provider, "preview")
	fn := func(ctx context.Context, cmd Command) error {
		return serve(ctx, provider, cmd)
	}
	return commands.NewHandler[Command](
		fn,
		commands.WithTimeout[Command](0), // preview blocks for the server's lifetime
		commands.WithLogger[Command](logger),
		commands.WithOperation[Command]("preview.serve"),
		commands.WithMessageFields[Command](func(cmd Command) map[string]any {
			return map[string]any{"source": cmd.SourcePath, "addr": cmd.Addr}
		}),
	)
}

func serve(ctx context.Context, provider interfaces.LoggerProvider, cmd Command) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		renderCmd := render.Command{
			SourcePath:    cmd.SourcePath,
			ProjectConfig: cmd.ProjectConfig,
			DryRun:        true,
			ThemeDir:      cmd.ThemeDir,
			ThemeVariant:  cmd.ThemeVariant,
		}

		var result render.Result
		handler := render.NewHandler(provider, func(_ render.Command, res render.Result) {
			result = res
		})
		if err := handler.Execute(r.Context(), renderCmd); err != nil {
			http.Error(w, fmt.Sprintf("render %s: %v", cmd.SourcePath, err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(result.Rendered)
	})

	srv := &http.Server{Addr: cmd.Addr, Handler: mux}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		srv.Close()
		return nil
	case <-signalCtx.Done():
		srv.Close()
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
