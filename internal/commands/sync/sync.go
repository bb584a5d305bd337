// Package sync wires internal/synchub's discovery, storage, index, and
// coherence primitives into a sync operation: walk a project, ensure every
// discovered file has a CRDT document, and reconcile any drift the coherence
// rule detects, updating the CRDT from a changed file or writing the CRDT's
// content back to the file when the CRDT side changed.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/qmd-toolchain/qmdcore/internal/commands"
	"github.com/qmd-toolchain/qmdcore/internal/synchub"
	"github.com/qmd-toolchain/qmdcore/internal/synchub/memcrdt"
	"github.com/qmd-toolchain/qmdcore/pkg/interfaces"
)

// Command synchronizes a project directory's files against its CRDT hub.
type Command struct {
	ProjectRoot string
}

// Type implements command.Message.
func (Command) Type() string { return "qmd.sync" }

// Validate implements command.Message.
func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ProjectRoot, validation.Required),
	)
}

// Result reports what the sync pass did.
type Result struct {
	Discovered int
	Added      int
	Updated    int
	Unchanged  int
}

// NewHandler builds a command.Commander[Command] that opens (or resumes)
// the project's hub, discovers files, and reconciles each against its CRDT
// document. repo is the CRDTRepository collaborator; passing nil defaults
// to a fresh in-process memcrdt.Repository for each run. With a nil repo the
// index_document_id stored in hub.json is not looked up: a new index
// document is created and its ID saved to hub.json.
func NewHandler(provider interfaces.LoggerProvider, repo synchub.CRDTRepository, sink func(Command, Result)) command.Commander[Command] {
	logger := commands.CommandLogger(provider, "sync")
	fn := func(ctx context.Context, cmd Command) error {
		result, err := run(ctx, repo, cmd)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(cmd, result)
		}
		return nil
	}
	return commands.NewHandler[Command](
		fn,
		commands.WithLogger[Command](logger),
		commands.WithOperation[Command]("sync.project"),
		commands.WithMessageFields[Command](func(cmd Command) map[string]any {
			return map[string]any{"project_root": cmd.ProjectRoot}
		}),
	)
}

func run(ctx context.Context, repo synchub.CRDTRepository, cmd Command) (Result, error) {
	freshRepo := repo == nil
	if freshRepo {
		repo = memcrdt.New()
	}

	sm, err := synchub.OpenStorageManager(cmd.ProjectRoot)
	if err != nil {
		return Result{}, fmt.Errorf("sync: open hub: %w", err)
	}
	defer sm.Close()

	indexID := synchub.DocumentID(sm.Config.IndexDocumentID)
	if freshRepo {
		// A fresh in-memory repository holds no index from an earlier run.
		indexID = ""
	}
	index, err := synchub.LoadOrCreateIndex(ctx, repo, indexID)
	if err != nil {
		return Result{}, fmt.Errorf("sync: load index: %w", err)
	}
	if sm.Config.IndexDocumentID != string(index.ID()) {
		sm.Config.IndexDocumentID = string(index.ID())
		if err := sm.SaveConfig(); err != nil {
			return Result{}, fmt.Errorf("sync: persist index id: %w", err)
		}
	}

	state, err := synchub.LoadSyncState(sm.HubDir())
	if err != nil {
		return Result{}, fmt.Errorf("sync: load sync state: %w", err)
	}

	discovered, err := synchub.Discover(cmd.ProjectRoot)
	if err != nil {
		return Result{}, fmt.Errorf("sync: discover files: %w", err)
	}

	result := Result{}
	allFiles := append(append(append([]string{}, discovered.QMDFiles...), discovered.ConfigFiles...), discovered.BinaryFiles...)
	result.Discovered = len(allFiles)

	for _, rel := range allFiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := reconcileFile(ctx, repo, index, state, cmd.ProjectRoot, rel, &result); err != nil {
			return result, fmt.Errorf("sync: reconcile %s: %w", rel, err)
		}
	}

	if err := state.Save(sm.HubDir()); err != nil {
		return result, fmt.Errorf("sync: save sync state: %w", err)
	}
	return result, nil
}

func reconcileFile(ctx context.Context, repo synchub.CRDTRepository, index *synchub.Index, state *synchub.SyncState, projectRoot, rel string, result *Result) error {
	absPath := filepath.Join(projectRoot, rel)
	content, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}
	contentHash := synchub.HashContent(content)

	docID, known, err := index.GetFile(ctx, rel)
	if err != nil {
		return err
	}
	if !known {
		newID, err := synchub.CreateBinaryDocument(ctx, repo, rel, content)
		if err != nil {
			return err
		}
		if err := index.AddFile(ctx, rel, newID); err != nil {
			return err
		}
		created, err := repo.FindDocument(ctx, newID)
		if err != nil {
			return err
		}
		state.Set(newID, synchub.Checkpoint{LastSyncHeads: created.Heads, LastSyncContentHash: contentHash})
		result.Added++
		return nil
	}

	doc, err := repo.FindDocument(ctx, docID)
	if err != nil {
		return err
	}
	checkpoint, _ := state.Get(docID)
	side := synchub.Coherence(doc.Heads, contentHash, checkpoint)
	if side == synchub.NoChange {
		result.Unchanged++
		return nil
	}

	writeFilesystem, next := synchub.Resolve(side, doc.Heads, contentHash, checkpoint)
	if side == synchub.FilesystemChanged {
		if err := repo.Transact(ctx, docID, func(tx synchub.Tx) error {
			return tx.Set("content", content)
		}); err != nil {
			return err
		}
		refreshed, err := repo.FindDocument(ctx, docID)
		if err != nil {
			return err
		}
		next.LastSyncHeads = refreshed.Heads
	}
	if writeFilesystem {
		if content, ok := doc.Fields["content"]; ok {
			if bytesContent, ok := content.([]byte); ok {
				if err := os.WriteFile(absPath, bytesContent, 0o644); err != nil {
					return err
				}
			}
		}
	}
	state.Set(docID, next)
	result.Updated++
	return nil
}
