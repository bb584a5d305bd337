// Package memcrdt is a deterministic, process-local implementation of
// synchub.CRDTRepository. It is not a general-purpose CRDT: writes are
// total-ordered by a single in-process mutex rather than merged from
// concurrent replicas. It exists to make the "heads" half of the sync hub's
// coherence rule exercisable without depending on a real CRDT library —
// none of the example repos import one, and this stands in for it as
// spec.md §1 explicitly allows for an opaque repository contract.
package memcrdt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/qmd-toolchain/qmdcore/internal/synchub"
)

type document struct {
	fields map[string]any
	// seq increments on every committed transaction; heads is derived from
	// seq plus a content digest so two documents with the same field values
	// but different histories still report different heads.
	seq int
}

// Repository is the in-memory CRDTRepository implementation.
type Repository struct {
	mu        sync.Mutex
	documents map[synchub.DocumentID]*document
}

// New returns an empty Repository.
func New() *Repository {
	return &Repository{documents: make(map[synchub.DocumentID]*document)}
}

func (r *Repository) CreateDocument(ctx context.Context) (synchub.DocumentID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := synchub.DocumentID(uuid.NewString())
	r.documents[id] = &document{fields: make(map[string]any)}
	return id, nil
}

func (r *Repository) FindDocument(ctx context.Context, id synchub.DocumentID) (synchub.Doc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[id]
	if !ok {
		return synchub.Doc{}, fmt.Errorf("memcrdt: document %s not found", id)
	}
	return synchub.Doc{ID: id, Fields: cloneFields(doc.fields), Heads: headsOf(doc)}, nil
}

func (r *Repository) Transact(ctx context.Context, id synchub.DocumentID, fn func(synchub.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[id]
	if !ok {
		return fmt.Errorf("memcrdt: document %s not found", id)
	}
	tx := &transaction{doc: doc}
	if err := fn(tx); err != nil {
		return err
	}
	doc.seq++
	return nil
}

type transaction struct {
	doc *document
}

func (t *transaction) Set(field string, value any) error {
	t.doc.fields[field] = value
	return nil
}

func (t *transaction) Get(field string) (any, bool) {
	v, ok := t.doc.fields[field]
	return v, ok
}

func (t *transaction) Delete(field string) {
	delete(t.doc.fields, field)
}

func (t *transaction) Heads() string {
	return headsOf(t.doc)
}

func headsOf(doc *document) string {
	keys := make([]string, 0, len(doc.fields))
	for k := range doc.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "seq:%d|", doc.seq)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v|", k, doc.fields[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
