package transform

import "sync"

// Artifact is a non-AST render output (CSS, an image, a collected
// dependency) produced by a transform or stage and consumed later in the
// pipeline or by the post-render writer.
type Artifact struct {
	Bytes      []byte
	MimeType   string
	OutputPath *string
}

// ArtifactStore is a process-local keyed store exclusively owned by the
// active render. Stages may borrow-mutate artifacts via Take/Restore: Take
// moves an artifact out (leaving the key empty) so a bridge to legacy,
// non-Go transform code can consume it without aliasing, and Restore moves
// it back. This is Go's answer to spec.md §9's move-semantics idiom, using
// the zero/nil-then-restore pattern in place of an actual move.
type ArtifactStore struct {
	mu    sync.Mutex
	items map[string]Artifact
}

// NewArtifactStore returns an empty store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{items: map[string]Artifact{}}
}

// Set stores (or replaces) the artifact under key.
func (s *ArtifactStore) Set(key string, a Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = a
}

// Get returns the artifact under key and whether it was present.
func (s *ArtifactStore) Get(key string) (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[key]
	return a, ok
}

// Take removes and returns the artifact under key, leaving it absent until
// Restore is called.
func (s *ArtifactStore) Take(key string) (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return a, ok
}

// Restore reinserts an artifact previously removed by Take.
func (s *ArtifactStore) Restore(key string, a Artifact) {
	s.Set(key, a)
}

// Keys returns every key currently stored, in no particular order.
func (s *ArtifactStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}
