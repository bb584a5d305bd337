package synchub

import (
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const syncStateName = "sync-state.json"

// Checkpoint is one document's local sync bookkeeping: the CRDT logical
// heads and filesystem content hash as of the last successful sync.
type Checkpoint struct {
	LastSyncHeads       string
	LastSyncContentHash string
}

// SyncState is the per-machine, non-CRDT-synced record of "when did this
// hub instance last sync this document to this filesystem", keyed by
// DocumentID. It answers a question CRDT history alone cannot: which
// local copy is stale relative to the last observed merge.
type SyncState struct {
	Documents map[DocumentID]Checkpoint
}

// NewSyncState returns an empty SyncState.
func NewSyncState() *SyncState {
	return &SyncState{Documents: make(map[DocumentID]Checkpoint)}
}

func syncStatePath(hubDir string) string {
	return filepath.Join(hubDir, syncStateName)
}

// LoadSyncState reads sync-state.json from hubDir. A missing file returns
// an empty SyncState (first run). A corrupted file is treated as
// best-effort recoverable: it is discarded and an empty state is returned.
// The discarded file is not logged.
func LoadSyncState(hubDir string) (*SyncState, error) {
	raw, err := os.ReadFile(syncStatePath(hubDir))
	if os.IsNotExist(err) {
		return NewSyncState(), nil
	}
	if err != nil {
		return nil, ErrSyncState(err)
	}
	if !gjson.ValidBytes(raw) {
		return NewSyncState(), nil
	}

	state := NewSyncState()
	documents := gjson.GetBytes(raw, "documents")
	if !documents.Exists() {
		return state, nil
	}
	documents.ForEach(func(key, value gjson.Result) bool {
		state.Documents[DocumentID(key.String())] = Checkpoint{
			LastSyncHeads:       value.Get("last_sync_heads").String(),
			LastSyncContentHash: value.Get("last_sync_content_hash").String(),
		}
		return true
	})
	return state, nil
}

// Save persists s to sync-state.json under hubDir via write-to-temp +
// rename, so a crash mid-write never corrupts the prior state.
func (s *SyncState) Save(hubDir string) error {
	raw := []byte(`{"documents":{}}`)
	var err error
	for id, cp := range s.Documents {
		path := "documents." + string(id)
		raw, err = sjson.SetBytes(raw, path+".last_sync_heads", cp.LastSyncHeads)
		if err != nil {
			return ErrSyncState(err)
		}
		raw, err = sjson.SetBytes(raw, path+".last_sync_content_hash", cp.LastSyncContentHash)
		if err != nil {
			return ErrSyncState(err)
		}
	}
	if err := writeFileAtomic(syncStatePath(hubDir), raw); err != nil {
		return ErrSyncState(err)
	}
	return nil
}

// Set records (or updates) the checkpoint for id.
func (s *SyncState) Set(id DocumentID, cp Checkpoint) {
	s.Documents[id] = cp
}

// Get returns id's checkpoint and whether one exists.
func (s *SyncState) Get(id DocumentID) (Checkpoint, bool) {
	cp, ok := s.Documents[id]
	return cp, ok
}
