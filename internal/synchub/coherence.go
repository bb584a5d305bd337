package synchub

// ChangeSide identifies which side of the filesystem<->CRDT pair changed
// since the last checkpoint.
type ChangeSide int

const (
	// NoChange: neither side moved relative to the checkpoint.
	NoChange ChangeSide = iota
	// FilesystemChanged: content hash differs, CRDT heads match the checkpoint.
	FilesystemChanged
	// CRDTChanged: heads differ, content hash matches the checkpoint.
	CRDTChanged
	// BothChanged: both moved — a genuine conflict.
	BothChanged
)

// Coherence evaluates the coherence rule (spec.md §4.7): compare the
// CRDT document's current logical heads and the filesystem's current
// content hash against the last-synced checkpoint, to decide which side
// (if either) needs to propagate.
func Coherence(currentHeads, currentContentHash string, checkpoint Checkpoint) ChangeSide {
	headsChanged := currentHeads != checkpoint.LastSyncHeads
	contentChanged := currentContentHash != checkpoint.LastSyncContentHash

	switch {
	case headsChanged && contentChanged:
		return BothChanged
	case headsChanged:
		return CRDTChanged
	case contentChanged:
		return FilesystemChanged
	default:
		return NoChange
	}
}

// Resolve applies the coherence rule's conflict policy: on BothChanged, the
// CRDT merge drives the filesystem write (the CRDT side always wins a
// genuine conflict), and the checkpoint is updated to match. It returns
// whether the filesystem should be (re)written from the CRDT document's
// content, and the new checkpoint to persist.
func Resolve(side ChangeSide, currentHeads, currentContentHash string, checkpoint Checkpoint) (writeFilesystem bool, next Checkpoint) {
	switch side {
	case NoChange:
		return false, checkpoint
	case FilesystemChanged:
		// The filesystem side changed; the caller propagates it into the
		// CRDT document and the checkpoint advances to the new content hash,
		// keeping heads as they were (the CRDT side is updated by the
		// caller's own transaction, whose resulting heads it will record).
		return false, Checkpoint{LastSyncHeads: checkpoint.LastSyncHeads, LastSyncContentHash: currentContentHash}
	case CRDTChanged, BothChanged:
		return true, Checkpoint{LastSyncHeads: currentHeads, LastSyncContentHash: currentContentHash}
	default:
		return false, checkpoint
	}
}
