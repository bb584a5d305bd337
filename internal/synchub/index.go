package synchub

import "context"

// indexFieldPrefix namespaces index-document fields by relative path so
// every entry lives as its own CRDT field (one transaction per
// add/remove, per spec.md §3.5).
const indexFieldPrefix = "path:"

// Index wraps a CRDTRepository document acting as the project's
// files: Map<relative_path, document_id> index.
type Index struct {
	repo CRDTRepository
	id   DocumentID
}

// LoadOrCreateIndex loads the index document by id if non-empty, otherwise
// creates a new one and returns its id for the caller to persist into
// hub.json's index_document_id field.
func LoadOrCreateIndex(ctx context.Context, repo CRDTRepository, id DocumentID) (*Index, error) {
	if id == "" {
		newID, err := repo.CreateDocument(ctx)
		if err != nil {
			return nil, ErrIndexDocument(err)
		}
		return &Index{repo: repo, id: newID}, nil
	}
	if _, err := repo.FindDocument(ctx, id); err != nil {
		return nil, ErrIndexDocument(err)
	}
	return &Index{repo: repo, id: id}, nil
}

// ID returns the index document's DocumentID, to be persisted into hub.json.
func (idx *Index) ID() DocumentID { return idx.id }

// AddFile records path -> docID as one CRDT transaction.
func (idx *Index) AddFile(ctx context.Context, path string, docID DocumentID) error {
	return idx.repo.Transact(ctx, idx.id, func(tx Tx) error {
		return tx.Set(indexFieldPrefix+path, string(docID))
	})
}

// RemoveFile deletes path's entry as one CRDT transaction.
func (idx *Index) RemoveFile(ctx context.Context, path string) error {
	return idx.repo.Transact(ctx, idx.id, func(tx Tx) error {
		tx.Delete(indexFieldPrefix + path)
		return nil
	})
}

// GetFile looks up path's document ID without a transaction, reading the
// last committed state.
func (idx *Index) GetFile(ctx context.Context, path string) (DocumentID, bool, error) {
	doc, err := idx.repo.FindDocument(ctx, idx.id)
	if err != nil {
		return "", false, ErrIndexDocument(err)
	}
	value, ok := doc.Fields[indexFieldPrefix+path]
	if !ok {
		return "", false, nil
	}
	str, ok := value.(string)
	if !ok {
		return "", false, nil
	}
	return DocumentID(str), true, nil
}

// Files returns every path -> document_id pair currently recorded.
func (idx *Index) Files(ctx context.Context) (map[string]DocumentID, error) {
	doc, err := idx.repo.FindDocument(ctx, idx.id)
	if err != nil {
		return nil, ErrIndexDocument(err)
	}
	out := make(map[string]DocumentID)
	for key, value := range doc.Fields {
		if len(key) <= len(indexFieldPrefix) || key[:len(indexFieldPrefix)] != indexFieldPrefix {
			continue
		}
		if str, ok := value.(string); ok {
			out[key[len(indexFieldPrefix):]] = DocumentID(str)
		}
	}
	return out, nil
}
