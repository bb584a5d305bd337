package synchub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"path/filepath"
)

// binaryFieldContent/MimeType/Hash are the field names a binary document's
// CRDT transaction writes, per spec.md §3.5's "(content bytes, mimeType
// string, hash string)" shape.
const (
	binaryFieldContent  = "content"
	binaryFieldMimeType = "mimeType"
	binaryFieldHash     = "hash"
)

// CreateBinaryDocument creates a new CRDT document holding content, its
// detected MIME type, and its SHA-256 hex digest, in one transaction.
func CreateBinaryDocument(ctx context.Context, repo CRDTRepository, path string, content []byte) (DocumentID, error) {
	id, err := repo.CreateDocument(ctx)
	if err != nil {
		return "", err
	}
	mimeType := DetectMimeType(path, content)
	hash := HashContent(content)
	err = repo.Transact(ctx, id, func(tx Tx) error {
		if err := tx.Set(binaryFieldContent, content); err != nil {
			return err
		}
		if err := tx.Set(binaryFieldMimeType, mimeType); err != nil {
			return err
		}
		return tx.Set(binaryFieldHash, hash)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// DetectMimeType identifies content's MIME type first by magic bytes
// (via net/http's content sniffer), then falls back to the file
// extension, then to application/octet-stream.
func DetectMimeType(path string, content []byte) string {
	if len(content) > 0 {
		sniffLen := len(content)
		if sniffLen > 512 {
			sniffLen = 512
		}
		if mt := http.DetectContentType(content[:sniffLen]); mt != "" && mt != "application/octet-stream" && mt != "text/plain; charset=utf-8" {
			return mt
		}
	}
	if ext := extensionMimeType(filepath.Ext(path)); ext != "" {
		return ext
	}
	return "application/octet-stream"
}

func extensionMimeType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	default:
		return ""
	}
}

// HashContent returns content's SHA-256 digest in lowercase hex, used both
// for binary-document integrity and the coherence rule's content hash.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
