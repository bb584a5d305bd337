// Package sourcemap tracks source files and byte ranges so every node in the
// document tree can resolve back to the bytes it came from.
package sourcemap

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// FileId is an opaque identifier for a source file tracked by a Map. Zero
// value is not a valid FileId; always obtain one from Map.Add*.
type FileId struct {
	slot uint32
}

func (id FileId) IsZero() bool { return id.slot == 0 }

// String renders a stable debug representation; it is not part of any wire format.
func (id FileId) String() string {
	return fmt.Sprintf("file#%d", id.slot)
}

// SourceFile is a single tracked file. Content is nil for disk-backed files,
// which are read lazily on first access.
type SourceFile struct {
	Path     string
	Content  []byte
	Disk     bool
	Metadata map[string]any

	info *FileInformation
}

// Ephemeral reports whether the file's content lives only in memory (no
// backing path to re-read from), per spec.md's ephemeral/disk-backed split.
func (f *SourceFile) Ephemeral() bool { return !f.Disk }

// Map is the source map: a dense slice of tracked files, plus a sparse index
// from caller-supplied hash keys to dense slots so hash-derived and
// sequential FileIds can coexist.
type Map struct {
	mu        sync.RWMutex
	files     []*SourceFile
	hashIndex map[string]uint32
}

// New returns an empty source map.
func New() *Map {
	return &Map{
		// slot 0 is reserved so the zero FileId is recognizably invalid.
		files:     []*SourceFile{nil},
		hashIndex: map[string]uint32{},
	}
}

// AddEphemeral registers an in-memory file (tests, anonymous buffers) and
// assigns it a sequential FileId.
func (m *Map) AddEphemeral(path string, content []byte) FileId {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := uint32(len(m.files))
	m.files = append(m.files, &SourceFile{Path: path, Content: content})
	return FileId{slot: slot}
}

// AddHashID registers (or looks up) a file under a caller-supplied hash key,
// e.g. a content-addressed ID. Re-adding the same key returns the existing FileId.
func (m *Map) AddHashID(hashKey, path string, content []byte) FileId {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot, ok := m.hashIndex[hashKey]; ok {
		return FileId{slot: slot}
	}
	slot := uint32(len(m.files))
	m.files = append(m.files, &SourceFile{Path: path, Content: content})
	m.hashIndex[hashKey] = slot
	return FileId{slot: slot}
}

// AddDiskBacked registers a file whose content is read from disk on demand.
func (m *Map) AddDiskBacked(path string) FileId {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := uint32(len(m.files))
	m.files = append(m.files, &SourceFile{Path: path, Disk: true})
	return FileId{slot: slot}
}

// File returns the tracked SourceFile for id.
func (m *Map) File(id FileId) (*SourceFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id.slot == 0 || int(id.slot) >= len(m.files) {
		return nil, fmt.Errorf("sourcemap: unknown file id %s", id)
	}
	return m.files[id.slot], nil
}

// Read returns the bytes of id, reading from disk and caching the result for
// disk-backed files.
func (m *Map) Read(id FileId) ([]byte, error) {
	f, err := m.File(id)
	if err != nil {
		return nil, err
	}
	if f.Content != nil || !f.Disk {
		return f.Content, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Content != nil {
		return f.Content, nil
	}
	content, err := readFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("sourcemap: read %s: %w", f.Path, err)
	}
	f.Content = content
	return content, nil
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return io.ReadAll(fh)
}

// Information returns the cached FileInformation for id, building it from
// content if necessary.
func (m *Map) Information(id FileId) (*FileInformation, error) {
	f, err := m.File(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	if f.info != nil {
		defer m.mu.RUnlock()
		return f.info, nil
	}
	m.mu.RUnlock()

	content, err := m.Read(id)
	if err != nil {
		return nil, err
	}
	info := BuildFileInformation(content)
	m.mu.Lock()
	f.info = info
	m.mu.Unlock()
	return info, nil
}

// Len returns the total byte length of id's content.
func (m *Map) Len(id FileId) (int, error) {
	info, err := m.Information(id)
	if err != nil {
		return 0, err
	}
	return info.ByteLen, nil
}
