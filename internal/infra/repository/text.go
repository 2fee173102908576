package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/moodboard/internal/domain"
)

// TextRepository keeps text entries in a single JSON array file.
// Read-modify-write cycles are serialized within the process.
type TextRepository struct {
	path  string
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewTextRepository(path string) *TextRepository {
	return &TextRepository{
		path:  path,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Path returns the file backing the repository.
func (r *TextRepository) Path() string {
	return r.path
}

// SnapshotVersion hashes raw file content. An absent file has version "".
func SnapshotVersion(raw []byte, exists bool) string {
	if !exists {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(raw))
}

func (r *TextRepository) Append(ctx context.Context, content string) (domain.TextEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return domain.TextEntry{}, errors.Wrap(err, "create text directory")
	}

	raw, exists, err := r.read()
	if err != nil {
		return domain.TextEntry{}, err
	}

	entries := []domain.TextEntry{}
	if exists {
		if decoded, ok := decodeEntries(raw); ok {
			entries = decoded
		}
	}
	r.assignIDs(entries)

	entry := domain.TextEntry{
		ID:        r.newID(),
		Content:   content,
		Timestamp: domain.NewTimestamp(r.now()),
	}
	entries = append(entries, entry)

	if err := r.write(entries); err != nil {
		return domain.TextEntry{}, err
	}
	return entry, nil
}

func (r *TextRepository) List(ctx context.Context) (domain.TextSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, exists, err := r.read()
	if err != nil {
		return domain.TextSnapshot{}, err
	}

	snapshot := domain.TextSnapshot{
		Entries: []domain.TextEntry{},
		Version: SnapshotVersion(raw, exists),
	}
	if exists {
		if decoded, ok := decodeEntries(raw); ok {
			snapshot.Entries = decoded
		}
	}
	return snapshot, nil
}

// DeleteAt removes the entry at index. A non-empty version must match the
// current snapshot version.
func (r *TextRepository) DeleteAt(ctx context.Context, index int, version string) (domain.TextEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, current, err := r.loadStrict()
	if err != nil {
		return domain.TextEntry{}, err
	}

	if version != "" && version != current {
		return domain.TextEntry{}, domain.ConflictError{Expected: version, Actual: current}
	}

	if index < 0 || index >= len(entries) {
		return domain.TextEntry{}, domain.IndexOutOfRangeError{Index: index, Length: len(entries)}
	}

	removed := entries[index]
	entries = append(entries[:index], entries[index+1:]...)
	r.assignIDs(entries)

	if err := r.write(entries); err != nil {
		return domain.TextEntry{}, err
	}
	return removed, nil
}

func (r *TextRepository) DeleteByID(ctx context.Context, id string) (domain.TextEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.loadStrict()
	if err != nil {
		return domain.TextEntry{}, err
	}

	for i, entry := range entries {
		if entry.ID != "" && entry.ID == id {
			entries = append(entries[:i], entries[i+1:]...)
			r.assignIDs(entries)
			if err := r.write(entries); err != nil {
				return domain.TextEntry{}, err
			}
			return entry, nil
		}
	}
	return domain.TextEntry{}, domain.NotFoundError{Resource: "text entry"}
}

// loadStrict is the read used by deletes: the file must exist and hold an
// array.
func (r *TextRepository) loadStrict() ([]domain.TextEntry, string, error) {
	raw, exists, err := r.read()
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", domain.NotFoundError{Resource: "text file"}
	}
	entries, ok := decodeEntries(raw)
	if !ok {
		return nil, "", errors.New("invalid text format")
	}
	return entries, SnapshotVersion(raw, true), nil
}

func (r *TextRepository) read() ([]byte, bool, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read %s", r.path)
	}
	return raw, true, nil
}

func (r *TextRepository) write(entries []domain.TextEntry) error {
	if entries == nil {
		entries = []domain.TextEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode text entries")
	}
	return writeFileAtomic(r.path, bytes.NewReader(data), 0o644)
}

// assignIDs gives legacy entries written without an id a stable one.
func (r *TextRepository) assignIDs(entries []domain.TextEntry) {
	for i := range entries {
		if entries[i].ID == "" && !entries[i].Opaque() {
			entries[i].ID = r.newID()
		}
	}
}

// decodeEntries reports ok=false for anything that is not a JSON array.
// Elements are decoded one by one so a hand-edited element never costs the
// rest of the file.
func decodeEntries(raw []byte) ([]domain.TextEntry, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, false
	}

	entries := make([]domain.TextEntry, 0, len(elements))
	for _, element := range elements {
		var entry domain.TextEntry
		if err := json.Unmarshal(element, &entry); err != nil {
			return nil, false
		}
		entries = append(entries, entry)
	}
	return entries, true
}
