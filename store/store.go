// Package store persists save records by name.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no record has the given name.
var ErrNotFound = errors.New("save not found")

// Record is one stored save. Data holds the encoded save document.
type Record struct {
	Name    string          `json:"name"`
	Slot    string          `json:"slot"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Store is a save backend.
type Store interface {
	Put(ctx context.Context, name string, rec Record) error
	Get(ctx context.Context, name string) (Record, error)
	// List returns every record, newest first, without Data.
	List(ctx context.Context) ([]Record, error)
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidName reports whether name can be used as a save name.
func ValidName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid save name %q: use letters, digits, '-' or '_'", name)
	}
	return nil
}

// SortNewest orders records by SavedAt descending, then by name.
func SortNewest(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].SavedAt.Equal(recs[j].SavedAt) {
			return recs[i].SavedAt.After(recs[j].SavedAt)
		}
		return recs[i].Name < recs[j].Name
	})
}

// FileStore keeps one JSON file per save under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

// Put writes rec under name, replacing any earlier save.
func (f *FileStore) Put(ctx context.Context, name string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidName(name); err != nil {
		return err
	}
	rec.Name = name
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing save %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("writing save %s: %w", name, err)
	}
	return nil
}

// Get reads the record saved under name.
func (f *FileStore) Get(ctx context.Context, name string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if err := ValidName(name); err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading save %s: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding save %s: %w", name, err)
	}
	rec.Name = name
	return rec, nil
}

// List returns every save in the directory, newest first.
func (f *FileStore) List(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	var recs []Record
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || ValidName(name) != nil {
			continue
		}
		rec, err := f.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		rec.Data = nil
		recs = append(recs, rec)
	}
	SortNewest(recs)
	return recs, nil
}
