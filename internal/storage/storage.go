// Package storage keeps generated resume files and their JSON index on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// IndexFile is the name of the record index inside the output directory.
const IndexFile = "index.json"

// DebugDirName is the subdirectory for per-iteration debug output.
const DebugDirName = "debug"

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Error represents a storage failure.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FileStore writes documents under one output directory and tracks them in
// an index file. It is safe for concurrent use within one process.
type FileStore struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewFileStore creates the output directory when needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Path: dir, Message: "failed to create output directory", Cause: err}
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// GeneratePath returns <dir>/<first>_<last>_<company>_<title>.pdf with every
// part reduced to lowercase letters, digits and underscores.
func (s *FileStore) GeneratePath(first, last, company, title string) string {
	var parts []string
	for _, p := range []string{first, last, company, title} {
		if slug := Slug(p); slug != "" {
			parts = append(parts, slug)
		}
	}
	if len(parts) == 0 {
		parts = []string{"resume"}
	}
	return filepath.Join(s.dir, strings.Join(parts, "_")+".pdf")
}

// DebugDir creates and returns <dir>/debug/<company>_<title>_<timestamp>.
func (s *FileStore) DebugDir(company, title string) (string, error) {
	name := fmt.Sprintf("%s_%s_%s", slugOr(company, "company"), slugOr(title, "role"), s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, DebugDirName, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", &Error{Path: path, Message: "failed to create debug directory", Cause: err}
	}
	return path, nil
}

// WriteFile writes data to path, creating parent directories.
func (s *FileStore) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Path: path, Message: "failed to create directory", Cause: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Path: path, Message: "failed to write file", Cause: err}
	}
	return nil
}

// Save appends a record to the index. A zero Timestamp is set to now.
func (s *FileStore) Save(rec types.GeneratedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &Error{Path: s.indexPath(), Message: "failed to encode index", Cause: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".index-*.json")
	if err != nil {
		return &Error{Path: s.indexPath(), Message: "failed to create temp file", Cause: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Path: s.indexPath(), Message: "failed to write index", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Path: s.indexPath(), Message: "failed to write index", Cause: err}
	}
	if err := os.Rename(tmp.Name(), s.indexPath()); err != nil {
		return &Error{Path: s.indexPath(), Message: "failed to replace index", Cause: err}
	}
	return nil
}

// List returns all records, newest first.
func (s *FileStore) List() ([]types.GeneratedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, IndexFile)
}

func (s *FileStore) load() ([]types.GeneratedRecord, error) {
	data, err := os.ReadFile(s.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Path: s.indexPath(), Message: "failed to read index", Cause: err}
	}
	var records []types.GeneratedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &Error{Path: s.indexPath(), Message: "corrupt index", Cause: err}
	}
	return records, nil
}

// Slug lowercases s and replaces every run of other characters with "_".
func Slug(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}

func slugOr(s, fallback string) string {
	if slug := Slug(s); slug != "" {
		return slug
	}
	return fallback
}
