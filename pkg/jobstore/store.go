// Package jobstore persists assembled job documents on disk, keyed by
// their content fingerprint.
//
// Directory layout:
//
//	<root>/<fingerprint>/job.json
//
// Saving the same job twice is a no-op; the first entry is kept.
package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/3leaps/gojobcfg/pkg/job"
)

const entryFile = "job.json"

var (
	// ErrNotFound indicates no stored job matches the requested id.
	ErrNotFound = errors.New("job not found")

	// ErrAmbiguousID indicates a fingerprint prefix matches several jobs.
	ErrAmbiguousID = errors.New("ambiguous job id")
)

// Entry is the persistent record written to job.json.
//
// The schema is designed for backward-compatible extension (additive fields).
type Entry struct {
	Fingerprint string       `json:"fingerprint"`
	JobID       string       `json:"job_id,omitempty"`
	Recipe      string       `json:"recipe,omitempty"`
	Process     string       `json:"process"`
	CreatedAt   time.Time    `json:"created_at"`
	Document    job.Document `json:"document"`
}

// Store reads and writes entries under a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore returns a store rooted at root. The directory is created on
// first write.
func NewStore(root string) *Store {
	return &Store{root: strings.TrimSpace(root), now: time.Now}
}

// RootDir returns the store root.
func (s *Store) RootDir() string {
	return s.root
}

func (s *Store) entryDir(fingerprint string) string {
	return filepath.Join(s.root, fingerprint)
}

func (s *Store) entryPath(fingerprint string) string {
	return filepath.Join(s.entryDir(fingerprint), entryFile)
}

func (s *Store) ensureRoot() error {
	if s.root == "" {
		return fmt.Errorf("job store root dir is empty")
	}
	return os.MkdirAll(s.root, 0755)
}

// Save stores desc and returns its entry. created is false when an entry
// with the same fingerprint already existed; that entry is returned as-is.
func (s *Store) Save(desc *job.Description, jobID string) (entry *Entry, created bool, err error) {
	if desc == nil {
		return nil, false, fmt.Errorf("job description is nil")
	}
	fp, err := desc.Fingerprint()
	if err != nil {
		return nil, false, err
	}
	if existing, err := s.read(fp); err == nil {
		return existing, false, nil
	}

	entry = &Entry{
		Fingerprint: fp,
		JobID:       jobID,
		Recipe:      desc.Recipe(),
		Process:     desc.Process(),
		CreatedAt:   s.now().UTC(),
		Document:    desc.Document(),
	}
	if err := s.write(entry); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (s *Store) write(entry *Entry) error {
	if err := s.ensureRoot(); err != nil {
		return err
	}
	dir := s.entryDir(entry.Fingerprint)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}

	b, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job entry: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, entryFile+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp job file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp job file: %w", err)
	}
	if err := os.Rename(tmpName, s.entryPath(entry.Fingerprint)); err != nil {
		return fmt.Errorf("rename job file: %w", err)
	}
	return nil
}

func (s *Store) read(fingerprint string) (*Entry, error) {
	b, err := os.ReadFile(s.entryPath(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fingerprint)
		}
		return nil, err
	}
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return nil, fmt.Errorf("%s is empty", entryFile)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
		return nil, fmt.Errorf("parse %s: %w", entryFile, err)
	}
	return &entry, nil
}

// Get returns the entry whose fingerprint equals id or, failing that,
// the single entry whose fingerprint starts with id.
func (s *Store) Get(id string) (*Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("job id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if entry, err := s.read(id); err == nil {
		return entry, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	dirs, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read job store root: %w", err)
	}
	var matches []string
	for _, d := range dirs {
		if d.IsDir() && strings.HasPrefix(d.Name(), id) {
			matches = append(matches, d.Name())
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return s.read(matches[0])
	default:
		return nil, fmt.Errorf("%w: %s matches %d jobs", ErrAmbiguousID, id, len(matches))
	}
}

// List returns every readable entry, newest first. Unreadable entries are
// skipped.
func (s *Store) List() ([]Entry, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read job store root: %w", err)
	}

	out := make([]Entry, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		entry, err := s.read(d.Name())
		if err != nil {
			continue
		}
		out = append(out, *entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Fingerprint < out[j].Fingerprint
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Remove deletes the entry with the exact fingerprint.
func (s *Store) Remove(fingerprint string) error {
	if _, err := s.read(fingerprint); err != nil {
		return err
	}
	return os.RemoveAll(s.entryDir(fingerprint))
}
