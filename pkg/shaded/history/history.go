package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pictomancers/shaded/pkg/shaded/build"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
)

// ErrNotFound is returned by Get when no record matches.
var ErrNotFound = errors.New("history record not found")

// Store keeps build records as one JSON file each in a directory.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *logging.Logger

	now func() time.Time
}

// New creates a Store for dir. The directory is created on first write.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &Store{dir: dir, logger: logging.Get("history"), now: time.Now}, nil
}

// Dir returns the directory records are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Add records a finished build and returns the stored record.
func (s *Store) Add(kind Kind, source string, res *build.Result) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		Timestamp:   s.now().UTC(),
		Kind:        kind,
		Source:      source,
		ArchivePath: res.ArchivePath,
		ArchiveSize: res.ArchiveSize,
		Duration:    res.Duration,
		Members:     []Member{},
	}
	if res.Manifest != nil {
		rec.Name = res.Manifest.Name
		for _, m := range res.Manifest.ShaderPacks {
			rec.Members = append(rec.Members, Member{
				Name:         m.Name,
				ShaderCount:  m.ShaderCount,
				TextureCount: m.TextureCount,
				PresetCount:  m.PresetCount,
				AddonCount:   m.AddonCount,
			})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := s.write(rec); err != nil {
		return nil, fmt.Errorf("failed to write history record: %w", err)
	}
	s.logger.Debug("recorded build", "id", rec.ID, "kind", rec.Kind)
	return rec, nil
}

func (s *Store) write(rec *Record) error {
	path := filepath.Join(s.dir, filename(rec))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// filename sorts records chronologically on disk.
func filename(rec *Record) string {
	return fmt.Sprintf("%s-%s.json", rec.Timestamp.Format("20060102T150405"), rec.ID)
}

// List returns records newest first. A limit of zero or less returns all.
// Unreadable files are skipped.
func (s *Store) List(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Get returns the record whose ID equals id or, failing that, the only
// record whose ID starts with id.
func (s *Store) Get(id string) (*Record, error) {
	if id == "" {
		return nil, errors.New("record ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var matches []Record
	for _, rec := range records {
		if rec.ID == id {
			return &rec, nil
		}
		if strings.HasPrefix(rec.ID, id) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous record ID %q matches %d records", id, len(matches))
	}
}

// Cleanup removes records older than retentionDays and returns how many
// were removed.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read history directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.read(e.Name())
		if err != nil || !rec.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("failed to remove history record", "file", e.Name(), "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Store) readAll() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	records := []Record{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.read(e.Name())
		if err != nil {
			s.logger.Debug("skipping unreadable history record", "file", e.Name(), "err", err)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *Store) read(name string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}
