package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

// FileSuffix is appended to the dataset title to name an article's
// memento file.
const FileSuffix = "_all_versions.json"

// Store reads and writes per-article memento files under a dataset
// directory. Each article maps to one JSON array file named
// <title>_all_versions.json.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on
// the first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the dataset directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the dataset file path for a title.
func (s *Store) Path(title string) string {
	return filepath.Join(s.dir, title+FileSuffix)
}

// Load reads the mementos for a title. A missing file yields an empty
// slice; a corrupt file is logged and treated as empty so a retrieval
// run can rebuild it.
func (s *Store) Load(title string) ([]Memento, error) {
	return LoadFile(s.Path(title))
}

// Append adds mementos for a title, rewriting the whole file. The
// dataset directory is created if needed.
func (s *Store) Append(title string, mementos []Memento) error {
	existing, err := s.Load(title)
	if err != nil {
		return err
	}
	return s.Write(title, append(existing, mementos...))
}

// Write replaces the file for a title with the given mementos.
func (s *Store) Write(title string, mementos []Memento) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.WrapIO("create dataset directory", s.dir, err)
	}
	data, err := json.MarshalIndent(mementos, "", "  ")
	if err != nil {
		return errors.NewParseError("json", s.Path(title), "encode mementos", err)
	}
	if err := os.WriteFile(s.Path(title), append(data, '\n'), 0o644); err != nil {
		return errors.WrapIO("write dataset file", s.Path(title), err)
	}
	return nil
}

// List returns the titles of all dataset files in the directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read dataset directory", s.dir, err)
	}
	var titles []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileSuffix) {
			continue
		}
		titles = append(titles, strings.TrimSuffix(e.Name(), FileSuffix))
	}
	sort.Strings(titles)
	return titles, nil
}

// LoadFile reads a memento array from an arbitrary path. Missing and
// corrupt files both yield an empty slice; corruption is logged.
func LoadFile(path string) ([]Memento, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read dataset file", path, err)
	}
	var mementos []Memento
	if err := json.Unmarshal(data, &mementos); err != nil {
		logging.Warn().Str("file", path).Err(err).Msg("skipping corrupt dataset file")
		return nil, nil
	}
	return mementos, nil
}

// SortByWARCDate orders mementos by capture time, oldest first.
// Mementos without a parseable date sort before the rest, keeping their
// relative order.
func SortByWARCDate(mementos []Memento) {
	sort.SliceStable(mementos, func(i, j int) bool {
		ti, oki := mementos[i].CapturedAt()
		tj, okj := mementos[j].CapturedAt()
		if !oki || !okj {
			return !oki && okj
		}
		return ti.Before(tj)
	})
}

// CountFile reports the number of mementos in a dataset file. Both the
// current array form and the legacy {"mementos": [...]} wrapper are
// counted.
func CountFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.WrapIO("read dataset file", path, err)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return len(list), nil
	}
	var wrapper struct {
		Mementos []json.RawMessage `json:"mementos"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Mementos != nil {
		return len(wrapper.Mementos), nil
	}
	return 0, errors.NewParseError("json", path, "not a memento list", errors.ErrInvalidInput)
}
