package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kutoven/wbreviews/pkg/models"
)

// ErrNoOutputDir is returned when the output directory has not been created yet.
var ErrNoOutputDir = errors.New("output directory does not exist")

// Store lists generated CSV artifacts in a directory.
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// List returns every *.csv file in the directory, newest first.
func (s *Store) List() ([]models.Artifact, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoOutputDir
		}
		return nil, fmt.Errorf("failed to read output directory %s: %w", s.Dir, err)
	}

	var out []models.Artifact
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, models.Artifact{
			Name:      e.Name(),
			Path:      filepath.Join(s.Dir, e.Name()),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Name > out[j].Name
		}
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// EnsureDir creates the output directory if needed.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}
	return nil
}
