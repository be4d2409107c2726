package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/kutoven/wbreviews/pkg/models"
)

// WriteCSV writes reviews to path with the fixed seven-column header.
// The file only appears at path once it has been fully written; on any
// failure nothing is left behind and the error matches engine.ErrSinkWrite.
func WriteCSV(reviews []models.Review, path string) (err error) {
	if path == "" {
		return engine.NewEngineError(engine.ErrCodeSinkWrite, "output path is required", nil)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sinkError(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return sinkError(path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(models.CSVHeader); err != nil {
		return sinkError(path, err)
	}
	for _, r := range reviews {
		if err := w.Write(r.Record()); err != nil {
			return sinkError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return sinkError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return sinkError(path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return sinkError(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return sinkError(path, err)
	}
	return nil
}

func sinkError(path string, err error) error {
	return engine.NewEngineError(engine.ErrCodeSinkWrite, fmt.Sprintf("write %s", path), err).
		WithDetail("path", path)
}
