// Package filestore persists reports and lookup history as JSON documents on
// disk. It is used when no database is configured.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"phonetracer/pkg/logger"
)

// loadJSON reads a JSON array from path. A missing file reads as empty. A
// corrupt file is renamed to path.corrupt-<unix nanos> so the next save
// cannot overwrite it, and then also reads as empty.
func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
		if renameErr := os.Rename(path, aside); renameErr != nil {
			return nil, fmt.Errorf("decode %s: %w (set aside failed: %v)", path, err, renameErr)
		}
		logger.Warn().Err(err).Str("file", path).Str("moved_to", aside).Msg("corrupt data file set aside, starting empty")
		return nil, nil
	}
	return items, nil
}

// saveJSON writes items to path through a temp file and rename
func saveJSON[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
