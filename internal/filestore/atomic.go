package filestore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// writeJSONAtomic encodes v with two-space indentation into a temp file next
// to path and renames it over path, so readers never see a partial document.
func writeJSONAtomic(fs afero.Fs, path string, v any) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, ".fafo-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// readJSON decodes path into v. A missing file leaves v untouched and
// reports found=false.
func readJSON(fs afero.Fs, path string, v any) (found bool, err error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if exists, _ := afero.Exists(fs, path); !exists {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
