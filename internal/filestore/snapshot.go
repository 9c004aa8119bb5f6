package filestore

import (
	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

// SaveSnapshot writes snap to path, or to ExportPath when path is empty.
// It returns the path written.
func (s *Store) SaveSnapshot(path string, snap *catalog.Snapshot) (string, error) {
	if path == "" {
		path = s.ExportPath()
	}
	if err := writeJSONAtomic(s.fs, path, snap); err != nil {
		return "", catalog.NewStorageError("write", "snapshot", path, err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot or by the Kodi addon.
func (s *Store) LoadSnapshot(path string) (*catalog.Snapshot, error) {
	if path == "" {
		path = s.ExportPath()
	}
	snap := &catalog.Snapshot{}
	found, err := readJSON(s.fs, path, snap)
	if err != nil {
		return nil, catalog.NewStorageError("read", "snapshot", path, err)
	}
	if !found {
		return nil, catalog.NewNotFound("snapshot", path)
	}
	return snap, nil
}
