// Package filestore is the single-user catalog backend. Category buckets
// live in categories.json and custom lists in custom_lists.json; every
// mutation loads, modifies and rewrites the whole document.
package filestore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	CategoriesFile = "categories.json"
	ListsFile      = "custom_lists.json"
	ExportFile     = "fafov2_export.json"
)

type listsDoc struct {
	Lists []catalog.CustomList `json:"lists"`
}

type categoriesDoc map[string][]catalog.MediaItem

// Store implements catalog.ItemStore and catalog.ListStore on two JSON
// documents. Mutations of each document are serialized by its own mutex.
type Store struct {
	fs  afero.Fs
	dir string

	catMu  sync.Mutex
	listMu sync.Mutex
}

var (
	_ catalog.ItemStore = (*Store)(nil)
	_ catalog.ListStore = (*Store)(nil)
)

// New returns a store rooted at dir on fs. Use afero.NewOsFs() for disk and
// afero.NewMemMapFs() in tests.
func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir is the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) categoriesPath() string { return filepath.Join(s.dir, CategoriesFile) }
func (s *Store) listsPath() string      { return filepath.Join(s.dir, ListsFile) }

// ExportPath is where the CLI writes snapshots by default.
func (s *Store) ExportPath() string { return filepath.Join(s.dir, ExportFile) }

// Init creates both documents if they are missing.
func (s *Store) Init(ctx context.Context) error {
	s.catMu.Lock()
	cats, err := s.loadCategories()
	if err == nil {
		err = s.saveCategories(cats)
	}
	s.catMu.Unlock()
	if err != nil {
		return err
	}

	s.listMu.Lock()
	defer s.listMu.Unlock()
	doc, err := s.loadLists()
	if err != nil {
		return err
	}
	return s.saveLists(doc)
}

func (s *Store) loadCategories() (categoriesDoc, error) {
	doc := categoriesDoc{}
	if _, err := readJSON(s.fs, s.categoriesPath(), &doc); err != nil {
		return nil, catalog.NewStorageError("read", "categories", "", err)
	}
	for _, c := range catalog.Categories() {
		if doc[c] == nil {
			doc[c] = []catalog.MediaItem{}
		}
	}
	return doc, nil
}

func (s *Store) saveCategories(doc categoriesDoc) error {
	if err := writeJSONAtomic(s.fs, s.categoriesPath(), doc); err != nil {
		return catalog.NewStorageError("write", "categories", "", err)
	}
	return nil
}

func (s *Store) loadLists() (*listsDoc, error) {
	doc := &listsDoc{}
	if _, err := readJSON(s.fs, s.listsPath(), doc); err != nil {
		return nil, catalog.NewStorageError("read", "lists", "", err)
	}
	if doc.Lists == nil {
		doc.Lists = []catalog.CustomList{}
	}
	for i := range doc.Lists {
		if doc.Lists[i].Items == nil {
			doc.Lists[i].Items = []string{}
		}
	}
	return doc, nil
}

func (s *Store) saveLists(doc *listsDoc) error {
	if err := writeJSONAtomic(s.fs, s.listsPath(), doc); err != nil {
		return catalog.NewStorageError("write", "lists", "", err)
	}
	return nil
}
