package filestore

import (
	"context"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func (s *Store) InsertItem(ctx context.Context, item *catalog.MediaItem) (*catalog.MediaItem, bool, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, false, err
	}
	for _, it := range doc[item.Category] {
		if it.URL == item.URL {
			existing := it
			return &existing, false, nil
		}
	}

	doc[item.Category] = append(doc[item.Category], *item)
	if err := s.saveCategories(doc); err != nil {
		return nil, false, err
	}
	stored := *item
	return &stored, true, nil
}

func (s *Store) FindItemByURL(ctx context.Context, category, url string) (*catalog.MediaItem, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, err
	}
	for _, it := range doc[category] {
		if it.URL == url {
			found := it
			return &found, nil
		}
	}
	return nil, catalog.NewNotFound("media item", url)
}

func (s *Store) GetItem(ctx context.Context, id string) (*catalog.MediaItem, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, err
	}
	for _, c := range catalog.Categories() {
		for _, it := range doc[c] {
			if it.ID == id {
				found := it
				return &found, nil
			}
		}
	}
	return nil, catalog.NewNotFound("media item", id)
}

func (s *Store) GetItems(ctx context.Context, ids []string) ([]catalog.MediaItem, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []catalog.MediaItem{}
	for _, c := range catalog.Categories() {
		for _, it := range doc[c] {
			if _, ok := want[it.ID]; ok {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

// ListItems walks the buckets in canonical category order, each in
// insertion order.
func (s *Store) ListItems(ctx context.Context, f catalog.ItemFilter) ([]catalog.MediaItem, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, err
	}
	out := []catalog.MediaItem{}
	for _, c := range catalog.Categories() {
		if f.Category != "" && f.Category != c {
			continue
		}
		for _, it := range doc[c] {
			if f.MediaType != "" && it.MediaType != f.MediaType {
				continue
			}
			out = append(out, it)
			if f.Limit > 0 && len(out) >= f.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.deleteWhere(id, func(it catalog.MediaItem) bool { return it.ID == id }, "")
}

func (s *Store) DeleteItemByURL(ctx context.Context, category, url string) error {
	return s.deleteWhere(url, func(it catalog.MediaItem) bool { return it.URL == url }, category)
}

// deleteWhere removes the first item matching fn, restricted to category
// when it is set.
func (s *Store) deleteWhere(key string, fn func(catalog.MediaItem) bool, category string) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return err
	}
	for _, c := range catalog.Categories() {
		if category != "" && c != category {
			continue
		}
		bucket := doc[c]
		for i, it := range bucket {
			if !fn(it) {
				continue
			}
			doc[c] = append(bucket[:i:i], bucket[i+1:]...)
			return s.saveCategories(doc)
		}
	}
	return catalog.NewNotFound("media item", key)
}

func (s *Store) CountByCategory(ctx context.Context) (map[string]int, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	doc, err := s.loadCategories()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(doc))
	for _, c := range catalog.Categories() {
		out[c] = len(doc[c])
	}
	return out, nil
}

func (s *Store) CountItems(ctx context.Context) (int, error) {
	counts, err := s.CountByCategory(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
