package filestore

import (
	"context"
	"time"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func (s *Store) CreateList(ctx context.Context, l *catalog.CustomList) error {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	doc, err := s.loadLists()
	if err != nil {
		return err
	}
	cp := *l
	cp.Items = append([]string{}, l.Items...)
	doc.Lists = append(doc.Lists, cp)
	return s.saveLists(doc)
}

func (s *Store) GetList(ctx context.Context, id string) (*catalog.CustomList, error) {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	doc, err := s.loadLists()
	if err != nil {
		return nil, err
	}
	i := indexOf(doc, id)
	if i < 0 {
		return nil, catalog.NewNotFound("list", id)
	}
	l := doc.Lists[i]
	return &l, nil
}

func (s *Store) ListLists(ctx context.Context) ([]catalog.CustomList, error) {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	doc, err := s.loadLists()
	if err != nil {
		return nil, err
	}
	return doc.Lists, nil
}

func (s *Store) UpdateList(ctx context.Context, id string, patch catalog.ListPatch) (*catalog.CustomList, error) {
	return s.mutateList(id, func(l *catalog.CustomList) bool {
		if patch.Name != nil {
			l.Name = *patch.Name
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		return true
	})
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	doc, err := s.loadLists()
	if err != nil {
		return err
	}
	i := indexOf(doc, id)
	if i < 0 {
		return catalog.NewNotFound("list", id)
	}
	doc.Lists = append(doc.Lists[:i:i], doc.Lists[i+1:]...)
	return s.saveLists(doc)
}

func (s *Store) AppendItem(ctx context.Context, listID, itemID string) (bool, error) {
	added := false
	_, err := s.mutateList(listID, func(l *catalog.CustomList) bool {
		if l.Has(itemID) {
			return false
		}
		l.Items = append(l.Items, itemID)
		added = true
		return true
	})
	return added, err
}

func (s *Store) RemoveItem(ctx context.Context, listID, itemID string) error {
	removed := false
	_, err := s.mutateList(listID, func(l *catalog.CustomList) bool {
		for i, id := range l.Items {
			if id == itemID {
				l.Items = append(l.Items[:i:i], l.Items[i+1:]...)
				removed = true
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	if !removed {
		return catalog.NewNotFound("list item", itemID)
	}
	return nil
}

func (s *Store) CountLists(ctx context.Context) (int, error) {
	lists, err := s.ListLists(ctx)
	if err != nil {
		return 0, err
	}
	return len(lists), nil
}

// mutateList applies fn to the list under the lists lock. The document is
// saved, and updated_at bumped, only when fn reports a change.
func (s *Store) mutateList(id string, fn func(*catalog.CustomList) bool) (*catalog.CustomList, error) {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	doc, err := s.loadLists()
	if err != nil {
		return nil, err
	}
	i := indexOf(doc, id)
	if i < 0 {
		return nil, catalog.NewNotFound("list", id)
	}
	l := &doc.Lists[i]
	if fn(l) {
		l.UpdatedAt = time.Now().UTC()
		if err := s.saveLists(doc); err != nil {
			return nil, err
		}
	}
	out := *l
	return &out, nil
}

func indexOf(doc *listsDoc, id string) int {
	for i := range doc.Lists {
		if doc.Lists[i].ID == id {
			return i
		}
	}
	return -1
}
