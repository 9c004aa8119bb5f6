package catalog

import (
	"context"
	"strings"
)

func (s *Service) CreateList(ctx context.Context, name, description string) (*CustomList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	now := s.timestamp()
	l := &CustomList{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Items:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.lists.CreateList(ctx, l); err != nil {
		return nil, err
	}
	s.publish(ctx, EventListCreated, l)
	return l, nil
}

func (s *Service) GetList(ctx context.Context, id string) (*CustomList, error) {
	if strings.TrimSpace(id) == "" {
		return nil, notFound("list", id)
	}
	return s.lists.GetList(ctx, id)
}

func (s *Service) ListLists(ctx context.Context) ([]CustomList, error) {
	lists, err := s.lists.ListLists(ctx)
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []CustomList{}
	}
	return lists, nil
}

// UpdateList applies patch. A nil field is left unchanged; a present name
// must not be empty.
func (s *Service) UpdateList(ctx context.Context, id string, patch ListPatch) (*CustomList, error) {
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return nil, invalid("name", "must not be empty")
		}
		patch.Name = &n
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}
	l, err := s.lists.UpdateList(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventListUpdated, l)
	return l, nil
}

func (s *Service) RenameList(ctx context.Context, id, newName string) (*CustomList, error) {
	return s.UpdateList(ctx, id, ListPatch{Name: &newName})
}

func (s *Service) DeleteList(ctx context.Context, id string) error {
	if err := s.lists.DeleteList(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventListDeleted, map[string]string{"id": id})
	return nil
}

// AddItem appends itemID to the list. Adding an existing member succeeds
// without changing the list.
func (s *Service) AddItem(ctx context.Context, listID, itemID string) error {
	if _, err := s.lists.GetList(ctx, listID); err != nil {
		return err
	}
	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return err
	}
	added, err := s.lists.AppendItem(ctx, listID, itemID)
	if err != nil {
		return err
	}
	if added {
		s.publish(ctx, EventListItemAdded, map[string]string{"list_id": listID, "item_id": itemID})
	}
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, listID, itemID string) error {
	if err := s.lists.RemoveItem(ctx, listID, itemID); err != nil {
		return err
	}
	s.publish(ctx, EventListItemRemoved, map[string]string{"list_id": listID, "item_id": itemID})
	return nil
}

// GetListItems resolves the list's ids in list order. Ids whose item was
// deleted are skipped.
func (s *Service) GetListItems(ctx context.Context, listID string) ([]MediaItem, error) {
	l, err := s.lists.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	out := []MediaItem{}
	if len(l.Items) == 0 {
		return out, nil
	}
	found, err := s.items.GetItems(ctx, l.Items)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]MediaItem, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	for _, id := range l.Items {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Service) ListsStats(ctx context.Context) (*ListsStats, error) {
	lists, err := s.lists.ListLists(ctx)
	if err != nil {
		return nil, err
	}
	st := &ListsStats{TotalLists: len(lists)}
	for _, l := range lists {
		st.TotalItems += len(l.Items)
	}
	return st, nil
}
