package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const listColumns = `id, name, description, items, created_at, updated_at`

var _ catalog.ListStore = (*Store)(nil)

func scanList(row pgx.Row) (*catalog.CustomList, error) {
	var (
		l                    catalog.CustomList
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Items, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if l.Items == nil {
		l.Items = []string{}
	}
	l.CreatedAt = createdAt.UTC()
	l.UpdatedAt = updatedAt.UTC()
	return &l, nil
}

func (s *Store) CreateList(ctx context.Context, l *catalog.CustomList) error {
	items := l.Items
	if items == nil {
		items = []string{}
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO custom_lists (`+listColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, l.ID, l.Name, l.Description, items, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return catalog.NewStorageError("insert", "list", l.ID, err)
	}
	return nil
}

func (s *Store) GetList(ctx context.Context, id string) (*catalog.CustomList, error) {
	row := s.db.QueryRow(ctx, `SELECT `+listColumns+` FROM custom_lists WHERE id = $1`, id)
	l, err := scanList(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.NewNotFound("list", id)
	}
	if err != nil {
		return nil, catalog.NewStorageError("select", "list", id, err)
	}
	return l, nil
}

func (s *Store) ListLists(ctx context.Context) ([]catalog.CustomList, error) {
	rows, err := s.db.Query(ctx, `SELECT `+listColumns+` FROM custom_lists ORDER BY seq`)
	if err != nil {
		return nil, catalog.NewStorageError("list", "lists", "", err)
	}
	defer rows.Close()

	out := []catalog.CustomList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, catalog.NewStorageError("scan", "lists", "", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, catalog.NewStorageError("list", "lists", "", err)
	}
	return out, nil
}

func (s *Store) UpdateList(ctx context.Context, id string, patch catalog.ListPatch) (*catalog.CustomList, error) {
	row := s.db.QueryRow(ctx, `
        UPDATE custom_lists
        SET name = COALESCE($2, name),
            description = COALESCE($3, description),
            updated_at = now()
        WHERE id = $1
        RETURNING `+listColumns,
		id, patch.Name, patch.Description,
	)
	l, err := scanList(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.NewNotFound("list", id)
	}
	if err != nil {
		return nil, catalog.NewStorageError("update", "list", id, err)
	}
	return l, nil
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM custom_lists WHERE id = $1`, id)
	if err != nil {
		return catalog.NewStorageError("delete", "list", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.NewNotFound("list", id)
	}
	return nil
}

// AppendItem is a single conditional update; the membership test and the
// append happen in one statement.
func (s *Store) AppendItem(ctx context.Context, listID, itemID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE custom_lists
        SET items = array_append(items, $2), updated_at = now()
        WHERE id = $1 AND NOT ($2 = ANY(items))
    `, listID, itemID)
	if err != nil {
		return false, catalog.NewStorageError("append", "list", listID, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	exists, err := s.listExists(ctx, listID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, catalog.NewNotFound("list", listID)
	}
	return false, nil
}

func (s *Store) RemoveItem(ctx context.Context, listID, itemID string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE custom_lists
        SET items = array_remove(items, $2), updated_at = now()
        WHERE id = $1 AND $2 = ANY(items)
    `, listID, itemID)
	if err != nil {
		return catalog.NewStorageError("remove", "list", listID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.NewNotFound("list item", itemID)
	}
	return nil
}

func (s *Store) CountLists(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM custom_lists`).Scan(&n); err != nil {
		return 0, catalog.NewStorageError("count", "lists", "", err)
	}
	return n, nil
}

func (s *Store) listExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM custom_lists WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, catalog.NewStorageError("select", "list", id, err)
	}
	return exists, nil
}
