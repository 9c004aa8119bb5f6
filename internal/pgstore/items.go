package pgstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const itemColumns = `id, title, url, media_type, category, thumbnail, description, duration, quality, created_at`

var _ catalog.ItemStore = (*Store)(nil)

func scanItem(row pgx.Row) (*catalog.MediaItem, error) {
	var (
		it                       catalog.MediaItem
		thumbnail, desc, quality string
		duration                 int
		createdAt                time.Time
	)
	if err := row.Scan(
		&it.ID, &it.Title, &it.URL, &it.MediaType, &it.Category,
		&thumbnail, &desc, &duration, &quality, &createdAt,
	); err != nil {
		return nil, err
	}
	it.Thumbnail = optString(thumbnail)
	it.Description = optString(desc)
	it.Quality = optString(quality)
	if duration > 0 {
		it.Duration = &duration
	}
	it.CreatedAt = createdAt.UTC()
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]catalog.MediaItem, error) {
	defer rows.Close()
	out := []catalog.MediaItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// InsertItem relies on the (category, url) unique index so concurrent
// inserts of the same url cannot both succeed.
func (s *Store) InsertItem(ctx context.Context, item *catalog.MediaItem) (*catalog.MediaItem, bool, error) {
	row := s.db.QueryRow(ctx, `
        INSERT INTO media_items (`+itemColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (category, url) DO NOTHING
        RETURNING `+itemColumns,
		item.ID, item.Title, item.URL, item.MediaType, item.Category,
		deref(item.Thumbnail), deref(item.Description), derefInt(item.Duration), deref(item.Quality),
		item.CreatedAt,
	)
	stored, err := scanItem(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, catalog.NewStorageError("insert", "media item", item.ID, err)
	}

	existing, err := s.FindItemByURL(ctx, item.Category, item.URL)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Store) FindItemByURL(ctx context.Context, category, url string) (*catalog.MediaItem, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+itemColumns+`
        FROM media_items
        WHERE category = $1 AND url = $2
    `, category, url)
	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.NewNotFound("media item", url)
	}
	if err != nil {
		return nil, catalog.NewStorageError("select", "media item", url, err)
	}
	return it, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*catalog.MediaItem, error) {
	row := s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM media_items WHERE id = $1`, id)
	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.NewNotFound("media item", id)
	}
	if err != nil {
		return nil, catalog.NewStorageError("select", "media item", id, err)
	}
	return it, nil
}

func (s *Store) GetItems(ctx context.Context, ids []string) ([]catalog.MediaItem, error) {
	if len(ids) == 0 {
		return []catalog.MediaItem{}, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM media_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, catalog.NewStorageError("select", "media items", "", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, catalog.NewStorageError("scan", "media items", "", err)
	}
	return items, nil
}

func (s *Store) ListItems(ctx context.Context, f catalog.ItemFilter) ([]catalog.MediaItem, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if f.MediaType != "" {
		args = append(args, f.MediaType)
		where = append(where, "media_type = $"+strconv.Itoa(len(args)))
	}

	q := `SELECT ` + itemColumns + ` FROM media_items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY seq`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, catalog.NewStorageError("list", "media items", "", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, catalog.NewStorageError("scan", "media items", "", err)
	}
	return items, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	if err != nil {
		return catalog.NewStorageError("delete", "media item", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.NewNotFound("media item", id)
	}
	return nil
}

func (s *Store) DeleteItemByURL(ctx context.Context, category, url string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media_items WHERE category = $1 AND url = $2`, category, url)
	if err != nil {
		return catalog.NewStorageError("delete", "media item", url, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.NewNotFound("media item", url)
	}
	return nil
}

func (s *Store) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `SELECT category, COUNT(*) FROM media_items GROUP BY category`)
	if err != nil {
		return nil, catalog.NewStorageError("count", "media items", "", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, catalog.NewStorageError("scan", "media items", "", err)
		}
		out[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, catalog.NewStorageError("count", "media items", "", err)
	}
	return out, nil
}

func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&n); err != nil {
		return 0, catalog.NewStorageError("count", "media items", "", err)
	}
	return n, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
