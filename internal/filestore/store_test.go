package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s := New(fs, "/home/user/.fafov2")
	require.NoError(t, s.Init(context.Background()))
	return s, fs
}

func item(id, category, url string) *catalog.MediaItem {
	return &catalog.MediaItem{
		ID:        id,
		Title:     "title " + id,
		URL:       url,
		MediaType: catalog.MediaTypeDirectLink,
		Category:  category,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInit_WritesBothDocuments(t *testing.T) {
	s, fs := newMemStore(t)

	raw, err := afero.ReadFile(fs, filepath.Join(s.Dir(), CategoriesFile))
	require.NoError(t, err)
	var cats map[string][]catalog.MediaItem
	require.NoError(t, json.Unmarshal(raw, &cats))
	for _, c := range catalog.Categories() {
		assert.Contains(t, cats, c)
	}
	// two-space indentation
	assert.Contains(t, string(raw), "\n  \"")

	raw, err = afero.ReadFile(fs, filepath.Join(s.Dir(), ListsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"lists":[]}`, string(raw))
}

func TestInsertItem_DedupWithinCategory(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()

	stored, created, err := s.InsertItem(ctx, item("1", catalog.CategoryMovies, "https://x/a"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "1", stored.ID)

	stored, created, err = s.InsertItem(ctx, item("2", catalog.CategoryMovies, "https://x/a"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "1", stored.ID)

	_, created, err = s.InsertItem(ctx, item("3", catalog.CategoryYouTube, "https://x/a"))
	require.NoError(t, err)
	assert.True(t, created)

	n, err := s.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestItems_ReadsAndDeletes(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()

	for _, it := range []*catalog.MediaItem{
		item("1", catalog.CategoryMovies, "https://x/1"),
		item("2", catalog.CategoryMovies, "https://x/2"),
		item("3", catalog.CategoryLiveTV, "https://x/3"),
	} {
		_, _, err := s.InsertItem(ctx, it)
		require.NoError(t, err)
	}

	got, err := s.GetItem(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryLiveTV, got.Category)

	found, err := s.FindItemByURL(ctx, catalog.CategoryMovies, "https://x/2")
	require.NoError(t, err)
	assert.Equal(t, "2", found.ID)

	many, err := s.GetItems(ctx, []string{"3", "missing", "1"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	limited, err := s.ListItems(ctx, catalog.ItemFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, s.DeleteItem(ctx, "1"))
	assert.ErrorIs(t, s.DeleteItem(ctx, "1"), catalog.ErrNotFound)
	require.NoError(t, s.DeleteItemByURL(ctx, catalog.CategoryMovies, "https://x/2"))
	assert.ErrorIs(t, s.DeleteItemByURL(ctx, catalog.CategoryMovies, "https://x/3"), catalog.ErrNotFound)

	counts, err := s.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts[catalog.CategoryMovies])
	assert.Equal(t, 1, counts[catalog.CategoryLiveTV])
}

func TestLists_MembershipIsASet(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateList(ctx, &catalog.CustomList{ID: "l1", Name: "L", CreatedAt: created, UpdatedAt: created}))

	added, err := s.AppendItem(ctx, "l1", "a")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AppendItem(ctx, "l1", "a")
	require.NoError(t, err)
	assert.False(t, added)
	_, err = s.AppendItem(ctx, "l1", "b")
	require.NoError(t, err)

	l, err := s.GetList(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, l.Items)
	assert.True(t, l.UpdatedAt.After(created))

	require.NoError(t, s.RemoveItem(ctx, "l1", "a"))
	assert.ErrorIs(t, s.RemoveItem(ctx, "l1", "a"), catalog.ErrNotFound)
	assert.ErrorIs(t, s.RemoveItem(ctx, "nope", "b"), catalog.ErrNotFound)
	_, err = s.AppendItem(ctx, "nope", "b")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	name := "Renamed"
	l, err = s.UpdateList(ctx, "l1", catalog.ListPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", l.Name)
	assert.Equal(t, []string{"b"}, l.Items)

	n, err := s.CountLists(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteList(ctx, "l1"))
	assert.ErrorIs(t, s.DeleteList(ctx, "l1"), catalog.ErrNotFound)
}

func TestAppendItem_ConcurrentCallersNeverDuplicate(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateList(ctx, &catalog.CustomList{ID: "l1", Name: "L"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.AppendItem(ctx, "l1", []string{"a", "b"}[i%2])
		}(i)
	}
	wg.Wait()

	l, err := s.GetList(ctx, "l1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, l.Items)
}

func TestCorruptDocumentIsAStorageError(t *testing.T) {
	s, fs := newMemStore(t)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(s.Dir(), ListsFile), []byte("{not json"), 0o644))

	_, err := s.ListLists(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrStorage)
}

func TestFailedSaveLeavesDocumentUntouched(t *testing.T) {
	base, _ := newMemStore(t)
	ctx := context.Background()
	_, _, err := base.InsertItem(ctx, item("1", catalog.CategoryMovies, "https://x/1"))
	require.NoError(t, err)

	ro := New(afero.NewReadOnlyFs(base.fs), base.Dir())
	_, _, err = ro.InsertItem(ctx, item("2", catalog.CategoryMovies, "https://x/2"))
	require.Error(t, err)
	var se *catalog.StorageError
	assert.True(t, errors.As(err, &se))

	n, err := base.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, fs := newMemStore(t)

	_, err := s.LoadSnapshot("")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	snap := &catalog.Snapshot{
		Lists:        []catalog.SnapshotList{{ID: "l", Name: "L", Items: []catalog.ListEntry{{ID: "a"}}}},
		Categories:   map[string][]catalog.SnapshotItem{catalog.CategoryMovies: {catalog.SnapshotItem(*item("a", catalog.CategoryMovies, "https://x/a"))}},
		ExportDate:   catalog.Timestamp{Time: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
		AddonVersion: "2.0.0",
	}
	path, err := s.SaveSnapshot("", snap)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), ExportFile), path)

	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"export_date": "2024-02-02T00:00:00Z"`)
	assert.Contains(t, string(raw), `"addon_version": "2.0.0"`)

	back, err := s.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Lists[0].Name, back.Lists[0].Name)
	assert.Equal(t, "a", back.Lists[0].Items[0].ID)
	assert.True(t, snap.ExportDate.Equal(back.ExportDate.Time))
	assert.Equal(t, "https://x/a", back.Categories[catalog.CategoryMovies][0].URL)
}

func TestOsFs(t *testing.T) {
	dir := t.TempDir()
	s := New(afero.NewOsFs(), dir)
	require.NoError(t, s.Init(context.Background()))

	_, err := os.Stat(filepath.Join(dir, CategoriesFile))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}
