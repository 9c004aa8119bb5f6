package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func httptestGet(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleExportImport(t *testing.T) {
	src := newTestEnv(t)
	item := src.createItem(t, "A", "http://a", "movies")
	list := src.createList(t, "Favs")
	require.Equal(t, http.StatusOK, src.do(t, http.MethodPost, "/api/lists/"+list.ID+"/items/"+item.ID, nil).Code)

	w := src.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fafov2_export.json")
	snap := decode[catalog.Snapshot](t, w)
	require.Len(t, snap.Lists, 1)
	require.Len(t, snap.Categories["movies"], 1)

	dst := newTestEnv(t)
	w = dst.do(t, http.MethodPost, "/api/import", snap)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[map[string]int](t, w)["imported"])

	w = dst.do(t, http.MethodGet, "/api/lists", nil)
	lists := decode[[]catalog.CustomList](t, w)
	require.Len(t, lists, 1)
	assert.Equal(t, "Favs (Imported)", lists[0].Name)
	require.Len(t, lists[0].Items, 1)
	assert.NotEqual(t, list.ID, lists[0].ID)

	w = dst.do(t, http.MethodGet, "/api/lists/"+lists[0].ID+"/items", nil)
	items := decode[[]catalog.MediaItem](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "http://a", items[0].URL)
}

func TestHandleImport_ListMembersByValue(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"lists": []any{map[string]any{
			"name":  "Addon",
			"items": []any{map[string]any{"title": "Loose", "url": "http://loose"}},
		}},
		"categories":  map[string]any{},
		"export_date": "2024-05-01T10:00:00.123456",
	}
	w := env.do(t, http.MethodPost, "/api/import", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[map[string]int](t, w)["imported"])

	w = env.do(t, http.MethodGet, "/api/lists", nil)
	lists := decode[[]catalog.CustomList](t, w)
	require.Len(t, lists, 1)
	w = env.do(t, http.MethodGet, "/api/lists/"+lists[0].ID+"/items", nil)
	items := decode[[]catalog.MediaItem](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, catalog.DefaultImportCategory, items[0].Category)
}

func TestHandleImport_BadBody(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/import", "garbage")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
