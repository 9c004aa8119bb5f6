package catalog

import (
	"time"
)

// Media types accepted for a MediaItem.
const (
	MediaTypeYouTube    = "youtube"
	MediaTypeDirectLink = "direct_link"
	MediaTypeLiveTV     = "live_tv"
	MediaTypePlaylist   = "playlist"
)

// Categories partition the catalog. A category is independent of the media
// type: a YouTube link can be filed under movies.
const (
	CategoryMovies   = "movies"
	CategoryTVSeries = "tv_series"
	CategoryLiveTV   = "live_tv"
	CategoryYouTube  = "youtube"
)

const (
	// MaxListResults caps every item listing.
	MaxListResults = 1000
	// MaxDescriptionLen is applied to enriched descriptions.
	MaxDescriptionLen = 500

	importedSuffix = " (Imported)"
)

// Categories returns the canonical categories in display order.
func Categories() []string {
	return []string{CategoryMovies, CategoryTVSeries, CategoryLiveTV, CategoryYouTube}
}

// MediaTypes returns every accepted media type.
func MediaTypes() []string {
	return []string{MediaTypeYouTube, MediaTypeDirectLink, MediaTypeLiveTV, MediaTypePlaylist}
}

// MediaItem is a single registered URL filed under a category.
// Optional enrichment fields stay nil unless the URL was enriched.
type MediaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	MediaType   string    `json:"media_type"`
	Category    string    `json:"category"`
	Thumbnail   *string   `json:"thumbnail"`
	Description *string   `json:"description"`
	Duration    *int      `json:"duration"`
	Quality     *string   `json:"quality"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomList is a named, ordered set of MediaItem ids. It does not own the
// items it references; ids may dangle after an item is deleted.
type CustomList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Items       []string  `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Has reports whether itemID is a member of the list.
func (l *CustomList) Has(itemID string) bool {
	for _, id := range l.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// CreateItemInput is the request shape for CreateItem.
type CreateItemInput struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	MediaType   string  `json:"media_type"`
	Category    string  `json:"category"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ItemFilter narrows ListItems. Empty fields match everything; a Limit of
// zero means no limit at the store level.
type ItemFilter struct {
	Category  string
	MediaType string
	Limit     int
}

// ListPatch carries optional list metadata updates.
type ListPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Stats is the aggregate view returned by Service.Stats.
type Stats struct {
	TotalMediaItems  int            `json:"total_media_items"`
	TotalCustomLists int            `json:"total_custom_lists"`
	TotalListEntries int            `json:"total_list_entries"`
	Categories       map[string]int `json:"categories"`
}

// ListsStats summarises custom lists.
type ListsStats struct {
	TotalLists int `json:"total_lists"`
	TotalItems int `json:"total_items"`
}

// Metadata is what an Extractor returns for a single URL.
type Metadata struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Description string   `json:"description,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Quality     string   `json:"quality,omitempty"`
	Uploader    string   `json:"uploader,omitempty"`
	Formats     []Format `json:"formats,omitempty"`
}

// Format is one downloadable rendition reported by the extractor.
type Format struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Height   int    `json:"quality,omitempty"`
	URL      string `json:"url"`
}

// PlaylistInfo is an expanded playlist.
type PlaylistInfo struct {
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Entries []Metadata `json:"entries"`
}
