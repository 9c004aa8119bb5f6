package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ytget/ytdlp/v2"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	playlistParam  = "list="
	paramSeparator = "&"

	// DefaultPlaylistEntries caps an expanded playlist.
	DefaultPlaylistEntries = 20
)

// fetchPlaylistFunc lists up to limit entries of a playlist id.
type fetchPlaylistFunc func(ctx context.Context, playlistID string, limit int) ([]catalog.Metadata, error)

// Playlists implements catalog.PlaylistExpander. URLs carrying a list=
// parameter are read with the native ytdlp client; channel and user pages
// fall back to a flat yt-dlp listing.
type Playlists struct {
	fetch fetchPlaylistFunc
	flat  *YtdlpExtractor
}

var _ catalog.PlaylistExpander = (*Playlists)(nil)

// NewPlaylists returns an expander. flat may be nil, in which case only
// list= URLs are supported.
func NewPlaylists(flat *YtdlpExtractor) *Playlists {
	return &Playlists{fetch: fetchNative, flat: flat}
}

func fetchNative(ctx context.Context, playlistID string, limit int) ([]catalog.Metadata, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	out := make([]catalog.Metadata, 0, len(items))
	for _, it := range items {
		out = append(out, catalog.Metadata{
			Title:     it.Title,
			URL:       fmt.Sprintf(watchURLTemplate, it.VideoID),
			Thumbnail: fmt.Sprintf(thumbnailURLTemplate, it.VideoID),
		})
	}
	return out, nil
}

func (p *Playlists) ExpandPlaylist(ctx context.Context, url string, limit int) (*catalog.PlaylistInfo, error) {
	if !catalog.IsPlaylistURL(url) {
		return nil, &catalog.ValidationError{Field: "url", Reason: "not a playlist URL"}
	}
	if limit <= 0 {
		limit = DefaultPlaylistEntries
	}

	if id := PlaylistID(url); id != "" {
		entries, err := p.fetch(ctx, id, limit)
		if err != nil {
			return nil, err
		}
		if len(entries) > limit {
			entries = entries[:limit]
		}
		return &catalog.PlaylistInfo{Title: "Playlist " + id, URL: url, Entries: entries}, nil
	}

	if p.flat == nil {
		return nil, &catalog.ValidationError{Field: "url", Reason: "playlist URL has no list id"}
	}
	title, entries, err := p.flat.ListFlat(ctx, url, limit)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "Unknown Playlist"
	}
	return &catalog.PlaylistInfo{Title: title, URL: url, Entries: entries}, nil
}

// PlaylistID extracts the list= parameter from url.
func PlaylistID(url string) string {
	_, after, ok := strings.Cut(url, playlistParam)
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(after, paramSeparator)
	return id
}
