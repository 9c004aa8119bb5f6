package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const sampleInfo = `{
  "id": "dQw4w9WgXcQ",
  "title": "Sample",
  "webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
  "thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
  "description": "desc",
  "duration": 212.4,
  "uploader": "Someone",
  "height": 1080,
  "formats": [
    {"format_id": "1", "ext": "m4a", "url": "https://s/1"},
    {"format_id": "2", "ext": "mp4", "height": 144, "url": "https://s/2"},
    {"format_id": "3", "ext": "mp4", "height": 360, "url": "https://s/3"},
    {"format_id": "4", "ext": "mp4", "height": 480, "url": "https://s/4"},
    {"format_id": "5", "ext": "mp4", "height": 720, "url": "https://s/5"},
    {"format_id": "6", "ext": "mp4", "height": 1080, "url": "https://s/6"}
  ]
}`

func TestParseInfo(t *testing.T) {
	meta, err := parseInfo([]byte(sampleInfo), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Sample", meta.Title)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", meta.URL)
	assert.Equal(t, 212, meta.Duration)
	assert.Equal(t, "1080p", meta.Quality)
	assert.Equal(t, "Someone", meta.Uploader)
	require.Len(t, meta.Formats, MaxFormats)
	assert.Equal(t, 0, meta.Formats[0].Height)
	assert.Equal(t, 144, meta.Formats[1].Height)

	_, err = parseInfo([]byte("nope"), "x")
	assert.Error(t, err)
}

func TestParseEntries(t *testing.T) {
	out := []byte(`{"_type":"playlist","title":"My mix"}
{"id":"aaaaaaaaaaa","title":"First","duration":10,"channel":"Chan"}
not json
{"title":"Second","url":"https://www.youtube.com/watch?v=bbbbbbbbbbb","thumbnails":[{"url":"small"},{"url":"big"}]}
{"id":"ccccccccccc"}
`)
	title, entries := parseEntries(out, 0)
	assert.Equal(t, "My mix", title)
	require.Len(t, entries, 3)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaaaaaaaaaa", entries[0].URL)
	assert.Equal(t, "Chan", entries[0].Uploader)
	assert.Equal(t, "big", entries[1].Thumbnail)
	assert.Equal(t, "Unknown", entries[2].Title)

	_, limited := parseEntries(out, 2)
	assert.Len(t, limited, 2)
}

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, "best[height<=720]/best", formatSelector("720p"))
	assert.Equal(t, "best[height<=480]/best", formatSelector("480"))
	assert.Equal(t, "best", formatSelector("best"))
	assert.Equal(t, "best", formatSelector(""))
}

func TestExtractVideoID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", ExtractVideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractVideoID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractVideoID("https://www.youtube.com/embed/dQw4w9WgXcQ"))
	assert.Equal(t, "", ExtractVideoID("https://www.youtube.com/watch?v=short"))
}

func TestPlaylistID(t *testing.T) {
	assert.Equal(t, "PL123", PlaylistID("https://www.youtube.com/playlist?list=PL123"))
	assert.Equal(t, "PL123", PlaylistID("https://www.youtube.com/watch?v=x&list=PL123&index=2"))
	assert.Equal(t, "", PlaylistID("https://www.youtube.com/channel/UC1"))
}

// fakeYtdlp writes a shell script standing in for yt-dlp.
func fakeYtdlp(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestYtdlpExtractor_FetchMetadata(t *testing.T) {
	script := fakeYtdlp(t, "cat <<'EOF'\n"+sampleInfo+"\nEOF")
	logger, _ := test.NewNullLogger()
	y := NewYtdlpExtractor(script, 5*time.Second, logger)

	meta, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Sample", meta.Title)
	assert.True(t, y.Available(context.Background()))
}

func TestYtdlpExtractor_Failures(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("RateLimitedIsRetried", func(t *testing.T) {
		counter := filepath.Join(t.TempDir(), "calls")
		script := fakeYtdlp(t, `echo x >> `+counter+`
echo "HTTP Error 429: Too Many Requests" >&2
exit 1`)
		y := NewYtdlpExtractor(script, 5*time.Second, logger)
		y.Attempts = 3
		y.RetryDelay = time.Millisecond

		_, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRateLimited))

		calls, err := os.ReadFile(counter)
		require.NoError(t, err)
		assert.Equal(t, "x\nx\nx\n", string(calls))
	})

	t.Run("Unavailable", func(t *testing.T) {
		script := fakeYtdlp(t, `echo "ERROR: Video unavailable" >&2; exit 1`)
		y := NewYtdlpExtractor(script, 5*time.Second, logger)

		_, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		assert.ErrorIs(t, err, ErrVideoUnavailable)
	})

	t.Run("Timeout", func(t *testing.T) {
		script := fakeYtdlp(t, `exec sleep 5`)
		y := NewYtdlpExtractor(script, 50*time.Millisecond, logger)

		_, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("NotInstalledFallsBack", func(t *testing.T) {
		y := NewYtdlpExtractor(filepath.Join(t.TempDir(), "missing-yt-dlp"), time.Second, logger)

		meta, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", meta.Thumbnail)
		assert.False(t, y.Available(context.Background()))

		_, err = y.FetchMetadata(context.Background(), "https://youtu.be/bad")
		assert.ErrorIs(t, err, ErrYtdlpNotInstalled)
	})
}

func TestYtdlpExtractor_ResolvePlayableURL(t *testing.T) {
	logger, _ := test.NewNullLogger()

	ok := NewYtdlpExtractor(fakeYtdlp(t, `echo ""; echo "https://stream.example/video.mp4"`), time.Second, logger)
	assert.Equal(t, "https://stream.example/video.mp4",
		ok.ResolvePlayableURL(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "720p"))

	failing := NewYtdlpExtractor(fakeYtdlp(t, `exit 2`), time.Second, logger)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ",
		failing.ResolvePlayableURL(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "720p"))
}

func TestYtdlpExtractor_Search(t *testing.T) {
	logger, _ := test.NewNullLogger()
	script := fakeYtdlp(t, `case "$*" in
  *ytsearch2:cats*) printf '%s\n' '{"id":"aaaaaaaaaaa","title":"Cat 1"}' '{"id":"bbbbbbbbbbb","title":"Cat 2"}' ;;
  *) exit 1 ;;
esac`)
	y := NewYtdlpExtractor(script, time.Second, logger)

	res, err := y.Search(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Cat 2", res[1].Title)

	res, err = y.Search(context.Background(), "  ", 2)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestPlaylists_ExpandPlaylist(t *testing.T) {
	p := &Playlists{fetch: func(_ context.Context, id string, limit int) ([]catalog.Metadata, error) {
		assert.Equal(t, "PL9", id)
		out := make([]catalog.Metadata, 30)
		for i := range out {
			out[i] = catalog.Metadata{Title: "v"}
		}
		return out, nil
	}}

	info, err := p.ExpandPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PL9", 0)
	require.NoError(t, err)
	assert.Len(t, info.Entries, DefaultPlaylistEntries)
	assert.Equal(t, "Playlist PL9", info.Title)

	_, err = p.ExpandPlaylist(context.Background(), "https://www.youtube.com/watch?v=x", 0)
	assert.ErrorIs(t, err, catalog.ErrInvalid)

	_, err = p.ExpandPlaylist(context.Background(), "https://www.youtube.com/channel/UC1", 0)
	assert.ErrorIs(t, err, catalog.ErrInvalid)
}

func TestPlaylists_ChannelUsesFlatListing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	script := fakeYtdlp(t, `printf '%s\n' '{"_type":"playlist","title":"Channel uploads"}' '{"id":"aaaaaaaaaaa","title":"Up 1"}'`)
	p := NewPlaylists(NewYtdlpExtractor(script, time.Second, logger))

	info, err := p.ExpandPlaylist(context.Background(), "https://www.youtube.com/channel/UC1", 5)
	require.NoError(t, err)
	assert.Equal(t, "Channel uploads", info.Title)
	require.Len(t, info.Entries, 1)
	assert.Equal(t, "Up 1", info.Entries[0].Title)
}
