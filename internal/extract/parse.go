package extract

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	// MaxFormats caps the formats reported for a single video.
	MaxFormats = 5

	watchURLTemplate     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLTemplate = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
}

// ytdlpInfo is the subset of yt-dlp's JSON output we read.
type ytdlpInfo struct {
	Type        string        `json:"_type"`
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	WebpageURL  string        `json:"webpage_url"`
	Thumbnail   string        `json:"thumbnail"`
	Thumbnails  []ytdlpThumb  `json:"thumbnails"`
	Description string        `json:"description"`
	Duration    float64       `json:"duration"`
	Uploader    string        `json:"uploader"`
	Channel     string        `json:"channel"`
	Height      int           `json:"height"`
	Formats     []ytdlpFormat `json:"formats"`
}

type ytdlpThumb struct {
	URL string `json:"url"`
}

type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Height   *int   `json:"height"`
	URL      string `json:"url"`
}

// ExtractVideoID returns the 11 character video id embedded in a YouTube
// URL, or "".
func ExtractVideoID(url string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// parseInfo decodes the output of `yt-dlp -J` for a single video.
func parseInfo(data []byte, requested string) (*catalog.Metadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	meta := info.toMetadata()
	meta.URL = requested
	if info.Height > 0 {
		meta.Quality = strconv.Itoa(info.Height) + "p"
	}
	for _, f := range info.Formats {
		if len(meta.Formats) == MaxFormats {
			break
		}
		cf := catalog.Format{FormatID: f.FormatID, Ext: f.Ext, URL: f.URL}
		if f.Height != nil {
			cf.Height = *f.Height
		}
		meta.Formats = append(meta.Formats, cf)
	}
	return &meta, nil
}

// parseEntries decodes newline-delimited JSON as printed by --dump-json with
// --flat-playlist. A playlist header line, if any, sets the returned title.
// Malformed lines are skipped.
func parseEntries(data []byte, limit int) (title string, entries []catalog.Metadata) {
	entries = []catalog.Metadata{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var info ytdlpInfo
		if err := json.Unmarshal(line, &info); err != nil {
			continue
		}
		if info.Type == "playlist" {
			if info.Title != "" {
				title = info.Title
			}
			continue
		}
		entries = append(entries, info.toMetadata())
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return title, entries
}

func (info ytdlpInfo) toMetadata() catalog.Metadata {
	m := catalog.Metadata{
		Title:       info.Title,
		URL:         info.pageURL(),
		Thumbnail:   info.Thumbnail,
		Description: info.Description,
		Duration:    int(info.Duration),
		Uploader:    info.Uploader,
	}
	if m.Title == "" {
		m.Title = "Unknown"
	}
	if m.Uploader == "" {
		m.Uploader = info.Channel
	}
	if m.Thumbnail == "" && len(info.Thumbnails) > 0 {
		m.Thumbnail = info.Thumbnails[len(info.Thumbnails)-1].URL
	}
	return m
}

func (info ytdlpInfo) pageURL() string {
	if info.WebpageURL != "" {
		return info.WebpageURL
	}
	if strings.HasPrefix(info.URL, "http") {
		return info.URL
	}
	if info.ID != "" {
		return fmt.Sprintf(watchURLTemplate, info.ID)
	}
	return ""
}

// formatSelector turns "720p" or "720" into a yt-dlp format expression.
func formatSelector(quality string) string {
	q := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	if n, err := strconv.Atoi(q); err == nil && n > 0 {
		return fmt.Sprintf("best[height<=%d]/best", n)
	}
	return "best"
}

// fallbackMetadata is used when yt-dlp is not installed.
func fallbackMetadata(url string) *catalog.Metadata {
	id := ExtractVideoID(url)
	if id == "" {
		return nil
	}
	return &catalog.Metadata{
		Title:     "YouTube Video " + id,
		URL:       url,
		Thumbnail: fmt.Sprintf(thumbnailURLTemplate, id),
	}
}
