package catalog

import (
	"net/url"
	"strings"
)

// ValidURL accepts absolute URLs with a scheme and host. Anything starting
// with "http" is also accepted, matching the lenient check clients rely on.
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return true
	}
	return strings.HasPrefix(raw, "http")
}

// IsYouTubeURL reports whether raw points at youtube.com or youtu.be.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		lower := strings.ToLower(raw)
		return strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be")
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtube.com", strings.HasSuffix(host, ".youtube.com"):
		return true
	case host == "youtu.be":
		return true
	}
	return false
}

// IsPlaylistURL mirrors the heuristics used to tell a playlist or channel
// URL from a single video.
func IsPlaylistURL(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range []string{"playlist", "list=", "/c/", "/channel/", "/user/"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is one of the canonical categories.
func ValidCategory(c string) bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// ValidMediaType reports whether t is an accepted media type.
func ValidMediaType(t string) bool {
	for _, v := range MediaTypes() {
		if v == t {
			return true
		}
	}
	return false
}

func validateItemInput(in *CreateItemInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.MediaType = strings.ToLower(strings.TrimSpace(in.MediaType))
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))

	if in.Title == "" {
		return invalid("title", "must not be empty")
	}
	if !ValidURL(in.URL) {
		return invalid("url", "invalid URL format")
	}
	if !ValidMediaType(in.MediaType) {
		return invalid("media_type", "must be one of "+strings.Join(MediaTypes(), ", "))
	}
	if !ValidCategory(in.Category) {
		return invalid("category", "must be one of "+strings.Join(Categories(), ", "))
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
