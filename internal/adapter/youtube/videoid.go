package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"tubequiz/internal/domain"
)

var videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// pathPrefixes are the URL path segments that are followed by a video ID.
var pathPrefixes = map[string]bool{
	"shorts": true,
	"embed":  true,
	"live":   true,
	"v":      true,
}

// ExtractVideoID returns the 11-character video ID from a YouTube URL or a
// bare ID. Supported forms are watch?v=, youtu.be/, /shorts/, /embed/, /live/
// and /v/. Anything else yields an INVALID_URL error.
func ExtractVideoID(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if videoIDPattern.MatchString(s) {
		return s, nil
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", domain.NewInvalidURLError(rawURL)
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	var id string
	switch host {
	case "youtu.be":
		if len(segments) > 0 {
			id = segments[0]
		}
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
		} else if len(segments) >= 2 && pathPrefixes[segments[0]] {
			id = segments[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", domain.NewInvalidURLError(rawURL)
	}
	return id, nil
}
