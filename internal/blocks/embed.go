package blocks

import (
	"net/url"
	"strings"
)

// ResolveEmbedURL rewrites YouTube watch urls and vimeo.com/<id> urls to their player urls.
// Anything else, including youtu.be short links and unparsable input, is returned unchanged.
func ResolveEmbedURL(raw string, autoplay bool) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	flag := "0"
	if autoplay {
		flag = "1"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if id := youtubeID(u); id != "" {
			return "https://www.youtube.com/embed/" + id + "?autoplay=" + flag
		}
	case host == "vimeo.com":
		if id := firstSegment(u.Path); isDigits(id) {
			return "https://player.vimeo.com/video/" + id + "?autoplay=" + flag
		}
	}
	return raw
}

func youtubeID(u *url.URL) string {
	if u.Path == "/watch" {
		return u.Query().Get("v")
	}
	return ""
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
