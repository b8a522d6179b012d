package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"

	"github.com/mx-space/blockpress/internal/config"
	"github.com/mx-space/blockpress/internal/middleware"
)

// originMatcher matches request origins by host. Entries may carry a scheme, which is
// ignored, a leading "*." for any subdomain, or a trailing ":*" for any port.
type originMatcher struct {
	hosts    map[string]struct{}
	suffixes []string
	prefixes []string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{hosts: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		host := originHost(o)
		switch {
		case host == "":
		case strings.HasPrefix(host, "*."):
			m.suffixes = append(m.suffixes, host[1:])
		case strings.HasSuffix(host, ":*"):
			m.prefixes = append(m.prefixes, strings.TrimSuffix(host, "*"))
		default:
			m.hosts[host] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) allow(origin string) bool {
	host := originHost(origin)
	if host == "" {
		return false
	}
	if _, ok := m.hosts[host]; ok {
		return true
	}
	for _, s := range m.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(host, p) {
			return true
		}
	}
	return false
}

// originHost lowercases the host[:port] of an origin. Bare hosts and patterns pass through.
func originHost(origin string) string {
	origin = strings.ToLower(strings.TrimSpace(origin))
	if strings.Contains(origin, "://") {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return strings.TrimRight(origin, "/")
}

// corsConfig allows every origin in development or when no origins are configured.
func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, middleware.CacheHeader},
	}
	if len(cfg.AllowedOrigins) == 0 || cfg.IsDev() {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}
	c.AllowOriginFunc = newOriginMatcher(cfg.AllowedOrigins).allow
	return c
}
