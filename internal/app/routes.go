package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/metrics"
	"github.com/mx-space/blockpress/internal/middleware"
	"github.com/mx-space/blockpress/internal/modules/article"
	"github.com/mx-space/blockpress/internal/modules/cache"
	"github.com/mx-space/blockpress/internal/modules/health"
	"github.com/mx-space/blockpress/internal/modules/render"
	"github.com/mx-space/blockpress/internal/modules/syndication/feed"
	"github.com/mx-space/blockpress/internal/modules/syndication/sitemap"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/seo"
)

const (
	renderRateLimit  = 30
	renderRateWindow = time.Minute
)

func (a *App) registerRoutes() {
	r := a.router

	var pageMW []gin.HandlerFunc
	if a.redis != nil && a.cfg.PageCacheTTL() > 0 {
		pageMW = append(pageMW, middleware.HTTPCache(a.redis, middleware.HTTPCacheOptions{
			TTL:             a.cfg.PageCacheTTL(),
			EnableCDNHeader: !a.cfg.IsDev(),
			SkipPaths:       []string{"/api/render"},
		}))
	}
	pages := r.Group("", pageMW...)
	api := pages.Group("/api")

	site := seo.Site{
		Name:     a.cfg.Site.Name,
		URL:      a.cfg.Site.URL,
		MediaURL: a.cfg.MediaBaseURL(),
	}
	article.NewHandler(a.strapi, a.layout, a.content, site, a.logger).RegisterRoutes(pages, api)

	var limit gin.HandlerFunc
	if a.redis != nil {
		limit = middleware.RateLimit(a.redis, renderRateLimit, renderRateWindow)
	}
	render.NewHandler(a.content).RegisterRoutes(api, limit)
	if a.redis != nil && a.cfg.Cache.PurgeToken != "" {
		cache.NewHandler(a.redis, a.cfg.Cache.PurgeToken, a.logger).RegisterRoutes(api)
	}

	feed.NewHandler(a.strapi, a.content, feed.Channel{
		Title: a.cfg.Site.Name,
		URL:   a.cfg.Site.URL,
	}).RegisterRoutes(pages)
	sitemap.NewHandler(a.strapi, a.cfg.Site.URL).RegisterRoutes(pages)

	checks := map[string]health.Check{"strapi": a.strapi.Ping}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx) }
	}
	health.NewHandler(Version, checks).RegisterRoutes(&r.RouterGroup)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.NotFound(c)
			return
		}
		a.layout.Error(c, http.StatusNotFound, "The page you are looking for does not exist.")
	})
}
