package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/config"
	"github.com/mx-space/blockpress/internal/middleware"
	pkgredis "github.com/mx-space/blockpress/internal/pkg/redis"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/view"
)

// Version is overridden at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	redis   *pkgredis.Client
	strapi  *strapi.Client
	layout  *view.Layout
	content *view.Content
}

// New initializes the application: runtime settings → Redis → Strapi client → renderer → routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}

	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = rc
	}

	opts := []strapi.Option{
		strapi.WithToken(cfg.Strapi.APIToken),
		strapi.WithTimeout(cfg.StrapiTimeout()),
		strapi.WithLogger(logger),
	}
	if a.redis != nil && cfg.StrapiCacheTTL() > 0 {
		opts = append(opts, strapi.WithCache(a.redis, cfg.StrapiCacheTTL()))
	}
	client, err := strapi.New(cfg.Strapi.URL, opts...)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("strapi: %w", err)
	}
	a.strapi = client

	a.content = view.NewContent(newRenderer(cfg), cfg.Render.ShowBlockErrors, logger)
	a.layout = view.NewLayout(cfg.Site.Name)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))
	a.router = router

	a.registerRoutes()
	return a, nil
}

func newRenderer(cfg *config.AppConfig) *blocks.Renderer {
	opts := []blocks.Option{
		blocks.WithAssetBaseURL(cfg.MediaBaseURL()),
		blocks.WithImageFormat(blocks.Format(cfg.Render.ImageFormat)),
	}
	if cfg.Render.RichText == config.RichTextMarkdown {
		opts = append(opts, blocks.WithMarkdown(nil))
	}
	return blocks.New(opts...)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the Redis connection.
func (a *App) Shutdown() {
	if a.redis == nil {
		return
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
}
