// Package cache exposes an authenticated purge endpoint for the Redis-backed caches.
// Point a Strapi webhook at it so published edits show up before the TTL runs out.
package cache

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/middleware"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/strapi"
)

// TokenHeader is accepted as an alternative to a bearer Authorization header.
const TokenHeader = "X-Blockpress-Token"

// Purger deletes keys by glob pattern. pkg/redis.Client satisfies it.
type Purger interface {
	Purge(ctx context.Context, pattern string) (int, error)
}

type Handler struct {
	purger   Purger
	token    string
	patterns []string
	logger   *zap.Logger
}

func NewHandler(purger Purger, token string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		purger:   purger,
		token:    token,
		patterns: []string{middleware.PageCachePrefix + "*", strapi.CacheKeyPrefix + "*"},
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cache/purge", h.purge)
}

// webhookEvent is the subset of a Strapi webhook payload worth logging.
type webhookEvent struct {
	Event string `json:"event"`
	Model string `json:"model"`
}

func (h *Handler) authorized(c *gin.Context) bool {
	got := c.GetHeader(TokenHeader)
	if got == "" {
		auth := c.GetHeader("Authorization")
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			got = strings.TrimSpace(auth[7:])
		}
	}
	return h.token != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func (h *Handler) purge(c *gin.Context) {
	if !h.authorized(c) {
		response.Unauthorized(c)
		return
	}

	var ev webhookEvent
	if c.Request.ContentLength != 0 {
		// Anything that is not a webhook payload still purges.
		_ = c.ShouldBindJSON(&ev)
	}

	deleted := 0
	for _, pattern := range h.patterns {
		n, err := h.purger.Purge(c.Request.Context(), pattern)
		deleted += n
		if err != nil {
			h.logger.Error("cache purge failed", zap.String("pattern", pattern), zap.Error(err))
			response.InternalError(c, err)
			return
		}
	}

	h.logger.Info("cache purged",
		zap.Int("deleted", deleted),
		zap.String("event", ev.Event),
		zap.String("model", ev.Model),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	response.OK(c, gin.H{"ok": true, "deleted": deleted, "event": ev.Event})
}
