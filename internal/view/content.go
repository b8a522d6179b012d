package view

import (
	"html/template"

	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/metrics"
)

// Content renders block lists for pages, logging and counting every block outcome.
type Content struct {
	renderer   *blocks.Renderer
	showErrors bool
	logger     *zap.Logger
}

func NewContent(renderer *blocks.Renderer, showErrors bool, logger *zap.Logger) *Content {
	if renderer == nil {
		renderer = blocks.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Content{renderer: renderer, showErrors: showErrors, logger: logger}
}

// Outputs renders each block and records its outcome. source names the page for the logs.
func (c *Content) Outputs(source string, list []blocks.Block) []blocks.Output {
	outputs := c.renderer.Render(list)
	for _, out := range outputs {
		outcome := metrics.OutcomeOK
		switch {
		case out.Failed():
			outcome = metrics.OutcomeFailed
			c.logger.Warn("block rejected",
				zap.String("source", source),
				zap.Int("block_id", out.ID),
				zap.String("kind", string(out.Kind)),
				zap.String("field", out.Err.Field),
				zap.Error(out.Err),
			)
		case out.Placeholder:
			outcome = metrics.OutcomePlaceholder
			c.logger.Info("unknown block type",
				zap.String("source", source),
				zap.Int("block_id", out.ID),
				zap.String("kind", string(out.Kind)),
			)
		}
		kind := metrics.KindUnknown
		if out.Kind.Known() {
			kind = string(out.Kind)
		}
		metrics.ObserveBlock(kind, outcome)
	}
	return outputs
}

// HTML renders list into the article body.
func (c *Content) HTML(source string, list []blocks.Block) template.HTML {
	return blocks.Join(c.Outputs(source, list), c.showErrors)
}
