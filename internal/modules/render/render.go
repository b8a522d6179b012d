// Package render serves the block preview endpoint used by editors.
package render

import (
	"errors"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/view"
)

type Handler struct {
	content *view.Content
}

func NewHandler(content *view.Content) *Handler { return &Handler{content: content} }

// RegisterRoutes mounts POST /render. limit may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	handlers := []gin.HandlerFunc{h.preview}
	if limit != nil {
		handlers = append([]gin.HandlerFunc{limit}, handlers...)
	}
	rg.POST("/render", handlers...)
}

type previewDTO struct {
	Blocks     *blocks.List `json:"blocks"`
	ShowErrors bool         `json:"show_errors"`
}

type blockErrorView struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

type outputView struct {
	ID          int             `json:"id"`
	Kind        string          `json:"kind"`
	HTML        template.HTML   `json:"html"`
	Placeholder bool            `json:"placeholder"`
	Failed      bool            `json:"failed"`
	Error       *blockErrorView `json:"error,omitempty"`
}

type previewResult struct {
	Blocks []outputView  `json:"blocks"`
	HTML   template.HTML `json:"html"`
}

func (h *Handler) preview(c *gin.Context) {
	var dto previewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Blocks == nil {
		response.UnprocessableEntity(c, "blocks is required")
		return
	}

	outputs := h.content.Outputs("preview", *dto.Blocks)
	views := make([]outputView, 0, len(outputs))
	for _, out := range outputs {
		v := outputView{
			ID:          out.ID,
			Kind:        string(out.Kind),
			HTML:        out.HTML,
			Placeholder: out.Placeholder,
			Failed:      out.Failed(),
		}
		if out.Err != nil {
			v.Error = &blockErrorView{
				Kind:    errorKind(out.Err),
				Field:   out.Err.Field,
				Value:   out.Err.Value,
				Message: out.Err.Error(),
			}
		}
		views = append(views, v)
	}
	response.OK(c, previewResult{Blocks: views, HTML: blocks.Join(outputs, dto.ShowErrors)})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, blocks.ErrUnknownBlockType):
		return "unknown_block_type"
	case errors.Is(err, blocks.ErrInvalidEnumValue):
		return "invalid_enum_value"
	case errors.Is(err, blocks.ErrMissingRequiredField):
		return "missing_required_field"
	case errors.Is(err, blocks.ErrMalformedAsset):
		return "malformed_asset"
	case errors.Is(err, blocks.ErrMalformedBlock):
		return "malformed_block"
	default:
		return "render_error"
	}
}
