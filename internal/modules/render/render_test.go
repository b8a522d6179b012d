package render

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/blockpress/internal/view"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(view.NewContent(nil, false, nil)).RegisterRoutes(r.Group("/api"), nil)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPreview(t *testing.T) {
	w := post(newRouter(), `{"blocks":[
		{"__component":"shared.quote","id":1,"title":"Ada","body":"Hello"},
		{"__component":"shared.call-to-action","id":2,"title":"Go","url":"/x","style":"danger"},
		{"__component":"shared.table","id":3,"headers":[{"bad":true}],"rows":[]},
		{"__component":"shared.poll","id":4}
	],"show_errors":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Blocks []struct {
			ID          int    `json:"id"`
			Kind        string `json:"kind"`
			HTML        string `json:"html"`
			Placeholder bool   `json:"placeholder"`
			Failed      bool   `json:"failed"`
			Error       *struct {
				Kind  string `json:"kind"`
				Field string `json:"field"`
				Value string `json:"value"`
			} `json:"error"`
		} `json:"blocks"`
		HTML string `json:"html"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Blocks, 4)

	assert.Contains(t, res.Blocks[0].HTML, "Hello")
	assert.Nil(t, res.Blocks[0].Error)

	require.NotNil(t, res.Blocks[1].Error)
	assert.True(t, res.Blocks[1].Failed)
	assert.Equal(t, "invalid_enum_value", res.Blocks[1].Error.Kind)
	assert.Equal(t, "style", res.Blocks[1].Error.Field)
	assert.Equal(t, "danger", res.Blocks[1].Error.Value)

	require.NotNil(t, res.Blocks[2].Error)
	assert.Equal(t, "malformed_block", res.Blocks[2].Error.Kind)
	assert.Equal(t, "shared.table", res.Blocks[2].Kind)

	assert.True(t, res.Blocks[3].Placeholder)
	assert.False(t, res.Blocks[3].Failed)
	assert.Equal(t, "unknown_block_type", res.Blocks[3].Error.Kind)

	assert.Contains(t, res.HTML, "block-error")
}

func TestPreviewRejectsBadPayload(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusBadRequest, post(r, `{"blocks":`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(r, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, `{"blocks":{"a":1}}`).Code)
}
