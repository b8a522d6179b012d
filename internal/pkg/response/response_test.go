package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mx-space/blockpress/internal/strapi"
)

func TestUpstreamStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, UpstreamStatus(fmt.Errorf("article: %w", strapi.ErrNotFound)))
	assert.Equal(t, http.StatusNotFound, UpstreamStatus(&strapi.Error{StatusCode: 404}))
	assert.Equal(t, http.StatusBadRequest, UpstreamStatus(fmt.Errorf("%w: x", strapi.ErrInvalidSort)))
	assert.Equal(t, http.StatusBadGateway, UpstreamStatus(&strapi.Error{StatusCode: 500}))
	assert.Equal(t, http.StatusBadGateway, UpstreamStatus(errors.New("dial tcp: refused")))
}

func TestOKWrapsSlices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, []string{"a"})
	assert.JSONEq(t, `{"data":["a"]}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	OK(c, gin.H{"a": 1})
	assert.JSONEq(t, `{"a":1}`, w.Body.String())
}
