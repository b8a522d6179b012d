package response

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/strapi"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"current_page"`
	TotalPage   int  `json:"total_page"`
	Size        int  `json:"size"`
	HasNextPage bool `json:"has_next_page"`
}

type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 response. Slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil && reflect.ValueOf(data).Kind() == reflect.Slice {
		c.JSON(http.StatusOK, gin.H{"data": data})
		return
	}
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: pagination})
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}

func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "Unauthorized")
}

func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "Not Found")
}

func NotFoundMsg(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, message)
}

func UnprocessableEntity(c *gin.Context, message string) {
	abort(c, http.StatusUnprocessableEntity, message)
}

func InternalError(c *gin.Context, err error) {
	abort(c, http.StatusInternalServerError, err.Error())
}

// Upstream maps a Strapi failure: not found stays 404, a rejected sort is the caller's
// fault, anything else is a bad gateway.
func Upstream(c *gin.Context, err error) {
	status := UpstreamStatus(err)
	if status == http.StatusNotFound {
		NotFound(c)
		return
	}
	abort(c, status, err.Error())
}

// UpstreamStatus is the status Upstream would send for err.
func UpstreamStatus(err error) int {
	switch {
	case errors.Is(err, strapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, strapi.ErrInvalidSort):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
