package strapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotFound matches a 404 from Strapi and an empty result for a single-entity lookup.
	ErrNotFound = errors.New("strapi: not found")
	// ErrInvalidSort marks a sort expression that is not field[:asc|desc].
	ErrInvalidSort = errors.New("strapi: invalid sort")
)

// Error is the Strapi error envelope {"error": {status, name, message, details}}.
type Error struct {
	StatusCode int             `json:"status"`
	Name       string          `json:"name"`
	Message    string          `json:"message"`
	Details    json.RawMessage `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("strapi: %d %s: %s", e.StatusCode, e.Name, e.Message)
	case e.Message != "":
		return fmt.Sprintf("strapi: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("strapi: %d", e.StatusCode)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func parseError(res *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var envelope struct {
		Error *Error `json:"error"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &envelope)
	}

	errRes := envelope.Error
	if errRes == nil {
		errRes = &Error{Message: strings.TrimSpace(string(data))}
	}
	errRes.StatusCode = res.StatusCode
	if errRes.Message == "" {
		errRes.Message = http.StatusText(res.StatusCode)
	}
	return errRes
}
