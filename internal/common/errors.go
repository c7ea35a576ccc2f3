package common

import (
	"errors"
	"net/http"
)

// Error taxonomy shared by services and the HTTP layer. Services wrap these
// with fmt.Errorf("...: %w", ErrX); handlers map them to status codes.
var (
	ErrValidation  = errors.New("validation error")
	ErrAuth        = errors.New("authentication error")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrNotFound    = errors.New("not found")
	ErrUpstream    = errors.New("upstream error")
	ErrRender      = errors.New("render error")
)

// HTTPStatus maps an error to the response status code
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
