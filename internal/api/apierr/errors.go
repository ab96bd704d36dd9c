package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/galapa/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodePlayerExists       = "PLAYER_EXISTS"
	CodePlayerLimitReached = "PLAYER_LIMIT_REACHED"
	CodeNotLoaded          = "NOT_LOADED"
	CodeFlowNotFound       = "FLOW_NOT_FOUND"
	CodeUnsupportedAction  = "UNSUPPORTED_ACTION"
	CodeNotStarted         = "NOT_STARTED"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Model errors carry their own detail, so the message is the error text
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrInvalidConfig):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidConfig, err.Error()}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerExists):
		return &httpError{http.StatusConflict, APIError{CodePlayerExists, "Player is already registered"}}
	case errors.Is(err, model.ErrPlayerLimitReached):
		return &httpError{http.StatusConflict, APIError{CodePlayerLimitReached, "The player list is full"}}
	case errors.Is(err, model.ErrNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeNotLoaded, "Player list has not been loaded"}}
	case errors.Is(err, model.ErrFlowNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFlowNotFound, "Login flow not found or expired"}}
	case errors.Is(err, model.ErrUnsupportedAction):
		return &httpError{http.StatusConflict, APIError{CodeUnsupportedAction, err.Error()}}
	case errors.Is(err, model.ErrNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeNotStarted, "Login flow has not started"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewUpstreamError reports that a remote service could not be reached
func NewUpstreamError(message string) error {
	return &httpError{http.StatusBadGateway, APIError{CodeUpstreamError, message}}
}
