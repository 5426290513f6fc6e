package relink

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Wire error codes. Clients switch on these, so they are part of the
// API contract and never change with internal error refactors.
const (
	APICodeObjectNotFound      = "ObjectNotFound"
	APICodeMethodNotFound      = "MethodNotFound"
	APICodeInternalError       = "InternalError"
	APICodeInvalidParam        = "InvalidParam"
	APICodeIDConflict          = "IdConflict"
	APICodeNotImplemented      = "NotImplemented"
	APICodeAuthorizationFailed = "AuthorizationFailed"
)

// APIError is the error payload inside an error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for every failed API call.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

func apiError(ctx router.Context, status int, code, message string) error {
	return ctx.JSON(status, ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	})
}

// RespondNotFound is the JSON 404 for unknown objects.
func RespondNotFound(ctx router.Context) error {
	return apiError(ctx, http.StatusNotFound, APICodeObjectNotFound, "Object not found")
}

// RespondMethodNotFound handles requests to unknown API paths.
func RespondMethodNotFound(ctx router.Context) error {
	return apiError(ctx, http.StatusNotFound, APICodeMethodNotFound, "Method not found")
}

// RespondError translates an internal error into the wire contract.
// Auth failures stay deliberately vague; diagnostics go to the log.
func RespondError(ctx router.Context, logger Logger, err error) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	logger.Debug(
		"API error response",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return apiError(ctx, http.StatusUnauthorized, APICodeAuthorizationFailed, "Failed to authorize you")
	case errors.CategoryBadInput, errors.CategoryValidation:
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, richErr.Message)
	case errors.CategoryNotFound:
		return RespondNotFound(ctx)
	case errors.CategoryConflict:
		return apiError(ctx, http.StatusConflict, APICodeIDConflict, "That ID is already in use")
	default:
		logger.Error(
			"internal error serving API request",
			"error", richErr.Message,
			"category", richErr.Category,
		)
		return apiError(ctx, http.StatusInternalServerError, APICodeInternalError, "The application encountered an internal error")
	}
}

// BearerFromHeader pulls the raw token out of the Authorization header,
// tolerating both "Bearer <token>" and a bare token the way the first
// API clients sent it.
func BearerFromHeader(ctx router.Context, scheme string) string {
	raw := ctx.GetString(router.HeaderAuthorization, "")
	if raw == "" {
		return ""
	}

	if scheme == "" {
		scheme = "Bearer"
	}

	prefix := scheme + " "
	if len(raw) > len(prefix) && raw[:len(prefix)] == prefix {
		return raw[len(prefix):]
	}

	return raw
}
