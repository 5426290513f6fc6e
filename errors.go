package relink

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients in error payloads.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeSessionNotFound    = "SESSION_NOT_FOUND"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeClaimsMappingError = "CLAIMS_MAPPING_ERROR"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeInvalidParam       = "INVALID_PARAM"
	TextCodeIDConflict         = "ID_CONFLICT"
	TextCodeLastUser           = "LAST_USER"
	TextCodeCodeCollision      = "CODE_COLLISION"
)

// ErrIdentityNotFound is returned when a principal cannot be resolved
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound)

// ErrMismatchedHashAndPassword is the generic invalid-credentials error.
// Deliberately the same for unknown identifier and wrong password.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenExpired indicates the token's exp claim has passed
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed indicates a token that failed signature or structural checks
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnableToFindSession is the error when the request carries no token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound)

// ErrUnableToDecodeSession unable to decode the token into a session
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithTextCode(TextCodeClaimsMappingError)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrLastUser guards the invariant that at least one user always exists
var ErrLastUser = goerrors.New("cannot delete the last remaining user", goerrors.CategoryValidation).
	WithTextCode(TextCodeLastUser)

// ErrIDConflict is returned when a caller-supplied identifier is taken
var ErrIDConflict = goerrors.New("that ID is already in use", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeIDConflict)

// ErrCodeCollision is returned when a randomly generated short code already
// exists. Detected before commit; regeneration is caller policy, not ours.
var ErrCodeCollision = goerrors.New("generated short code collided with an existing one", goerrors.CategoryInternal).
	WithTextCode(TextCodeCodeCollision)

// InvalidParam builds the parameter-level error used by the pagination
// engine and the request payload validators.
func InvalidParam(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeInvalidParam)
}

// IsInvalidParam reports whether err is a parameter-level rejection.
func IsInvalidParam(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeInvalidParam
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
