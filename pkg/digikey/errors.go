package digikey

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

const unfixableMsg = "Manual OAuth reset is required."

// ErrNotFound is returned when DigiKey answers 404 for a barcode or part.
var ErrNotFound = errors.New("digikey: item not found")

// APIError covers transport failures, non-2xx responses, malformed JSON and
// responses missing required fields.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// AuthError reports an OAuth failure. Most of them need a manual reset of
// the stored token record.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func notFoundError(path string) error {
	return pkgerrors.Wrapf(pkgerrors.CodeNotFound, ErrNotFound, "digikey: %s not found", path)
}

func apiError(status int, cause error, message string) error {
	apiErr := &APIError{Status: status, Message: message}
	if cause != nil {
		apiErr.Message = fmt.Sprintf("%s: %v", message, cause)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, message)
}

func authError(format string, args ...any) error {
	authErr := &AuthError{Message: fmt.Sprintf(format, args...)}
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, authErr, authErr.Message)
}

// IsAuthError reports whether err came from OAuth handling.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsAPIError reports whether err is a generic vendor API failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
