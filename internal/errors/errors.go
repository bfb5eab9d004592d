package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrItemNotFound is returned when an item is not found.
	ErrItemNotFound = errors.New("item not found")
	// ErrTransactionNotFound is returned when a transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrVerificationInFlight is returned when the user already has a pending verification.
	ErrVerificationInFlight = errors.New("you already have a pending verification request")
	// ErrQuotaExceeded is returned when the monthly listing limit is reached.
	ErrQuotaExceeded = errors.New("you have reached the monthly limit of item listings")
	// ErrItemNotAvailable is returned when the item can no longer be requested.
	ErrItemNotAvailable = errors.New("this item is no longer available")
	// ErrAlreadyRequested is returned when the receiver already has an open request for the item.
	ErrAlreadyRequested = errors.New("you have already requested this item")
	// ErrCannotRequestOwnItem is returned when a donor requests their own item.
	ErrCannotRequestOwnItem = errors.New("you cannot request your own item")
	// ErrForbidden is returned when the actor is not permitted to act.
	ErrForbidden = errors.New("forbidden")
	// ErrVerificationRequired is returned when an unverified user attempts a gated action.
	ErrVerificationRequired = errors.New("your account must be verified to perform this action")
	// ErrNotificationNotFound is returned when a notification does not exist or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")
)

// InvalidTransitionError is returned when a state machine action is not
// allowed from the transaction's current status. It carries the current
// state and the attempted action for diagnostics.
type InvalidTransitionError struct {
	Status string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a transaction in status %q", e.Action, e.Status)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CurrentStatus string `json:"current_status,omitempty"`
	Action        string `json:"action,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Transition *InvalidTransitionError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	resp := ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
	if e.Transition != nil {
		resp.CurrentStatus = e.Transition.Status
		resp.Action = e.Transition.Action
	}
	return resp
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var transition *InvalidTransitionError
	if errors.As(err, &transition) {
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, transition.Error(), "INVALID_TRANSITION")
		httpErr.Transition = transition
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrItemNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ITEM_NOT_FOUND")
	case errors.Is(err, ErrTransactionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TRANSACTION_NOT_FOUND")
	case errors.Is(err, ErrNotificationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTIFICATION_NOT_FOUND")
	case errors.Is(err, ErrVerificationInFlight):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "VERIFICATION_IN_FLIGHT")
	case errors.Is(err, ErrQuotaExceeded):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "QUOTA_EXCEEDED")
	case errors.Is(err, ErrItemNotAvailable):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "ITEM_NOT_AVAILABLE")
	case errors.Is(err, ErrAlreadyRequested):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "ALREADY_REQUESTED")
	case errors.Is(err, ErrCannotRequestOwnItem):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "CANNOT_REQUEST_OWN_ITEM")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrVerificationRequired):
		return NewHTTPError(http.StatusForbidden, err.Error(), "VERIFICATION_REQUIRED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
