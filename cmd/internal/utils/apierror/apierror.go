package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to routes: an HTTP status and
// a message that is safe to show to the user.
type ErrorResponse interface {
	error
	Code() int
}

type simpleError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *simpleError) Error() string { return e.Message }
func (e *simpleError) Code() int     { return e.Status }

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{Status: code, Message: message}
}

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError       = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "Malformed request")

	// Authentication. The credentials message is the same whether or not
	// the username exists.
	InvalidCredentialsError = NewSimple(http.StatusUnauthorized, "Invalid username or password")
	UserDisabledError       = NewSimple(http.StatusUnauthorized, "User is disabled")
	InvalidSessionError     = NewSimple(http.StatusUnauthorized, "Session is invalid or expired")

	// Authorization
	ForbiddenError = NewSimple(http.StatusForbidden, "Unauthorized access")

	// Validation
	UserAlreadyExistsError = NewSimple(http.StatusConflict, "User already exists")
	ProtectedUserError     = NewSimple(http.StatusBadRequest, "The default administrator cannot be deleted, renamed, demoted or disabled")
	WrongPasswordError     = NewSimple(http.StatusBadRequest, "Current password is incorrect")
	PasswordMismatchError  = NewSimple(http.StatusBadRequest, "New password and confirmation do not match")
	InvalidDateError       = NewSimple(http.StatusBadRequest, "Invalid date")

	// Appointments belong to regular users only.
	UserOwnsAppointmentsError = NewSimple(http.StatusBadRequest, "A user with appointments cannot be made an administrator")
)

// FromValidationError turns validator errors into a single user-facing
// message. Date format failures map to InvalidDateError.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MalformedBodyError
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "datetimelocal", "isodate":
			return InvalidDateError
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return NewSimple(http.StatusBadRequest, strings.Join(msgs, "; "))
}
