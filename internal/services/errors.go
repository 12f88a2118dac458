package services

import (
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

// ValidationErrors is the field level rejection list returned by every write
type ValidationErrors = validator.ValidationErrors

// NotFoundError reports a referenced record that does not exist
type NotFoundError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// UnauthorizedError is a rejection by the authorization guard or a failed credential check
type UnauthorizedError struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func NewUnauthorizedError(action, message string) *UnauthorizedError {
	return &UnauthorizedError{Action: action, Message: message}
}

// ConflictError is a uniqueness violation on a name, slug, email or review pair
type ConflictError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(resource, field, message string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Message: message}
}

// Not found
var (
	ErrUserNotFound       = NewNotFoundError("user", "No user found for your request.")
	ErrDisciplineNotFound = NewNotFoundError("discipline", "No discipline found for your request.")
	ErrCourseNotFound     = NewNotFoundError("course", "No course found for your request.")
	ErrReviewNotFound     = NewNotFoundError("review", "No review found for your request.")
	ErrEmailNotRegistered = NewNotFoundError("user", "There is no user with that email.")
)

// Unauthorized
var (
	ErrInvalidCredentials = NewUnauthorizedError("login", "Invalid credentials.")
	ErrInvalidResetToken  = NewUnauthorizedError("reset_password", "Invalid request.")
	ErrAdminRequired      = NewUnauthorizedError("admin", "You must be an admin to do this.")
	ErrNotReviewOwner     = NewUnauthorizedError("review", "You're not authorized to perform this action.")
	ErrNotProfileOwner    = NewUnauthorizedError("profile", "Not authorized to delete this profile.")
	ErrNotAuthenticated   = NewUnauthorizedError("authenticate", "Authentication invalid.")
)

// Conflicts
var (
	ErrEmailInUse          = NewConflictError("user", "email", "Email address is already in use.")
	ErrDisciplineNameInUse = NewConflictError("discipline", "name", "The name for that discipline is already in use.")
	ErrCourseNameInUse     = NewConflictError("course", "name", "The name for that course is already in use.")
	ErrDuplicateReview     = NewConflictError("review", "course", "You can only add one review per user.")
)

func fieldError(field, message, rule string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Rule: rule}}
}
