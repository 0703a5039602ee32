package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist (or no longer exists).
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned for an unknown access code.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionOutOfRange indicates a selected option outside the question's options.
	ErrOptionOutOfRange = errors.New("selected option out of range")
	// ErrSessionCompleted is returned when a finished session is mutated in strict mode.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrDuplicateAccessCode is returned by a store when the access code is already taken.
	ErrDuplicateAccessCode = errors.New("access code already in use")
)

// ErrInvalidMarks is the message shown when any question's marks are unacceptable.
const ErrInvalidMarks = "Marks must be whole numbers between 1 and 10"

// ValidationError reports quiz content that was rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
