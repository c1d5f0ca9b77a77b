package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RetrievalErrorMessage describes retrieval-adapter failures.
	RetrievalErrorMessage = "research retrieval failed"
	// CompositionErrorMessage describes composer invocation failures.
	CompositionErrorMessage = "response composition failed"
	// EvaluationErrorMessage describes quality-evaluator failures.
	EvaluationErrorMessage = "helpfulness evaluation failed"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// ErrEmptyComplaint is the only failure surfaced to callers of the engine:
// a structurally invalid request. Every internal subsystem failure is
// absorbed and degrades the reply instead.
var ErrEmptyComplaint = New(nil, http.StatusBadRequest, "complaint is required")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapRetrieval marks an error as a recoverable retrieval-adapter failure.
func WrapRetrieval(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, RetrievalErrorMessage)
}

// WrapComposition marks an error as a recoverable composer failure.
func WrapComposition(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, CompositionErrorMessage)
}

// WrapEvaluation marks an error as a recoverable evaluator failure.
func WrapEvaluation(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, EvaluationErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
