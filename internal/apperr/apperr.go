// Package apperr defines the failure kinds the generation pipeline can report.
//
// Every error carries a user-visible message and unwraps to both its kind
// sentinel and the underlying cause, so callers branch with errors.Is.
package apperr

import "errors"

// Kind sentinels.
var (
	ErrValidation          = errors.New("validation error")
	ErrUpstreamProvider    = errors.New("upstream provider error")
	ErrUpstreamFormat      = errors.New("upstream format error")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Named format failures.
var (
	ErrNoImageGenerated           = &Error{Kind: ErrUpstreamFormat, Message: "No image generated"}
	ErrMalformedSuggestionPayload = &Error{Kind: ErrUpstreamFormat, Message: "Failed to parse shot suggestions from AI response"}
)

// Error is a classified pipeline failure.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// Error returns the message shown to API callers.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Is matches named errors by kind and message so that wrapped copies of
// ErrNoImageGenerated still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap attaches a cause to a named error.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: ErrUpstreamProvider, Message: message, Err: err}
}

func Format(message string, err error) *Error {
	return &Error{Kind: ErrUpstreamFormat, Message: message, Err: err}
}

func Unsupported(message string) *Error {
	return &Error{Kind: ErrUnsupportedProvider, Message: message}
}

// Message returns the user-visible text for err, falling back when err carries
// no message of its own.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
