// Package apperrors defines error types and classification for conversation
// processing.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for boundary handling.
type Kind string

const (
	KindValidation Kind = "validation" // out-of-policy user input, reply and move on
	KindProcessing Kind = "processing" // valid input failed during a transform we own
	KindExternal   Kind = "external"   // downstream collaborator failed
	KindTransition Kind = "transition" // illegal state-machine transition, internal fault
)

// ValidationError reports malformed or out-of-policy user input. It always
// carries a message safe to echo back to the user and never advances state.
type ValidationError struct {
	UserMessage string
	Cause       error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation: %s: %v", e.UserMessage, e.Cause)
	}
	return fmt.Sprintf("validation: %s", e.UserMessage)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidation creates a validation error with a user-facing message.
func NewValidation(userMessage string) *ValidationError {
	return &ValidationError{UserMessage: userMessage}
}

// NewValidationCause creates a validation error wrapping an underlying cause.
func NewValidationCause(userMessage string, cause error) *ValidationError {
	return &ValidationError{UserMessage: userMessage, Cause: cause}
}

// ProcessingError reports that a valid input failed inside a transform the
// system owns (resize, upload). The user sees a generic message; the cause is
// for operators.
type ProcessingError struct {
	Op    string
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Op, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// NewProcessing creates a processing error for the named operation.
func NewProcessing(op string, cause error) *ProcessingError {
	return &ProcessingError{Op: op, Cause: cause}
}

// ExternalServiceError reports a failed call to a downstream collaborator,
// tagged with which service failed.
type ExternalServiceError struct {
	Service string
	Op      string
	Cause   error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %s: %v", e.Service, e.Op, e.Cause)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// NewExternal creates an external-service error.
func NewExternal(service, op string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Op: op, Cause: cause}
}

// TransitionError reports an illegal state-machine transition. It indicates a
// broken internal invariant, not a user mistake, and must never be surfaced
// verbatim to the user.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// NewTransition creates a transition error.
func NewTransition(from, to string) *TransitionError {
	return &TransitionError{From: from, To: to}
}

// KindOf classifies err into a Kind, or "" when it matches none.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return KindProcessing
	}
	var ee *ExternalServiceError
	if errors.As(err, &ee) {
		return KindExternal
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return KindTransition
	}
	return ""
}

// AsValidation returns the ValidationError inside err, or nil.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
