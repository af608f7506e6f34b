// Package apperr defines the error taxonomy shared by the ingestion and query paths.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and metrics
type Kind string

const (
	KindValidation Kind = "validation"
	KindProvider   Kind = "provider"
	KindNotFound   Kind = "not_found"
	KindStore      Kind = "store"
)

// Error is the concrete error type carried across package boundaries
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	StatusCode int // provider HTTP status, 0 when no response arrived
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.Op != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Op, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed caller input
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Provider reports a failed provider round trip. status is 0 when no response
// arrived; a 2xx status marks a body that could not be decoded or validated.
func Provider(op string, status int, err error) error {
	msg := "provider request failed"
	if status >= 300 {
		msg = fmt.Sprintf("provider returned status %d", status)
	}
	return &Error{Kind: KindProvider, Op: op, Message: msg, StatusCode: status, Err: err}
}

// NotFound reports an absent entity
func NotFound(entity string, key any) error {
	return &Error{Kind: KindNotFound, Op: entity, Message: fmt.Sprintf("%s %v not found", entity, key)}
}

// Store reports a persistence failure
func Store(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// KindOf returns the kind of err, or "unknown" when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return "unknown"
}

// StatusCode returns the provider status carried by err, if any
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func IsValidation(err error) bool { return is(err, KindValidation) }
func IsProvider(err error) bool   { return is(err, KindProvider) }
func IsNotFound(err error) bool   { return is(err, KindNotFound) }
func IsStore(err error) bool      { return is(err, KindStore) }

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
