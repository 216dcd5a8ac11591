package dataset

import (
	"errors"
	"fmt"
)

// RequestError covers everything a caller did wrong short of naming an
// absent dataset: malformed ids, undecodable archives, archives yielding no
// valid records, query grammar violations, duplicate ids. Unexpected
// internal failures (a durable write that did not stick, for example) are
// wrapped into this kind as well rather than propagated raw.
type RequestError struct {
	Message string
	Err     error // optional underlying cause
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a RequestError with the given message.
func NewRequestError(message string) *RequestError {
	return &RequestError{Message: message}
}

// WrapRequestError wraps an underlying error as a RequestError.
func WrapRequestError(message string, err error) *RequestError {
	return &RequestError{Message: message, Err: err}
}

// IsRequestError reports whether err is (or wraps) a RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// NotFoundError is returned when an operation names a dataset the catalog
// does not know, either in memory or on durable storage.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset %q not found", e.ID)
}

// NewNotFoundError creates a NotFoundError for the given dataset id.
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ResultTooLargeError signals a valid query whose final row count exceeds
// the executor's ceiling. It is deliberately distinct from RequestError:
// the query was well-formed, just unsatisfiable within the limit.
type ResultTooLargeError struct {
	Count int
	Limit int
}

// Error implements the error interface.
func (e *ResultTooLargeError) Error() string {
	return fmt.Sprintf("query produced %d results, exceeding the limit of %d", e.Count, e.Limit)
}

// NewResultTooLargeError creates a ResultTooLargeError.
func NewResultTooLargeError(count, limit int) *ResultTooLargeError {
	return &ResultTooLargeError{Count: count, Limit: limit}
}

// IsResultTooLarge reports whether err is (or wraps) a ResultTooLargeError.
func IsResultTooLarge(err error) bool {
	var rt *ResultTooLargeError
	return errors.As(err, &rt)
}
