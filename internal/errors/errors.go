/*
Copyright 2026 The Beam Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package errors classifies failures crossing a component boundary so the
// reconciler can decide whether to retry, give up, or surface a permanent
// failure without inspecting error strings.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorType classifies an AppError for both HTTP-style status mapping and
// reconciler retry decisions.
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeAuth              ErrorType = "auth"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeRateLimit         ErrorType = "rate_limit"
	ErrorTypeNetwork           ErrorType = "network"
	ErrorTypeTransientUpstream ErrorType = "transient_upstream"
	ErrorTypeRetryExhaustion   ErrorType = "retry_exhaustion"
	ErrorTypeInternal          ErrorType = "internal"
)

var statusCodes = map[ErrorType]int{
	ErrorTypeValidation:        http.StatusBadRequest,
	ErrorTypeAuth:              http.StatusUnauthorized,
	ErrorTypeNotFound:          http.StatusNotFound,
	ErrorTypeConflict:          http.StatusConflict,
	ErrorTypeTimeout:           http.StatusRequestTimeout,
	ErrorTypeRateLimit:         http.StatusTooManyRequests,
	ErrorTypeNetwork:           http.StatusInternalServerError,
	ErrorTypeTransientUpstream: http.StatusInternalServerError,
	ErrorTypeRetryExhaustion:   http.StatusInternalServerError,
	ErrorTypeInternal:          http.StatusInternalServerError,
}

// AppError is a classified, optionally-wrapped error.
type AppError struct {
	Type       ErrorType
	Message    string
	Details    string
	StatusCode int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with no underlying cause.
func New(t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: statusCodes[t],
	}
}

// Newf creates an AppError with a formatted message.
func Newf(t ErrorType, format string, args ...any) *AppError {
	return New(t, fmt.Sprintf(format, args...))
}

// Wrap creates an AppError carrying cause as its Cause.
func Wrap(cause error, t ErrorType, message string) *AppError {
	err := New(t, message)
	err.Cause = cause
	return err
}

// Wrapf creates an AppError carrying cause, with a formatted message.
func Wrapf(cause error, t ErrorType, format string, args ...any) *AppError {
	return Wrap(cause, t, fmt.Sprintf(format, args...))
}

// WithDetails sets Details in place and returns the same error for chaining.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithDetailsf sets a formatted Details in place.
func (e *AppError) WithDetailsf(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// NewValidationError is a predefined constructor for ErrorTypeValidation.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

// NewNotFoundError formats "<resource> not found".
func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, resource+" not found")
}

// NewTransientError wraps cause as a retryable upstream failure.
func NewTransientError(operation string, cause error) *AppError {
	return Wrapf(cause, ErrorTypeTransientUpstream, "%s failed", operation)
}

// NewRetryExhaustionError reports that a handler exceeded its retry budget.
func NewRetryExhaustionError(handler string, attempts int) *AppError {
	return Newf(ErrorTypeRetryExhaustion, "%s exceeded maximum retries (%d attempts)", handler, attempts)
}

// IsType reports whether err is an *AppError of type t.
func IsType(err error, t ErrorType) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Type == t
}

// IsRetryable reports whether an AppError's type represents a condition the
// reconciler should requeue rather than surface as a permanent failure.
func IsRetryable(err error) bool {
	ae, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch ae.Type {
	case ErrorTypeNetwork, ErrorTypeTransientUpstream, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNotFound:
		return true
	default:
		return false
	}
}

// Outcome is what a decision function returns instead of raising and
// catching an exception around a retry: a plain discriminated result the
// reconciler's outermost Reconcile method maps onto a ctrl.Result.
// Requeue/RequeueAfter with a nil Err is a handled, retryable condition;
// a retryable Err carries both the error and the requeue; a non-retryable
// Err is a permanent failure with no requeue.
type Outcome struct {
	Requeue      bool
	RequeueAfter time.Duration
	Err          error
}

// Ok is the outcome of a successful, terminal handler step: no requeue, no
// error.
func Ok() Outcome {
	return Outcome{}
}

// RequeueAfter asks the reconciler to requeue this resource after d without
// recording a permanent error.
func RequeueAfter(d time.Duration) Outcome {
	return Outcome{Requeue: true, RequeueAfter: d}
}

// Fail records a failed reconcile. If err is retryable per IsRetryable,
// the outcome also requeues after d; a non-retryable err is surfaced
// without a requeue request; further retries won't help until the user
// edits the resource.
func Fail(err error, d time.Duration) Outcome {
	if IsRetryable(err) {
		return Outcome{Requeue: true, RequeueAfter: d, Err: err}
	}
	return Outcome{Err: err}
}
