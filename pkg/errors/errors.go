package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when an entity is absent at the queried block.
	ErrNotFound = errors.New("not found")

	// ErrRejected is returned when the gateway rejects a submission synchronously.
	ErrRejected = errors.New("transaction rejected by gateway")

	// ErrTransactionFailed is returned when a transaction reaches the
	// REJECTED terminal status on chain.
	ErrTransactionFailed = errors.New("transaction failed on chain")

	// ErrProtocolViolation is returned on a status regression or a
	// malformed response sequence.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrGatewayUnavailable is returned on transport-level failures.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrInvalidInput is returned when caller input is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the base interface for all typed errors in the client.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// GatewayError represents a transport or HTTP level failure against one of
// the two endpoints. These are the only errors the confirmation engine
// retries internally.
type GatewayError struct {
	*BaseError
	StatusCode int
	Body       string
}

// NewGatewayError creates a new gateway error.
func NewGatewayError(message string, statusCode int, cause error) *GatewayError {
	if message == "" {
		message = "gateway request failed"
	}
	return &GatewayError{
		BaseError: &BaseError{
			code:    CodeGatewayError,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		StatusCode: statusCode,
	}
}

// WithBody attaches the raw response body for diagnostics.
func (e *GatewayError) WithBody(body string) *GatewayError {
	e.Body = body
	return e
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.BaseError.Error(), e.StatusCode)
	}
	return e.BaseError.Error()
}

// Is reports whether this error matches ErrGatewayUnavailable.
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

// NotFoundError represents an entity absent at the queried block.
type NotFoundError struct {
	*BaseError
	Entity string
	Key    string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", entity),
			stack:   captureStack(1),
		},
		Entity: entity,
		Key:    key,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s '%s' not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is reports whether this error matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RejectedTransactionError represents a synchronous rejection reported by
// the gateway at submission time. Distinct from the asynchronous REJECTED
// terminal status discovered by polling.
type RejectedTransactionError struct {
	*BaseError
	Reason string
}

// NewRejectedTransactionError creates a new rejected transaction error.
func NewRejectedTransactionError(reason string) *RejectedTransactionError {
	message := "transaction rejected by gateway"
	if reason != "" {
		message = fmt.Sprintf("transaction rejected by gateway: %s", reason)
	}
	return &RejectedTransactionError{
		BaseError: &BaseError{
			code:    CodeTransactionRejected,
			message: message,
			stack:   captureStack(1),
		},
		Reason: reason,
	}
}

// Is reports whether this error matches ErrRejected.
func (e *RejectedTransactionError) Is(target error) bool {
	return target == ErrRejected
}

// TransactionRejectedError represents an asynchronous terminal rejection
// discovered by status polling.
type TransactionRejectedError struct {
	*BaseError
	TxHash string
	Reason string
}

// NewTransactionRejectedError creates a new transaction rejected error.
func NewTransactionRejectedError(txHash, reason string) *TransactionRejectedError {
	message := fmt.Sprintf("transaction %s rejected on chain", txHash)
	if reason != "" {
		message = fmt.Sprintf("transaction %s rejected on chain: %s", txHash, reason)
	}
	return &TransactionRejectedError{
		BaseError: &BaseError{
			code:    CodeTransactionFailed,
			message: message,
			stack:   captureStack(1),
		},
		TxHash: txHash,
		Reason: reason,
	}
}

// Is reports whether this error matches ErrTransactionFailed.
func (e *TransactionRejectedError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// ProtocolViolationError represents a status regression or a malformed
// response sequence. Always fatal; the caller must not retry.
type ProtocolViolationError struct {
	*BaseError
	Detail string
}

// NewProtocolViolationError creates a new protocol violation error.
func NewProtocolViolationError(detail string) *ProtocolViolationError {
	message := "protocol violation"
	if detail != "" {
		message = fmt.Sprintf("protocol violation: %s", detail)
	}
	return &ProtocolViolationError{
		BaseError: &BaseError{
			code:    CodeProtocolViolation,
			message: message,
			stack:   captureStack(1),
		},
		Detail: detail,
	}
}

// Is reports whether this error matches ErrProtocolViolation.
func (e *ProtocolViolationError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// InvalidInputError represents invalid caller input.
type InvalidInputError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewInvalidInputError creates a new invalid input error.
func NewInvalidInputError(field, message string, value interface{}) *InvalidInputError {
	return &InvalidInputError{
		BaseError: &BaseError{
			code:    CodeInvalidInput,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("invalid input: %s", e.message)
}

// Is reports whether this error matches ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
