package errors

import "errors"

// IsNotFound checks if an error indicates an entity absent at the queried block.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsGatewayError checks if an error is a transport-level gateway failure.
func IsGatewayError(err error) bool {
	if err == nil {
		return false
	}

	var gatewayErr *GatewayError
	return errors.As(err, &gatewayErr) || errors.Is(err, ErrGatewayUnavailable)
}

// IsRejected checks if an error is a synchronous submission rejection.
func IsRejected(err error) bool {
	if err == nil {
		return false
	}

	var rejectedErr *RejectedTransactionError
	return errors.As(err, &rejectedErr) || errors.Is(err, ErrRejected)
}

// IsTransactionFailed checks if an error is an asynchronous terminal
// rejection discovered by polling.
func IsTransactionFailed(err error) bool {
	if err == nil {
		return false
	}

	var failedErr *TransactionRejectedError
	return errors.As(err, &failedErr) || errors.Is(err, ErrTransactionFailed)
}

// IsProtocolViolation checks if an error is a protocol violation.
func IsProtocolViolation(err error) bool {
	if err == nil {
		return false
	}

	var violationErr *ProtocolViolationError
	return errors.As(err, &violationErr) || errors.Is(err, ErrProtocolViolation)
}

// IsInvalidInput checks if an error is a caller input error.
func IsInvalidInput(err error) bool {
	if err == nil {
		return false
	}

	var inputErr *InvalidInputError
	return errors.As(err, &inputErr) || errors.Is(err, ErrInvalidInput)
}

// IsRetryable reports whether the operation that produced err may be
// retried as-is. Only transport-level failures qualify; ledger-level
// rejections require a new transaction.
func IsRetryable(err error) bool {
	return IsGatewayError(err)
}

// CodeOf extracts the error code from a typed error, or CodeUnknown.
func CodeOf(err error) string {
	if err == nil {
		return CodeOK
	}

	var typed Error
	if errors.As(err, &typed) {
		return typed.Code()
	}
	return CodeUnknown
}
