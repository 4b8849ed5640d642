package errors

// Error codes for categorizing errors across the gateway protocol.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeUnknown indicates an unknown error occurred.
	CodeUnknown = "UNKNOWN"

	// CodeInvalidInput indicates the caller supplied an invalid argument
	// (malformed field element, empty URL, mixed transaction variants).
	CodeInvalidInput = "INVALID_INPUT"

	// CodeGatewayError indicates a transport or HTTP level failure while
	// talking to the feeder gateway or gateway. Retryable.
	CodeGatewayError = "GATEWAY_ERROR"

	// CodeNotFound indicates the queried entity is absent at the given
	// block. Not retryable at that block.
	CodeNotFound = "NOT_FOUND"

	// CodeTransactionRejected indicates the gateway rejected a submission
	// synchronously (malformed signature, already deployed address,
	// insufficient balance). Resubmission requires a new transaction.
	CodeTransactionRejected = "TRANSACTION_REJECTED"

	// CodeTransactionFailed indicates the ledger rejected the transaction
	// asynchronously, discovered via status polling.
	CodeTransactionFailed = "TRANSACTION_FAILED"

	// CodeProtocolViolation indicates a status regression or malformed
	// response sequence. Always fatal, never retried.
	CodeProtocolViolation = "PROTOCOL_VIOLATION"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a caller-side error.
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryLedger indicates the ledger refused or failed the operation.
	CategoryLedger ErrorCategory = "LEDGER_ERROR"

	// CategoryTransport indicates a network-level error.
	CategoryTransport ErrorCategory = "TRANSPORT_ERROR"

	// CategoryProtocol indicates the remote violated the protocol contract.
	CategoryProtocol ErrorCategory = "PROTOCOL_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeInvalidInput, CodeNotFound, CodeConfigError:
		return CategoryClient

	case CodeTransactionRejected, CodeTransactionFailed:
		return CategoryLedger

	case CodeGatewayError:
		return CategoryTransport

	default:
		return CategoryProtocol
	}
}

// IsRetryableCode returns true if an error with the given code may be
// retried without constructing a new transaction.
func IsRetryableCode(code string) bool {
	return code == CodeGatewayError
}
