package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error response body in the gateway's wire
// format: {"code": "...", "message": "..."}.
type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for an error.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var typed Error
	if errors.As(err, &typed) {
		return codeToHTTPStatus(typed.Code())
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRejected):
		return http.StatusBadRequest
	case errors.Is(err, ErrGatewayUnavailable):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// codeToHTTPStatus maps error codes to HTTP status codes.
func codeToHTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeTransactionRejected:
		return http.StatusBadRequest
	case CodeGatewayError:
		return http.StatusBadGateway
	case CodeConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError converts an error to an HTTPError suitable for serialization.
func ToHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}

	return &HTTPError{
		Status:  StatusCode(err),
		Code:    CodeOf(err),
		Message: err.Error(),
	}
}

// WriteHTTPError writes an error as a JSON response in the gateway wire
// format.
func WriteHTTPError(w http.ResponseWriter, err error) {
	httpErr := ToHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}
