package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestGatewayError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
		cause      error
		want       string
	}{
		{
			name:       "with status code",
			message:    "get_block failed",
			statusCode: 502,
			want:       "get_block failed (HTTP 502)",
		},
		{
			name:    "transport failure without status",
			message: "request failed",
			cause:   errors.New("connection refused"),
			want:    "request failed: connection refused",
		},
		{
			name: "default message",
			want: "gateway request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGatewayError(tt.message, tt.statusCode, tt.cause)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if err.Code() != CodeGatewayError {
				t.Errorf("Code() = %q, want %q", err.Code(), CodeGatewayError)
			}
			if !errors.Is(err, ErrGatewayUnavailable) {
				t.Error("expected errors.Is match against ErrGatewayUnavailable")
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Error("expected cause to unwrap")
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		key    string
		want   string
	}{
		{
			name:   "with key",
			entity: "block",
			key:    "12345",
			want:   "block '12345' not found",
		},
		{
			name:   "without key",
			entity: "contract",
			want:   "contract not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.key)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, ErrNotFound) {
				t.Error("expected errors.Is match against ErrNotFound")
			}
		})
	}
}

func TestRejectedTransactionError(t *testing.T) {
	err := NewRejectedTransactionError("invalid signature")
	if !strings.Contains(err.Error(), "invalid signature") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}
	if err.Code() != CodeTransactionRejected {
		t.Errorf("Code() = %q, want %q", err.Code(), CodeTransactionRejected)
	}
	if !errors.Is(err, ErrRejected) {
		t.Error("expected errors.Is match against ErrRejected")
	}
}

func TestTransactionRejectedError(t *testing.T) {
	err := NewTransactionRejectedError("0x42", "out of range balance")
	if err.TxHash != "0x42" {
		t.Errorf("TxHash = %q, want 0x42", err.TxHash)
	}
	if !strings.Contains(err.Error(), "out of range balance") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}
	if !errors.Is(err, ErrTransactionFailed) {
		t.Error("expected errors.Is match against ErrTransactionFailed")
	}
}

func TestProtocolViolationError(t *testing.T) {
	err := NewProtocolViolationError("status regressed from ACCEPTED_ONCHAIN to PENDING")
	if !strings.Contains(err.Error(), "regressed") {
		t.Errorf("expected detail in message, got %q", err.Error())
	}
	if !errors.Is(err, ErrProtocolViolation) {
		t.Error("expected errors.Is match against ErrProtocolViolation")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewGatewayError("status query failed", 0, cause)

	wrapped := fmt.Errorf("waiting for transaction: %w", err)

	var gatewayErr *GatewayError
	if !errors.As(wrapped, &gatewayErr) {
		t.Fatal("expected errors.As to find GatewayError through wrapping")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to survive double wrapping")
	}
}

func TestStackCapture(t *testing.T) {
	err := NewNotFoundError("transaction", "0x1")
	if len(err.Stack()) == 0 {
		t.Error("expected captured stack")
	}
	if err.StackTrace() == "" {
		t.Error("expected formatted stack trace")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NewNotFoundError("block", "9"), http.StatusNotFound},
		{"rejected", NewRejectedTransactionError("bad sig"), http.StatusBadRequest},
		{"gateway", NewGatewayError("boom", 502, nil), http.StatusBadGateway},
		{"violation", NewProtocolViolationError("x"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
