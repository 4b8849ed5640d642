package types

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []TransactionStatus{
		StatusNotReceived, StatusReceived, StatusPending, StatusRejected, StatusAcceptedOnchain,
	} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if TransactionStatus("ACCEPTED_ON_L1").Valid() {
		t.Error("unknown status must not validate")
	}
	if TransactionStatus("pending").Valid() {
		t.Error("statuses are case-sensitive")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   TransactionStatus
		terminal bool
	}{
		{StatusNotReceived, false},
		{StatusReceived, false},
		{StatusPending, false},
		{StatusRejected, true},
		{StatusAcceptedOnchain, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestStatusRegressedFrom(t *testing.T) {
	tests := []struct {
		name       string
		prev, next TransactionStatus
		regressed  bool
	}{
		{"forward one step", StatusReceived, StatusPending, false},
		{"forward skip", StatusNotReceived, StatusAcceptedOnchain, false},
		{"same status repeated", StatusPending, StatusPending, false},
		{"terminal repeated", StatusAcceptedOnchain, StatusAcceptedOnchain, false},
		{"rejection from received", StatusReceived, StatusRejected, false},
		{"rejection from pending", StatusPending, StatusRejected, false},
		{"accepted then pending", StatusAcceptedOnchain, StatusPending, true},
		{"accepted then rejected", StatusAcceptedOnchain, StatusRejected, true},
		{"rejected then accepted", StatusRejected, StatusAcceptedOnchain, true},
		{"rejected then pending", StatusRejected, StatusPending, true},
		{"pending back to received", StatusPending, StatusReceived, true},
		{"received back to not received", StatusReceived, StatusNotReceived, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.next.RegressedFrom(tt.prev); got != tt.regressed {
				t.Errorf("%s.RegressedFrom(%s) = %v, want %v", tt.next, tt.prev, got, tt.regressed)
			}
		})
	}
}

func TestParseTransactionStatus(t *testing.T) {
	s, err := ParseTransactionStatus("ACCEPTED_ONCHAIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StatusAcceptedOnchain {
		t.Errorf("got %s", s)
	}

	if _, err := ParseTransactionStatus("SETTLED"); err == nil {
		t.Error("expected error for unknown status")
	}
}
