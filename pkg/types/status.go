package types

import "fmt"

// TransactionStatus is the lifecycle state the ledger attaches to a
// transaction hash. Wire values are case-sensitive.
type TransactionStatus string

const (
	// StatusNotReceived means the gateway has not yet seen the transaction.
	StatusNotReceived TransactionStatus = "NOT_RECEIVED"

	// StatusReceived means the gateway accepted the transaction into its queue.
	StatusReceived TransactionStatus = "RECEIVED"

	// StatusPending means the transaction entered a block awaiting acceptance.
	StatusPending TransactionStatus = "PENDING"

	// StatusRejected means the ledger rejected the transaction. Terminal.
	StatusRejected TransactionStatus = "REJECTED"

	// StatusAcceptedOnchain means the transaction was accepted into the
	// chain. Terminal.
	StatusAcceptedOnchain TransactionStatus = "ACCEPTED_ONCHAIN"
)

// acceptanceRank orders the accepting chain of the state machine:
// NOT_RECEIVED -> RECEIVED -> PENDING -> ACCEPTED_ONCHAIN.
// REJECTED sits outside the chain as a parallel terminal.
var acceptanceRank = map[TransactionStatus]int{
	StatusNotReceived:     0,
	StatusReceived:        1,
	StatusPending:         2,
	StatusAcceptedOnchain: 3,
}

// Valid reports whether s is one of the five protocol statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusNotReceived, StatusReceived, StatusPending, StatusRejected, StatusAcceptedOnchain:
		return true
	}
	return false
}

// IsTerminal reports whether polling may stop at this status.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusAcceptedOnchain || s == StatusRejected
}

// RegressedFrom reports whether observing s after prev violates the status
// state machine for a single transaction hash. Statuses only move forward
// along the accepting chain; terminal states never change. Entering
// REJECTED from a non-terminal state is a legal transition, not a
// regression.
func (s TransactionStatus) RegressedFrom(prev TransactionStatus) bool {
	if prev == s {
		return false
	}
	if prev.IsTerminal() {
		return true
	}
	if s == StatusRejected {
		return false
	}

	prevRank, okPrev := acceptanceRank[prev]
	curRank, okCur := acceptanceRank[s]
	if !okPrev || !okCur {
		return false
	}
	return curRank < prevRank
}

// String implements fmt.Stringer.
func (s TransactionStatus) String() string {
	return string(s)
}

// ParseTransactionStatus validates a wire status string.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	status := TransactionStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown transaction status %q", s)
	}
	return status, nil
}
