package types

import (
	"encoding/json"

	"github.com/calderalabs/starkgate/pkg/felt"
)

// BlockIdentifier selects the block a read query runs against. A nil
// pointer means the latest/pending block per ledger convention.
type BlockIdentifier = *uint64

// AtBlock returns a BlockIdentifier for an explicit block number.
func AtBlock(n uint64) BlockIdentifier {
	return &n
}

// BlockStatus describes where a block sits in the acceptance pipeline.
type BlockStatus string

const (
	BlockPending         BlockStatus = "PENDING"
	BlockAcceptedOnchain BlockStatus = "ACCEPTED_ONCHAIN"
)

// Block is the feeder gateway's block record: header plus the full
// transaction list and receipts.
type Block struct {
	BlockHash           felt.Felt            `json:"block_hash"`
	ParentBlockHash     felt.Felt            `json:"parent_block_hash"`
	BlockNumber         uint64               `json:"block_number"`
	StateRoot           felt.Felt            `json:"state_root"`
	Status              BlockStatus          `json:"status"`
	Timestamp           uint64               `json:"timestamp"`
	Transactions        []BlockTransaction   `json:"transactions"`
	TransactionReceipts []TransactionReceipt `json:"transaction_receipts"`
}

// BlockTransaction is a transaction as it appears inside a block: the
// variant fields flattened behind a type tag, plus the assigned hash.
type BlockTransaction struct {
	Type                TransactionType `json:"type"`
	TransactionHash     felt.Felt       `json:"transaction_hash"`
	ContractAddress     felt.Felt       `json:"contract_address"`
	ContractAddressSalt *felt.Felt      `json:"contract_address_salt,omitempty"`
	ConstructorCalldata []felt.Felt     `json:"constructor_calldata,omitempty"`
	EntryPointSelector  *felt.Felt      `json:"entry_point_selector,omitempty"`
	Calldata            []felt.Felt     `json:"calldata,omitempty"`
	Signature           []felt.Felt     `json:"signature,omitempty"`
}

// TransactionReceipt records where a transaction landed.
type TransactionReceipt struct {
	BlockHash        felt.Felt         `json:"block_hash"`
	BlockNumber      uint64            `json:"block_number"`
	Status           TransactionStatus `json:"status"`
	TransactionHash  felt.Felt         `json:"transaction_hash"`
	TransactionIndex uint64            `json:"transaction_index"`
}

// Code is a contract's bytecode and ABI as of a block.
type Code struct {
	Bytecode []felt.Felt     `json:"bytecode"`
	ABI      json.RawMessage `json:"abi,omitempty"`
}

// ContractAddresses lists the ledger-wide well-known contract addresses.
type ContractAddresses struct {
	Starknet             felt.Felt `json:"Starknet"`
	GpsStatementVerifier felt.Felt `json:"GpsStatementVerifier"`
}

// FunctionCall is a read-only contract call request. It executes without
// state mutation, fee or ledger commitment.
type FunctionCall struct {
	ContractAddress    felt.Felt
	EntryPointSelector felt.Felt
	Calldata           []felt.Felt
	Signature          []felt.Felt
}

// MarshalJSON encodes the call with calldata and signature always present
// as arrays.
func (c FunctionCall) MarshalJSON() ([]byte, error) {
	type wire struct {
		ContractAddress    felt.Felt   `json:"contract_address"`
		EntryPointSelector felt.Felt   `json:"entry_point_selector"`
		Calldata           []felt.Felt `json:"calldata"`
		Signature          []felt.Felt `json:"signature"`
	}
	w := wire{
		ContractAddress:    c.ContractAddress,
		EntryPointSelector: c.EntryPointSelector,
		Calldata:           c.Calldata,
		Signature:          c.Signature,
	}
	if w.Calldata == nil {
		w.Calldata = []felt.Felt{}
	}
	if w.Signature == nil {
		w.Signature = []felt.Felt{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a call request.
func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var wire struct {
		ContractAddress    felt.Felt   `json:"contract_address"`
		EntryPointSelector felt.Felt   `json:"entry_point_selector"`
		Calldata           []felt.Felt `json:"calldata"`
		Signature          []felt.Felt `json:"signature"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.ContractAddress = wire.ContractAddress
	c.EntryPointSelector = wire.EntryPointSelector
	c.Calldata = wire.Calldata
	c.Signature = wire.Signature
	return nil
}

// CallContractResponse carries the return values of a read-only call.
type CallContractResponse struct {
	Result []felt.Felt `json:"result"`
}

// AddTransactionResponse acknowledges a submission. Address is present
// only for deploy transactions.
type AddTransactionResponse struct {
	Code            string     `json:"code"`
	TransactionHash felt.Felt  `json:"transaction_hash"`
	Address         *felt.Felt `json:"address,omitempty"`
}

// FailureReason carries the ledger's explanation for a rejection.
type FailureReason struct {
	Code         string `json:"code"`
	ErrorMessage string `json:"error_message"`
}

// TransactionStatusResponse is the get_transaction_status record: the
// current status plus, once the transaction lands, the enclosing block.
type TransactionStatusResponse struct {
	TxStatus        TransactionStatus `json:"tx_status"`
	BlockHash       *felt.Felt        `json:"block_hash,omitempty"`
	TxFailureReason *FailureReason    `json:"tx_failure_reason,omitempty"`
}

// TransactionInfo is the full get_transaction record. Fields populate
// progressively as the transaction moves through its lifecycle.
type TransactionInfo struct {
	Status                   TransactionStatus `json:"status"`
	Transaction              *BlockTransaction `json:"transaction,omitempty"`
	BlockHash                *felt.Felt        `json:"block_hash,omitempty"`
	BlockNumber              *uint64           `json:"block_number,omitempty"`
	TransactionIndex         *uint64           `json:"transaction_index,omitempty"`
	TransactionFailureReason *FailureReason    `json:"transaction_failure_reason,omitempty"`
}
