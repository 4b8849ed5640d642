package types

import (
	"encoding/json"
	"fmt"

	"github.com/calderalabs/starkgate/pkg/felt"
)

// TransactionType tags the wire representation of a transaction variant.
type TransactionType string

const (
	// TransactionDeploy registers a new contract instance on the ledger.
	TransactionDeploy TransactionType = "DEPLOY"

	// TransactionInvoke calls a state-changing entrypoint on a deployed
	// contract.
	TransactionInvoke TransactionType = "INVOKE_FUNCTION"
)

// Transaction is the sum type over the submittable variants. Exactly one
// variant is active per submission; the marker method keeps the set closed.
type Transaction interface {
	TransactionType() TransactionType
	isTransaction()
}

// DeployTransaction deploys a contract. The resulting address is a pure
// function of the contract class hash, the salt and the constructor
// calldata, so it can be predicted before submission.
type DeployTransaction struct {
	ContractDefinition  *CompiledContract
	ConstructorCalldata []felt.Felt
	ContractAddressSalt felt.Felt
}

// TransactionType implements Transaction.
func (DeployTransaction) TransactionType() TransactionType { return TransactionDeploy }

func (DeployTransaction) isTransaction() {}

// MarshalJSON encodes the deploy variant with its type tag. Calldata
// always encodes as an array, never as an omitted field.
func (tx DeployTransaction) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type                TransactionType   `json:"type"`
		ContractDefinition  *CompiledContract `json:"contract_definition"`
		ConstructorCalldata []felt.Felt       `json:"constructor_calldata"`
		ContractAddressSalt felt.Felt         `json:"contract_address_salt"`
	}
	w := wire{
		Type:                TransactionDeploy,
		ContractDefinition:  tx.ContractDefinition,
		ConstructorCalldata: tx.ConstructorCalldata,
		ContractAddressSalt: tx.ContractAddressSalt,
	}
	if w.ConstructorCalldata == nil {
		w.ConstructorCalldata = []felt.Felt{}
	}
	return json.Marshal(w)
}

// InvokeTransaction calls an external entrypoint on a deployed contract.
// The signature is optional; unsigned invokes are permitted only for
// non-authenticated entrypoints, which the ledger enforces.
type InvokeTransaction struct {
	ContractAddress    felt.Felt
	EntryPointSelector felt.Felt
	Calldata           []felt.Felt
	Signature          []felt.Felt
}

// TransactionType implements Transaction.
func (InvokeTransaction) TransactionType() TransactionType { return TransactionInvoke }

func (InvokeTransaction) isTransaction() {}

// MarshalJSON encodes the invoke variant with its type tag. Calldata and
// signature always encode as arrays, never as omitted fields.
func (tx InvokeTransaction) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type               TransactionType `json:"type"`
		ContractAddress    felt.Felt       `json:"contract_address"`
		EntryPointSelector felt.Felt       `json:"entry_point_selector"`
		Calldata           []felt.Felt     `json:"calldata"`
		Signature          []felt.Felt     `json:"signature"`
	}
	w := wire{
		Type:               TransactionInvoke,
		ContractAddress:    tx.ContractAddress,
		EntryPointSelector: tx.EntryPointSelector,
		Calldata:           tx.Calldata,
		Signature:          tx.Signature,
	}
	if w.Calldata == nil {
		w.Calldata = []felt.Felt{}
	}
	if w.Signature == nil {
		w.Signature = []felt.Felt{}
	}
	return json.Marshal(w)
}

// ParseTransaction decodes a submitted transaction by its type tag.
func ParseTransaction(data []byte) (Transaction, error) {
	var probe struct {
		Type TransactionType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	switch probe.Type {
	case TransactionDeploy:
		var wire struct {
			ContractDefinition  *CompiledContract `json:"contract_definition"`
			ConstructorCalldata []felt.Felt       `json:"constructor_calldata"`
			ContractAddressSalt felt.Felt         `json:"contract_address_salt"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode deploy transaction: %w", err)
		}
		return DeployTransaction{
			ContractDefinition:  wire.ContractDefinition,
			ConstructorCalldata: wire.ConstructorCalldata,
			ContractAddressSalt: wire.ContractAddressSalt,
		}, nil

	case TransactionInvoke:
		var wire struct {
			ContractAddress    felt.Felt   `json:"contract_address"`
			EntryPointSelector felt.Felt   `json:"entry_point_selector"`
			Calldata           []felt.Felt `json:"calldata"`
			Signature          []felt.Felt `json:"signature"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode invoke transaction: %w", err)
		}
		return InvokeTransaction{
			ContractAddress:    wire.ContractAddress,
			EntryPointSelector: wire.EntryPointSelector,
			Calldata:           wire.Calldata,
			Signature:          wire.Signature,
		}, nil
	}

	return nil, fmt.Errorf("unknown transaction type %q", probe.Type)
}

// CompiledContract is an immutable compiled contract bundle: the program
// plus its ABI. The client passes it through to the gateway unmodified;
// unknown structure is preserved as raw JSON.
type CompiledContract struct {
	Program           json.RawMessage `json:"program"`
	EntryPointsByType json.RawMessage `json:"entry_points_by_type,omitempty"`
	ABI               json.RawMessage `json:"abi,omitempty"`
}

// ParseCompiledContract decodes a serialized contract definition.
func ParseCompiledContract(data []byte) (*CompiledContract, error) {
	var c CompiledContract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode contract definition: %w", err)
	}
	if len(c.Program) == 0 {
		return nil, fmt.Errorf("contract definition missing program")
	}
	return &c, nil
}

// Marshal returns the canonical serialization used for class hashing.
func (c *CompiledContract) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// ClassHash computes the hash identifying this contract class.
func (c *CompiledContract) ClassHash() (felt.Felt, error) {
	data, err := c.Marshal()
	if err != nil {
		return felt.Felt{}, fmt.Errorf("failed to serialize contract definition: %w", err)
	}
	return felt.HashBytes(data), nil
}
