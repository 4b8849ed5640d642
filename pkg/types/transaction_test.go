package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/calderalabs/starkgate/pkg/felt"
)

func TestInvokeTransactionMarshal(t *testing.T) {
	tx := InvokeTransaction{
		ContractAddress:    felt.MustFromString("0x1"),
		EntryPointSelector: felt.MustFromString("0x2"),
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"type":"INVOKE_FUNCTION"`) {
		t.Errorf("missing type tag: %s", body)
	}
	// Empty calldata and signature must encode as arrays, not be omitted.
	if !strings.Contains(body, `"calldata":[]`) {
		t.Errorf("calldata must encode as empty array: %s", body)
	}
	if !strings.Contains(body, `"signature":[]`) {
		t.Errorf("signature must encode as empty array: %s", body)
	}
}

func TestDeployTransactionMarshal(t *testing.T) {
	contract := &CompiledContract{Program: json.RawMessage(`{"data":[]}`)}
	tx := DeployTransaction{
		ContractDefinition:  contract,
		ContractAddressSalt: felt.MustFromString("0x2a"),
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"type":"DEPLOY"`) {
		t.Errorf("missing type tag: %s", body)
	}
	if !strings.Contains(body, `"constructor_calldata":[]`) {
		t.Errorf("constructor calldata must encode as empty array: %s", body)
	}
	if !strings.Contains(body, `"contract_address_salt":"0x2a"`) {
		t.Errorf("missing salt: %s", body)
	}
}

func TestParseTransactionRoundTrip(t *testing.T) {
	t.Run("invoke", func(t *testing.T) {
		original := InvokeTransaction{
			ContractAddress:    felt.MustFromString("0x1"),
			EntryPointSelector: felt.MustFromString("0x2"),
			Calldata:           []felt.Felt{felt.MustFromString("0x5")},
			Signature:          []felt.Felt{felt.New(7), felt.New(9)},
		}
		data, _ := json.Marshal(original)

		parsed, err := ParseTransaction(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		invoke, ok := parsed.(InvokeTransaction)
		if !ok {
			t.Fatalf("expected InvokeTransaction, got %T", parsed)
		}
		if !invoke.ContractAddress.Equal(original.ContractAddress) {
			t.Error("contract address mismatch")
		}
		if len(invoke.Calldata) != 1 || !invoke.Calldata[0].Equal(original.Calldata[0]) {
			t.Error("calldata mismatch")
		}
		if len(invoke.Signature) != 2 {
			t.Error("signature mismatch")
		}
	})

	t.Run("deploy", func(t *testing.T) {
		original := DeployTransaction{
			ContractDefinition:  &CompiledContract{Program: json.RawMessage(`{"data":["0x1"]}`)},
			ConstructorCalldata: []felt.Felt{felt.New(11)},
			ContractAddressSalt: felt.New(42),
		}
		data, _ := json.Marshal(original)

		parsed, err := ParseTransaction(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		deploy, ok := parsed.(DeployTransaction)
		if !ok {
			t.Fatalf("expected DeployTransaction, got %T", parsed)
		}
		if !deploy.ContractAddressSalt.Equal(original.ContractAddressSalt) {
			t.Error("salt mismatch")
		}
		if deploy.ContractDefinition == nil {
			t.Fatal("contract definition dropped")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := ParseTransaction([]byte(`{"type":"DECLARE"}`)); err == nil {
			t.Error("expected error for unknown variant")
		}
	})
}

func TestCompiledContract(t *testing.T) {
	raw := []byte(`{"program":{"data":["0x1"]},"abi":[{"name":"ctor","type":"constructor"}],"vendor_field":1}`)

	c, err := ParseCompiledContract(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.ABI) == 0 {
		t.Error("abi dropped")
	}

	h1, err := c.ClassHash()
	if err != nil {
		t.Fatalf("class hash: %v", err)
	}
	h2, _ := c.ClassHash()
	if !h1.Equal(h2) {
		t.Error("class hash must be deterministic")
	}

	if _, err := ParseCompiledContract([]byte(`{"abi":[]}`)); err == nil {
		t.Error("expected error for missing program")
	}
}

func TestFunctionCallMarshal(t *testing.T) {
	call := FunctionCall{
		ContractAddress:    felt.MustFromString("0xdead"),
		EntryPointSelector: felt.SelectorFromName("get_balance"),
	}
	data, err := json.Marshal(call)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"calldata":[]`) {
		t.Errorf("calldata must encode as empty array: %s", data)
	}
}

func TestTransactionStatusResponseDecode(t *testing.T) {
	raw := []byte(`{"tx_status":"REJECTED","tx_failure_reason":{"code":"TRANSACTION_FAILED","error_message":"assert failed"}}`)

	var resp TransactionStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TxStatus != StatusRejected {
		t.Errorf("status = %s", resp.TxStatus)
	}
	if resp.TxFailureReason == nil || resp.TxFailureReason.ErrorMessage != "assert failed" {
		t.Error("failure reason dropped")
	}
	if resp.BlockHash != nil {
		t.Error("block hash should be nil when absent")
	}
}
