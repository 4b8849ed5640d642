package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// GatewayClient defines the write surface of the sequencer gateway.
type GatewayClient interface {
	AddTransaction(ctx context.Context, tx types.Transaction) (*types.AddTransactionResponse, error)
	Deploy(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error)
	Invoke(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error)
}

// Client submits transactions to the gateway HTTP API. Submission only
// hands the transaction to the sequencer; confirmation is observed
// separately through the feeder gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.ColoredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the default logger.
func WithLogger(logger *logging.ColoredLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a gateway client bound to the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apperrors.NewInvalidInputError("gateway_url", "gateway URL cannot be empty", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// rejectionBody is the error envelope the gateway returns when it refuses
// a submission outright.
type rejectionBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AddTransaction submits a signed transaction envelope. A 2xx response
// means the sequencer accepted the submission for processing, nothing
// more; the transaction can still be rejected asynchronously.
func (c *Client) AddTransaction(ctx context.Context, tx types.Transaction) (*types.AddTransactionResponse, error) {
	if tx == nil {
		return nil, apperrors.NewInvalidInputError("transaction", "transaction cannot be nil", nil)
	}

	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add_transaction", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create add_transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.ComponentDebug(logging.ComponentGateway, "submitting transaction",
		zap.String("type", string(tx.TransactionType())),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewGatewayError("add_transaction request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)

		var rejection rejectionBody
		_ = json.Unmarshal(raw, &rejection)

		if resp.StatusCode == http.StatusBadRequest {
			reason := rejection.Message
			if reason == "" {
				reason = strings.TrimSpace(string(raw))
			}
			return nil, apperrors.NewRejectedTransactionError(reason)
		}
		return nil, apperrors.NewGatewayError("add_transaction failed", resp.StatusCode, nil).WithBody(string(raw))
	}

	var out types.AddTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewGatewayError("failed to decode add_transaction response", resp.StatusCode, err)
	}
	if out.TransactionHash.IsZero() {
		return nil, apperrors.NewProtocolViolationError("gateway accepted transaction but returned no transaction hash")
	}

	c.logger.ComponentInfo(logging.ComponentGateway, "transaction submitted",
		zap.String("tx_hash", out.TransactionHash.Hex()),
		zap.String("code", out.Code),
	)
	return &out, nil
}

// Deploy builds and submits a deploy transaction. When salt is nil a
// random one is drawn, so repeated deployments of the same contract land
// at distinct addresses. The returned response carries the address the
// contract will settle at, which is fully determined by the class hash,
// salt and constructor calldata.
func (c *Client) Deploy(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error) {
	if contract == nil {
		return nil, apperrors.NewInvalidInputError("contract", "contract definition cannot be nil", nil)
	}

	var txSalt felt.Felt
	if salt != nil {
		txSalt = *salt
	} else {
		var err error
		txSalt, err = felt.Random()
		if err != nil {
			return nil, fmt.Errorf("failed to generate contract address salt: %w", err)
		}
	}
	if constructorCalldata == nil {
		constructorCalldata = []felt.Felt{}
	}

	tx := &types.DeployTransaction{
		ContractDefinition:  contract,
		ContractAddressSalt: txSalt,
		ConstructorCalldata: constructorCalldata,
	}

	resp, err := c.AddTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	if resp.Address == nil {
		predicted, err := PredictContractAddress(contract, txSalt, constructorCalldata)
		if err != nil {
			return nil, err
		}
		resp.Address = &predicted
	}
	return resp, nil
}

// Invoke builds and submits an invoke transaction against a deployed
// contract. Nil calldata and signature are normalized to empty slices so
// they encode as [] on the wire.
func (c *Client) Invoke(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error) {
	if contractAddress.IsZero() {
		return nil, apperrors.NewInvalidInputError("contract_address", "contract address cannot be zero", contractAddress.Hex())
	}

	if calldata == nil {
		calldata = []felt.Felt{}
	}
	if signature == nil {
		signature = []felt.Felt{}
	}

	tx := &types.InvokeTransaction{
		ContractAddress:    contractAddress,
		EntryPointSelector: entryPointSelector,
		Calldata:           calldata,
		Signature:          signature,
	}
	return c.AddTransaction(ctx, tx)
}

// PredictContractAddress computes the address a deploy transaction will
// settle at, before it is submitted or confirmed.
func PredictContractAddress(contract *types.CompiledContract, salt felt.Felt, constructorCalldata []felt.Felt) (felt.Felt, error) {
	classHash, err := contract.ClassHash()
	if err != nil {
		return felt.Felt{}, err
	}
	return felt.ComputeContractAddress(classHash, salt, constructorCalldata), nil
}
