package feeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// FeederClient defines the read surface of the feeder gateway.
type FeederClient interface {
	GetContractAddresses(ctx context.Context) (*types.ContractAddresses, error)
	CallContract(ctx context.Context, call types.FunctionCall, blockID types.BlockIdentifier) ([]felt.Felt, error)
	GetBlock(ctx context.Context, blockID types.BlockIdentifier) (*types.Block, error)
	GetCode(ctx context.Context, contractAddress felt.Felt, blockID types.BlockIdentifier) (*types.Code, error)
	GetStorageAt(ctx context.Context, contractAddress, key felt.Felt, blockID types.BlockIdentifier) (felt.Felt, error)
	GetTransactionStatus(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error)
	GetTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionInfo, error)
}

// Client talks to the feeder gateway HTTP API. All operations are
// read-only; none commit anything to the ledger.
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

// New creates a feeder gateway client bound to the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apperrors.NewInvalidInputError("feeder_gateway_url", "feeder gateway URL cannot be empty", baseURL)
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

// gatewayErrorBody is the error envelope both endpoints use.
type gatewayErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notFoundCode reports whether a gateway error code means "entity absent
// at this block" rather than a server failure.
func notFoundCode(code string) bool {
	switch {
	case strings.Contains(code, "NOT_FOUND"),
		strings.Contains(code, "UNINITIALIZED_CONTRACT"),
		strings.Contains(code, "OUT_OF_RANGE_BLOCK"):
		return true
	}
	return false
}

// do performs one HTTP exchange and decodes the response into out.
// entity/key name what a 404 refers to.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, entity, key string) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.ComponentDebug(logging.ComponentFeeder, "feeder request",
		zap.String("method", method),
		zap.String("url", reqURL),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.NewGatewayError(fmt.Sprintf("%s request failed", path), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)

		var gwErr gatewayErrorBody
		_ = json.Unmarshal(raw, &gwErr)

		if resp.StatusCode == http.StatusNotFound || notFoundCode(gwErr.Code) {
			return apperrors.NewNotFoundError(entity, key)
		}
		return apperrors.NewGatewayError(
			fmt.Sprintf("%s failed", path), resp.StatusCode, nil,
		).WithBody(string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewGatewayError(fmt.Sprintf("failed to decode %s response", path), resp.StatusCode, err)
	}
	return nil
}

// blockQuery encodes an optional block identifier. A nil identifier omits
// the parameter so the server answers for the latest/pending block.
func blockQuery(blockID types.BlockIdentifier) url.Values {
	query := url.Values{}
	if blockID != nil {
		query.Set("blockNumber", strconv.FormatUint(*blockID, 10))
	}
	return query
}

// GetContractAddresses returns the ledger-wide well-known contract addresses.
func (c *Client) GetContractAddresses(ctx context.Context) (*types.ContractAddresses, error) {
	var out types.ContractAddresses
	if err := c.do(ctx, http.MethodGet, "/get_contract_addresses", nil, nil, &out, "contract addresses", ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallContract executes a read-only contract call and returns its return
// values. No state mutation, no fee, no ledger commitment.
func (c *Client) CallContract(ctx context.Context, call types.FunctionCall, blockID types.BlockIdentifier) ([]felt.Felt, error) {
	var out types.CallContractResponse
	err := c.do(ctx, http.MethodPost, "/call_contract", blockQuery(blockID), call, &out,
		"contract", call.ContractAddress.Hex())
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// GetBlock returns the block header and transaction list for the given or
// latest block.
func (c *Client) GetBlock(ctx context.Context, blockID types.BlockIdentifier) (*types.Block, error) {
	key := "latest"
	if blockID != nil {
		key = strconv.FormatUint(*blockID, 10)
	}

	var out types.Block
	if err := c.do(ctx, http.MethodGet, "/get_block", blockQuery(blockID), nil, &out, "block", key); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCode returns the bytecode and ABI of the contract as of the given block.
func (c *Client) GetCode(ctx context.Context, contractAddress felt.Felt, blockID types.BlockIdentifier) (*types.Code, error) {
	query := blockQuery(blockID)
	query.Set("contractAddress", contractAddress.Hex())

	var out types.Code
	if err := c.do(ctx, http.MethodGet, "/get_code", query, nil, &out, "contract", contractAddress.Hex()); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStorageAt returns the raw storage value at the given key. The value
// is opaque; no type information exists beyond the field element itself.
func (c *Client) GetStorageAt(ctx context.Context, contractAddress, key felt.Felt, blockID types.BlockIdentifier) (felt.Felt, error) {
	query := blockQuery(blockID)
	query.Set("contractAddress", contractAddress.Hex())
	query.Set("key", key.Big().String())

	var out felt.Felt
	err := c.do(ctx, http.MethodGet, "/get_storage_at", query, nil, &out,
		"storage slot", fmt.Sprintf("%s@%s", key.Hex(), contractAddress.Hex()))
	if err != nil {
		return felt.Felt{}, err
	}
	return out, nil
}

// GetTransactionStatus returns the current status of a transaction and,
// once it lands, the enclosing block hash.
func (c *Client) GetTransactionStatus(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error) {
	query := url.Values{}
	query.Set("transactionHash", txHash.Hex())

	var out types.TransactionStatusResponse
	if err := c.do(ctx, http.MethodGet, "/get_transaction_status", query, nil, &out, "transaction", txHash.Hex()); err != nil {
		return nil, err
	}
	if !out.TxStatus.Valid() {
		return nil, apperrors.NewProtocolViolationError(
			fmt.Sprintf("unknown transaction status %q for %s", out.TxStatus, txHash.Hex()))
	}
	return &out, nil
}

// GetTransaction returns the full transaction record. Fields populate
// progressively as the transaction moves through its lifecycle.
func (c *Client) GetTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionInfo, error) {
	query := url.Values{}
	query.Set("transactionHash", txHash.Hex())

	var out types.TransactionInfo
	if err := c.do(ctx, http.MethodGet, "/get_transaction", query, nil, &out, "transaction", txHash.Hex()); err != nil {
		return nil, err
	}
	if !out.Status.Valid() {
		return nil, apperrors.NewProtocolViolationError(
			fmt.Sprintf("unknown transaction status %q for %s", out.Status, txHash.Hex()))
	}
	return &out, nil
}
