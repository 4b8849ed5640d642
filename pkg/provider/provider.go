package provider

import (
	"context"
	"time"

	"github.com/calderalabs/starkgate/pkg/config"
	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/feeder"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/gateway"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// DefaultRetryInterval is the delay between confirmation polls when the
// caller does not configure one.
const DefaultRetryInterval = 5 * time.Second

// Provider is the single entrypoint applications use. It composes the
// feeder gateway reads, the gateway writes, and the confirmation engine.
type Provider interface {
	feeder.FeederClient
	gateway.GatewayClient

	// WaitForTransaction blocks until the transaction reaches a terminal
	// status or ctx is done.
	WaitForTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error)

	// DeployAndWait submits a deploy transaction and blocks until it
	// confirms.
	DeployAndWait(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error)

	// InvokeAndWait submits an invoke transaction and blocks until it
	// confirms.
	InvokeAndWait(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error)
}

// SequencerProvider implements Provider against a feeder/gateway endpoint
// pair. Safe for concurrent use; waits on distinct hashes are independent.
type SequencerProvider struct {
	feeder  feeder.FeederClient
	gateway gateway.GatewayClient

	retryInterval time.Duration
	logger        *logging.ColoredLogger
}

var _ Provider = (*SequencerProvider)(nil)

// ProviderOption customizes a SequencerProvider.
type ProviderOption func(*SequencerProvider)

// WithRetryInterval overrides the delay between confirmation polls.
func WithRetryInterval(d time.Duration) ProviderOption {
	return func(p *SequencerProvider) {
		if d > 0 {
			p.retryInterval = d
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *logging.ColoredLogger) ProviderOption {
	return func(p *SequencerProvider) { p.logger = logger }
}

// WithClients replaces both underlying clients. Used in tests and by
// callers that need custom transport settings per endpoint.
func WithClients(fc feeder.FeederClient, gc gateway.GatewayClient) ProviderOption {
	return func(p *SequencerProvider) {
		p.feeder = fc
		p.gateway = gc
	}
}

// New builds a provider from a configuration. The config is normalized
// and validated before the clients are constructed.
func New(cfg *config.Config, opts ...ProviderOption) (*SequencerProvider, error) {
	if cfg == nil {
		return nil, apperrors.NewInvalidInputError("config", "config cannot be nil", nil)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewNopLogger()

	feederClient, err := feeder.New(cfg.FeederGatewayURL,
		feeder.WithTimeout(cfg.Timeout),
		feeder.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	gatewayClient, err := gateway.New(cfg.GatewayURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	p := &SequencerProvider{
		feeder:        feederClient,
		gateway:       gatewayClient,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.retryInterval <= 0 {
		p.retryInterval = DefaultRetryInterval
	}
	return p, nil
}

// NewForBaseURL builds a provider from a single sequencer root URL.
func NewForBaseURL(baseURL string, opts ...ProviderOption) (*SequencerProvider, error) {
	cfg, err := config.ForBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Read operations delegate to the feeder gateway client.

func (p *SequencerProvider) GetContractAddresses(ctx context.Context) (*types.ContractAddresses, error) {
	return p.feeder.GetContractAddresses(ctx)
}

func (p *SequencerProvider) CallContract(ctx context.Context, call types.FunctionCall, blockID types.BlockIdentifier) ([]felt.Felt, error) {
	return p.feeder.CallContract(ctx, call, blockID)
}

func (p *SequencerProvider) GetBlock(ctx context.Context, blockID types.BlockIdentifier) (*types.Block, error) {
	return p.feeder.GetBlock(ctx, blockID)
}

func (p *SequencerProvider) GetCode(ctx context.Context, contractAddress felt.Felt, blockID types.BlockIdentifier) (*types.Code, error) {
	return p.feeder.GetCode(ctx, contractAddress, blockID)
}

func (p *SequencerProvider) GetStorageAt(ctx context.Context, contractAddress, key felt.Felt, blockID types.BlockIdentifier) (felt.Felt, error) {
	return p.feeder.GetStorageAt(ctx, contractAddress, key, blockID)
}

func (p *SequencerProvider) GetTransactionStatus(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error) {
	return p.feeder.GetTransactionStatus(ctx, txHash)
}

func (p *SequencerProvider) GetTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionInfo, error) {
	return p.feeder.GetTransaction(ctx, txHash)
}

// Write operations delegate to the gateway client.

func (p *SequencerProvider) AddTransaction(ctx context.Context, tx types.Transaction) (*types.AddTransactionResponse, error) {
	return p.gateway.AddTransaction(ctx, tx)
}

func (p *SequencerProvider) Deploy(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error) {
	return p.gateway.Deploy(ctx, contract, salt, constructorCalldata)
}

func (p *SequencerProvider) Invoke(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error) {
	return p.gateway.Invoke(ctx, contractAddress, entryPointSelector, calldata, signature)
}

// DeployAndWait submits a deploy transaction and blocks until it reaches
// a terminal status. The response carries the contract address.
func (p *SequencerProvider) DeployAndWait(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error) {
	resp, err := p.Deploy(ctx, contract, salt, constructorCalldata)
	if err != nil {
		return nil, err
	}
	if _, err := p.WaitForTransaction(ctx, resp.TransactionHash); err != nil {
		return nil, err
	}
	return resp, nil
}

// InvokeAndWait submits an invoke transaction and blocks until it reaches
// a terminal status.
func (p *SequencerProvider) InvokeAndWait(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error) {
	resp, err := p.Invoke(ctx, contractAddress, entryPointSelector, calldata, signature)
	if err != nil {
		return nil, err
	}
	if _, err := p.WaitForTransaction(ctx, resp.TransactionHash); err != nil {
		return nil, err
	}
	return resp, nil
}
