package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/calderalabs/starkgate/pkg/config"
	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/types"
)

// pollResult scripts one answer from the fake status endpoint.
type pollResult struct {
	status *types.TransactionStatusResponse
	err    error
}

// fakeFeeder serves scripted status answers per transaction hash. The
// last script entry repeats once the script runs out.
type fakeFeeder struct {
	mu      sync.Mutex
	scripts map[string][]pollResult
	polls   map[string]int
}

func newFakeFeeder() *fakeFeeder {
	return &fakeFeeder{
		scripts: make(map[string][]pollResult),
		polls:   make(map[string]int),
	}
}

func (f *fakeFeeder) script(txHash felt.Felt, results ...pollResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[txHash.Hex()] = results
}

func (f *fakeFeeder) pollCount(txHash felt.Felt) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[txHash.Hex()]
}

func (f *fakeFeeder) GetTransactionStatus(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := txHash.Hex()
	script := f.scripts[key]
	if len(script) == 0 {
		return nil, apperrors.NewNotFoundError("transaction", key)
	}

	i := f.polls[key]
	f.polls[key]++
	if i >= len(script) {
		i = len(script) - 1
	}
	r := script[i]
	return r.status, r.err
}

func (f *fakeFeeder) GetContractAddresses(ctx context.Context) (*types.ContractAddresses, error) {
	return nil, errors.New("not scripted")
}
func (f *fakeFeeder) CallContract(ctx context.Context, call types.FunctionCall, blockID types.BlockIdentifier) ([]felt.Felt, error) {
	return nil, errors.New("not scripted")
}
func (f *fakeFeeder) GetBlock(ctx context.Context, blockID types.BlockIdentifier) (*types.Block, error) {
	return nil, errors.New("not scripted")
}
func (f *fakeFeeder) GetCode(ctx context.Context, contractAddress felt.Felt, blockID types.BlockIdentifier) (*types.Code, error) {
	return nil, errors.New("not scripted")
}
func (f *fakeFeeder) GetStorageAt(ctx context.Context, contractAddress, key felt.Felt, blockID types.BlockIdentifier) (felt.Felt, error) {
	return felt.Felt{}, errors.New("not scripted")
}
func (f *fakeFeeder) GetTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionInfo, error) {
	return nil, errors.New("not scripted")
}

// fakeGateway hands out sequential transaction hashes.
type fakeGateway struct {
	mu   sync.Mutex
	next uint64
}

func (g *fakeGateway) AddTransaction(ctx context.Context, tx types.Transaction) (*types.AddTransactionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return &types.AddTransactionResponse{
		Code:            "TRANSACTION_RECEIVED",
		TransactionHash: felt.New(g.next),
	}, nil
}

func (g *fakeGateway) Deploy(ctx context.Context, contract *types.CompiledContract, salt *felt.Felt, constructorCalldata []felt.Felt) (*types.AddTransactionResponse, error) {
	return g.AddTransaction(ctx, nil)
}

func (g *fakeGateway) Invoke(ctx context.Context, contractAddress, entryPointSelector felt.Felt, calldata, signature []felt.Felt) (*types.AddTransactionResponse, error) {
	return g.AddTransaction(ctx, nil)
}

func statusOf(s types.TransactionStatus) pollResult {
	return pollResult{status: &types.TransactionStatusResponse{TxStatus: s}}
}

func newTestProvider(t *testing.T, ff *fakeFeeder) *SequencerProvider {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = "http://localhost:5050"

	p, err := New(cfg,
		WithClients(ff, &fakeGateway{}),
		WithRetryInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestWaitForTransactionConfirms(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(1)
	blockHash := felt.MustFromString("0x7d328a71faf48c5c3857e99f20a77b18522480956d1cd5bff1ff2df3c8b427b")
	ff.script(tx,
		statusOf(types.StatusReceived),
		statusOf(types.StatusPending),
		pollResult{status: &types.TransactionStatusResponse{
			TxStatus:  types.StatusAcceptedOnchain,
			BlockHash: &blockHash,
		}},
	)

	p := newTestProvider(t, ff)
	status, err := p.WaitForTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.TxStatus != types.StatusAcceptedOnchain {
		t.Errorf("status = %s", status.TxStatus)
	}
	if status.BlockHash == nil || !status.BlockHash.Equal(blockHash) {
		t.Error("block hash dropped")
	}
	if got := ff.pollCount(tx); got != 3 {
		t.Errorf("poll count = %d, want 3", got)
	}
}

func TestWaitForTransactionNotReceivedFirst(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(2)
	ff.script(tx,
		statusOf(types.StatusNotReceived),
		statusOf(types.StatusReceived),
		statusOf(types.StatusAcceptedOnchain),
	)

	p := newTestProvider(t, ff)
	if _, err := p.WaitForTransaction(context.Background(), tx); err != nil {
		t.Fatalf("NOT_RECEIVED before RECEIVED must not fail the wait: %v", err)
	}
}

func TestWaitForTransactionRejected(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(3)
	ff.script(tx,
		statusOf(types.StatusReceived),
		pollResult{status: &types.TransactionStatusResponse{
			TxStatus: types.StatusRejected,
			TxFailureReason: &types.FailureReason{
				Code:         "TRANSACTION_FAILED",
				ErrorMessage: "assert failed in constructor",
			},
		}},
	)

	p := newTestProvider(t, ff)
	_, err := p.WaitForTransaction(context.Background(), tx)
	if !apperrors.IsTransactionFailed(err) {
		t.Fatalf("expected TransactionRejectedError, got %v", err)
	}

	var rejected *apperrors.TransactionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatal("error does not unwrap to TransactionRejectedError")
	}
	if rejected.Reason != "assert failed in constructor" {
		t.Errorf("reason = %q", rejected.Reason)
	}
}

func TestWaitForTransactionRegression(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(4)
	ff.script(tx,
		statusOf(types.StatusPending),
		statusOf(types.StatusReceived),
	)

	p := newTestProvider(t, ff)
	_, err := p.WaitForTransaction(context.Background(), tx)
	if !apperrors.IsProtocolViolation(err) {
		t.Fatalf("expected ProtocolViolation, got %v", err)
	}
	if got := ff.pollCount(tx); got != 2 {
		t.Errorf("polling must stop at the regression, saw %d polls", got)
	}
}

func TestWaitForTransactionTransportRecovery(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(5)
	ff.script(tx,
		statusOf(types.StatusReceived),
		pollResult{err: apperrors.NewGatewayError("status poll failed", 0, errors.New("connection refused"))},
		pollResult{err: apperrors.NewGatewayError("status poll failed", 502, nil)},
		statusOf(types.StatusAcceptedOnchain),
	)

	p := newTestProvider(t, ff)
	status, err := p.WaitForTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("transient transport failures must not abort the wait: %v", err)
	}
	if status.TxStatus != types.StatusAcceptedOnchain {
		t.Errorf("status = %s", status.TxStatus)
	}
}

func TestWaitForTransactionFatalError(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(6)
	ff.script(tx,
		pollResult{err: apperrors.NewProtocolViolationError("unknown transaction status \"SETTLED\"")},
	)

	p := newTestProvider(t, ff)
	_, err := p.WaitForTransaction(context.Background(), tx)
	if !apperrors.IsProtocolViolation(err) {
		t.Fatalf("expected ProtocolViolation to pass through, got %v", err)
	}
	if got := ff.pollCount(tx); got != 1 {
		t.Errorf("fatal errors must not be retried, saw %d polls", got)
	}
}

func TestWaitForTransactionCancellation(t *testing.T) {
	ff := newFakeFeeder()
	tx := felt.New(7)
	ff.script(tx, statusOf(types.StatusReceived))

	p := newTestProvider(t, ff)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.WaitForTransaction(ctx, tx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestWaitForTransactionConcurrent(t *testing.T) {
	ff := newFakeFeeder()
	accepted := felt.New(10)
	rejected := felt.New(11)
	ff.script(accepted,
		statusOf(types.StatusReceived),
		statusOf(types.StatusAcceptedOnchain),
	)
	ff.script(rejected,
		statusOf(types.StatusReceived),
		pollResult{status: &types.TransactionStatusResponse{TxStatus: types.StatusRejected}},
	)

	p := newTestProvider(t, ff)

	var wg sync.WaitGroup
	var acceptedErr, rejectedErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, acceptedErr = p.WaitForTransaction(context.Background(), accepted)
	}()
	go func() {
		defer wg.Done()
		_, rejectedErr = p.WaitForTransaction(context.Background(), rejected)
	}()
	wg.Wait()

	if acceptedErr != nil {
		t.Errorf("accepted wait failed: %v", acceptedErr)
	}
	if !apperrors.IsTransactionFailed(rejectedErr) {
		t.Errorf("rejected wait returned %v", rejectedErr)
	}
}

func TestBackoff(t *testing.T) {
	p := &SequencerProvider{retryInterval: time.Second}

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second},
		{10, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := p.backoff(tt.failures); got != tt.want {
			t.Errorf("backoff(%d) = %s, want %s", tt.failures, got, tt.want)
		}
	}
}

func TestInvokeAndWait(t *testing.T) {
	ff := newFakeFeeder()
	ff.script(felt.New(1),
		statusOf(types.StatusReceived),
		statusOf(types.StatusAcceptedOnchain),
	)

	p := newTestProvider(t, ff)
	resp, err := p.InvokeAndWait(context.Background(), felt.New(100), felt.SelectorFromName("transfer"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TransactionHash.Hex() != "0x1" {
		t.Errorf("tx hash = %s", resp.TransactionHash)
	}
}
