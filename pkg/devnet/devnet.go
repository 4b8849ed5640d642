package devnet

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// defaultScript is the status progression a submitted transaction walks
// through, one step per status poll.
var defaultScript = []types.TransactionStatus{
	types.StatusReceived,
	types.StatusPending,
	types.StatusAcceptedOnchain,
}

// txRecord tracks one submitted transaction and its scripted lifecycle.
type txRecord struct {
	hash     felt.Felt
	tx       types.Transaction
	address  felt.Felt
	script   []types.TransactionStatus
	polls    int
	block    *types.Block
	rejected *types.FailureReason
}

// status returns the record's current lifecycle status and advances the
// script by one step.
func (r *txRecord) status() types.TransactionStatus {
	i := r.polls
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	r.polls++
	return r.script[i]
}

// current returns the status without advancing the script.
func (r *txRecord) current() types.TransactionStatus {
	i := r.polls
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	if i < 0 {
		i = 0
	}
	return r.script[i]
}

// contractState is a deployed contract instance: its definition plus a
// flat storage mapping.
type contractState struct {
	definition *types.CompiledContract
	storage    map[string]felt.Felt
}

// Sequencer is an in-memory sequencer simulator. It serves both gateway
// surfaces over HTTP for local development and tests. State lives in
// process memory and resets on restart.
type Sequencer struct {
	mu sync.Mutex

	addresses types.ContractAddresses
	blocks    []*types.Block
	contracts map[string]*contractState
	txs       map[string]*txRecord
	seq       uint64

	logger *logging.ColoredLogger
}

// SequencerOption customizes a Sequencer.
type SequencerOption func(*Sequencer)

// WithLogger replaces the default logger.
func WithLogger(logger *logging.ColoredLogger) SequencerOption {
	return func(s *Sequencer) { s.logger = logger }
}

// NewSequencer creates an empty simulated sequencer with a genesis block.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		addresses: types.ContractAddresses{
			Starknet:             felt.MustFromString("0xde29d060d45901fb19ed6c6e959eb22d8626708e"),
			GpsStatementVerifier: felt.MustFromString("0xab43ba48c10edf4e673c399da35f6d57e99cbe5"),
		},
		contracts: make(map[string]*contractState),
		txs:       make(map[string]*txRecord),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	genesis := &types.Block{
		BlockHash:           s.nextHash("block"),
		StateRoot:           s.nextHash("state"),
		Status:              types.BlockAcceptedOnchain,
		Timestamp:           uint64(time.Now().Unix()),
		Transactions:        []types.BlockTransaction{},
		TransactionReceipts: []types.TransactionReceipt{},
	}
	s.blocks = append(s.blocks, genesis)
	return s
}

// nextHash derives a deterministic-per-instance hash from a label and a
// monotonically increasing counter.
func (s *Sequencer) nextHash(label string) felt.Felt {
	s.seq++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.seq)
	return felt.HashBytes(append([]byte(label), buf[:]...))
}

// ScriptFor overrides the status progression the next polls of txHash
// will observe. Used by tests to provoke rejections and regressions.
func (s *Sequencer) ScriptFor(txHash felt.Felt, statuses ...types.TransactionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.txs[txHash.Hex()]
	if !ok {
		return
	}
	rec.script = statuses
	rec.polls = 0
}

// RejectWith marks txHash to terminate as REJECTED with the given reason
// after its current non-terminal steps.
func (s *Sequencer) RejectWith(txHash felt.Felt, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.txs[txHash.Hex()]
	if !ok {
		return
	}
	rec.script = []types.TransactionStatus{types.StatusReceived, types.StatusRejected}
	rec.polls = 0
	rec.rejected = &types.FailureReason{Code: code, ErrorMessage: message}
}

// SetStorage writes a storage slot of a deployed contract directly.
func (s *Sequencer) SetStorage(contractAddress, key, value felt.Felt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.contracts[contractAddress.Hex()]
	if !ok {
		state = &contractState{storage: make(map[string]felt.Felt)}
		s.contracts[contractAddress.Hex()] = state
	}
	state.storage[key.Hex()] = value
}

// submit registers a transaction and returns its record.
func (s *Sequencer) submit(tx types.Transaction, payload []byte) (*txRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.seq)
	hash := felt.HashBytes(append(payload, buf[:]...))

	rec := &txRecord{
		hash:   hash,
		tx:     tx,
		script: append([]types.TransactionStatus(nil), defaultScript...),
	}

	switch v := tx.(type) {
	case types.DeployTransaction:
		classHash, err := v.ContractDefinition.ClassHash()
		if err != nil {
			return nil, fmt.Errorf("invalid contract definition: %w", err)
		}
		rec.address = felt.ComputeContractAddress(classHash, v.ContractAddressSalt, v.ConstructorCalldata)
		s.contracts[rec.address.Hex()] = &contractState{
			definition: v.ContractDefinition,
			storage:    make(map[string]felt.Felt),
		}
	case types.InvokeTransaction:
		rec.address = v.ContractAddress
	}

	s.txs[hash.Hex()] = rec
	return rec, nil
}

// lookup fetches a transaction record by hash.
func (s *Sequencer) lookup(txHash string) (*txRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[txHash]
	return rec, ok
}

// sealBlock appends a block containing the transaction once it reaches
// ACCEPTED_ONCHAIN, so get_block and get_transaction agree with the
// status endpoint.
func (s *Sequencer) sealBlock(rec *txRecord) *types.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.block != nil {
		return rec.block
	}

	parent := s.blocks[len(s.blocks)-1]
	blockTx := types.BlockTransaction{
		TransactionHash: rec.hash,
		ContractAddress: rec.address,
	}
	switch v := rec.tx.(type) {
	case types.DeployTransaction:
		blockTx.Type = types.TransactionDeploy
		blockTx.ConstructorCalldata = v.ConstructorCalldata
		salt := v.ContractAddressSalt
		blockTx.ContractAddressSalt = &salt
	case types.InvokeTransaction:
		blockTx.Type = types.TransactionInvoke
		selector := v.EntryPointSelector
		blockTx.EntryPointSelector = &selector
		blockTx.Calldata = v.Calldata
		blockTx.Signature = v.Signature
	}

	block := &types.Block{
		BlockHash:       s.nextHash("block"),
		ParentBlockHash: parent.BlockHash,
		BlockNumber:     parent.BlockNumber + 1,
		StateRoot:       s.nextHash("state"),
		Status:          types.BlockAcceptedOnchain,
		Timestamp:       uint64(time.Now().Unix()),
		Transactions:    []types.BlockTransaction{blockTx},
		TransactionReceipts: []types.TransactionReceipt{{
			TransactionHash:  rec.hash,
			BlockHash:        s.nextHash("receipt"),
			BlockNumber:      parent.BlockNumber + 1,
			TransactionIndex: 0,
			Status:           types.StatusAcceptedOnchain,
		}},
	}
	block.TransactionReceipts[0].BlockHash = block.BlockHash

	s.blocks = append(s.blocks, block)
	rec.block = block
	return block
}

// blockAt returns the block at the given number, or the latest when nil.
func (s *Sequencer) blockAt(blockID types.BlockIdentifier) (*types.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if blockID == nil {
		return s.blocks[len(s.blocks)-1], true
	}
	if *blockID >= uint64(len(s.blocks)) {
		return nil, false
	}
	return s.blocks[*blockID], true
}

// contractAt returns the state of a deployed contract.
func (s *Sequencer) contractAt(address string) (*contractState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.contracts[address]
	return state, ok
}

// marshalDefinition extracts the bytecode view get_code serves.
func marshalDefinition(def *types.CompiledContract) types.Code {
	code := types.Code{Bytecode: []felt.Felt{}}
	if def == nil {
		return code
	}
	code.ABI = def.ABI

	var program struct {
		Data []felt.Felt `json:"data"`
	}
	if err := json.Unmarshal(def.Program, &program); err == nil && program.Data != nil {
		code.Bytecode = program.Data
	}
	return code
}
