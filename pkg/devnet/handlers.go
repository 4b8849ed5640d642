package devnet

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/httputil"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// Error codes mirrored from the live sequencer protocol.
const (
	codeBlockNotFound         = "StarknetErrorCode.BLOCK_NOT_FOUND"
	codeUninitializedContract = "StarknetErrorCode.UNINITIALIZED_CONTRACT"
	codeMalformedRequest      = "StarknetErrorCode.MALFORMED_REQUEST"
	codeTransactionFailed     = "StarknetErrorCode.TRANSACTION_FAILED"
)

// parseFeltParam reads and validates a field element query parameter.
func parseFeltParam(w http.ResponseWriter, r *http.Request, name string) (felt.Felt, bool) {
	raw := httputil.QueryParam(r, name, "")
	if !httputil.ValidateFieldElement(raw) {
		httputil.WriteError(w, http.StatusBadRequest, codeMalformedRequest, "missing or malformed "+name)
		return felt.Felt{}, false
	}
	value, err := felt.FromString(raw)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, codeMalformedRequest, err.Error())
		return felt.Felt{}, false
	}
	return value, true
}

// parseBlockID reads the optional blockNumber query parameter.
func parseBlockID(r *http.Request) types.BlockIdentifier {
	if n, ok := httputil.QueryParamUint64(r, "blockNumber"); ok {
		return types.AtBlock(n)
	}
	return nil
}

func (s *Sequencer) handleGetContractAddresses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	addresses := s.addresses
	s.mu.Unlock()
	httputil.WriteJSON(w, http.StatusOK, addresses)
}

func (s *Sequencer) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	block, ok := s.blockAt(parseBlockID(r))
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, codeBlockNotFound, "block not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, block)
}

func (s *Sequencer) handleGetCode(w http.ResponseWriter, r *http.Request) {
	address, ok := parseFeltParam(w, r, "contractAddress")
	if !ok {
		return
	}

	state, ok := s.contractAt(address.Hex())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, codeUninitializedContract,
			"contract with address "+address.Hex()+" is not deployed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, marshalDefinition(state.definition))
}

func (s *Sequencer) handleGetStorageAt(w http.ResponseWriter, r *http.Request) {
	address, ok := parseFeltParam(w, r, "contractAddress")
	if !ok {
		return
	}
	key, ok := parseFeltParam(w, r, "key")
	if !ok {
		return
	}

	state, ok := s.contractAt(address.Hex())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, codeUninitializedContract,
			"contract with address "+address.Hex()+" is not deployed")
		return
	}

	s.mu.Lock()
	value := state.storage[key.Hex()]
	s.mu.Unlock()
	httputil.WriteJSON(w, http.StatusOK, value)
}

func (s *Sequencer) handleCallContract(w http.ResponseWriter, r *http.Request) {
	var call types.FunctionCall
	if err := httputil.DecodeJSON(r, &call); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, codeMalformedRequest, err.Error())
		return
	}

	state, ok := s.contractAt(call.ContractAddress.Hex())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, codeUninitializedContract,
			"contract with address "+call.ContractAddress.Hex()+" is not deployed")
		return
	}

	// The simulator does not execute programs. A call answers with the
	// storage value at the selector's slot, which is enough for clients
	// to exercise the read path end to end.
	s.mu.Lock()
	value, present := state.storage[call.EntryPointSelector.Hex()]
	s.mu.Unlock()

	result := []felt.Felt{}
	if present {
		result = []felt.Felt{value}
	}
	httputil.WriteJSON(w, http.StatusOK, types.CallContractResponse{Result: result})
}

func (s *Sequencer) handleGetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	txHash, ok := parseFeltParam(w, r, "transactionHash")
	if !ok {
		return
	}

	rec, ok := s.lookup(txHash.Hex())
	if !ok {
		// Unknown hashes are reported as NOT_RECEIVED, matching the live
		// gateway: submission and visibility are not atomic.
		httputil.WriteJSON(w, http.StatusOK, types.TransactionStatusResponse{
			TxStatus: types.StatusNotReceived,
		})
		return
	}

	s.mu.Lock()
	status := rec.status()
	reason := rec.rejected
	s.mu.Unlock()

	resp := types.TransactionStatusResponse{TxStatus: status}
	switch status {
	case types.StatusAcceptedOnchain:
		block := s.sealBlock(rec)
		resp.BlockHash = &block.BlockHash
	case types.StatusRejected:
		resp.TxFailureReason = reason
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Sequencer) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txHash, ok := parseFeltParam(w, r, "transactionHash")
	if !ok {
		return
	}

	rec, ok := s.lookup(txHash.Hex())
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, types.TransactionInfo{
			Status: types.StatusNotReceived,
		})
		return
	}

	s.mu.Lock()
	status := rec.current()
	reason := rec.rejected
	block := rec.block
	s.mu.Unlock()

	info := types.TransactionInfo{Status: status}
	switch status {
	case types.StatusAcceptedOnchain:
		if block == nil {
			block = s.sealBlock(rec)
		}
		index := uint64(0)
		info.Transaction = &block.Transactions[0]
		info.BlockHash = &block.BlockHash
		info.BlockNumber = &block.BlockNumber
		info.TransactionIndex = &index
	case types.StatusRejected:
		info.TransactionFailureReason = reason
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (s *Sequencer) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, codeMalformedRequest, "failed to read request body")
		return
	}

	tx, err := types.ParseTransaction(payload)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, codeMalformedRequest, err.Error())
		return
	}

	if invoke, ok := tx.(types.InvokeTransaction); ok {
		if invoke.ContractAddress.IsZero() {
			httputil.WriteError(w, http.StatusBadRequest, codeTransactionFailed,
				"invoke transaction missing contract address")
			return
		}
		if _, deployed := s.contractAt(invoke.ContractAddress.Hex()); !deployed {
			httputil.WriteError(w, http.StatusBadRequest, codeTransactionFailed,
				"contract with address "+invoke.ContractAddress.Hex()+" is not deployed")
			return
		}
	}
	if deploy, ok := tx.(types.DeployTransaction); ok && deploy.ContractDefinition == nil {
		httputil.WriteError(w, http.StatusBadRequest, codeTransactionFailed,
			"deploy transaction missing contract definition")
		return
	}

	rec, err := s.submit(tx, payload)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, codeTransactionFailed, err.Error())
		return
	}

	s.logger.ComponentInfo(logging.ComponentDevnet, "transaction received",
		zap.String("tx_hash", rec.hash.Hex()),
		zap.String("type", string(tx.TransactionType())),
	)

	resp := types.AddTransactionResponse{
		Code:            "TRANSACTION_RECEIVED",
		TransactionHash: rec.hash,
	}
	if tx.TransactionType() == types.TransactionDeploy {
		address := rec.address
		resp.Address = &address
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
