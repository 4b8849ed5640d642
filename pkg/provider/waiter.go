package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/logging"
	"github.com/calderalabs/starkgate/pkg/types"
)

// maxBackoffMultiplier caps the transport-failure backoff at this many
// retry intervals.
const maxBackoffMultiplier = 8

// WaitForTransaction polls the transaction status until it reaches a
// terminal state. There is no attempt limit; the caller bounds the wait
// through ctx. Transport failures back off exponentially up to
// maxBackoffMultiplier intervals and reset on the next successful poll.
//
// ACCEPTED_ONCHAIN returns the final status response. REJECTED returns a
// TransactionRejectedError carrying the gateway's failure reason. A
// status that moves backwards returns a ProtocolViolationError and stops
// polling immediately.
func (p *SequencerProvider) WaitForTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error) {
	p.logger.ComponentInfo(logging.ComponentWaiter, "waiting for transaction",
		zap.String("tx_hash", txHash.Hex()),
		zap.Duration("retry_interval", p.retryInterval),
	)

	var (
		prev     types.TransactionStatus
		havePrev bool
		failures int
	)

	for {
		status, err := p.feeder.GetTransactionStatus(ctx, txHash)
		switch {
		case err == nil:
			failures = 0

		case ctx.Err() != nil:
			return nil, ctx.Err()

		case apperrors.IsRetryable(err):
			failures++
			p.logger.ComponentWarn(logging.ComponentWaiter, "status poll failed, backing off",
				zap.String("tx_hash", txHash.Hex()),
				zap.Int("consecutive_failures", failures),
				zap.Error(err),
			)
			if err := p.sleep(ctx, p.backoff(failures)); err != nil {
				return nil, err
			}
			continue

		default:
			return nil, err
		}

		current := status.TxStatus
		if havePrev && current.RegressedFrom(prev) {
			return nil, apperrors.NewProtocolViolationError(
				"transaction " + txHash.Hex() + " status regressed from " + prev.String() + " to " + current.String())
		}
		prev, havePrev = current, true

		switch current {
		case types.StatusAcceptedOnchain:
			blockHash := ""
			if status.BlockHash != nil {
				blockHash = status.BlockHash.Hex()
			}
			p.logger.ComponentInfo(logging.ComponentWaiter, "transaction accepted",
				zap.String("tx_hash", txHash.Hex()),
				zap.String("block_hash", blockHash),
			)
			return status, nil

		case types.StatusRejected:
			reason := ""
			if status.TxFailureReason != nil {
				reason = status.TxFailureReason.ErrorMessage
			}
			return nil, apperrors.NewTransactionRejectedError(txHash.Hex(), reason)
		}

		p.logger.ComponentDebug(logging.ComponentWaiter, "transaction not yet final",
			zap.String("tx_hash", txHash.Hex()),
			zap.String("status", current.String()),
		)
		if err := p.sleep(ctx, p.retryInterval); err != nil {
			return nil, err
		}
	}
}

// backoff returns the delay after n consecutive transport failures.
func (p *SequencerProvider) backoff(n int) time.Duration {
	multiplier := 1
	for i := 1; i < n && multiplier < maxBackoffMultiplier; i++ {
		multiplier *= 2
	}
	if multiplier > maxBackoffMultiplier {
		multiplier = maxBackoffMultiplier
	}
	return time.Duration(multiplier) * p.retryInterval
}

// sleep waits for d or until ctx is done, whichever comes first.
func (p *SequencerProvider) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
