package bif

import (
	"context"
	"time"

	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// Confirm polls until hash has a receipt, the wait times out or the ledger
// advances more than confirmations blocks past the first height seen.
// Values of confirmations <= 0 use the default.
//
// Confirm never fails. Every outcome other than Confirmed carries a receipt
// holding only the transaction hash. Cancelling ctx ends the wait as TimedOut.
// Transport errors while polling are logged and the poll is retried.
func (p *Provider) Confirm(ctx context.Context, hash string, confirmations int) types.Confirmation {
	if confirmations <= 0 {
		confirmations = constants.DefaultConfirmations
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	state := types.ConfirmationState{
		SubmittedAt:           time.Now(),
		StartHeight:           -1,
		LastSeenHeight:        -1,
		RequiredConfirmations: confirmations,
	}
	fallback := types.NewReceipt()
	fallback.TransactionHash = hash

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		height, err := p.BlockNumber(ctx)
		switch {
		case err != nil:
			p.logger.Warn("confirmation poll failed", "hash", hash, "step", "blockNumber", "error", err)
		case height != -1:
			state.LastSeenHeight = height
			if state.StartHeight == -1 {
				state.StartHeight = height
			}
			if height-state.StartHeight > int64(state.RequiredConfirmations) {
				p.logger.Warn("exceeded maximum confirmation blocks",
					"hash", hash,
					"startHeight", state.StartHeight,
					"height", height,
					"confirmations", state.RequiredConfirmations)
				return types.Confirmation{State: types.StateDriftExceeded, Receipt: fallback, Polls: polls}
			}
		}

		receipt, err := p.TransactionReceipt(ctx, hash)
		if err != nil {
			p.logger.Warn("confirmation poll failed", "hash", hash, "step", "receipt", "error", err)
		} else if receipt != nil && receipt.TransactionHash != "" {
			p.logger.Debug("transaction confirmed", "hash", hash, "polls", polls, "elapsed", time.Since(state.SubmittedAt))
			return types.Confirmation{State: types.StateConfirmed, Receipt: receipt, Polls: polls}
		}

		select {
		case <-ctx.Done():
			p.logger.Warn("transaction confirmation timed out",
				"hash", hash,
				"elapsed", time.Since(state.SubmittedAt),
				"lastHeight", state.LastSeenHeight)
			return types.Confirmation{State: types.StateTimedOut, Receipt: fallback, Polls: polls}
		case <-ticker.C:
		}
	}
}
