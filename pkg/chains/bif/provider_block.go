package bif

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// BlockTagLatest resolves to the current height
const BlockTagLatest = "latest"

// Block returns the ledger at tag (a height or "latest") with its
// transaction hashes. Any ledger error yields the zero block.
func (p *Provider) Block(ctx context.Context, tag string) (*types.Block, error) {
	block := types.NewBlock()

	height, err := p.resolveTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", tag, err)
	}
	if height == -1 {
		return block, nil
	}

	info, err := p.blockInfo(ctx, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", tag, err)
	}
	if info.ErrorCode != constants.ErrorCodeSuccess || info.Header == nil {
		return block, nil
	}

	if info.Header.Number != 1 {
		parent, err := p.blockInfo(ctx, info.Header.Number-1, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get block %s: %w", tag, err)
		}
		if parent.ErrorCode != constants.ErrorCodeSuccess {
			return block, nil
		}
		if parent.Header != nil {
			block.ParentHash = parent.Header.Hash
		}
	}

	block.Hash = info.Header.Hash
	block.Number = info.Header.Number
	block.ExtraData = strconv.FormatInt(info.Header.Version, 10)
	block.Miner = info.Leader
	if info.Header.ConfirmTime != "" {
		ts, err := strconv.ParseInt(info.Header.ConfirmTime, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to get block %s: invalid confirm time %q", tag, info.Header.ConfirmTime)
		}
		block.Timestamp = ts
	}

	var txs BlockTransactionsResponse
	params := BlockTransactionsParams{BlockNumber: Height(info.Header.Number)}
	if err := p.rpc.Request(ctx, MethodGetBlockTransactions, []any{params}, &txs); err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", tag, err)
	}
	p.logger.Debug("block transactions", "height", info.Header.Number, "response", txs)
	if txs.ErrorCode != constants.ErrorCodeSuccess || txs.Result == nil {
		return block, nil
	}

	for i := int64(0); i < txs.Result.TotalCount && i < int64(len(txs.Result.Transactions)); i++ {
		if hash := txs.Result.Transactions[i].Hash; hash != "" {
			block.Transactions = append(block.Transactions, hash)
		}
	}
	return block, nil
}

// BlockWithTransactions resolves every transaction of the block at tag.
// Header fields are only filled when the block has transactions.
func (p *Provider) BlockWithTransactions(ctx context.Context, tag string) (*types.BlockWithTransactions, error) {
	out := types.NewBlockWithTransactions()

	block, err := p.Block(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get block with transactions %s: %w", tag, err)
	}
	if len(block.Transactions) == 0 {
		return out, nil
	}

	for _, hash := range block.Transactions {
		tx, err := p.Transaction(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get block with transactions %s: %w", tag, err)
		}
		out.Transactions = append(out.Transactions, tx)
	}

	out.Hash = block.Hash
	out.ParentHash = block.ParentHash
	out.Number = block.Number
	out.Timestamp = block.Timestamp
	out.Miner = block.Miner
	out.ExtraData = block.ExtraData
	return out, nil
}

// resolveTag turns a block tag into a height; "latest" may resolve to -1
func (p *Provider) resolveTag(ctx context.Context, tag string) (int64, error) {
	if tag == BlockTagLatest || tag == "" {
		return p.BlockNumber(ctx)
	}
	height, err := strconv.ParseInt(tag, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block tag %q", tag)
	}
	return height, nil
}

func (p *Provider) blockInfo(ctx context.Context, height int64, withLeader bool) (*BlockInfoResponse, error) {
	var resp BlockInfoResponse
	params := BlockInfoParams{BlockNumber: Height(height), WithLeader: withLeader}
	if err := p.rpc.Request(ctx, MethodGetBlockInfo, []any{params}, &resp); err != nil {
		return nil, err
	}
	p.logger.Debug("block info", "height", height, "response", resp)
	return &resp, nil
}
