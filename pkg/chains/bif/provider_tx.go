package bif

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// SendTransaction submits a signed envelope produced by Signer.SignTransaction.
// A rejected submission returns an empty response and no error. An accepted
// one carries the hash and a Wait that polls for confirmation.
func (p *Provider) SendTransaction(ctx context.Context, signed string) (*types.TransactionResponse, error) {
	var env types.SignedEnvelope
	if err := json.Unmarshal([]byte(signed), &env); err != nil {
		return nil, fmt.Errorf("failed to send transaction: invalid signed envelope: %w", err)
	}

	var resp bifnode.SubmitResponse
	if err := p.rpc.Request(ctx, MethodSubmitTrans, []any{env.Blob, env.Signature}, &resp); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	p.logger.Debug("submitted transaction", "response", resp)

	out := types.NewTransactionResponse()
	if resp.SuccessCount != 1 || len(resp.Results) == 0 {
		p.logger.Warn("transaction rejected", "successCount", resp.SuccessCount, "results", resp.Results)
		return out, nil
	}

	hash := resp.Results[0].Hash
	out.Hash = hash
	out.WaitFunc = func(ctx context.Context, confirmations int) (*types.Receipt, error) {
		return p.Confirm(ctx, hash, confirmations).Receipt, nil
	}
	return out, nil
}

// Transaction returns the transaction with hash, or the zero entity when the
// ledger reports an error
func (p *Provider) Transaction(ctx context.Context, hash string) (*types.TransactionResponse, error) {
	out := types.NewTransactionResponse()

	resp, err := p.transactionInfo(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return out, nil
	}
	rec, ok := resp.first()
	if !ok {
		return out, nil
	}

	raw, err := json.Marshal(resp.Result.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}
	data, err := json.Marshal(rec.Transaction.Operations)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}

	out.Hash = rec.Hash
	out.BlockNumber = rec.LedgerSeq
	out.Timestamp = rec.CloseTime
	out.From = rec.Transaction.SourceAddress
	out.Raw = string(raw)
	out.Nonce = rec.Transaction.Nonce
	out.GasLimit = big.NewInt(rec.Transaction.FeeLimit)
	out.GasPrice = big.NewInt(rec.Transaction.GasPrice)
	out.Data = string(data)

	op := firstOperation(rec)
	switch op.Type {
	case constants.OperationPayCoin:
		out.To = "0"
		if op.PayCoin != nil {
			out.To = op.PayCoin.DestAddress
			out.Value = big.NewInt(op.PayCoin.Amount)
		}
	case constants.OperationCreateAccount:
		if op.CreateAccount != nil {
			out.Value = big.NewInt(op.CreateAccount.InitBalance)
		}
	}

	block, err := p.blockInfo(ctx, rec.LedgerSeq, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}
	if block.ErrorCode != constants.ErrorCodeSuccess {
		return out, nil
	}
	if block.Header != nil {
		out.BlockHash = block.Header.Hash
	}
	out.ChainID = 0
	out.Type = op.Type
	return out, nil
}

// TransactionReceipt returns the receipt of hash, or nil while the ledger
// does not know the transaction yet. Sub-lookups that fail return the
// receipt built so far.
//
// Logs are collected best-effort: a contract trigger whose transaction cannot
// be fetched is logged and skipped, and the receipt is still returned.
func (p *Provider) TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	resp, err := p.transactionInfo(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt %s: %w", hash, err)
	}
	if resp.ErrorCode == constants.ErrorCodeNotFound {
		return nil, nil
	}

	receipt := types.NewReceipt()
	rec, ok := resp.first()
	if !ok {
		receipt.Status = 1
		receipt.LogsBloom = "error"
		return receipt, nil
	}

	receipt.TransactionHash = rec.Hash
	if rec.ErrorCode != constants.ErrorCodeSuccess {
		receipt.Status = rec.ErrorCode
		receipt.LogsBloom = rec.ErrorDesc
		if receipt.LogsBloom == "" {
			receipt.LogsBloom = "error"
		}
		return receipt, nil
	}

	receipt.From = rec.Transaction.SourceAddress
	op := firstOperation(rec)
	switch op.Type {
	case constants.OperationPayCoin:
		if op.PayCoin != nil {
			receipt.To = op.PayCoin.DestAddress
		}
		var check CheckContractAddressResponse
		params := ContractAddressParams{ContractAddress: receipt.To}
		if err := p.rpc.Request(ctx, MethodCheckContractAddress, []any{params}, &check); err != nil {
			return nil, fmt.Errorf("failed to get transaction receipt %s: %w", hash, err)
		}
		if check.ErrorCode != constants.ErrorCodeSuccess {
			return receipt, nil
		}
		if check.Result.IsValid {
			receipt.ContractAddress = receipt.To
		}
	case constants.OperationCreateAccount:
		var created []ContractCreationInfo
		if err := json.Unmarshal([]byte(rec.ErrorDesc), &created); err != nil {
			return nil, fmt.Errorf("failed to get transaction receipt %s: invalid contract creation result: %w", hash, err)
		}
		if len(created) > 0 {
			receipt.ContractAddress = created[0].ContractAddress
		}
	}

	receipt.TransactionIndex = 0
	receipt.GasUsed = big.NewInt(rec.ActualFee)
	receipt.BlockNumber = rec.LedgerSeq
	receipt.Confirmations = 1

	block, err := p.blockInfo(ctx, rec.LedgerSeq, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt %s: %w", hash, err)
	}
	if block.ErrorCode != constants.ErrorCodeSuccess {
		return receipt, nil
	}
	if block.Header != nil {
		receipt.BlockHash = block.Header.Hash
	}
	receipt.Root = ""
	receipt.CumulativeGasUsed = big.NewInt(rec.Transaction.FeeLimit)
	receipt.EffectiveGasPrice = big.NewInt(rec.Transaction.GasPrice)
	receipt.Byzantium = true
	receipt.Type = op.Type
	receipt.Status = 0

	for i, triggered := range rec.ContractTxHashes {
		log, ok := p.triggeredLog(ctx, triggered)
		if !ok {
			continue
		}
		log.BlockNumber = receipt.BlockNumber
		log.BlockHash = receipt.BlockHash
		log.TransactionHash = receipt.TransactionHash
		log.LogIndex = i
		log.Address = receipt.ContractAddress
		receipt.Logs = append(receipt.Logs, log)
	}
	return receipt, nil
}

// triggeredLog fetches a contract-triggered transaction and returns its log
// operation. ok is false when the lookup fails or it carries no log.
func (p *Provider) triggeredLog(ctx context.Context, hash string) (types.Log, bool) {
	resp, err := p.transactionInfo(ctx, hash)
	if err != nil {
		p.logger.Warn("skipping contract log", "hash", hash, "error", err)
		return types.Log{}, false
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		p.logger.Warn("skipping contract log", "hash", hash, "errorCode", resp.ErrorCode)
		return types.Log{}, false
	}
	rec, ok := resp.first()
	if !ok {
		return types.Log{}, false
	}

	op := firstOperation(rec)
	if op.Type != constants.OperationLog {
		return types.Log{}, false
	}

	log := types.Log{Topics: []string{}}
	if op.Log != nil {
		log.Topics = append(log.Topics, op.Log.Topics...)
		if len(op.Log.Datas) > 0 {
			log.Data = op.Log.Datas[0]
		}
	}
	return log, true
}

func (p *Provider) transactionInfo(ctx context.Context, hash string) (*TransactionInfoResponse, error) {
	var resp TransactionInfoResponse
	if err := p.rpc.Request(ctx, MethodGetTransactionInfo, []any{HashParams{Hash: hash}}, &resp); err != nil {
		return nil, err
	}
	p.logger.Debug("transaction info", "hash", hash, "response", resp)
	return &resp, nil
}

func firstOperation(rec *bifnode.TransactionRecord) bifnode.Operation {
	if len(rec.Transaction.Operations) == 0 {
		return bifnode.Operation{}
	}
	return rec.Transaction.Operations[0]
}
