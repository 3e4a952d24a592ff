package bif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// Population stages, as reported by PopulateError
const (
	StageFrom     = "from"
	StageNonce    = "nonce"
	StageGasLimit = "gasLimit"
	StageGasPrice = "gasPrice"
)

var ErrNotSigned = errors.New("transaction kind has no ledger operation")

// Lifecycle takes a transaction from a bare request to a confirmed receipt
type Lifecycle struct {
	provider *Provider
	signer   chains.Signer
	logger   *slog.Logger
}

// Outcome is the result of Execute
type Outcome struct {
	Request      types.TransactionRequest
	Response     *types.TransactionResponse
	Confirmation types.Confirmation
}

func NewLifecycle(provider *Provider, signer chains.Signer) *Lifecycle {
	return &Lifecycle{provider: provider, signer: signer, logger: provider.logger}
}

// Populate fills every missing field of tx. The caller's request is never
// modified; each stage derives a new request from the previous one.
func (l *Lifecycle) Populate(ctx context.Context, tx types.TransactionRequest) (types.TxBuilder, error) {
	b := types.NewTxBuilder(tx)

	if tx.From == "" {
		from, err := l.signer.Address(ctx)
		if err != nil {
			return b, &PopulateError{Stage: StageFrom, Err: err}
		}
		b = b.WithFrom(from)
	}
	b = b.WithKind(tx.InferKind())

	req := b.Request()
	if req.Nonce == nil {
		count, err := l.provider.TransactionCount(ctx, req.From)
		if err != nil {
			return b, &PopulateError{Stage: StageNonce, Err: err}
		}
		b = b.WithNonce(count + 1)
	}
	if req.GasLimit == nil {
		limit, err := l.provider.EstimateGas(ctx, req)
		if err != nil {
			return b, &PopulateError{Stage: StageGasLimit, Err: err}
		}
		b = b.WithGasLimit(limit)
	}
	if req.GasPrice == nil {
		price, err := l.provider.GasPrice(ctx)
		if err != nil {
			return b, &PopulateError{Stage: StageGasPrice, Err: err}
		}
		b = b.WithGasPrice(price)
	}

	b = b.Populated()
	out := b.Request()
	l.logger.Debug("populated transaction",
		"from", out.From,
		"to", out.To,
		"kind", out.Kind,
		"nonce", *out.Nonce,
		"gasLimit", out.GasLimit,
		"gasPrice", out.GasPrice)
	return b, nil
}

// Send populates, signs and submits tx. The response carries From and Nonce
// of the populated request.
func (l *Lifecycle) Send(ctx context.Context, tx types.TransactionRequest) (*types.TransactionResponse, error) {
	b, err := l.Populate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return l.submit(ctx, b.Request())
}

func (l *Lifecycle) submit(ctx context.Context, req types.TransactionRequest) (*types.TransactionResponse, error) {
	signed, err := l.signer.SignTransaction(ctx, req)
	if err != nil {
		return nil, err
	}
	if signed == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotSigned, req.Kind)
	}

	resp, err := l.provider.SendTransaction(ctx, signed)
	if err != nil {
		return nil, err
	}
	resp.From = req.From
	resp.Nonce = *req.Nonce
	return resp, nil
}

// Execute sends tx and waits for its confirmation. A submission the ledger
// rejects gets no hash and ends in the Submitted state with an empty receipt.
func (l *Lifecycle) Execute(ctx context.Context, tx types.TransactionRequest, confirmations int) (*Outcome, error) {
	b, err := l.Populate(ctx, tx)
	if err != nil {
		return nil, err
	}
	resp, err := l.submit(ctx, b.Request())
	if err != nil {
		return nil, err
	}

	out := &Outcome{Request: b.Request(), Response: resp}
	if resp.Hash == "" {
		out.Confirmation = types.Confirmation{State: types.StateSubmitted, Receipt: types.NewReceipt()}
		l.logger.Warn("transaction rejected by the ledger", "from", resp.From, "nonce", resp.Nonce)
		return out, nil
	}

	out.Confirmation = l.provider.Confirm(ctx, resp.Hash, confirmations)
	l.logger.Info("transaction finished",
		"hash", resp.Hash,
		"state", out.Confirmation.State,
		"polls", out.Confirmation.Polls)
	return out, nil
}
