// Package bif adapts the BIF ledger to the standard chain capabilities.
//
// Provider translates the standard provider contract onto the ledger's
// namespaced RPC, Signer produces signed protobuf envelopes and Lifecycle
// drives a transaction from population through confirmation.
package bif

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/types"
	"github.com/sigweihq/bifbridge/pkg/utils"
)

// Provider implements chains.Provider over an RPC
type Provider struct {
	rpc          RPC
	logger       *slog.Logger
	pollInterval time.Duration
	timeout      time.Duration
}

var _ chains.Provider = (*Provider)(nil)

type ProviderOption func(*Provider)

func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// WithPollInterval sets the delay between confirmation polls; d <= 0 keeps the default
func WithPollInterval(d time.Duration) ProviderOption {
	return func(p *Provider) { p.pollInterval = d }
}

// WithConfirmationTimeout bounds a single confirmation wait; d <= 0 keeps the default
func WithConfirmationTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) { p.timeout = d }
}

func NewProvider(rpc RPC, opts ...ProviderOption) *Provider {
	p := &Provider{
		rpc:          rpc,
		logger:       slog.Default(),
		pollInterval: constants.ConfirmationPollInterval,
		timeout:      constants.ConfirmationTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.pollInterval <= 0 {
		p.pollInterval = constants.ConfirmationPollInterval
	}
	if p.timeout <= 0 {
		p.timeout = constants.ConfirmationTimeout
	}
	return p
}

// RPC returns the underlying namespaced RPC
func (p *Provider) RPC() RPC {
	return p.rpc
}

func (p *Provider) Implementor() chains.Implementor {
	return chains.ImplementorBIFProvider
}

// ChainID is not defined on BIF; it is always -1
func (p *Provider) ChainID(ctx context.Context) (int64, error) {
	return -1, nil
}

// BlockNumber returns the latest height, or -1 when the ledger reports an error
func (p *Provider) BlockNumber(ctx context.Context) (int64, error) {
	var resp BlockNumberResponse
	if err := p.rpc.Request(ctx, MethodGetBlockNumber, nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	p.logger.Debug("block number", "response", resp)
	if resp.ErrorCode != constants.ErrorCodeSuccess || resp.Header == nil {
		return -1, nil
	}

	n, err := strconv.ParseInt(resp.Header.BlockNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block number %q: %w", resp.Header.BlockNumber, err)
	}
	return n, nil
}

func (p *Provider) GasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(constants.DefaultGasPrice), nil
}

// FeeData reports the fixed gas price. The latest block is read first so
// an unreachable ledger surfaces here too.
func (p *Provider) FeeData(ctx context.Context) (*types.FeeData, error) {
	if _, err := p.Block(ctx, BlockTagLatest); err != nil {
		return nil, fmt.Errorf("failed to get fee data: %w", err)
	}
	gasPrice, err := p.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee data: %w", err)
	}
	return &types.FeeData{
		LastBaseFeePerGas:    new(big.Int),
		MaxFeePerGas:         new(big.Int),
		MaxPriorityFeePerGas: new(big.Int),
		GasPrice:             gasPrice,
	}, nil
}

// Balance returns the account balance, or -1 when the ledger reports an error
func (p *Provider) Balance(ctx context.Context, address string) (*big.Int, error) {
	var resp AccountBalanceResponse
	if err := p.rpc.Request(ctx, MethodGetAccountBalance, []any{AddressParams{Address: address}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get balance %s: %w", address, err)
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess || resp.Result == nil {
		return big.NewInt(-1), nil
	}

	balance, ok := new(big.Int).SetString(resp.Result.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("failed to get balance %s: invalid amount %q", address, resp.Result.Balance)
	}
	return balance, nil
}

// TransactionCount returns the account nonce, or -1 when the ledger reports an error
func (p *Provider) TransactionCount(ctx context.Context, address string) (int64, error) {
	var resp AccountNonceResponse
	if err := p.rpc.Request(ctx, MethodGetNonce, []any{AddressParams{Address: address}}, &resp); err != nil {
		return 0, fmt.Errorf("failed to get transaction count %s: %w", address, err)
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess || resp.Result == nil {
		return -1, nil
	}

	nonce := resp.Result.Nonce
	if nonce == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(nonce, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count %s: invalid nonce %q", address, nonce)
	}
	return n, nil
}

// Code returns the contract payload, or "" for accounts without one
func (p *Provider) Code(ctx context.Context, address string) (string, error) {
	var resp ContractInfoResponse
	if err := p.rpc.Request(ctx, MethodGetContractInfo, []any{ContractAddressParams{ContractAddress: address}}, &resp); err != nil {
		return "", fmt.Errorf("failed to get code %s: %w", address, err)
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess || resp.Result == nil || resp.Result.Contract == nil {
		return "", nil
	}
	return resp.Result.Contract.Payload, nil
}

// StorageAt is not exposed by BIF nodes
func (p *Provider) StorageAt(ctx context.Context, address string, position *big.Int) (string, error) {
	return "", nil
}

// Call runs a read-only contract query and returns its EVM output as 0x hex,
// or "" when the query fails
func (p *Provider) Call(ctx context.Context, tx types.TransactionRequest) (string, error) {
	params := ContractQueryParams{
		SourceAddress:   tx.From,
		ContractAddress: tx.To,
		Input:           tx.Data,
	}

	var resp ContractQueryResponse
	if err := p.rpc.Request(ctx, MethodContractQuery, []any{params}, &resp); err != nil {
		return "", fmt.Errorf("failed to call %s: %w", tx.To, err)
	}
	p.logger.Debug("contract query", "to", tx.To, "response", resp)

	if len(resp.QueryRets) == 0 || resp.QueryRets[0].Result == nil {
		return "", nil
	}
	result := resp.QueryRets[0].Result
	if result.Code != constants.ErrorCodeSuccess {
		return "", nil
	}
	return "0x" + utils.Strip0x(result.EVMCode), nil
}

// EstimateGas always returns the default gas limit
func (p *Provider) EstimateGas(ctx context.Context, tx types.TransactionRequest) (*big.Int, error) {
	return big.NewInt(constants.DefaultGasLimit), nil
}

// WaitForTransaction is not wired to the poller; use the Wait of a submitted
// response instead
func (p *Provider) WaitForTransaction(ctx context.Context, hash string, confirmations int) (*types.Receipt, error) {
	return types.NewReceipt(), nil
}

// Logs has no ledger index to read from and is always empty
func (p *Provider) Logs(ctx context.Context, filter types.Filter) ([]types.Log, error) {
	return []types.Log{}, nil
}

func (p *Provider) ResolveName(ctx context.Context, name string) (string, error) {
	return "", nil
}

func (p *Provider) LookupAddress(ctx context.Context, address string) (string, error) {
	return "", nil
}

// Event surface. Subscriptions are accepted and never delivered.

func (p *Provider) On(event string, listener chains.Listener) chains.Provider {
	return p
}

func (p *Provider) Once(event string, listener chains.Listener) chains.Provider {
	return p
}

func (p *Provider) Emit(event string, args ...any) bool {
	return false
}

func (p *Provider) ListenerCount(event string) int {
	return 0
}

func (p *Provider) Listeners(event string) []chains.Listener {
	return nil
}

func (p *Provider) Off(event string, listener chains.Listener) chains.Provider {
	return p
}

func (p *Provider) RemoveAllListeners(event string) chains.Provider {
	return p
}
