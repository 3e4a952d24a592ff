package bif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sigweihq/bifbridge/pkg/address"
	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/keys"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// Node is the part of the node REST client the accounts provider dispatches to
type Node interface {
	GetLedger(ctx context.Context, seq int64, withLeader bool) (*bifnode.Response[bifnode.LedgerResult], error)
	GetAccountBase(ctx context.Context, address string) (*bifnode.Response[bifnode.AccountResult], error)
	GetAccount(ctx context.Context, address string) (*bifnode.Response[bifnode.AccountResult], error)
	GetTransactionByHash(ctx context.Context, hash string) (*bifnode.Response[bifnode.TransactionHistory], error)
	GetTransactionsByLedger(ctx context.Context, seq int64) (*bifnode.Response[bifnode.TransactionHistory], error)
	SubmitTransaction(ctx context.Context, blob string, signatures []bifnode.Signature) (*bifnode.SubmitResponse, error)
	CallContract(ctx context.Context, req bifnode.CallRequest) (*bifnode.Response[bifnode.CallResult], error)
}

var _ Node = (*bifnode.Client)(nil)

type handlerFunc func(ctx context.Context, method string, params []json.RawMessage) (any, error)

// AccountsProvider is an RPC backed by a node client and a local key store.
// The key store is built once and never modified, so it is safe for
// concurrent use without locking.
type AccountsProvider struct {
	node      Node
	logger    *slog.Logger
	addresses []string
	keys      map[string]*keys.PrivateKey
	handlers  map[MethodName]handlerFunc
}

var _ RPC = (*AccountsProvider)(nil)

type AccountsOption func(*AccountsProvider)

func WithAccountsLogger(l *slog.Logger) AccountsOption {
	return func(a *AccountsProvider) { a.logger = l }
}

// NewAccountsProvider indexes privateKeys by derived address.
// Duplicate keys are kept once, in first-seen order.
func NewAccountsProvider(node Node, privateKeys []string, opts ...AccountsOption) (*AccountsProvider, error) {
	if node == nil {
		return nil, errors.New("node client is required")
	}

	a := &AccountsProvider{
		node:   node,
		logger: slog.Default(),
		keys:   make(map[string]*keys.PrivateKey, len(privateKeys)),
	}
	for _, opt := range opts {
		opt(a)
	}

	for i, encoded := range privateKeys {
		key, err := keys.ParsePrivateKey(encoded)
		if err != nil {
			return nil, &InvalidPrivateKeyError{Index: i, Err: err}
		}
		addr := key.Address()
		if _, ok := a.keys[addr]; ok {
			continue
		}
		a.keys[addr] = key
		a.addresses = append(a.addresses, addr)
	}

	a.handlers = map[MethodName]handlerFunc{
		{Namespace: "block", Method: "getBlockNumber"}:           a.getBlockNumber,
		{Namespace: "block", Method: "getBlockInfo"}:             a.getBlockInfo,
		{Namespace: "block", Method: "getTransactions"}:          a.getBlockTransactions,
		{Namespace: "account", Method: "getAccountBalance"}:      a.getAccountBalance,
		{Namespace: "account", Method: "getNonce"}:               a.getNonce,
		{Namespace: "contract", Method: "getContractInfo"}:       a.getContractInfo,
		{Namespace: "contract", Method: "checkContractAddress"}:  a.checkContractAddress,
		{Namespace: "contract", Method: "contractQuery"}:         a.contractQuery,
		{Namespace: "transaction", Method: "getTransactionInfo"}: a.getTransactionInfo,
		{Namespace: "transaction", Method: "submitTrans"}:        a.submitTrans,
	}
	return a, nil
}

// Accounts returns the known addresses in configuration order
func (a *AccountsProvider) Accounts() []string {
	return append([]string{}, a.addresses...)
}

// PrivateKey returns the encoded private key for addr
func (a *AccountsProvider) PrivateKey(addr string) (string, error) {
	key, ok := a.keys[addr]
	if !ok {
		return "", &NotExistAccountPrivateKeyError{Address: addr}
	}
	return key.String(), nil
}

// Request serves the account pseudo-methods locally and dispatches
// namespaced methods to the node.
func (a *AccountsProvider) Request(ctx context.Context, method string, params []any, result any) error {
	raw, err := rawParams(method, params)
	if err != nil {
		return err
	}

	switch method {
	case MethodAccounts:
		return assign(a.Accounts(), result)
	case MethodAccountPrivateKey:
		addr, err := param[string](method, raw, 0)
		if err != nil {
			return err
		}
		key, err := a.PrivateKey(addr)
		if err != nil {
			return err
		}
		return assign(key, result)
	}

	name, ok := ParseMethod(method)
	if !ok {
		return &UnknownMethodError{Method: method}
	}
	handler, ok := a.handlers[name]
	if !ok {
		return &UnknownMethodError{Namespace: name.Namespace, Method: name.Method}
	}

	out, err := handler(ctx, method, raw)
	if err != nil {
		var inputErr *MethodInputError
		if errors.As(err, &inputErr) {
			return err
		}
		return &RPCError{Method: method, Err: err}
	}

	a.logger.Debug("rpc response", "method", method, "result", out)
	return assign(out, result)
}

func (a *AccountsProvider) getBlockNumber(ctx context.Context, _ string, _ []json.RawMessage) (any, error) {
	resp, err := a.node.GetLedger(ctx, 0, false)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return BlockNumberResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}
	return BlockNumberResponse{
		Header: &BlockNumberHeader{BlockNumber: strconv.FormatInt(resp.Result.Header.Seq, 10)},
	}, nil
}

func (a *AccountsProvider) getBlockInfo(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[BlockInfoParams](method, params, 0)
	if err != nil {
		return nil, err
	}
	if p.BlockNumber <= 0 {
		return BlockInfoResponse{ErrorCode: ErrorCodeInvalidArgument, ErrorDesc: "invalid blockNumber"}, nil
	}

	resp, err := a.node.GetLedger(ctx, int64(p.BlockNumber), p.WithLeader)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return BlockInfoResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}

	h := resp.Result.Header
	return BlockInfoResponse{
		Header: &BlockHeader{
			ConfirmTime: strconv.FormatInt(h.CloseTime, 10),
			Number:      h.Seq,
			TxCount:     h.TxCount,
			Version:     h.Version,
			Hash:        h.Hash,
		},
		Leader: resp.Result.Leader,
	}, nil
}

func (a *AccountsProvider) getBlockTransactions(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[BlockTransactionsParams](method, params, 0)
	if err != nil {
		return nil, err
	}
	if p.BlockNumber <= 0 {
		return BlockTransactionsResponse{ErrorCode: ErrorCodeInvalidArgument, ErrorDesc: "invalid blockNumber"}, nil
	}

	resp, err := a.node.GetTransactionsByLedger(ctx, int64(p.BlockNumber))
	if err != nil {
		return nil, err
	}
	out := BlockTransactionsResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}
	if resp.ErrorCode == constants.ErrorCodeSuccess {
		out.Result = &resp.Result
	}
	return out, nil
}

func (a *AccountsProvider) getAccountBalance(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[AddressParams](method, params, 0)
	if err != nil {
		return nil, err
	}
	if !address.IsTagged(p.Address) {
		return AccountBalanceResponse{ErrorCode: ErrorCodeInvalidArgument, ErrorDesc: "invalid address"}, nil
	}

	resp, err := a.node.GetAccountBase(ctx, p.Address)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return AccountBalanceResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}

	balance := resp.Result.Balance.String()
	if balance == "" {
		balance = "0"
	}
	return AccountBalanceResponse{Result: &AccountBalance{Balance: balance}}, nil
}

func (a *AccountsProvider) getNonce(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[AddressParams](method, params, 0)
	if err != nil {
		return nil, err
	}
	if !address.IsTagged(p.Address) {
		return AccountNonceResponse{ErrorCode: ErrorCodeInvalidArgument, ErrorDesc: "invalid address"}, nil
	}

	resp, err := a.node.GetAccountBase(ctx, p.Address)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return AccountNonceResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}
	return AccountNonceResponse{Result: &AccountNonce{Nonce: strconv.FormatInt(resp.Result.Nonce, 10)}}, nil
}

// contractAccount fetches an account and reports whether it holds contract code
func (a *AccountsProvider) contractAccount(ctx context.Context, contractAddress string) (*bifnode.Response[bifnode.AccountResult], bool, error) {
	resp, err := a.node.GetAccount(ctx, contractAddress)
	if err != nil {
		return nil, false, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return resp, false, nil
	}
	c := resp.Result.Contract
	return resp, c != nil && c.Payload != "", nil
}

func (a *AccountsProvider) getContractInfo(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[ContractAddressParams](method, params, 0)
	if err != nil {
		return nil, err
	}

	resp, isContract, err := a.contractAccount(ctx, p.ContractAddress)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != constants.ErrorCodeSuccess {
		return ContractInfoResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}
	if !isContract {
		return ContractInfoResponse{ErrorCode: ErrorCodeNotContract, ErrorDesc: "not a contract account"}, nil
	}
	return ContractInfoResponse{Result: &ContractInfo{Contract: resp.Result.Contract}}, nil
}

func (a *AccountsProvider) checkContractAddress(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[ContractAddressParams](method, params, 0)
	if err != nil {
		return nil, err
	}

	resp, isContract, err := a.contractAccount(ctx, p.ContractAddress)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.ErrorCode != constants.ErrorCodeSuccess:
		return CheckContractAddressResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}, nil
	}
	return CheckContractAddressResponse{Result: ContractCheck{IsValid: isContract}}, nil
}

func (a *AccountsProvider) contractQuery(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[ContractQueryParams](method, params, 0)
	if err != nil {
		return nil, err
	}

	resp, err := a.node.CallContract(ctx, bifnode.CallRequest{
		ContractAddress: p.ContractAddress,
		SourceAddress:   p.SourceAddress,
		Input:           p.Input,
		OptType:         bifnode.OptTypeQuery,
		FeeLimit:        constants.DefaultGasLimit,
		GasPrice:        constants.DefaultGasPrice,
	})
	if err != nil {
		return nil, err
	}
	return ContractQueryResponse{
		ErrorCode: resp.ErrorCode,
		ErrorDesc: resp.ErrorDesc,
		QueryRets: resp.Result.QueryRets,
	}, nil
}

func (a *AccountsProvider) getTransactionInfo(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	p, err := param[HashParams](method, params, 0)
	if err != nil {
		return nil, err
	}

	resp, err := a.node.GetTransactionByHash(ctx, p.Hash)
	if err != nil {
		return nil, err
	}
	out := TransactionInfoResponse{ErrorCode: resp.ErrorCode, ErrorDesc: resp.ErrorDesc}
	if resp.ErrorCode == constants.ErrorCodeSuccess {
		out.Result = &resp.Result
	}
	return out, nil
}

func (a *AccountsProvider) submitTrans(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	blob, err := param[string](method, params, 0)
	if err != nil {
		return nil, err
	}
	sigs, err := param[[]types.Signature](method, params, 1)
	if err != nil {
		return nil, err
	}

	nodeSigs := make([]bifnode.Signature, 0, len(sigs))
	for _, s := range sigs {
		nodeSigs = append(nodeSigs, bifnode.Signature{PublicKey: s.PublicKey, SignData: s.SignData})
	}
	return a.node.SubmitTransaction(ctx, blob, nodeSigs)
}

// rawParams re-encodes positional params so handlers can decode them into typed shapes
func rawParams(method string, params []any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, &MethodInputError{Method: method, Err: fmt.Errorf("param %d: %w", i, err)}
		}
		out = append(out, b)
	}
	return out, nil
}

func param[T any](method string, params []json.RawMessage, i int) (T, error) {
	var v T
	if i >= len(params) {
		return v, &MethodInputError{Method: method, Err: fmt.Errorf("missing param %d", i)}
	}
	if err := json.Unmarshal(params[i], &v); err != nil {
		return v, &MethodInputError{Method: method, Err: fmt.Errorf("param %d: %w", i, err)}
	}
	return v, nil
}

// assign copies a handler result into the caller's result pointer
func assign(out, result any) error {
	if result == nil {
		return nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := json.Unmarshal(b, result); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}
