package bif

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
)

const (
	keyDeployer = "priSPKnVwNrzJ7KiWxddfUtap7f52B8pnLtoCu6wEW3MmpuKQd"
	keyAlice    = "priSPKoJ8vUfXk92axGtokCDiw8cM7KHznL6iugvNxeANctrdL"
	keyBob      = "priSPKpHrcXsX7AY3wSSVZXCfMeX8MvrPEBXeV5hUctomrHiWC"

	addrDeployer = "did:bid:ef56JqCtiFNBU7z8Y8Nd47QsNPVNbTu3"
	addrAlice    = "did:bid:ef9jgpHmnF2Qv5miQUwgU9XeUCkYkVrj"
	addrBob      = "did:bid:efYyP31z8gZvQi8LbXpdcSTppxxTSpGZ"
	addrContract = "did:bid:efcnfLLAt6542d1tavefxPfoeGwhRTGp"
)

var errTransport = errors.New("connection refused")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type rpcCall struct {
	Method string
	Params []any
}

// fakeRPC answers methods from registered handlers. Replies are JSON
// round-tripped into the caller's result like a real transport would.
type fakeRPC struct {
	mu       sync.Mutex
	calls    []rpcCall
	handlers map[string]func(params []any) (any, error)
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{handlers: make(map[string]func(params []any) (any, error))}
}

func (f *fakeRPC) on(method string, fn func(params []any) (any, error)) *fakeRPC {
	f.handlers[method] = fn
	return f
}

// reply registers a canned JSON reply
func (f *fakeRPC) reply(method, body string) *fakeRPC {
	return f.on(method, func([]any) (any, error) { return json.RawMessage(body), nil })
}

func (f *fakeRPC) fail(method string, err error) *fakeRPC {
	return f.on(method, func([]any) (any, error) { return nil, err })
}

func (f *fakeRPC) Request(ctx context.Context, method string, params []any, result any) error {
	f.mu.Lock()
	f.calls = append(f.calls, rpcCall{Method: method, Params: params})
	h, ok := f.handlers[method]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !ok {
		return &UnknownMethodError{Method: method}
	}
	out, err := h(params)
	if err != nil {
		return err
	}
	return assign(out, result)
}

func (f *fakeRPC) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *fakeRPC) callsTo(method string) []rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rpcCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestProvider(rpc RPC, opts ...ProviderOption) *Provider {
	opts = append([]ProviderOption{
		WithLogger(quietLogger()),
		WithPollInterval(time.Millisecond),
		WithConfirmationTimeout(2 * time.Second),
	}, opts...)
	return NewProvider(rpc, opts...)
}

// fakeNode implements Node with optional per-method hooks.
// Unset hooks fail the call.
type fakeNode struct {
	getLedger               func(seq int64, withLeader bool) (*bifnode.Response[bifnode.LedgerResult], error)
	getAccountBase          func(address string) (*bifnode.Response[bifnode.AccountResult], error)
	getAccount              func(address string) (*bifnode.Response[bifnode.AccountResult], error)
	getTransactionByHash    func(hash string) (*bifnode.Response[bifnode.TransactionHistory], error)
	getTransactionsByLedger func(seq int64) (*bifnode.Response[bifnode.TransactionHistory], error)
	submitTransaction       func(blob string, sigs []bifnode.Signature) (*bifnode.SubmitResponse, error)
	callContract            func(req bifnode.CallRequest) (*bifnode.Response[bifnode.CallResult], error)
}

var errNotStubbed = errors.New("not stubbed")

func (n *fakeNode) GetLedger(_ context.Context, seq int64, withLeader bool) (*bifnode.Response[bifnode.LedgerResult], error) {
	if n.getLedger == nil {
		return nil, errNotStubbed
	}
	return n.getLedger(seq, withLeader)
}

func (n *fakeNode) GetAccountBase(_ context.Context, address string) (*bifnode.Response[bifnode.AccountResult], error) {
	if n.getAccountBase == nil {
		return nil, errNotStubbed
	}
	return n.getAccountBase(address)
}

func (n *fakeNode) GetAccount(_ context.Context, address string) (*bifnode.Response[bifnode.AccountResult], error) {
	if n.getAccount == nil {
		return nil, errNotStubbed
	}
	return n.getAccount(address)
}

func (n *fakeNode) GetTransactionByHash(_ context.Context, hash string) (*bifnode.Response[bifnode.TransactionHistory], error) {
	if n.getTransactionByHash == nil {
		return nil, errNotStubbed
	}
	return n.getTransactionByHash(hash)
}

func (n *fakeNode) GetTransactionsByLedger(_ context.Context, seq int64) (*bifnode.Response[bifnode.TransactionHistory], error) {
	if n.getTransactionsByLedger == nil {
		return nil, errNotStubbed
	}
	return n.getTransactionsByLedger(seq)
}

func (n *fakeNode) SubmitTransaction(_ context.Context, blob string, sigs []bifnode.Signature) (*bifnode.SubmitResponse, error) {
	if n.submitTransaction == nil {
		return nil, errNotStubbed
	}
	return n.submitTransaction(blob, sigs)
}

func (n *fakeNode) CallContract(_ context.Context, req bifnode.CallRequest) (*bifnode.Response[bifnode.CallResult], error) {
	if n.callContract == nil {
		return nil, errNotStubbed
	}
	return n.callContract(req)
}

func newTestAccounts(t *testing.T, node Node, privateKeys ...string) *AccountsProvider {
	t.Helper()
	a, err := NewAccountsProvider(node, privateKeys, WithAccountsLogger(quietLogger()))
	require.NoError(t, err)
	return a
}

type signedVector struct {
	Name       string `json:"name"`
	PrivateKey string `json:"privateKey"`
	From       string `json:"from"`
	To         string `json:"to"`
	Nonce      int64  `json:"nonce"`
	GasLimit   int64  `json:"gasLimit"`
	GasPrice   int64  `json:"gasPrice"`
	Data       string `json:"data"`
	Kind       int    `json:"kind"`
	Blob       string `json:"blob"`
	Signed     string `json:"signed"`
}

func loadSignedVectors(t *testing.T) []signedVector {
	t.Helper()
	data, err := os.ReadFile("testdata/signed_vectors.json")
	require.NoError(t, err)

	var vectors []signedVector
	require.NoError(t, json.Unmarshal(data, &vectors))
	require.NotEmpty(t, vectors)
	return vectors
}

func vectorByName(t *testing.T, name string) signedVector {
	t.Helper()
	for _, v := range loadSignedVectors(t) {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("no vector %q", name)
	return signedVector{}
}
