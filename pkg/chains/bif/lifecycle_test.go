package bif

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// brokenSigner cannot report its address
type brokenSigner struct {
	*VoidSigner
}

func (brokenSigner) Address(context.Context) (string, error) {
	return "", errTransport
}

func newKeyedRPC() *fakeRPC {
	return newFakeRPC().reply(MethodAccountPrivateKey, `"`+keyDeployer+`"`)
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills missing fields", func(t *testing.T) {
		rpc := newKeyedRPC().reply(MethodGetNonce, `{"errorCode":0,"result":{"nonce":"1"}}`)
		p := newTestProvider(rpc)
		l := NewLifecycle(p, NewSigner(p, addrDeployer))

		tx := types.TransactionRequest{To: addrContract, Data: "0x6057"}
		b, err := l.Populate(ctx, tx)
		require.NoError(t, err)

		got := b.Request()
		assert.Equal(t, types.StatePopulated, b.State())
		assert.Equal(t, addrDeployer, got.From)
		assert.Equal(t, types.KindContractInvoke, got.Kind)
		require.NotNil(t, got.Nonce)
		assert.Equal(t, int64(2), *got.Nonce)
		assert.Equal(t, int64(10000000), got.GasLimit.Int64())
		assert.Equal(t, int64(1), got.GasPrice.Int64())

		// the caller's request is untouched
		assert.Equal(t, types.TransactionRequest{To: addrContract, Data: "0x6057"}, tx)

		calls := rpc.callsTo(MethodGetNonce)
		require.Len(t, calls, 1)
		assert.Equal(t, []any{AddressParams{Address: addrDeployer}}, calls[0].Params)
	})

	t.Run("keeps provided fields", func(t *testing.T) {
		rpc := newKeyedRPC()
		p := newTestProvider(rpc)
		l := NewLifecycle(p, NewSigner(p, addrDeployer))

		nonce := int64(40)
		b, err := l.Populate(ctx, types.TransactionRequest{
			From:     addrAlice,
			Nonce:    &nonce,
			GasLimit: big.NewInt(500),
			GasPrice: big.NewInt(2),
			Data:     "0x6080",
		})
		require.NoError(t, err)

		got := b.Request()
		assert.Equal(t, addrAlice, got.From)
		assert.Equal(t, types.KindContractCreate, got.Kind)
		assert.Equal(t, int64(40), *got.Nonce)
		assert.Equal(t, int64(500), got.GasLimit.Int64())
		assert.Equal(t, int64(2), got.GasPrice.Int64())
		assert.Zero(t, rpc.count(MethodGetNonce))
	})

	t.Run("unknown account nonce", func(t *testing.T) {
		rpc := newKeyedRPC().reply(MethodGetNonce, `{"errorCode":4,"errorDesc":"account not exist"}`)
		p := newTestProvider(rpc)
		l := NewLifecycle(p, NewSigner(p, addrDeployer))

		b, err := l.Populate(ctx, types.TransactionRequest{To: addrBob})
		require.NoError(t, err)
		assert.Equal(t, int64(0), *b.Request().Nonce)
	})

	stageErrors := []struct {
		name      string
		rpc       *fakeRPC
		signer    func(p *Provider) chains.Signer
		wantStage string
	}{
		{
			name:      "from",
			rpc:       newKeyedRPC(),
			signer:    func(p *Provider) chains.Signer { return brokenSigner{NewVoidSigner("", p)} },
			wantStage: StageFrom,
		},
		{
			name:      "nonce",
			rpc:       newKeyedRPC().fail(MethodGetNonce, errTransport),
			signer:    func(p *Provider) chains.Signer { return NewSigner(p, addrDeployer) },
			wantStage: StageNonce,
		},
	}
	for _, tt := range stageErrors {
		t.Run("stage "+tt.name, func(t *testing.T) {
			p := newTestProvider(tt.rpc)
			l := NewLifecycle(p, tt.signer(p))

			_, err := l.Populate(ctx, types.TransactionRequest{To: addrBob})

			var populateErr *PopulateError
			require.ErrorAs(t, err, &populateErr)
			assert.Equal(t, tt.wantStage, populateErr.Stage)
			assert.ErrorIs(t, err, errTransport)
		})
	}
}

func TestSend(t *testing.T) {
	rpc := newKeyedRPC().
		reply(MethodGetNonce, `{"errorCode":0,"result":{"nonce":"6"}}`).
		reply(MethodSubmitTrans, `{"results":[{"error_code":0,"hash":"tx-a"}],"success_count":1}`)
	p := newTestProvider(rpc)

	resp, err := NewLifecycle(p, NewSigner(p, addrDeployer)).Send(context.Background(), types.TransactionRequest{To: addrBob})
	require.NoError(t, err)
	assert.Equal(t, "tx-a", resp.Hash)
	assert.Equal(t, addrDeployer, resp.From)
	assert.Equal(t, int64(7), resp.Nonce)
}

func TestExecute_Rejected(t *testing.T) {
	rpc := newKeyedRPC().
		reply(MethodGetNonce, `{"errorCode":0,"result":{"nonce":"1"}}`).
		reply(MethodSubmitTrans, `{"results":[{"error_code":93,"error_desc":"nonce too small"}],"success_count":0}`)
	p := newTestProvider(rpc)

	out, err := NewLifecycle(p, NewSigner(p, addrDeployer)).Execute(context.Background(), types.TransactionRequest{To: addrBob}, 1)
	require.NoError(t, err)
	assert.Equal(t, types.StateSubmitted, out.Confirmation.State)
	assert.False(t, out.Confirmation.State.Terminal())
	assert.Empty(t, out.Response.Hash)
	assert.Empty(t, out.Confirmation.Receipt.TransactionHash)
	assert.Zero(t, rpc.count(MethodGetTransactionInfo))
}

func TestExecute_VoidSigner(t *testing.T) {
	rpc := newFakeRPC().reply(MethodGetNonce, `{"errorCode":0,"result":{"nonce":"1"}}`)
	p := newTestProvider(rpc)

	_, err := NewLifecycle(p, NewVoidSigner(addrAlice, p)).Execute(context.Background(), types.TransactionRequest{To: addrBob}, 1)

	var unsupported *chains.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Zero(t, rpc.count(MethodSubmitTrans))
}

// fakeLedgerNode serves the node REST surface for one account and one contract
type fakeLedgerNode struct {
	t *testing.T

	mu        sync.Mutex
	submitted []bifnode.SubmitItem
	pending   int
}

func (n *fakeLedgerNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/getAccountBase":
		assert.Equal(n.t, addrDeployer, q.Get("address"))
		fmt.Fprintf(w, `{"error_code":0,"result":{"address":"%s","balance":1000,"nonce":1}}`, addrDeployer)

	case "/getAccount":
		assert.Equal(n.t, addrContract, q.Get("address"))
		fmt.Fprintf(w, `{"error_code":0,"result":{"address":"%s","contract":{"type":1,"payload":"6080"}}}`, addrContract)

	case "/submitTransaction":
		var body struct {
			Items []bifnode.SubmitItem `json:"items"`
		}
		assert.NoError(n.t, json.NewDecoder(r.Body).Decode(&body))
		n.mu.Lock()
		n.submitted = append(n.submitted, body.Items...)
		n.mu.Unlock()
		fmt.Fprint(w, `{"results":[{"error_code":0,"hash":"tx-a"}],"success_count":1}`)

	case "/getLedger":
		seq := q.Get("seq")
		if seq == "" {
			seq = "5"
		}
		fmt.Fprintf(w, `{"error_code":0,"result":{"header":{"seq":%s,"hash":"h%s","close_time":1700000000000000,"version":1000}}}`, seq, seq)

	case "/getTransactionHistory":
		assert.Equal(n.t, "tx-a", q.Get("hash"))
		n.mu.Lock()
		pending := n.pending > 0
		n.pending--
		n.mu.Unlock()
		if pending {
			fmt.Fprint(w, `{"error_code":4,"error_desc":"not found"}`)
			return
		}
		fmt.Fprintf(w, `{"error_code":0,"result":{"total_count":1,"transactions":[{
			"hash":"tx-a","ledger_seq":5,"actual_fee":3200,"error_code":0,
			"transaction":{"source_address":"%s","nonce":2,"fee_limit":10000000,"gas_price":1,
				"operations":[{"type":7,"pay_coin":{"dest_address":"%s"}}]}}]}}`, addrDeployer, addrContract)

	default:
		http.NotFound(w, r)
	}
}

func (n *fakeLedgerNode) submissions() []bifnode.SubmitItem {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bifnode.SubmitItem(nil), n.submitted...)
}

func TestExecute_AgainstNode(t *testing.T) {
	v := vectorByName(t, "payCoin")
	node := &fakeLedgerNode{t: t, pending: 2}
	server := httptest.NewServer(node)
	defer server.Close()

	client, err := bifnode.NewClient([]string{server.URL},
		bifnode.WithLogger(quietLogger()),
		bifnode.WithRetryDelay(time.Millisecond))
	require.NoError(t, err)

	p := newTestProvider(newTestAccounts(t, client, v.PrivateKey))
	signer, err := SignerFor(context.Background(), p, v.From)
	require.NoError(t, err)

	out, err := NewLifecycle(p, signer).Execute(context.Background(), types.TransactionRequest{
		To:   v.To,
		Data: v.Data,
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, types.StateConfirmed, out.Confirmation.State)
	assert.Equal(t, 3, out.Confirmation.Polls)
	assert.Equal(t, "tx-a", out.Response.Hash)
	assert.Equal(t, int64(v.Nonce), *out.Request.Nonce)

	receipt := out.Confirmation.Receipt
	assert.Equal(t, "tx-a", receipt.TransactionHash)
	assert.Equal(t, addrContract, receipt.ContractAddress)
	assert.Equal(t, "h5", receipt.BlockHash)

	var want types.SignedEnvelope
	require.NoError(t, json.Unmarshal([]byte(v.Signed), &want))

	submitted := node.submissions()
	require.Len(t, submitted, 1)
	got := submitted[0]
	assert.Equal(t, v.Blob, got.TransactionBlob)
	require.Len(t, got.Signatures, 1)
	assert.Equal(t, want.Signature[0].PublicKey, got.Signatures[0].PublicKey)
	assert.Equal(t, want.Signature[0].SignData, got.Signatures[0].SignData)
}
