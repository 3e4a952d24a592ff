package bif

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/config"
)

func TestAdapter(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(newTestAccounts(t, &fakeNode{}, keyAlice, keyBob))
	a := NewAdapter("bif-local", p)

	assert.Equal(t, "bif-local", a.Network())
	assert.Same(t, p, a.Provider())

	accounts, err := Accounts(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{addrAlice, addrBob}, accounts)

	signers, err := a.Signers(ctx)
	require.NoError(t, err)
	require.Len(t, signers, 2)
	for i, s := range signers {
		addr, err := s.Address(ctx)
		require.NoError(t, err)
		assert.Equal(t, accounts[i], addr)
		assert.Same(t, p, s.Provider())
	}

	signer, err := a.Signer(ctx, addrBob)
	require.NoError(t, err)
	assert.Equal(t, chains.ImplementorBIFSigner, signer.Implementor())

	_, err = a.Signer(ctx, addrDeployer)
	var notExist *NotExistAccountPrivateKeyError
	require.ErrorAs(t, err, &notExist)
	assert.Equal(t, addrDeployer, notExist.Address)

	assert.NotNil(t, a.Lifecycle(signer))
}

func TestAccounts_TransportError(t *testing.T) {
	p := newTestProvider(newFakeRPC().fail(MethodAccounts, errTransport))

	_, err := Signers(context.Background(), p)
	require.ErrorIs(t, err, errTransport)
}

func newLedgerServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getLedger" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"error_code":0,"result":{"header":{"seq":77,"hash":"h77"}}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewAdapterFromConfig(t *testing.T) {
	server := newLedgerServer(t)
	reg := prometheus.NewRegistry()
	metrics := bifnode.NewMetrics(reg)

	a, err := NewAdapterFromConfig(quietLogger(), "bif-local", config.NetworkConfig{
		URL:         server.URL,
		BifNet:      true,
		BifAccounts: []string{keyAlice},
	}, metrics)
	require.NoError(t, err)
	assert.Equal(t, "bif-local", a.Network())

	height, err := a.Provider().BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(77), height)

	count, err := testutil.GatherAndCount(reg, "bifbridge_node_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	accounts, err := Accounts(context.Background(), a.provider)
	require.NoError(t, err)
	assert.Equal(t, []string{addrAlice}, accounts)
}

func TestNewAdapterFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		network config.NetworkConfig
		check   func(t *testing.T, err error)
	}{
		{
			name:    "not a BIF network",
			network: config.NetworkConfig{URL: "http://127.0.0.1:8545"},
			check: func(t *testing.T, err error) {
				var unsupported *chains.UnsupportedNetworkError
				require.ErrorAs(t, err, &unsupported)
				assert.Equal(t, "net", unsupported.Network)
			},
		},
		{
			name:    "no endpoints",
			network: config.NetworkConfig{BifNet: true, BifAccounts: []string{keyAlice}},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
			},
		},
		{
			name:    "bad account",
			network: config.NetworkConfig{URL: "http://127.0.0.1:30010", BifNet: true, BifAccounts: []string{"priBAD"}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidPrivateKeyError
				require.ErrorAs(t, err, &invalid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapterFromConfig(quietLogger(), "net", tt.network, nil)
			tt.check(t, err)
		})
	}
}

func TestRegisterNetworks(t *testing.T) {
	server := newLedgerServer(t)
	cfg := &config.Config{
		Networks: map[string]config.NetworkConfig{
			"bif-local":  {URL: server.URL, BifNet: true, BifAccounts: []string{keyAlice}},
			"bif-broken": {URL: server.URL, BifNet: true, BifAccounts: []string{"priBAD"}},
			"ethereum":   {URL: "http://127.0.0.1:8545"},
		},
	}

	registry := chains.NewRegistry()
	require.NoError(t, RegisterNetworks(quietLogger(), registry, cfg, nil))
	assert.Equal(t, []string{"bif-local"}, registry.GetSupportedNetworks())

	adapter, err := registry.Get("bif-local")
	require.NoError(t, err)
	assert.Equal(t, chains.ImplementorBIFProvider, adapter.Provider().Implementor())

	require.Error(t, RegisterNetworks(quietLogger(), registry, nil, nil))
}

func TestInitBIFChains(t *testing.T) {
	server := newLedgerServer(t)
	cfg := &config.Config{
		Networks: map[string]config.NetworkConfig{
			"bif-init-test": {URL: server.URL, BifNet: true, BifAccounts: []string{keyBob}},
		},
	}

	registry, err := InitBIFChains(quietLogger(), cfg, nil)
	require.NoError(t, err)
	assert.Same(t, chains.GetGlobalRegistry(), registry)
	assert.True(t, registry.IsSupported("bif-init-test"))
}
