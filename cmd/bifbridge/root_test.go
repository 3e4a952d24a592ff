package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/keys"
)

const (
	keyAlice     = "priSPKoJ8vUfXk92axGtokCDiw8cM7KHznL6iugvNxeANctrdL"
	addrAlice    = "did:bid:ef9jgpHmnF2Qv5miQUwgU9XeUCkYkVrj"
	addrDeployer = "did:bid:ef56JqCtiFNBU7z8Y8Nd47QsNPVNbTu3"
	addrContract = "did:bid:efcnfLLAt6542d1tavefxPfoeGwhRTGp"
	linearAlice  = "0x6566202fef89434d68f5e108860375a25a23955bfaba3e7c"
)

func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	out := runRaw(t, args...)
	if out.err != nil {
		return nil, out.err
	}
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.stdout, &got))
	return got, nil
}

type result struct {
	stdout []byte
	err    error
}

func runRaw(t *testing.T, args ...string) result {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.Bytes(), err: err}
}

func TestAddressCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		key  string
		want string
	}{
		{name: "linear", args: []string{"address", "linear", addrAlice}, key: "linear", want: linearAlice},
		{name: "tagged", args: []string{"address", "tagged", linearAlice}, key: "tagged", want: addrAlice},
		{name: "contract", args: []string{"address", "contract", addrDeployer, "1"}, key: "contract", want: addrContract},
		{
			name: "word",
			args: []string{"address", "word", addrAlice},
			key:  "word",
			want: "0x0000000000000000" + linearAlice[2:],
		},
		{
			name: "decode word",
			args: []string{"address", "word", "0x0000000000000000" + linearAlice[2:]},
			key:  "tagged",
			want: addrAlice,
		},
		{
			name: "calldata",
			args: []string{"address", "calldata", "0x70a08231", addrAlice},
			key:  "data",
			want: "0x70a08231" + "0000000000000000" + linearAlice[2:],
		},
		{
			name: "normalize",
			args: []string{"address", "normalize", "0x6566" + "11111111111111111111111111111111111111111111"},
			key:  "linear",
			want: "0x6566" + "11111111111111111111111111111111111111111111",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[tt.key])
		})
	}
}

func TestAddressCommands_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad tagged", args: []string{"address", "linear", "did:bid:ef0OIl"}},
		{name: "bad nonce", args: []string{"address", "contract", addrDeployer, "x"}},
		{name: "short word", args: []string{"address", "word", "0x6566"}},
		{name: "bad selector", args: []string{"address", "calldata", "0x70a0", addrAlice}},
		{name: "missing argument", args: []string{"address", "tagged"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestKeysCommands(t *testing.T) {
	got, err := run(t, "keys", "address", keyAlice)
	require.NoError(t, err)
	assert.Equal(t, addrAlice, got["address"])

	got, err = run(t, "keys", "new")
	require.NoError(t, err)
	key, err := keys.ParsePrivateKey(got["privateKey"].(string))
	require.NoError(t, err)
	assert.Equal(t, key.Address(), got["address"])
	assert.Equal(t, key.PublicKey().Encode(), got["publicKey"])

	_, err = run(t, "keys", "address", "priBAD")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "keys", "new")
	assert.ErrorContains(t, err, "invalid --log-level")
}

// newNode serves the account and ledger endpoints the chain commands read
func newNode(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/getAccountBase":
			fmt.Fprintf(w, `{"error_code":0,"result":{"address":"%s","balance":1000,"nonce":4}}`, r.URL.Query().Get("address"))
		case "/getLedger":
			fmt.Fprint(w, `{"error_code":0,"result":{"header":{"seq":77,"hash":"h77"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, endpoints ...string) string {
	t.Helper()
	body := fmt.Sprintf(`defaultNetwork: bif-local
networks:
  bif-local:
    url: %s
    bifNet: true
    bifAccounts:
      - %s
`, endpoints[0], keyAlice)
	if len(endpoints) > 1 {
		body += "    urls:\n"
		for _, e := range endpoints[1:] {
			body += "      - " + e + "\n"
		}
	}
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestChainCommands(t *testing.T) {
	cfg := writeConfig(t, newNode(t).URL)

	out := runRaw(t, "--config", cfg, "accounts")
	require.NoError(t, out.err)
	var accounts []string
	require.NoError(t, json.Unmarshal(out.stdout, &accounts))
	assert.Equal(t, []string{addrAlice}, accounts)

	got, err := run(t, "--config", cfg, "balance", addrAlice)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), got["balance"])

	got, err = run(t, "--config", cfg, "nonce", addrAlice)
	require.NoError(t, err)
	assert.Equal(t, float64(4), got["nonce"])

	_, err = run(t, "--config", cfg, "send")
	assert.ErrorContains(t, err, "--from is required")
}

func TestChainCommands_UnknownNetwork(t *testing.T) {
	cfg := writeConfig(t, newNode(t).URL)
	_, err := run(t, "--config", cfg, "--network", "bif-nowhere", "balance", addrAlice)
	assert.Error(t, err)
}

func TestNodesCommand(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := newNode(t)

	out := runRaw(t, "--config", writeConfig(t, down.URL, up.URL), "nodes")
	require.NoError(t, out.err)

	var results []bifnode.EndpointHealth
	require.NoError(t, json.Unmarshal(out.stdout, &results))
	require.Len(t, results, 2)
	assert.Equal(t, up.URL, results[0].Endpoint)
	assert.True(t, results[0].Healthy)
	assert.Equal(t, int64(77), results[0].Height)
	assert.Equal(t, down.URL, results[1].Endpoint)
	assert.False(t, results[1].Healthy)
}
