package bif

import (
	"context"
	"fmt"
	"slices"

	"github.com/sigweihq/bifbridge/pkg/chains"
)

// Adapter implements chains.ChainAdapter for one BIF network
type Adapter struct {
	network  string
	provider *Provider
}

var _ chains.ChainAdapter = (*Adapter)(nil)

func NewAdapter(network string, provider *Provider) *Adapter {
	return &Adapter{network: network, provider: provider}
}

func (a *Adapter) Network() string {
	return a.network
}

func (a *Adapter) Provider() chains.Provider {
	return a.provider
}

// Lifecycle returns a lifecycle driving transactions for signer
func (a *Adapter) Lifecycle(signer chains.Signer) *Lifecycle {
	return NewLifecycle(a.provider, signer)
}

// Signers returns one signer per local account
func (a *Adapter) Signers(ctx context.Context) ([]chains.Signer, error) {
	return Signers(ctx, a.provider)
}

func (a *Adapter) Signer(ctx context.Context, address string) (chains.Signer, error) {
	return SignerFor(ctx, a.provider, address)
}

// Accounts lists the addresses the provider's RPC holds keys for
func Accounts(ctx context.Context, provider *Provider) ([]string, error) {
	var accounts []string
	if err := provider.RPC().Request(ctx, MethodAccounts, nil, &accounts); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Signers returns one signer per account known to provider
func Signers(ctx context.Context, provider *Provider) ([]chains.Signer, error) {
	accounts, err := Accounts(ctx, provider)
	if err != nil {
		return nil, err
	}
	out := make([]chains.Signer, 0, len(accounts))
	for _, addr := range accounts {
		out = append(out, NewSigner(provider, addr))
	}
	return out, nil
}

// SignerFor returns the signer for address, which must be a known account
func SignerFor(ctx context.Context, provider *Provider, address string) (chains.Signer, error) {
	accounts, err := Accounts(ctx, provider)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(accounts, address) {
		return nil, &NotExistAccountPrivateKeyError{Address: address}
	}
	return NewSigner(provider, address), nil
}
