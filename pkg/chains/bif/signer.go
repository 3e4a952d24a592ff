package bif

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/keys"
	"github.com/sigweihq/bifbridge/pkg/types"
)

// Signer signs for one locally held account. The private key is fetched
// from the provider's RPC on every signature and never cached.
type Signer struct {
	address  string
	provider *Provider
}

var _ chains.Signer = (*Signer)(nil)

func NewSigner(provider *Provider, address string) *Signer {
	return &Signer{address: address, provider: provider}
}

func (s *Signer) Implementor() chains.Implementor {
	return chains.ImplementorBIFSigner
}

func (s *Signer) Address(ctx context.Context) (string, error) {
	return s.address, nil
}

// Provider returns the bound provider, or nil for an unbound signer
func (s *Signer) Provider() chains.Provider {
	if s.provider == nil {
		return nil
	}
	return s.provider
}

// Connect binds the same account to another BIF provider
func (s *Signer) Connect(provider chains.Provider) (chains.Signer, error) {
	if provider == nil || provider.Implementor() != chains.ImplementorBIFProvider {
		return nil, &chains.UnsupportedOperationError{Operation: "connect", Reason: "provider is not a BIF provider"}
	}
	bp, ok := provider.(*Provider)
	if !ok {
		return nil, &chains.UnsupportedOperationError{Operation: "connect", Reason: fmt.Sprintf("unexpected provider type %T", provider)}
	}
	return NewSigner(bp, s.address), nil
}

// PrivateKey returns the encoded private key of the signer's account
func (s *Signer) PrivateKey(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", &chains.MissingProviderError{Operation: "privateKey"}
	}
	var encoded string
	if err := s.provider.RPC().Request(ctx, MethodAccountPrivateKey, []any{s.address}, &encoded); err != nil {
		return "", err
	}
	return encoded, nil
}

// SignTransaction encodes tx as a ledger envelope and signs the raw blob bytes.
// Requests whose kind has no ledger operation return "" and no error.
func (s *Signer) SignTransaction(ctx context.Context, tx types.TransactionRequest) (string, error) {
	env, err := NewEnvelope(tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if env == nil {
		return "", nil
	}

	blob, err := env.Hex()
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if s.provider != nil {
		s.provider.logger.Debug("signing transaction",
			"address", s.address,
			"operation", env.Type(),
			"nonce", env.Nonce)
	}
	return s.sign(ctx, raw, blob)
}

// SignMessage signs message as is; the envelope blob is its 0x hex form
func (s *Signer) SignMessage(ctx context.Context, message []byte) (string, error) {
	return s.sign(ctx, message, hexutil.Encode(message))
}

func (s *Signer) sign(ctx context.Context, msg []byte, blob string) (string, error) {
	encoded, err := s.PrivateKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load key for %s: %w", s.address, err)
	}
	key, err := keys.ParsePrivateKey(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to load key for %s: %w", s.address, err)
	}

	out, err := json.Marshal(types.SignedEnvelope{
		Signature: []types.Signature{{
			SignData:  hex.EncodeToString(key.Sign(msg)),
			PublicKey: key.PublicKey().Encode(),
		}},
		Blob: blob,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode signed envelope: %w", err)
	}
	return string(out), nil
}

// VoidSigner knows an address but holds no key; every signing call fails
type VoidSigner struct {
	address  string
	provider chains.Provider
}

var _ chains.Signer = (*VoidSigner)(nil)

func NewVoidSigner(address string, provider chains.Provider) *VoidSigner {
	return &VoidSigner{address: address, provider: provider}
}

func (v *VoidSigner) Implementor() chains.Implementor {
	return chains.ImplementorVoidSigner
}

func (v *VoidSigner) Address(ctx context.Context) (string, error) {
	return v.address, nil
}

func (v *VoidSigner) Provider() chains.Provider {
	return v.provider
}

func (v *VoidSigner) Connect(provider chains.Provider) (chains.Signer, error) {
	return NewVoidSigner(v.address, provider), nil
}

func (v *VoidSigner) SignTransaction(ctx context.Context, tx types.TransactionRequest) (string, error) {
	return "", &chains.UnsupportedOperationError{Operation: "signTransaction", Reason: "VoidSigner cannot sign transactions"}
}

func (v *VoidSigner) SignMessage(ctx context.Context, message []byte) (string, error) {
	return "", &chains.UnsupportedOperationError{Operation: "signMessage", Reason: "VoidSigner cannot sign messages"}
}
