// Package keys handles BIF ed25519 account keys.
//
// A private key is the base58 encoding of a fixed three byte header, the key type,
// the encode type and the 32 byte seed; every encoded key starts with "pri".
// Public keys travel as hex with a b0 marker followed by the same type bytes.
package keys

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/minio/sha256-simd"

	"github.com/sigweihq/bifbridge/pkg/address"
)

const (
	PrivateKeyPrefix = "pri"

	KeyTypeED25519 byte = 0x65
	KeyTypeSM2     byte = 0x7a
	EncodeBase58   byte = 0x66

	publicKeyMarker byte = 0xb0
	// addresses keep the public key hash from this offset on
	addressHashOffset = 10
)

var privateKeyHeader = []byte{0x18, 0x9e, 0x99}

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrUnsupportedKey    = errors.New("unsupported key type")
)

// PrivateKey is a parsed BIF ed25519 private key
type PrivateKey struct {
	key ed25519.PrivateKey
}

// ParsePrivateKey decodes a "pri..." string
func ParsePrivateKey(encoded string) (*PrivateKey, error) {
	if !strings.HasPrefix(encoded, PrivateKeyPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidPrivateKey, PrivateKeyPrefix)
	}

	raw, err := address.DecodeBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	headerLen := len(privateKeyHeader) + 2
	if len(raw) != headerLen+ed25519.SeedSize || !bytes.HasPrefix(raw, privateKeyHeader) {
		return nil, fmt.Errorf("%w: unexpected layout (%d bytes)", ErrInvalidPrivateKey, len(raw))
	}
	if raw[len(privateKeyHeader)] != KeyTypeED25519 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedKey, raw[len(privateKeyHeader)])
	}

	return NewPrivateKeyFromSeed(raw[headerLen:])
}

// NewPrivateKeyFromSeed builds a key from a 32 byte ed25519 seed
func NewPrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// GeneratePrivateKey creates a fresh key from rand
func GeneratePrivateKey(rand io.Reader) (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &PrivateKey{key: priv}, nil
}

// String returns the "pri..." encoding
func (k *PrivateKey) String() string {
	raw := make([]byte, 0, len(privateKeyHeader)+2+ed25519.SeedSize)
	raw = append(raw, privateKeyHeader...)
	raw = append(raw, KeyTypeED25519, EncodeBase58)
	raw = append(raw, k.key.Seed()...)
	return address.EncodeBase58(raw)
}

func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: k.key.Public().(ed25519.PublicKey)}
}

// Address is the tagged address of the key's account
func (k *PrivateKey) Address() string {
	return k.PublicKey().Address()
}

// Sign signs msg as is; callers pass raw bytes, not hex
func (k *PrivateKey) Sign(msg []byte) []byte {
	return ed25519.Sign(k.key, msg)
}

// PublicKey is a BIF ed25519 public key
type PublicKey struct {
	key ed25519.PublicKey
}

// ParsePublicKey decodes the hex encoding produced by Encode
func ParsePublicKey(encoded string) (*PublicKey, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != 3+ed25519.PublicKeySize || raw[0] != publicKeyMarker {
		return nil, fmt.Errorf("%w: unexpected layout (%d bytes)", ErrInvalidPublicKey, len(raw))
	}
	if raw[1] != KeyTypeED25519 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedKey, raw[1])
	}
	return &PublicKey{key: ed25519.PublicKey(raw[3:])}, nil
}

// Encode returns the hex form carried in signature lists
func (p *PublicKey) Encode() string {
	return hex.EncodeToString([]byte{publicKeyMarker, KeyTypeED25519, EncodeBase58}) + hex.EncodeToString(p.key)
}

// Address derives the tagged account address: bytes 10..31 of sha256(key)
func (p *PublicKey) Address() string {
	sum := sha256.Sum256(p.key)
	return address.TaggedPrefix + "ef" + address.EncodeBase58(sum[addressHashOffset:])
}

func (p *PublicKey) Verify(msg, sig []byte) bool {
	return ed25519.Verify(p.key, msg, sig)
}

// AddressFromPrivateKey parses encoded and returns its account address
func AddressFromPrivateKey(encoded string) (string, error) {
	k, err := ParsePrivateKey(encoded)
	if err != nil {
		return "", err
	}
	return k.Address(), nil
}
