package keys

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "priSPKdNoHfXeREnR9FTJ8L9gF3PDtopoDaSDHpQzxefWzrkMt"
	testPublicKey  = "b06566" + "03a107bff3ce10be1d70dd18e74bc09967e4d6309ba50d5f1ddc8664125531b8"
	testAddress    = "did:bid:ef23dCHgV7h6RiXN2QrPcPMXmFgZtSG3d"
)

func testSeed() []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestParsePrivateKey(t *testing.T) {
	k, err := ParsePrivateKey(testPrivateKey)
	require.NoError(t, err)

	assert.Equal(t, testPrivateKey, k.String())
	assert.Equal(t, testPublicKey, k.PublicKey().Encode())
	assert.Equal(t, testAddress, k.Address())
}

func TestParsePrivateKey_AccountVectors(t *testing.T) {
	tests := []struct {
		encoded string
		public  string
		address string
	}{
		{
			encoded: "priSPKnVwNrzJ7KiWxddfUtap7f52B8pnLtoCu6wEW3MmpuKQd",
			public:  "b06566b3ea901cbf048e5dfc38af170171db993d593f4f931b1b2d772c02f7282da47a",
			address: "did:bid:ef56JqCtiFNBU7z8Y8Nd47QsNPVNbTu3",
		},
		{
			encoded: "priSPKoJ8vUfXk92axGtokCDiw8cM7KHznL6iugvNxeANctrdL",
			public:  "b06566ce9a47f368f82fb0ac1ce5fc4a31c68ad1d875d76f52cb2baa969e02c4a6be37",
			address: "did:bid:ef9jgpHmnF2Qv5miQUwgU9XeUCkYkVrj",
		},
		{
			encoded: "priSPKpHrcXsX7AY3wSSVZXCfMeX8MvrPEBXeV5hUctomrHiWC",
			public:  "b065661e064e584f05921b28340101964879017fac269fff60774afa815df6241c983a",
			address: "did:bid:efYyP31z8gZvQi8LbXpdcSTppxxTSpGZ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			k, err := ParsePrivateKey(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.public, k.PublicKey().Encode())
			assert.Equal(t, tt.address, k.Address())
			assert.Equal(t, tt.encoded, k.String())
		})
	}
}

func TestNewPrivateKeyFromSeed(t *testing.T) {
	k, err := NewPrivateKeyFromSeed(testSeed())
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, k.String())

	_, err = NewPrivateKeyFromSeed([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "missing prefix", encoded: "abc", wantErr: ErrInvalidPrivateKey},
		{name: "bad base58", encoded: "pri0OIl", wantErr: ErrInvalidPrivateKey},
		{name: "truncated", encoded: testPrivateKey[:30], wantErr: ErrInvalidPrivateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKey(tt.encoded)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignVerify(t *testing.T) {
	k, err := ParsePrivateKey(testPrivateKey)
	require.NoError(t, err)

	msg := []byte("bif blob")
	sig := k.Sign(msg)
	assert.Len(t, sig, 64)

	pub, err := ParsePublicKey(k.PublicKey().Encode())
	require.NoError(t, err)
	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("other"), sig))
}

func TestParsePublicKey_Invalid(t *testing.T) {
	_, err := ParsePublicKey("zz")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = ParsePublicKey("b06566abcd")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = ParsePublicKey("b07a66" + strings.Repeat("00", 32))
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestGeneratePrivateKeyRoundTrip(t *testing.T) {
	k, err := GeneratePrivateKey(rand.Reader)
	require.NoError(t, err)

	encoded := k.String()
	assert.True(t, strings.HasPrefix(encoded, PrivateKeyPrefix))

	parsed, err := ParsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, k.Address(), parsed.Address())
	assert.Equal(t, k.PublicKey().Encode(), parsed.PublicKey().Encode())
}

func TestAddressFromPrivateKey(t *testing.T) {
	addr, err := AddressFromPrivateKey(testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	_, err = AddressFromPrivateKey("nope")
	assert.Error(t, err)
}
