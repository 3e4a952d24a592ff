// Package address converts between the two BIF address forms.
//
// The tagged form is what the ledger shows users:
//
//	did:bid:<sign-tag><encode-tag><base58 payload>
//
// The linear form is what contract ABI encoding carries:
//
//	0x<sign byte><encode byte><hex payload>
//
// Payloads use the BIF base58 alphabet, which swaps b/B and u/U relative to
// the Bitcoin alphabet.
//
// Only the sign tag 'z' and encode tags 's' and 't' are known. Anything else maps
// to the default pair 'e'/'f' (0x65/0x66), so unknown tags do not round trip.
package address

import (
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	TaggedPrefix = "did:bid:"

	// tagged header is the prefix plus the two tag characters
	taggedHeaderLen = len(TaggedPrefix) + 2
	// linear header is 0x plus the sign and encode bytes in hex
	linearHeaderLen = 6

	DefaultSignTag    = 'e'
	DefaultEncodeTag  = 'f'
	DefaultSignByte   = 0x65
	DefaultEncodeByte = 0x66
)

// Alphabet is the base58 alphabet of BIF addresses and keys
var Alphabet = base58.NewAlphabet("123456789AbCDEFGHJKLMNPQRSTuVWXYZaBcdefghijkmnopqrstUvwxyz")

var (
	signTagToByte   = map[byte]byte{'z': 0x7a}
	encodeTagToByte = map[byte]byte{'s': 0x73, 't': 0x74}
	signByteToTag   = map[byte]byte{0x7a: 'z'}
	encodeByteToTag = map[byte]byte{0x73: 's', 0x74: 't'}
)

// ToLinear converts a tagged address into its linear hex form.
func ToLinear(tagged string) (string, error) {
	if !strings.HasPrefix(tagged, TaggedPrefix) || len(tagged) < taggedHeaderLen {
		return "", &DecodeError{Value: tagged, Err: ErrMissingPrefix}
	}

	payload, err := DecodeBase58(tagged[taggedHeaderLen:])
	if err != nil {
		return "", &DecodeError{Value: tagged, Err: err}
	}

	sign := lookup(signTagToByte, tagged[len(TaggedPrefix)], DefaultSignByte)
	encode := lookup(encodeTagToByte, tagged[len(TaggedPrefix)+1], DefaultEncodeByte)

	var sb strings.Builder
	sb.Grow(linearHeaderLen + 2*len(payload))
	sb.WriteString("0x")
	sb.WriteString(hex.EncodeToString([]byte{sign, encode}))
	sb.WriteString(hex.EncodeToString(payload))
	return sb.String(), nil
}

// ToTagged converts a linear hex address back into its tagged form.
func ToTagged(linear string) (string, error) {
	if !strings.HasPrefix(linear, "0x") || len(linear) < linearHeaderLen {
		return "", &DecodeError{Value: linear, Err: ErrMissingHex}
	}

	header, err := hex.DecodeString(linear[2:linearHeaderLen])
	if err != nil {
		return "", &DecodeError{Value: linear, Err: err}
	}
	payload, err := hex.DecodeString(linear[linearHeaderLen:])
	if err != nil {
		return "", &DecodeError{Value: linear, Err: err}
	}

	sign := lookup(signByteToTag, header[0], DefaultSignTag)
	encode := lookup(encodeByteToTag, header[1], DefaultEncodeTag)

	return TaggedPrefix + string([]byte{sign, encode}) + EncodeBase58(payload), nil
}

// EncodeBase58 encodes b with the BIF alphabet
func EncodeBase58(b []byte) string {
	return base58.EncodeAlphabet(b, Alphabet)
}

// DecodeBase58 decodes s with the BIF alphabet
func DecodeBase58(s string) ([]byte, error) {
	return base58.DecodeAlphabet(s, Alphabet)
}

// IsTagged reports whether s carries the tagged prefix
func IsTagged(s string) bool {
	return strings.HasPrefix(s, TaggedPrefix)
}

func lookup(m map[byte]byte, key, fallback byte) byte {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
