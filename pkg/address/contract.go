package address

import (
	"strconv"
	"strings"

	"github.com/minio/sha256-simd"
)

const (
	// ContractLiteralLen is the length of a canonical linear contract address literal
	ContractLiteralLen = 50
	contractPayloadLen = 44
	contractPrefix     = "0x6566"
	// contract address payloads start at this offset of the content hash
	contractHashOffset = 10
)

// ContractAddress derives the address a contract deployed by from at nonce will get.
// The ledger hashes "<from>-<nonce>-0-0" with SHA-256 and keeps bytes 10..31.
func ContractAddress(from string, nonce uint64) string {
	raw := from + "-" + strconv.FormatUint(nonce, 10) + "-0-0"
	sum := sha256.Sum256([]byte(raw))
	return TaggedPrefix + "ef" + EncodeBase58(sum[contractHashOffset:])
}

// NormalizeContractLiteral rewrites a 0x literal embedded in contract source into a
// canonical linear address: the payload is right-padded with zeros (or cut) to 44 hex
// characters and prefixed with 0x6566. Literals that are already 50 characters long,
// or that are not 0x literals at all, come back unchanged.
func NormalizeContractLiteral(literal string) string {
	if !strings.HasPrefix(literal, "0x") || len(literal) == ContractLiteralLen {
		return literal
	}

	payload := literal[2:]
	if len(payload) > contractPayloadLen {
		payload = payload[:contractPayloadLen]
	} else {
		payload += strings.Repeat("0", contractPayloadLen-len(payload))
	}
	return contractPrefix + payload
}
