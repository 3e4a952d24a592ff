package address

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EncodeWord converts a tagged address into the 32-byte ABI word that carries it.
// The linear bytes are left-padded with zeros like any other ABI address value.
func EncodeWord(tagged string) (common.Hash, error) {
	linear, err := ToLinear(tagged)
	if err != nil {
		return common.Hash{}, err
	}

	raw, err := hexutil.Decode(linear)
	if err != nil {
		return common.Hash{}, &DecodeError{Value: tagged, Err: err}
	}
	if len(raw) > common.HashLength {
		return common.Hash{}, &DecodeError{Value: tagged, Err: ErrWordOverflow}
	}

	return common.BytesToHash(common.LeftPadBytes(raw, common.HashLength)), nil
}

// DecodeWord reads a tagged address back out of an ABI word.
// Leading zero bytes are dropped, so the sign byte is the first non-zero byte.
func DecodeWord(word common.Hash) (string, error) {
	raw := common.TrimLeftZeroes(word.Bytes())
	return ToTagged(hexutil.Encode(raw))
}

// EncodeCallData rewrites the tagged address arguments of a contract call into ABI
// words and appends them to the 4-byte selector.
func EncodeCallData(selector []byte, addresses ...string) (string, error) {
	out := make([]byte, 0, len(selector)+len(addresses)*common.HashLength)
	out = append(out, selector...)
	for _, a := range addresses {
		word, err := EncodeWord(a)
		if err != nil {
			return "", err
		}
		out = append(out, word.Bytes()...)
	}
	return hexutil.Encode(out), nil
}
