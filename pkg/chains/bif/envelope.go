package bif

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/types"
	"github.com/sigweihq/bifbridge/pkg/utils"
)

// Field numbers of the ledger's Transaction message and the messages it nests
const (
	fieldTxSourceAddress protowire.Number = 1
	fieldTxNonce         protowire.Number = 2
	fieldTxOperations    protowire.Number = 4
	fieldTxMetadata      protowire.Number = 5
	fieldTxFeeLimit      protowire.Number = 6
	fieldTxGasPrice      protowire.Number = 7

	fieldOpType          protowire.Number = 1
	fieldOpCreateAccount protowire.Number = 4
	fieldOpPayCoin       protowire.Number = 10

	fieldPayCoinDest   protowire.Number = 1
	fieldPayCoinAmount protowire.Number = 2
	fieldPayCoinInput  protowire.Number = 3

	fieldCreateContract    protowire.Number = 2
	fieldCreatePriv        protowire.Number = 3
	fieldCreateInitBalance protowire.Number = 5
	fieldCreateInitInput   protowire.Number = 6

	fieldContractType    protowire.Number = 1
	fieldContractPayload protowire.Number = 2

	fieldPrivThresholds protowire.Number = 3
	fieldThresholdTx    protowire.Number = 1
)

var ErrNoOperation = errors.New("envelope has no operation")

// PayCoin transfers value to an account and optionally invokes its contract
type PayCoin struct {
	Dest   string
	Amount int64
	Input  string
}

// CreateContract creates a contract account from EVM init code
type CreateContract struct {
	InitBalance  int64
	Payload      string
	InitInput    string
	ContractType int64
}

// Envelope is an unsigned ledger transaction carrying exactly one operation
type Envelope struct {
	SourceAddress string
	Nonce         int64
	FeeLimit      int64
	GasPrice      int64
	Metadata      string

	PayCoin        *PayCoin
	CreateContract *CreateContract
}

// NewEnvelope maps a populated request onto its ledger operation.
// Requests of an unknown kind have no operation and yield nil with no error.
// Missing nonce, gas limit and gas price are taken as 1.
func NewEnvelope(tx types.TransactionRequest) (*Envelope, error) {
	if tx.Kind != types.KindContractCreate && tx.Kind != types.KindContractInvoke {
		return nil, nil
	}
	if tx.Data != "" && !utils.IsHex(tx.Data) {
		return nil, fmt.Errorf("data is not hex: %q", tx.Data)
	}

	nonce := int64(1)
	if tx.Nonce != nil {
		nonce = *tx.Nonce
	}
	gasLimit := orOne(tx.GasLimit)
	gasPrice := orOne(tx.GasPrice)

	feeLimit := new(big.Int).Mul(gasLimit, gasPrice)
	if !feeLimit.IsInt64() || !gasPrice.IsInt64() {
		return nil, fmt.Errorf("fee limit %s overflows int64", feeLimit)
	}
	value := new(big.Int)
	if tx.Value != nil {
		value = tx.Value
	}
	if !value.IsInt64() {
		return nil, fmt.Errorf("value %s overflows int64", value)
	}

	env := &Envelope{
		SourceAddress: tx.From,
		Nonce:         nonce,
		FeeLimit:      feeLimit.Int64(),
		GasPrice:      gasPrice.Int64(),
	}

	switch tx.Kind {
	case types.KindContractCreate:
		env.CreateContract = &CreateContract{
			InitBalance:  value.Int64(),
			Payload:      tx.Data,
			ContractType: constants.ContractTypeEVM,
		}
	case types.KindContractInvoke:
		env.PayCoin = &PayCoin{
			Dest:   tx.To,
			Amount: value.Int64(),
			Input:  tx.Data,
		}
	}
	return env, nil
}

// Type is the ledger operation type the envelope carries
func (e *Envelope) Type() int64 {
	switch {
	case e.CreateContract != nil:
		return constants.OperationCreateAccount
	case e.PayCoin != nil:
		return constants.OperationPayCoin
	}
	return 0
}

// Marshal encodes the envelope in protobuf wire format.
// Zero-valued fields are omitted, as proto3 does.
func (e *Envelope) Marshal() ([]byte, error) {
	op, err := e.marshalOperation()
	if err != nil {
		return nil, err
	}

	var b []byte
	b = appendString(b, fieldTxSourceAddress, e.SourceAddress)
	b = appendVarint(b, fieldTxNonce, e.Nonce)
	b = appendMessage(b, fieldTxOperations, op)
	b = appendString(b, fieldTxMetadata, e.Metadata)
	b = appendVarint(b, fieldTxFeeLimit, e.FeeLimit)
	b = appendVarint(b, fieldTxGasPrice, e.GasPrice)
	return b, nil
}

// Hex is Marshal as a bare hex string, the form submitted to nodes
func (e *Envelope) Hex() (string, error) {
	b, err := e.Marshal()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(b)[2:], nil
}

func (e *Envelope) marshalOperation() ([]byte, error) {
	var b []byte
	switch {
	case e.CreateContract != nil:
		c := e.CreateContract

		var contract []byte
		contract = appendVarint(contract, fieldContractType, c.ContractType)
		contract = appendString(contract, fieldContractPayload, c.Payload)

		// every contract account gets tx_threshold 1
		thresholds := appendVarint(nil, fieldThresholdTx, 1)
		priv := appendMessage(nil, fieldPrivThresholds, thresholds)

		var create []byte
		create = appendMessage(create, fieldCreateContract, contract)
		create = appendMessage(create, fieldCreatePriv, priv)
		create = appendVarint(create, fieldCreateInitBalance, c.InitBalance)
		create = appendString(create, fieldCreateInitInput, c.InitInput)

		b = appendVarint(b, fieldOpType, constants.OperationCreateAccount)
		b = appendMessage(b, fieldOpCreateAccount, create)
	case e.PayCoin != nil:
		p := e.PayCoin

		var pay []byte
		pay = appendString(pay, fieldPayCoinDest, p.Dest)
		pay = appendVarint(pay, fieldPayCoinAmount, p.Amount)
		pay = appendString(pay, fieldPayCoinInput, p.Input)

		b = appendVarint(b, fieldOpType, constants.OperationPayCoin)
		b = appendMessage(b, fieldOpPayCoin, pay)
	default:
		return nil, ErrNoOperation
	}
	return b, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// appendMessage always emits the field; an empty nested message is still set
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func orOne(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(1)
	}
	return v
}
