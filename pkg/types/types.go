package types

import (
	"context"
	"math/big"
	"time"
)

// Kind classifies a BIF transaction by the single operation it carries
type Kind int

const (
	KindUnknown        Kind = 0
	KindContractCreate Kind = 1 // create_account operation carrying EVM init code
	KindContractInvoke Kind = 7 // pay_coin operation to an account or contract
)

func (k Kind) String() string {
	switch k {
	case KindContractCreate:
		return "contract-create"
	case KindContractInvoke:
		return "contract-invoke"
	default:
		return "unknown"
	}
}

// TransactionRequest is the standard outbound transaction.
// Nil pointer fields are "not provided" and get filled during population.
type TransactionRequest struct {
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"` // empty means contract creation
	Nonce    *int64   `json:"nonce,omitempty"`
	GasLimit *big.Int `json:"gasLimit,omitempty"`
	GasPrice *big.Int `json:"gasPrice,omitempty"`
	Data     string   `json:"data,omitempty"` // hex payload, 0x-prefixed
	Value    *big.Int `json:"value,omitempty"`
	Kind     Kind     `json:"type,omitempty"`
}

// Signature is one (public key, signature) pair of a signed envelope
type Signature struct {
	SignData  string `json:"sign_data"`
	PublicKey string `json:"public_key"`
}

// SignedEnvelope is the signer output: the hex protobuf blob plus its signatures
type SignedEnvelope struct {
	Signature []Signature `json:"signature"`
	Blob      string      `json:"blob"`
}

// WaitFunc blocks until the transaction is confirmed or polling gives up
type WaitFunc func(ctx context.Context, confirmations int) (*Receipt, error)

// TransactionResponse is a submitted or queried transaction
type TransactionResponse struct {
	Hash          string   `json:"hash"`
	BlockNumber   int64    `json:"blockNumber"`
	BlockHash     string   `json:"blockHash"`
	Timestamp     int64    `json:"timestamp"`
	Confirmations int      `json:"confirmations"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	Raw           string   `json:"raw,omitempty"`
	Nonce         int64    `json:"nonce"`
	GasLimit      *big.Int `json:"gasLimit"`
	GasPrice      *big.Int `json:"gasPrice"`
	Data          string   `json:"data"`
	Value         *big.Int `json:"value"`
	ChainID       int64    `json:"chainId"`
	Type          int      `json:"type"`

	WaitFunc WaitFunc `json:"-"`
}

// NewTransactionResponse returns a response with every field at its zero value
func NewTransactionResponse() *TransactionResponse {
	return &TransactionResponse{
		GasLimit: new(big.Int),
		GasPrice: new(big.Int),
		Value:    new(big.Int),
	}
}

// Wait runs the confirmation poller attached at submission.
// Responses that were never submitted resolve to an empty receipt.
func (r *TransactionResponse) Wait(ctx context.Context, confirmations int) (*Receipt, error) {
	if r.WaitFunc == nil {
		return NewReceipt(), nil
	}
	return r.WaitFunc(ctx, confirmations)
}

// Log is a contract event harvested from a BIF log operation
type Log struct {
	BlockNumber      int64    `json:"blockNumber"`
	BlockHash        string   `json:"blockHash"`
	TransactionIndex int      `json:"transactionIndex"`
	Removed          bool     `json:"removed"`
	Address          string   `json:"address"`
	Data             string   `json:"data"`
	Topics           []string `json:"topics"`
	TransactionHash  string   `json:"transactionHash"`
	LogIndex         int      `json:"logIndex"`
}

// Receipt is a normalized transaction receipt
type Receipt struct {
	To                string   `json:"to"`
	From              string   `json:"from"`
	ContractAddress   string   `json:"contractAddress"`
	TransactionIndex  int      `json:"transactionIndex"`
	Root              string   `json:"root"`
	GasUsed           *big.Int `json:"gasUsed"`
	LogsBloom         string   `json:"logsBloom"`
	BlockHash         string   `json:"blockHash"`
	TransactionHash   string   `json:"transactionHash"`
	Logs              []Log    `json:"logs"`
	BlockNumber       int64    `json:"blockNumber"`
	Confirmations     int      `json:"confirmations"`
	CumulativeGasUsed *big.Int `json:"cumulativeGasUsed"`
	EffectiveGasPrice *big.Int `json:"effectiveGasPrice"`
	Byzantium         bool     `json:"byzantium"`
	Type              int      `json:"type"`
	Status            int      `json:"status"`
}

// NewReceipt returns a receipt with every field at its zero value
func NewReceipt() *Receipt {
	return &Receipt{
		GasUsed:           new(big.Int),
		Logs:              []Log{},
		CumulativeGasUsed: new(big.Int),
		EffectiveGasPrice: new(big.Int),
	}
}

// BlockHeader holds the fields shared by Block and BlockWithTransactions
type BlockHeader struct {
	Hash          string   `json:"hash"`
	ParentHash    string   `json:"parentHash"`
	Number        int64    `json:"number"`
	Timestamp     int64    `json:"timestamp"`
	Nonce         string   `json:"nonce"`
	Difficulty    int64    `json:"difficulty"`
	GasLimit      *big.Int `json:"gasLimit"`
	GasUsed       *big.Int `json:"gasUsed"`
	Miner         string   `json:"miner"`
	ExtraData     string   `json:"extraData"`
	BaseFeePerGas *big.Int `json:"baseFeePerGas,omitempty"`
}

// Block is a ledger with its transaction hashes
type Block struct {
	BlockHeader
	Transactions []string `json:"transactions"`
}

// NewBlock returns the zero block
func NewBlock() *Block {
	return &Block{
		BlockHeader: BlockHeader{
			Nonce:    "0",
			GasLimit: new(big.Int),
			GasUsed:  new(big.Int),
		},
		Transactions: []string{},
	}
}

// BlockWithTransactions is a ledger with its transactions resolved
type BlockWithTransactions struct {
	BlockHeader
	Transactions []*TransactionResponse `json:"transactions"`
}

// NewBlockWithTransactions returns the zero block with transactions
func NewBlockWithTransactions() *BlockWithTransactions {
	return &BlockWithTransactions{
		BlockHeader: BlockHeader{
			GasLimit:      new(big.Int),
			GasUsed:       new(big.Int),
			BaseFeePerGas: new(big.Int),
		},
		Transactions: []*TransactionResponse{},
	}
}

// FeeData mirrors the standard fee query. BIF blocks carry no base fee,
// so only GasPrice is ever set.
type FeeData struct {
	LastBaseFeePerGas    *big.Int `json:"lastBaseFeePerGas"`
	MaxFeePerGas         *big.Int `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int `json:"maxPriorityFeePerGas"`
	GasPrice             *big.Int `json:"gasPrice"`
}

// LifecycleState is the position of an outbound transaction in its lifecycle
type LifecycleState int

const (
	StateBuilt LifecycleState = iota
	StatePopulated
	StateSigned
	StateSubmitted
	StateConfirmed
	StateTimedOut
	StateDriftExceeded
)

func (s LifecycleState) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StatePopulated:
		return "populated"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateTimedOut:
		return "timed-out"
	case StateDriftExceeded:
		return "drift-exceeded"
	default:
		return "unknown"
	}
}

// Terminal reports whether polling has finished in this state
func (s LifecycleState) Terminal() bool {
	return s == StateConfirmed || s == StateTimedOut || s == StateDriftExceeded
}

// ConfirmationState tracks one confirmation wait
type ConfirmationState struct {
	SubmittedAt           time.Time
	StartHeight           int64 // -1 until the first successful height read
	LastSeenHeight        int64
	RequiredConfirmations int
}

// Confirmation is the outcome of a confirmation wait
type Confirmation struct {
	State   LifecycleState
	Receipt *Receipt
	Polls   int
}

// Filter selects logs. BIF has no log index, so filters never match.
type Filter struct {
	FromBlock string   `json:"fromBlock,omitempty"`
	ToBlock   string   `json:"toBlock,omitempty"`
	Address   string   `json:"address,omitempty"`
	Topics    []string `json:"topics,omitempty"`
}
