package bifnode

import "encoding/json"

// Response is the envelope every node endpoint except submitTransaction returns
type Response[T any] struct {
	ErrorCode int    `json:"error_code"`
	ErrorDesc string `json:"error_desc,omitempty"`
	Result    T      `json:"result"`
}

// LedgerHeader is the header of a closed ledger (block)
type LedgerHeader struct {
	Seq          int64  `json:"seq"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash"`
	CloseTime    int64  `json:"close_time"`
	Version      int64  `json:"version"`
	TxCount      int64  `json:"tx_count"`
}

type LedgerResult struct {
	Header LedgerHeader `json:"header"`
	Leader string       `json:"leader,omitempty"`
}

type Contract struct {
	Type    int    `json:"type"`
	Payload string `json:"payload,omitempty"`
}

type AccountResult struct {
	Address  string      `json:"address"`
	Balance  json.Number `json:"balance"`
	Nonce    int64       `json:"nonce"`
	Contract *Contract   `json:"contract,omitempty"`
}

type Signature struct {
	PublicKey string `json:"public_key,omitempty"`
	SignData  string `json:"sign_data,omitempty"`
}

type PayCoin struct {
	DestAddress string `json:"dest_address,omitempty"`
	Input       string `json:"input,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
}

type LogOperation struct {
	Datas  []string `json:"datas,omitempty"`
	Topic  string   `json:"topic,omitempty"`
	Topics []string `json:"topics,omitempty"`
}

type CreateAccount struct {
	Contract    *Contract `json:"contract,omitempty"`
	InitBalance int64     `json:"init_balance,omitempty"`
}

type Operation struct {
	Type          int            `json:"type"`
	PayCoin       *PayCoin       `json:"pay_coin,omitempty"`
	Log           *LogOperation  `json:"log,omitempty"`
	CreateAccount *CreateAccount `json:"create_account,omitempty"`
}

type TransactionBody struct {
	FeeLimit      int64       `json:"fee_limit,omitempty"`
	GasPrice      int64       `json:"gas_price,omitempty"`
	Nonce         int64       `json:"nonce,omitempty"`
	SourceAddress string      `json:"source_address,omitempty"`
	Operations    []Operation `json:"operations,omitempty"`
}

type Trigger struct {
	Transaction struct {
		Hash string `json:"hash,omitempty"`
	} `json:"transaction"`
}

// TransactionRecord is one entry of the transaction history
type TransactionRecord struct {
	ActualFee        int64           `json:"actual_fee,omitempty"`
	CloseTime        int64           `json:"close_time,omitempty"`
	ContractTxHashes []string        `json:"contract_tx_hashes,omitempty"`
	ErrorCode        int             `json:"error_code"`
	ErrorDesc        string          `json:"error_desc,omitempty"`
	Hash             string          `json:"hash,omitempty"`
	LedgerSeq        int64           `json:"ledger_seq,omitempty"`
	Signatures       []Signature     `json:"signatures,omitempty"`
	TxSize           int64           `json:"tx_size,omitempty"`
	Transaction      TransactionBody `json:"transaction"`
	Trigger          *Trigger        `json:"trigger,omitempty"`
}

type TransactionHistory struct {
	TotalCount   int64               `json:"total_count"`
	Transactions []TransactionRecord `json:"transactions"`
}

// SubmitItem is one signed transaction in a submit request
type SubmitItem struct {
	TransactionBlob string      `json:"transaction_blob"`
	Signatures      []Signature `json:"signatures"`
}

type SubmitResult struct {
	ErrorCode int    `json:"error_code"`
	ErrorDesc string `json:"error_desc"`
	Hash      string `json:"hash"`
}

type SubmitResponse struct {
	Results      []SubmitResult `json:"results"`
	SuccessCount int            `json:"success_count"`
}

// CallRequest is a read-only contract invocation
type CallRequest struct {
	ContractAddress string `json:"contract_address"`
	SourceAddress   string `json:"source_address,omitempty"`
	Input           string `json:"input"`
	OptType         int    `json:"opt_type"`
	FeeLimit        int64  `json:"fee_limit"`
	GasPrice        int64  `json:"gas_price"`
}

// OptTypeQuery runs the contract without committing state
const OptTypeQuery = 2

type QueryError struct {
	Data string `json:"data"`
}

type QueryResult struct {
	Code    int    `json:"code"`
	Data    string `json:"data"`
	Desc    string `json:"desc"`
	EVMCode string `json:"evmcode"`
	GasUsed int64  `json:"gasused"`
}

type QueryRet struct {
	Error  *QueryError  `json:"error,omitempty"`
	Result *QueryResult `json:"result,omitempty"`
}

type CallResult struct {
	QueryRets []QueryRet `json:"query_rets"`
}
