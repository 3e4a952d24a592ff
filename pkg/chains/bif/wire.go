package bif

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
)

// Height is a block height that decodes from either a JSON number or string
type Height int64

func (h *Height) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid block height %s: %w", data, err)
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block height %s: %w", data, err)
	}
	*h = Height(v)
	return nil
}

// Request parameter shapes

type AddressParams struct {
	Address string `json:"address"`
}

type ContractAddressParams struct {
	ContractAddress string `json:"contractAddress"`
}

type BlockInfoParams struct {
	BlockNumber Height `json:"blockNumber"`
	WithLeader  bool   `json:"withLeader"`
}

type BlockTransactionsParams struct {
	BlockNumber Height `json:"blockNumber"`
}

type HashParams struct {
	Hash string `json:"hash"`
}

type ContractQueryParams struct {
	SourceAddress   string `json:"sourceAddress"`
	ContractAddress string `json:"contractAddress"`
	Input           string `json:"input"`
}

// Response envelopes. Most carry errorCode; block.getTransactions and
// transaction.submitTrans pass the node's reply through as is.

// Envelope codes produced locally rather than by a node
const (
	ErrorCodeInvalidArgument = 2
	ErrorCodeNotContract     = 11038
)

type BlockNumberHeader struct {
	BlockNumber string `json:"blockNumber"`
}

type BlockNumberResponse struct {
	ErrorCode int                `json:"errorCode"`
	ErrorDesc string             `json:"errorDesc,omitempty"`
	Header    *BlockNumberHeader `json:"header,omitempty"`
}

type AccountBalance struct {
	Balance string `json:"balance,omitempty"`
}

type AccountBalanceResponse struct {
	ErrorCode int             `json:"errorCode"`
	ErrorDesc string          `json:"errorDesc,omitempty"`
	Result    *AccountBalance `json:"result,omitempty"`
}

type AccountNonce struct {
	Nonce string `json:"nonce,omitempty"`
}

type AccountNonceResponse struct {
	ErrorCode int           `json:"errorCode"`
	ErrorDesc string        `json:"errorDesc,omitempty"`
	Result    *AccountNonce `json:"result,omitempty"`
}

type ContractInfo struct {
	Contract *bifnode.Contract `json:"contract,omitempty"`
}

type ContractInfoResponse struct {
	ErrorCode int           `json:"errorCode"`
	ErrorDesc string        `json:"errorDesc,omitempty"`
	Result    *ContractInfo `json:"result,omitempty"`
}

type BlockHeader struct {
	ConfirmTime string `json:"confirmTime,omitempty"`
	Number      int64  `json:"number,omitempty"`
	TxCount     int64  `json:"txCount,omitempty"`
	Version     int64  `json:"version,omitempty"`
	Hash        string `json:"hash,omitempty"`
}

type BlockInfoResponse struct {
	ErrorCode int          `json:"errorCode"`
	ErrorDesc string       `json:"errorDesc,omitempty"`
	Header    *BlockHeader `json:"header,omitempty"`
	Leader    string       `json:"leader,omitempty"`
}

type TransactionInfoResponse struct {
	ErrorCode int                         `json:"errorCode"`
	ErrorDesc string                      `json:"errorDesc,omitempty"`
	Result    *bifnode.TransactionHistory `json:"result,omitempty"`
}

// first returns the first transaction record, if any
func (r *TransactionInfoResponse) first() (*bifnode.TransactionRecord, bool) {
	if r.Result == nil || len(r.Result.Transactions) == 0 {
		return nil, false
	}
	return &r.Result.Transactions[0], true
}

type BlockTransactionsResponse struct {
	ErrorCode int                         `json:"error_code"`
	ErrorDesc string                      `json:"error_desc,omitempty"`
	Result    *bifnode.TransactionHistory `json:"result,omitempty"`
}

type ContractCheck struct {
	IsValid bool `json:"isValid"`
}

type CheckContractAddressResponse struct {
	ErrorCode int           `json:"errorCode"`
	ErrorDesc string        `json:"errorDesc,omitempty"`
	Result    ContractCheck `json:"result"`
}

type ContractQueryResponse struct {
	ErrorCode int                `json:"errorCode"`
	ErrorDesc string             `json:"errorDesc,omitempty"`
	QueryRets []bifnode.QueryRet `json:"query_rets"`
}

// ContractCreationInfo is one entry of the JSON list a successful contract
// creation leaves in error_desc
type ContractCreationInfo struct {
	ContractAddress    string `json:"contract_address"`
	ContractEVMAddress string `json:"contract_evm_address"`
	OperationIndex     int    `json:"operation_index"`
	VMType             int    `json:"vm_type"`
}
