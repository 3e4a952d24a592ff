package bif

import (
	"context"
	"strings"
)

// RPC is the namespaced request surface of a BIF ledger.
// Methods are "<namespace>.<method>" plus the account pseudo-methods below.
// Request decodes the reply into result, which must be a pointer.
type RPC interface {
	Request(ctx context.Context, method string, params []any, result any) error
}

// Account pseudo-methods answered from the local key store
const (
	MethodAccounts          = "bif_accounts"
	MethodAccountPrivateKey = "bif_account_privatekey"
)

// Namespaced methods
const (
	MethodGetBlockNumber       = "block.getBlockNumber"
	MethodGetBlockInfo         = "block.getBlockInfo"
	MethodGetBlockTransactions = "block.getTransactions"
	MethodGetAccountBalance    = "account.getAccountBalance"
	MethodGetNonce             = "account.getNonce"
	MethodGetContractInfo      = "contract.getContractInfo"
	MethodCheckContractAddress = "contract.checkContractAddress"
	MethodContractQuery        = "contract.contractQuery"
	MethodGetTransactionInfo   = "transaction.getTransactionInfo"
	MethodSubmitTrans          = "transaction.submitTrans"
)

// MethodName is a parsed "<namespace>.<method>" pair
type MethodName struct {
	Namespace string
	Method    string
}

// ParseMethod splits a namespaced method. ok is false without a dot.
func ParseMethod(method string) (name MethodName, ok bool) {
	ns, m, found := strings.Cut(method, ".")
	if !found || ns == "" || m == "" {
		return MethodName{}, false
	}
	return MethodName{Namespace: ns, Method: m}, true
}

func (m MethodName) String() string {
	return m.Namespace + "." + m.Method
}
