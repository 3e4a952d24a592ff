package types

import "math/big"

// Clone returns a deep copy so callers never share big.Int or nonce storage
func (r TransactionRequest) Clone() TransactionRequest {
	out := r
	if r.Nonce != nil {
		n := *r.Nonce
		out.Nonce = &n
	}
	out.GasLimit = cloneBig(r.GasLimit)
	out.GasPrice = cloneBig(r.GasPrice)
	out.Value = cloneBig(r.Value)
	return out
}

// InferKind classifies a request by the presence of a destination
func (r TransactionRequest) InferKind() Kind {
	if r.To != "" {
		return KindContractInvoke
	}
	return KindContractCreate
}

// FeeLimit is gasLimit x gasPrice, treating missing values as zero
func (r TransactionRequest) FeeLimit() *big.Int {
	if r.GasLimit == nil || r.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(r.GasLimit, r.GasPrice)
}

// TxBuilder advances a request through population without mutating earlier values.
// Every With* call returns a new builder; the receiver is left untouched.
type TxBuilder struct {
	req   TransactionRequest
	state LifecycleState
}

// NewTxBuilder copies req into a builder in the Built state
func NewTxBuilder(req TransactionRequest) TxBuilder {
	return TxBuilder{req: req.Clone(), state: StateBuilt}
}

func (b TxBuilder) with(fn func(r *TransactionRequest)) TxBuilder {
	next := TxBuilder{req: b.req.Clone(), state: b.state}
	fn(&next.req)
	return next
}

func (b TxBuilder) WithFrom(from string) TxBuilder {
	return b.with(func(r *TransactionRequest) { r.From = from })
}

func (b TxBuilder) WithKind(kind Kind) TxBuilder {
	return b.with(func(r *TransactionRequest) { r.Kind = kind })
}

func (b TxBuilder) WithNonce(nonce int64) TxBuilder {
	return b.with(func(r *TransactionRequest) { r.Nonce = &nonce })
}

func (b TxBuilder) WithGasLimit(limit *big.Int) TxBuilder {
	return b.with(func(r *TransactionRequest) { r.GasLimit = cloneBig(limit) })
}

func (b TxBuilder) WithGasPrice(price *big.Int) TxBuilder {
	return b.with(func(r *TransactionRequest) { r.GasPrice = cloneBig(price) })
}

// Populated marks every field as resolved
func (b TxBuilder) Populated() TxBuilder {
	next := b.with(func(*TransactionRequest) {})
	next.state = StatePopulated
	return next
}

// Request returns a copy of the current request
func (b TxBuilder) Request() TransactionRequest {
	return b.req.Clone()
}

func (b TxBuilder) State() LifecycleState {
	return b.state
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
