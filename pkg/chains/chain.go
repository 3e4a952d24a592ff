package chains

import (
	"context"
	"math/big"

	"github.com/sigweihq/bifbridge/pkg/types"
)

// Implementor identifies a concrete capability implementation.
// Code that must know which implementation it holds switches on this value.
type Implementor int

const (
	ImplementorUnknown Implementor = iota
	ImplementorBIFProvider
	ImplementorBIFSigner
	ImplementorVoidSigner
)

func (i Implementor) String() string {
	switch i {
	case ImplementorBIFProvider:
		return "bif-provider"
	case ImplementorBIFSigner:
		return "bif-signer"
	case ImplementorVoidSigner:
		return "void-signer"
	default:
		return "unknown"
	}
}

// ChainAdapter bundles the capabilities of one configured network
type ChainAdapter interface {
	// Network returns the network name (e.g., "bif-testnet")
	Network() string

	// Provider returns the standard provider for this network
	Provider() Provider

	// Signers returns one signer per locally known account
	Signers(ctx context.Context) ([]Signer, error)

	// Signer returns the signer for address
	Signer(ctx context.Context, address string) (Signer, error)
}

// Listener receives emitted events
type Listener func(args ...any)

// EventEmitter is the subscription surface of a provider
type EventEmitter interface {
	On(event string, listener Listener) Provider
	Once(event string, listener Listener) Provider
	Emit(event string, args ...any) bool
	ListenerCount(event string) int
	Listeners(event string) []Listener
	Off(event string, listener Listener) Provider
	RemoveAllListeners(event string) Provider
}

// Provider is the standard read/submit contract of a chain
type Provider interface {
	EventEmitter

	Implementor() Implementor

	// Network
	ChainID(ctx context.Context) (int64, error)
	BlockNumber(ctx context.Context) (int64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	FeeData(ctx context.Context) (*types.FeeData, error)

	// Account
	Balance(ctx context.Context, address string) (*big.Int, error)
	TransactionCount(ctx context.Context, address string) (int64, error)
	Code(ctx context.Context, address string) (string, error)
	StorageAt(ctx context.Context, address string, position *big.Int) (string, error)

	// Execution
	SendTransaction(ctx context.Context, signed string) (*types.TransactionResponse, error)
	Call(ctx context.Context, tx types.TransactionRequest) (string, error)
	EstimateGas(ctx context.Context, tx types.TransactionRequest) (*big.Int, error)

	// Queries
	Block(ctx context.Context, tag string) (*types.Block, error)
	BlockWithTransactions(ctx context.Context, tag string) (*types.BlockWithTransactions, error)
	Transaction(ctx context.Context, hash string) (*types.TransactionResponse, error)
	TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error)
	WaitForTransaction(ctx context.Context, hash string, confirmations int) (*types.Receipt, error)
	Logs(ctx context.Context, filter types.Filter) ([]types.Log, error)

	// Names
	ResolveName(ctx context.Context, name string) (string, error)
	LookupAddress(ctx context.Context, address string) (string, error)
}

// Signer is the account capability used to build and sign transactions
type Signer interface {
	Implementor() Implementor

	Address(ctx context.Context) (string, error)

	// SignTransaction returns the serialized signed envelope, or "" when the
	// request kind has no BIF operation.
	SignTransaction(ctx context.Context, tx types.TransactionRequest) (string, error)

	SignMessage(ctx context.Context, message []byte) (string, error)

	// Connect returns a new signer for the same account bound to provider
	Connect(provider Provider) (Signer, error)

	Provider() Provider
}
