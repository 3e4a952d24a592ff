package constants

import "time"

const (
	DelayBetweenRPCCalls  = 200              // delay in milliseconds between node endpoint attempts
	NodeRequestTimeout    = 30 * time.Second // timeout for a single node HTTP request
	TLSHandshakeTimeout   = 10 * time.Second // timeout for TLS handshake
	ResponseHeaderTimeout = 20 * time.Second // timeout for response header
	ExpectContinueTimeout = 1 * time.Second  // timeout for expect continue
	MaxRetries            = 3                // maximum number of endpoint attempts per node request
	MaxResponseBodySize   = 10 * 1024 * 1024 // maximum response body size in bytes (10MB)
	HealthCheckTimeout    = 3 * time.Second  // timeout for a single endpoint health probe
)

// Confirmation polling
const (
	ConfirmationPollInterval = 1 * time.Second  // fixed delay between receipt polls
	ConfirmationTimeout      = 10 * time.Second // wall-clock bound for a single wait
	DefaultConfirmations     = 5                // block drift tolerated before giving up
)

// Fee defaults. The BIF fee model is not wired up, so these are constants.
const (
	DefaultGasLimit = 10000000
	DefaultGasPrice = 1
)

// Foreign RPC error codes
const (
	ErrorCodeSuccess  = 0
	ErrorCodeNotFound = 4
)

// Operation types carried in BIF transactions
const (
	OperationCreateAccount = 1
	OperationPayCoin       = 7
	OperationLog           = 8
)

// ContractTypeEVM is the contract.type value for EVM bytecode
const ContractTypeEVM = 1

// Network Types
const (
	NetworkBIFMainnet = "bif-mainnet"
	NetworkBIFTestnet = "bif-testnet"
	NetworkBIFLocal   = "bif-local"
)

var OfficialNodeEndpoints = map[string][]string{
	NetworkBIFMainnet: {"http://mainnet.bifcore.bitfactory.cn"},
	NetworkBIFTestnet: {"http://test.bifcore.bitfactory.cn"},
	NetworkBIFLocal:   {"http://127.0.0.1:30010"},
}
