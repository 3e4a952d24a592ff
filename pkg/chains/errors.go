package chains

import "fmt"

// UnsupportedNetworkError is returned when a network is not supported
type UnsupportedNetworkError struct {
	Network string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network: %s", e.Network)
}

// UnsupportedOperationError is returned by capabilities that cannot perform an operation
type UnsupportedOperationError struct {
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %s: %s", e.Operation, e.Reason)
}

// MissingProviderError is returned when a signer operation needs a provider it does not have
type MissingProviderError struct {
	Operation string
}

func (e *MissingProviderError) Error() string {
	return fmt.Sprintf("missing provider for %s", e.Operation)
}
