package chains

import (
	"sort"
	"sync"
)

// Registry manages chain adapters for configured networks
type Registry struct {
	adapters map[string]ChainAdapter
	mu       sync.RWMutex
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]ChainAdapter),
	}
}

// InitGlobalRegistry initializes the global chain registry
func InitGlobalRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// GetGlobalRegistry returns the global chain registry (returns nil if not initialized)
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register registers a chain adapter (uses adapter.Network() as key)
// If an adapter already exists for the network, it will be replaced (idempotent)
func (r *Registry) Register(adapter ChainAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[adapter.Network()] = adapter
	return nil
}

// Get retrieves a chain adapter by network name
func (r *Registry) Get(network string) (ChainAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[network]
	if !exists {
		return nil, &UnsupportedNetworkError{Network: network}
	}

	return adapter, nil
}

// GetSupportedNetworks returns the registered networks in name order
func (r *Registry) GetSupportedNetworks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	networks := make([]string, 0, len(r.adapters))
	for network := range r.adapters {
		networks = append(networks, network)
	}
	sort.Strings(networks)
	return networks
}

// IsSupported checks if a network is supported
func (r *Registry) IsSupported(network string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.adapters[network]
	return exists
}

// Unregister removes a chain adapter (useful for testing)
func (r *Registry) Unregister(network string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.adapters, network)
}

// ResetGlobalRegistry resets the global registry (useful for testing)
func ResetGlobalRegistry() {
	globalRegistry = nil
	globalRegistryOnce = sync.Once{}
}
