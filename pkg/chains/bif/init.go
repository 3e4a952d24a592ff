package bif

import (
	"fmt"
	"log/slog"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/chains"
	"github.com/sigweihq/bifbridge/pkg/config"
)

// NewAdapterFromConfig wires node client, accounts provider and provider for one network
func NewAdapterFromConfig(logger *slog.Logger, name string, network config.NetworkConfig, metrics *bifnode.Metrics) (*Adapter, error) {
	if !network.BifNet {
		return nil, &chains.UnsupportedNetworkError{Network: name}
	}

	client, err := bifnode.NewClient(network.Endpoints(),
		bifnode.WithLogger(logger.With("network", name)),
		bifnode.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create node client for %s: %w", name, err)
	}

	accounts, err := NewAccountsProvider(client, network.BifAccounts, WithAccountsLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for %s: %w", name, err)
	}

	provider := NewProvider(accounts,
		WithLogger(logger.With("network", name)),
		WithPollInterval(network.GetPollInterval()),
		WithConfirmationTimeout(network.GetConfirmationTimeout()))
	return NewAdapter(name, provider), nil
}

// InitBIFChains registers an adapter for every BIF network of cfg in the
// global registry. Non-BIF networks are skipped; networks that fail to wire
// are logged and skipped.
func InitBIFChains(logger *slog.Logger, cfg *config.Config, metrics *bifnode.Metrics) (*chains.Registry, error) {
	registry := chains.InitGlobalRegistry()
	return registry, RegisterNetworks(logger, registry, cfg, metrics)
}

// RegisterNetworks registers the BIF networks of cfg in registry
func RegisterNetworks(logger *slog.Logger, registry *chains.Registry, cfg *config.Config, metrics *bifnode.Metrics) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	for _, name := range cfg.NetworkNames() {
		network := cfg.Networks[name]
		if !network.BifNet {
			logger.Debug("skipping non-BIF network", "network", name)
			continue
		}

		adapter, err := NewAdapterFromConfig(logger, name, network, metrics)
		if err != nil {
			logger.Warn("failed to create BIF adapter", "network", name, "error", err)
			continue
		}

		if err := registry.Register(adapter); err != nil {
			logger.Warn("failed to register BIF adapter", "network", name, "error", err)
		}
	}
	return nil
}
