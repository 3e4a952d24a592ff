// Package config loads the YAML network configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/keys"
	"github.com/sigweihq/bifbridge/pkg/utils"
)

// EnvAccounts overrides bifAccounts of every BIF network (comma-separated keys)
const EnvAccounts = "BIFBRIDGE_ACCOUNTS"

// Config is the configuration of every network the bridge may talk to
type Config struct {
	// DefaultNetwork is used when a command names no network
	DefaultNetwork string `yaml:"defaultNetwork"`

	// Networks is keyed by network name (e.g., "bif-testnet")
	Networks map[string]NetworkConfig `yaml:"networks"`
}

// NetworkConfig configures one network
type NetworkConfig struct {
	// URL is the primary node endpoint
	URL string `yaml:"url"`

	// URLs are failover endpoints tried after URL, in order
	URLs []string `yaml:"urls,omitempty"`

	// BifNet marks the network as a BIF ledger. Only BIF networks get adapters.
	BifNet bool `yaml:"bifNet"`

	// BifAccounts are the "pri..." private keys of local accounts
	BifAccounts []string `yaml:"bifAccounts,omitempty"`

	// Confirmations is the block drift tolerated while waiting for a receipt
	Confirmations int `yaml:"confirmations,omitempty"`

	// Timeout bounds a single confirmation wait (e.g., "10s")
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// PollInterval is the delay between confirmation polls
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
}

// MissingBifAccountsError is returned for a BIF network without accounts
type MissingBifAccountsError struct {
	Network string
}

func (e *MissingBifAccountsError) Error() string {
	return fmt.Sprintf("network %s: bifAccounts is required for BIF networks", e.Network)
}

// BifAccountsFormatError is returned for an account that is not a "pri..." key.
// The key itself is not echoed.
type BifAccountsFormatError struct {
	Network string
	Index   int
	Err     error
}

func (e *BifAccountsFormatError) Error() string {
	return fmt.Sprintf("network %s: bifAccounts[%d] format error: %v", e.Network, e.Index, e.Err)
}

func (e *BifAccountsFormatError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the official BIF networks without accounts
func DefaultConfig() Config {
	networks := make(map[string]NetworkConfig, len(constants.OfficialNodeEndpoints))
	for name, endpoints := range constants.OfficialNodeEndpoints {
		networks[name] = NetworkConfig{
			URL:    endpoints[0],
			URLs:   append([]string(nil), endpoints[1:]...),
			BifNet: true,
		}
	}
	return Config{
		DefaultNetwork: constants.NetworkBIFTestnet,
		Networks:       networks,
	}
}

// Validate checks every network
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return errors.New("at least one network must be configured")
	}
	if c.DefaultNetwork != "" {
		if _, ok := c.Networks[c.DefaultNetwork]; !ok {
			return fmt.Errorf("defaultNetwork %s is not configured", c.DefaultNetwork)
		}
	}

	for _, name := range c.NetworkNames() {
		if err := validateNetwork(name, c.Networks[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateNetwork(name string, n NetworkConfig) error {
	endpoints := n.Endpoints()
	if len(endpoints) == 0 {
		return fmt.Errorf("network %s: url is required", name)
	}
	for _, e := range endpoints {
		if err := utils.ValidateNodeURL(e); err != nil {
			return fmt.Errorf("network %s: %w", name, err)
		}
	}
	if n.Confirmations < 0 {
		return fmt.Errorf("network %s: confirmations must not be negative", name)
	}
	if n.Timeout < 0 || n.PollInterval < 0 {
		return fmt.Errorf("network %s: timeout and pollInterval must not be negative", name)
	}

	if !n.BifNet {
		return nil
	}
	if len(n.BifAccounts) == 0 {
		return &MissingBifAccountsError{Network: name}
	}
	for i, account := range n.BifAccounts {
		if !strings.HasPrefix(account, keys.PrivateKeyPrefix) {
			return &BifAccountsFormatError{Network: name, Index: i, Err: fmt.Errorf("must start with %q", keys.PrivateKeyPrefix)}
		}
		if _, err := keys.ParsePrivateKey(account); err != nil {
			return &BifAccountsFormatError{Network: name, Index: i, Err: err}
		}
	}
	return nil
}

// Endpoints returns URL followed by URLs, skipping blanks
func (n NetworkConfig) Endpoints() []string {
	out := make([]string, 0, 1+len(n.URLs))
	for _, u := range append([]string{n.URL}, n.URLs...) {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// GetConfirmationTimeout returns the configured timeout or the default
func (n NetworkConfig) GetConfirmationTimeout() time.Duration {
	if n.Timeout > 0 {
		return n.Timeout
	}
	return constants.ConfirmationTimeout
}

// GetPollInterval returns the configured poll interval or the default
func (n NetworkConfig) GetPollInterval() time.Duration {
	if n.PollInterval > 0 {
		return n.PollInterval
	}
	return constants.ConfirmationPollInterval
}

// GetConfirmations returns the configured confirmations or the default
func (n NetworkConfig) GetConfirmations() int {
	if n.Confirmations > 0 {
		return n.Confirmations
	}
	return constants.DefaultConfirmations
}

// NetworkNames returns the configured network names, sorted
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Network returns the named network, or the default network for ""
func (c *Config) Network(name string) (string, NetworkConfig, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return name, NetworkConfig{}, fmt.Errorf("network %q is not configured", name)
	}
	return name, n, nil
}

// ApplyEnv replaces the accounts of every BIF network with those in EnvAccounts, if set
func (c *Config) ApplyEnv() {
	raw, ok := os.LookupEnv(EnvAccounts)
	if !ok {
		return
	}
	var accounts []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			accounts = append(accounts, a)
		}
	}
	for name, n := range c.Networks {
		if n.BifNet {
			n.BifAccounts = append([]string(nil), accounts...)
			c.Networks[name] = n
		}
	}
}

// Parse decodes YAML on top of an empty config, applies the environment and validates
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// LoadConfig loads a configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}
