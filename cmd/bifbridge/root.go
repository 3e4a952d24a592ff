package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
	"github.com/sigweihq/bifbridge/pkg/chains/bif"
	"github.com/sigweihq/bifbridge/pkg/config"
)

// cli holds the global flags and the state built from them
type cli struct {
	configPath string
	network    string
	logLevel   string

	out    io.Writer
	logger *slog.Logger
	reg    *prometheus.Registry
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, reg: prometheus.NewRegistry()}

	root := &cobra.Command{
		Use:           "bifbridge",
		Short:         "BIF chain adapter command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
			}
			c.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.logRequestMetrics()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML network config (default: official BIF networks)")
	flags.StringVarP(&c.network, "network", "n", "", "network name (default: the config's defaultNetwork)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(
		c.accountsCmd(),
		c.balanceCmd(),
		c.nonceCmd(),
		c.codeCmd(),
		c.blockCmd(),
		c.txCmd(),
		c.receiptCmd(),
		c.callCmd(),
		c.sendCmd(),
		c.nodesCmd(),
		addressCmd(c),
		keysCmd(c),
	)
	return root
}

// loadConfig reads --config, or falls back to the official networks with
// accounts taken from the environment
func (c *cli) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadConfig(c.configPath)
	}
	cfg := config.DefaultConfig()
	cfg.ApplyEnv()
	return &cfg, nil
}

// selectNetwork resolves --network against the loaded config
func (c *cli) selectNetwork() (string, config.NetworkConfig, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", config.NetworkConfig{}, err
	}
	return cfg.Network(c.network)
}

// adapter wires the selected network
func (c *cli) adapter() (*bif.Adapter, config.NetworkConfig, error) {
	name, network, err := c.selectNetwork()
	if err != nil {
		return nil, network, err
	}
	a, err := bif.NewAdapterFromConfig(c.logger, name, network, bifnode.NewMetrics(c.reg))
	if err != nil {
		return nil, network, err
	}
	c.logger.Debug("using network", "network", name, "endpoints", network.Endpoints())
	return a, network, nil
}

func (c *cli) provider() (*bif.Provider, error) {
	a, _, err := c.adapter()
	if err != nil {
		return nil, err
	}
	return a.Provider().(*bif.Provider), nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logRequestMetrics reports the node requests a command made at debug level
func (c *cli) logRequestMetrics() {
	if c.logger == nil || !c.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	families, err := c.reg.Gather()
	if err != nil {
		c.logger.Warn("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		if mf.GetName() != "bifbridge_node_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			attrs := []any{"count", m.GetCounter().GetValue()}
			for _, l := range m.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			c.logger.Debug("node requests", attrs...)
		}
	}
}
