package main

import (
	"github.com/spf13/cobra"

	"github.com/sigweihq/bifbridge/pkg/bifnode"
)

func (c *cli) nodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "Probe the node endpoints of the network, healthy first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, network, err := c.selectNetwork()
			if err != nil {
				return err
			}
			results := bifnode.CheckEndpoints(cmd.Context(), network.Endpoints(),
				bifnode.WithLogger(c.logger),
				bifnode.WithMetrics(bifnode.NewMetrics(c.reg)))

			byEndpoint := make(map[string]bifnode.EndpointHealth, len(results))
			for _, r := range results {
				byEndpoint[r.Endpoint] = r
			}
			ordered := make([]bifnode.EndpointHealth, 0, len(results))
			for _, e := range bifnode.Prioritize(results) {
				ordered = append(ordered, byEndpoint[e])
			}
			return c.print(ordered)
		},
	}
}
