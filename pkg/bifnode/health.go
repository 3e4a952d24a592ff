package bifnode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sigweihq/bifbridge/pkg/constants"
)

// EndpointHealth is the result of probing one node endpoint
type EndpointHealth struct {
	Endpoint string        `json:"endpoint"`
	Healthy  bool          `json:"healthy"`
	Height   int64         `json:"height,omitempty"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

// CheckEndpoints asks every endpoint for its latest ledger, in parallel.
// Results keep the input order. opts configure the probe clients.
func CheckEndpoints(ctx context.Context, endpoints []string, opts ...Option) []EndpointHealth {
	results := make([]EndpointHealth, len(endpoints))

	var wg sync.WaitGroup
	for i, endpoint := range endpoints {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			results[i] = probe(ctx, endpoint, opts...)
		}(i, endpoint)
	}
	wg.Wait()
	return results
}

func probe(ctx context.Context, endpoint string, opts ...Option) EndpointHealth {
	out := EndpointHealth{Endpoint: endpoint}

	client, err := NewClient([]string{endpoint}, opts...)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, constants.HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	resp, err := client.GetLedger(ctx, 0, false)
	out.Latency = time.Since(start)
	switch {
	case err != nil:
		out.Error = err.Error()
	case resp.ErrorCode != constants.ErrorCodeSuccess:
		out.Error = fmt.Sprintf("error_code %d: %s", resp.ErrorCode, resp.ErrorDesc)
	default:
		out.Healthy = true
		out.Height = resp.Result.Header.Seq
	}

	client.logger.Debug("health check complete",
		"endpoint", endpoint,
		"healthy", out.Healthy,
		"height", out.Height,
		"latency", out.Latency)
	return out
}

// Prioritize orders healthy endpoints first, keeping unhealthy ones as backup
func Prioritize(results []EndpointHealth) []string {
	var healthy, unhealthy []string
	for _, r := range results {
		if r.Healthy {
			healthy = append(healthy, r.Endpoint)
		} else {
			unhealthy = append(unhealthy, r.Endpoint)
		}
	}
	return append(healthy, unhealthy...)
}
