// Package bifnode is an HTTP client for the BIF node REST API.
package bifnode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sigweihq/bifbridge/pkg/constants"
	"github.com/sigweihq/bifbridge/pkg/utils"
)

const (
	pathGetLedger          = "/getLedger"
	pathGetAccountBase     = "/getAccountBase"
	pathGetAccount         = "/getAccount"
	pathGetTransactionHist = "/getTransactionHistory"
	pathSubmitTransaction  = "/submitTransaction"
	pathCallContract       = "/callContract"
)

// Client talks to one or more BIF nodes, failing over in order
type Client struct {
	endpoints  []string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithRetryDelay sets the base delay between endpoint attempts
func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) { cl.retryDelay = d }
}

// NewClient creates a node client. Every endpoint must be a valid http(s) URL.
func NewClient(endpoints []string, opts ...Option) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("no node endpoints configured")
	}

	normalized := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if err := utils.ValidateNodeURL(e); err != nil {
			return nil, err
		}
		normalized = append(normalized, utils.TrimTrailingSlash(e))
	}

	c := &Client{
		endpoints:  normalized,
		httpClient: utils.CreateHTTPClientWithTimeouts(),
		logger:     slog.Default(),
		retryDelay: constants.DelayBetweenRPCCalls * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoints returns the configured node URLs
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// GetLedger fetches a ledger header. seq <= 0 fetches the latest ledger.
func (c *Client) GetLedger(ctx context.Context, seq int64, withLeader bool) (*Response[LedgerResult], error) {
	q := url.Values{}
	if seq > 0 {
		q.Set("seq", strconv.FormatInt(seq, 10))
	}
	if withLeader {
		q.Set("with_leader", "true")
	}

	var resp Response[LedgerResult]
	if err := c.do(ctx, http.MethodGet, pathGetLedger, q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccountBase fetches balance and nonce of an account
func (c *Client) GetAccountBase(ctx context.Context, address string) (*Response[AccountResult], error) {
	var resp Response[AccountResult]
	if err := c.do(ctx, http.MethodGet, pathGetAccountBase, url.Values{"address": {address}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccount fetches the full account including contract payload
func (c *Client) GetAccount(ctx context.Context, address string) (*Response[AccountResult], error) {
	var resp Response[AccountResult]
	if err := c.do(ctx, http.MethodGet, pathGetAccount, url.Values{"address": {address}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactionByHash fetches one transaction from history
func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*Response[TransactionHistory], error) {
	var resp Response[TransactionHistory]
	if err := c.do(ctx, http.MethodGet, pathGetTransactionHist, url.Values{"hash": {hash}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactionsByLedger fetches every transaction of a ledger
func (c *Client) GetTransactionsByLedger(ctx context.Context, seq int64) (*Response[TransactionHistory], error) {
	q := url.Values{"ledger_seq": {strconv.FormatInt(seq, 10)}}
	var resp Response[TransactionHistory]
	if err := c.do(ctx, http.MethodGet, pathGetTransactionHist, q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitTransaction submits one signed blob
func (c *Client) SubmitTransaction(ctx context.Context, blob string, signatures []Signature) (*SubmitResponse, error) {
	body := map[string]any{
		"items": []SubmitItem{{TransactionBlob: blob, Signatures: signatures}},
	}
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, pathSubmitTransaction, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CallContract runs a contract query
func (c *Client) CallContract(ctx context.Context, req CallRequest) (*Response[CallResult], error) {
	var resp Response[CallResult]
	if err := c.do(ctx, http.MethodPost, pathCallContract, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends the request to each endpoint in turn until one answers.
// Only infrastructure failures move on to the next endpoint.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var lastErr error
	attempts := min(len(c.endpoints), constants.MaxRetries)

	for i := 0; i < attempts; i++ {
		if i > 0 {
			c.metrics.failedOver(path)
			delay := time.Duration(i) * c.retryDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		endpoint := c.endpoints[i]
		target := endpoint + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

		start := time.Now()
		err := httpRequest(ctx, c.httpClient, method, target, body, result)
		c.metrics.observe(path, time.Since(start).Seconds(), err)
		if err == nil {
			return nil
		}

		lastErr = &RequestError{Endpoint: endpoint, Path: path, Err: err}
		c.logger.Warn("node request failed",
			"endpoint", endpoint,
			"path", path,
			"error", err,
			"willRetry", shouldRetryWithNextEndpoint(err))

		if !shouldRetryWithNextEndpoint(err) {
			return lastErr
		}
	}

	return fmt.Errorf("all node endpoints failed, last error: %w", lastErr)
}

// RequestError represents a failed request against one node
type RequestError struct {
	Endpoint string
	Path     string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("node error on %s%s: %v", e.Endpoint, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
