// Package variantvalidator looks up HGVS transcript descriptions for
// chrom-pos-ref-alt variant IDs from the VariantValidator REST API.
package variantvalidator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public VariantValidator endpoint.
const DefaultBaseURL = "https://rest.variantvalidator.org"

// DefaultBatchSize is the number of IDs VariantValidator recommends per request.
const DefaultBatchSize = 10

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	Assembly   string        // "GRCh37" or "GRCh38"
	BatchSize  int           // IDs per request
	Interval   time.Duration // minimum pause between requests
	MaxRetries uint64        // retries per batch after the first attempt
	Backoff    time.Duration // initial retry delay
	Timeout    time.Duration // per-request timeout
}

// Client is a rate-limited batch client for the variantformatter endpoint.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *zap.Logger
	last       time.Time
}

// New creates a client with the given options.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Assembly == "" {
		opts.Assembly = "GRCh37"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// StatusError is a non-200 response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("variantvalidator: HTTP %d: %s", e.Code, e.Body)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Lookup returns the transcript HGVS description of each ID it could
// resolve. IDs the service does not describe are absent from the result.
// An error means a batch failed after all retries.
func (c *Client) Lookup(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += c.opts.BatchSize {
		end := min(start+c.opts.BatchSize, len(ids))
		batch := ids[start:end]

		if err := c.wait(ctx); err != nil {
			return out, err
		}

		body, err := c.fetchWithRetry(ctx, batch)
		if err != nil {
			return out, fmt.Errorf("lookup batch %d-%d: %w", start, end, err)
		}

		found, err := parseTranscripts(body, batch)
		if err != nil {
			return out, fmt.Errorf("lookup batch %d-%d: %w", start, end, err)
		}
		for _, id := range batch {
			t, ok := found[id]
			if !ok {
				c.logger.Warn("no transcript returned", zap.String("variant", id))
				continue
			}
			out[id] = t
		}
		c.logger.Debug("transcript batch resolved",
			zap.Int("requested", len(batch)),
			zap.Int("resolved", len(found)))
	}
	return out, nil
}

// wait enforces the minimum interval between requests.
func (c *Client) wait(ctx context.Context) error {
	if c.opts.Interval <= 0 || c.last.IsZero() {
		c.last = time.Now()
		return nil
	}
	if d := c.opts.Interval - time.Since(c.last); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.last = time.Now()
	return nil
}

func (c *Client) fetchWithRetry(ctx context.Context, batch []string) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		b, err := c.fetch(ctx, batch)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !retryable(se.Code) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		body = b
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.Backoff
	eb.MaxInterval = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, c.opts.MaxRetries), ctx)

	notify := func(err error, next time.Duration) {
		c.logger.Warn("transcript lookup failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, batch []string) ([]byte, error) {
	u := fmt.Sprintf("%s/variantformatter/%s/%s/all/None/False",
		c.opts.BaseURL, c.opts.Assembly, url.PathEscape(strings.Join(batch, "|")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// parseTranscripts walks resp[id][id].hgvs_t_and_p.<transcript>.t_hgvs for
// each requested ID. When several transcripts are listed the
// lexicographically first one is used so results do not depend on JSON key
// order.
func parseTranscripts(body []byte, ids []string) (map[string]string, error) {
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		node := parsed.Search(id, id, "hgvs_t_and_p")
		if node == nil {
			continue
		}
		children, err := node.ChildrenMap()
		if err != nil || len(children) == 0 {
			continue
		}
		keys := make([]string, 0, len(children))
		for k := range children {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			leaf := children[k].Search("t_hgvs")
			if leaf == nil {
				continue
			}
			if t, ok := leaf.Data().(string); ok && t != "" {
				out[id] = t
				break
			}
		}
	}
	return out, nil
}
