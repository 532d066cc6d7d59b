package quickbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/drewfsc/saturday-night/internal/adapters/driven/auth"
	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/logger"
	"github.com/drewfsc/saturday-night/internal/metrics"
)

// Ensure Client implements the LedgerBackend interface.
var _ driven.LedgerBackend = (*Client)(nil)

const (
	// MinorVersion pins the response shape of the accounting API.
	MinorVersion = "75"

	// RequestsPerSecond stays under the 500 requests per minute per company limit.
	RequestsPerSecond = 8.0

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client queries invoices from QuickBooks Online.
type Client struct {
	baseURL  string
	realmID  string
	provider driven.TokenProvider
	http     *http.Client
	base     http.RoundTripper
	limiter  *rate.Limiter
	timeout  time.Duration
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped per
// request to add the bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithPageSize overrides the page size, mainly for tests.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= MaxPageSize {
			c.pageSize = n
		}
	}
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// New creates a client for the company in settings.
func New(settings domain.QuickBooksSettings, provider driven.TokenProvider, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultUpstreamTimeout
	}
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultQuickBooksURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		realmID:  settings.RealmID,
		provider: provider,
		http:     http.DefaultClient,
		limiter:  rate.NewLimiter(rate.Limit(RequestsPerSecond), 10),
		timeout:  timeout,
		pageSize: MaxPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.base = c.http.Transport
	if c.base == nil {
		c.base = http.DefaultTransport
	}
	return c
}

// IsAuthenticated returns true if a usable credential is configured.
func (c *Client) IsAuthenticated() bool {
	return c.provider != nil && c.provider.IsAuthenticated()
}

// QueryInvoices pages through the invoices matching q, newest first.
// Paging stops at q.MaxResults when it is set.
func (c *Client) QueryInvoices(ctx context.Context, q domain.LedgerQuery) ([]domain.Invoice, error) {
	realm := q.LedgerID
	if realm == "" {
		realm = c.realmID
	}
	if realm == "" {
		return nil, fmt.Errorf("%w: no company id to query", domain.ErrValidation)
	}

	var out []domain.Invoice
	for start := 1; ; start += c.pageSize {
		page, err := c.queryPage(ctx, realm, BuildInvoiceQuery(q, start, c.pageSize))
		if err != nil {
			return nil, err
		}
		for _, raw := range page {
			inv, err := raw.toDomain()
			if err != nil {
				logger.Warn("skipping invoice %s: %v", raw.ID, err)
				continue
			}
			out = append(out, inv)
		}
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			return out[:q.MaxResults], nil
		}
		if len(page) < c.pageSize {
			return out, nil
		}
	}
}

func (c *Client) queryPage(ctx context.Context, realm, query string) ([]invoiceJSON, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: quickbooks rate limit wait: %v", domain.ErrUpstream, err)
	}

	endpoint := fmt.Sprintf("%s/v3/company/%s/query?%s", c.baseURL, url.PathEscape(realm), url.Values{
		"query":        {query},
		"minorversion": {MinorVersion},
	}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Token lookups share the request deadline.
	hc := &http.Client{
		Transport: &oauth2.Transport{Source: auth.TokenSource(ctx, "quickbooks", c.provider), Base: c.base},
		Timeout:   c.http.Timeout,
	}

	logger.Debug("quickbooks query: %s", query)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.ObserveUpstream("quickbooks", start, err)
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp)
		metrics.ObserveUpstream("quickbooks", start, apiErr)
		return nil, apiErr.domainError(realm)
	}

	var body queryResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	metrics.ObserveUpstream("quickbooks", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: decode quickbooks response: %v", domain.ErrUpstream, err)
	}
	if body.Fault != nil && len(body.Fault.Errors) > 0 {
		return nil, fmt.Errorf("%w: quickbooks: %s", domain.ErrUpstream, body.Fault.Errors[0].String())
	}
	return body.QueryResponse.Invoice, nil
}

func wrapTransportError(err error) error {
	if domain.ErrorKind(err) != "internal" {
		// Token provider failures surface through the transport.
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: quickbooks timed out", domain.ErrUpstream)
	}
	return fmt.Errorf("%w: quickbooks request: %v", domain.ErrUpstream, err)
}

// readLimited reads at most maxErrorBody bytes of r.
func readLimited(r io.Reader) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return data
}
