package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	RetailPricesBaseURL = "https://prices.azure.com/api/retail/prices"

	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = time.Second
	DefaultMaxPages   = 1
)

// ClientOptions tunes the HTTP client built by DefaultClientFactory.
// Zero values fall back to the package defaults.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RetryDelay time.Duration
	MaxPages   int
}

// DefaultClientFactory creates production Azure API clients.
// A single shared HTTP client is reused by every client for connection pooling.
type DefaultClientFactory struct {
	client     *http.Client
	baseURL    string
	retryDelay time.Duration
	maxPages   int
	metrics    *Metrics
}

func NewDefaultClientFactory(opts ClientOptions, metrics *Metrics) *DefaultClientFactory {
	if opts.BaseURL == "" {
		opts.BaseURL = RetailPricesBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = DefaultMaxPages
	}
	return &DefaultClientFactory{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		baseURL:    opts.BaseURL,
		retryDelay: opts.RetryDelay,
		maxPages:   opts.MaxPages,
		metrics:    metrics,
	}
}

func (f *DefaultClientFactory) NewRetailPricesClient() RetailPricesClient {
	return &HTTPRetailPricesClient{
		client:     f.client,
		baseURL:    f.baseURL,
		retryDelay: f.retryDelay,
		maxPages:   f.maxPages,
		metrics:    f.metrics,
	}
}

// HTTPRetailPricesClient calls the Azure Retail Prices REST API over HTTP.
type HTTPRetailPricesClient struct {
	client     *http.Client
	baseURL    string        // overridable for tests
	retryDelay time.Duration // base unit for exponential backoff; defaults to time.Second
	maxPages   int           // pages to consume per query; defaults to 1
	metrics    *Metrics
}

// FetchPrices issues a GET with filter as the $filter parameter and returns the
// decoded items. Only the first page is read unless the client was configured
// with more pages, in which case NextPageLink is followed while it stays on the
// base URL's host.
func (c *HTTPRetailPricesClient) FetchPrices(ctx context.Context, filter string) ([]PriceItem, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &InvalidURLError{URL: c.baseURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &InvalidURLError{URL: c.baseURL, Err: fmt.Errorf("scheme and host are required")}
	}
	query := u.Query()
	query.Set("$filter", filter)
	u.RawQuery = query.Encode()

	maxPages := c.maxPages
	if maxPages < 1 {
		maxPages = 1
	}

	nextURL := u.String()
	results := []PriceItem{}

	for page := 0; nextURL != "" && page < maxPages; page++ {
		log.Debugf("Fetching pricing from: %s", nextURL)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, nextURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, start, err := c.doWithRetry(req)
		if err != nil {
			return nil, fmt.Errorf("fetching Azure prices: %w", err)
		}

		var body PricesResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			c.metrics.observeRequest(outcomeDecodeError, time.Since(start))
			return nil, &UpstreamDecodeError{Err: err}
		}
		c.metrics.observeRequest(outcomeSuccess, time.Since(start))
		results = append(results, body.Items...)

		if page+1 == maxPages {
			if body.NextPageLink != "" {
				log.Debugf("Ignoring NextPageLink after %d page(s) [count=%d]", maxPages, body.Count)
			}
			break
		}

		validNext, err := validateNextPageLink(body.NextPageLink, c.baseURL)
		if err != nil {
			log.WithError(err).Warn("invalid NextPageLink, stopping pagination")
			break
		}
		nextURL = validNext
	}

	return results, nil
}

const maxRetries = 3

// doWithRetry returns the first 2xx response and the start time of the attempt
// that produced it. The caller records that attempt's outcome once the body is
// decoded.
func (c *HTTPRetailPricesClient) doWithRetry(req *http.Request) (*http.Response, time.Time, error) {
	delay := c.retryDelay
	if delay == 0 {
		delay = time.Second
	}
	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			if err := sleepContext(req.Context(), time.Duration(1<<(attempt-1))*delay); err != nil {
				return nil, time.Time{}, fmt.Errorf("waiting to retry: %w (last error: %v)", err, lastErr)
			}
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			c.metrics.observeRequest(outcomeTransportError, time.Since(start))
			lastErr = err
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			c.metrics.observeRequest(outcomeHTTPError, time.Since(start))
			httpErr := &UpstreamHTTPError{StatusCode: resp.StatusCode}
			if httpErr.Retryable() {
				lastErr = httpErr
				continue
			}
			return nil, time.Time{}, httpErr
		}
		return resp, start, nil
	}
	return nil, time.Time{}, fmt.Errorf("Azure API failed after %d attempts: %w", maxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func validateNextPageLink(next, baseURL string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("invalid NextPageLink %q: %w", next, err)
	}
	base, _ := url.Parse(baseURL)
	if u.Host != base.Host || u.Scheme != base.Scheme {
		return "", fmt.Errorf("NextPageLink host %q does not match expected %q", u.Host, base.Host)
	}
	return next, nil
}
