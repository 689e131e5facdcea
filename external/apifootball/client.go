package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/platform/resilience"
	"github.com/quantfoot/pipeline/internal/usecase"
)

const (
	DefaultHost       = "v3.football.api-sports.io"
	maxResponseBytes  = 8 << 20
	maxFollowedPages  = 50
	defaultRetryDelay = time.Second
)

var (
	// ErrAPI marks a response whose envelope reported errors.
	ErrAPI = crerr.New("api-football returned errors")
	// ErrStatus marks a non-retryable non-2xx response.
	ErrStatus = crerr.New("api-football unexpected status")

	errTransient = crerr.New("api-football transient failure")

	// Numbers decode as int64 when integral; map keys sort on encode so
	// re-encoded documents hash deterministically.
	codec = sonic.Config{UseInt64: true, SortMapKeys: true}.Froze()
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Host           string
	Key            string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is a thin API-Football v3 client. Get issues one request per page,
// detects envelope errors and returns the response list as decoded JSON values.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	key        string
	maxRetries int
	retryDelay time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://" + host
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("api-football circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		key:        strings.TrimSpace(cfg.Key),
		maxRetries: max(cfg.MaxRetries, 0),
		retryDelay: retryDelay,
		logger:     logger,
		breaker:    breaker,
	}
}

// Get calls one endpoint and returns the items of its response list. Paged
// endpoints are followed until the last page.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) ([]any, error) {
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", usecase.ErrInvalidInput)
	}

	first, err := c.getPage(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	items := first.Response

	total := first.Paging.Total
	if total > maxFollowedPages {
		c.logger.WarnContext(ctx, "api-football paging truncated",
			"endpoint", endpoint,
			"pages", total,
			"followed", maxFollowedPages,
		)
		total = maxFollowedPages
	}
	for page := max(first.Paging.Current, 1) + 1; page <= total; page++ {
		paged := make(map[string]string, len(params)+1)
		for k, v := range params {
			paged[k] = v
		}
		paged["page"] = strconv.Itoa(page)

		next, err := c.getPage(ctx, endpoint, paged)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		items = append(items, next.Response...)
	}

	return items, nil
}

func (c *Client) getPage(ctx context.Context, endpoint string, params map[string]string) (envelope, error) {
	fullURL := c.buildURL(endpoint, params)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isCircuitFailure)
		return raw, execErr
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "endpoint", endpoint)
			return envelope{}, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return envelope{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return envelope{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var env envelope
	if err := codec.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("decode api-football payload endpoint=%s: %w", endpoint, err)
	}
	if msg := describeErrors(env.Errors); msg != "" {
		return envelope{}, crerr.Wrapf(ErrAPI, "endpoint=%s: %s", endpoint, c.redact(msg))
	}

	return env, nil
}

func (c *Client) buildURL(endpoint string, params map[string]string) string {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}

	fullURL := c.baseURL + "/" + endpoint
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("x-rapidapi-key", c.key)
		req.Header.Set("x-rapidapi-host", c.host)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errTransient, "send request: %s", c.redact(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errTransient, "status=%d body=%s", resp.StatusCode, c.redact(abbreviateBody(raw)))
			default:
				return nil, crerr.Wrapf(ErrStatus, "status=%d body=%s", resp.StatusCode, c.redact(abbreviateBody(raw)))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func (c *Client) redact(text string) string {
	if c.key == "" {
		return text
	}
	return strings.ReplaceAll(text, c.key, "REDACTED")
}

type envelope struct {
	Get      string `json:"get"`
	Errors   any    `json:"errors"`
	Results  int    `json:"results"`
	Paging   paging `json:"paging"`
	Response []any  `json:"response"`
}

type paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// describeErrors flattens the errors field, which the API sends either as a
// list or as an object keyed by error kind. Empty means no error.
func describeErrors(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			if s := describeErrors(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+describeErrors(typed[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(typed)
	}
}

// Encode re-encodes a response item with sorted keys.
func Encode(item any) ([]byte, error) {
	return codec.Marshal(item)
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
