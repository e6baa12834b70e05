// Package awsdocs is a client for the public AWS documentation service: the
// search proxy, the content recommendation API and the documentation pages.
package awsdocs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// Version is reported to the documentation service in the user agent.
const Version = "1.1.0"

const (
	// DefaultSearchEndpoint is the documentation search proxy.
	DefaultSearchEndpoint = "https://proxy.search.docs.aws.amazon.com/search"
	// DefaultRecommendationsEndpoint is the content recommendation API.
	DefaultRecommendationsEndpoint = "https://contentrecs-api.docs.aws.amazon.com/v1/recommendations"
	// DefaultSearchDomain restricts search results to the global documentation host.
	DefaultSearchDomain = "docs.aws.amazon.com"
	// HeaderSessionID carries the process session so the service can attribute requests.
	HeaderSessionID = "X-MCP-Session-Id"

	httpRequestTimeout = 30 * time.Second
	// logBodyLimit caps the number of response bytes logged for debugging.
	logBodyLimit = 4096
)

// DefaultUserAgent is sent with every outbound request.
var DefaultUserAgent = fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 ModelContextProtocol/%s (AWS Documentation Server)", Version)

// Option configures the Client instance.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, primarily for testing.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSearchEndpoint overrides the search API endpoint.
func WithSearchEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			c.searchEndpoint = trimmed
		}
	}
}

// WithRecommendationsEndpoint overrides the recommendation API endpoint.
func WithRecommendationsEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			c.recommendationsEndpoint = trimmed
		}
	}
}

// WithSearchDomain sets the domain context attribute sent with search queries.
func WithSearchDomain(domain string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(domain); trimmed != "" {
			c.searchDomain = trimmed
		}
	}
}

// WithSessionID pins the session token instead of generating one.
func WithSessionID(sessionID string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(sessionID); trimmed != "" {
			c.sessionID = trimmed
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(userAgent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithLogger overrides the logger used when no contextual logger is present.
func WithLogger(logger logSDK.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the documentation service. It is safe for concurrent use.
//
// Every call is a single attempt bounded by a 30 second timeout, there are no retries.
type Client struct {
	httpClient              *http.Client
	searchEndpoint          string
	recommendationsEndpoint string
	searchDomain            string
	sessionID               string
	userAgent               string
	logger                  logSDK.Logger
}

// NewClient constructs a Client. Without options it targets the production
// endpoints with a fresh random session token.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:              &http.Client{Timeout: httpRequestTimeout},
		searchEndpoint:          DefaultSearchEndpoint,
		recommendationsEndpoint: DefaultRecommendationsEndpoint,
		searchDomain:            DefaultSearchDomain,
		sessionID:               uuid.NewString(),
		userAgent:               DefaultUserAgent,
		logger:                  log.Logger.Named("aws_docs_client"),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// SessionID returns the process-lifetime session token.
func (c *Client) SessionID() string {
	return c.sessionID
}

// response is the part of an HTTP exchange the callers need.
type response struct {
	body        []byte
	contentType string
}

// do sends req once and returns its body. Status codes >= 400 are KindStatus errors.
func (c *Client) do(ctx context.Context, req *http.Request, body string) (*response, error) {
	logger := c.loggerFromContext(ctx)
	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("body", body),
	)

	startAt := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: errors.Wrap(err, "send request")}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: errors.Wrap(err, "read response body")}
	}

	truncatedBody, truncated := truncateForLog(respBody, logBodyLimit)
	logger.Debug("incoming http response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return &response{body: respBody, contentType: resp.Header.Get("Content-Type")}, nil
}

func (c *Client) loggerFromContext(ctx context.Context) logSDK.Logger {
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			return ctxLogger.Named("aws_docs_client")
		}
	}
	return c.logger
}

// truncateForLog limits the payload logged for debugging and reports whether truncation occurred.
func truncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}
