package awsdocs

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// Page is a fetched documentation page.
type Page struct {
	// Body is the raw response text.
	Body        string
	ContentType string
}

// FetchPage downloads pageURL, following redirects. queryID, when not empty,
// must already be percent-encoded; it ties the read to the search that surfaced
// the page.
func (c *Client) FetchPage(ctx context.Context, pageURL, queryID string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageRequestURL(pageURL, queryID), nil)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: errors.Wrap(err, "create page request")}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderSessionID, c.sessionID)

	resp, err := c.do(ctx, req, "")
	if err != nil {
		return nil, err
	}

	return &Page{Body: string(resp.body), ContentType: resp.contentType}, nil
}

func (c *Client) pageRequestURL(pageURL, queryID string) string {
	sep := "?"
	if strings.Contains(pageURL, "?") {
		sep = "&"
	}

	target := pageURL + sep + "session=" + url.QueryEscape(c.sessionID)
	if queryID != "" {
		target += "&query_id=" + queryID
	}
	return target
}
