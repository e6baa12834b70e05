package awsdocs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	errors "github.com/Laisky/errors/v2"
)

// RecommendationResponse groups related pages by why they are recommended.
type RecommendationResponse struct {
	// HighlyRated are popular pages of the same service.
	HighlyRated *RecommendationGroup `json:"highlyRated,omitempty"`
	// Journey are pages other readers commonly open next, grouped by intent.
	Journey *JourneyGroup `json:"journey,omitempty"`
	// New are recently added pages of the same service.
	New *RecommendationGroup `json:"new,omitempty"`
	// Similar are pages covering similar topics.
	Similar *RecommendationGroup `json:"similar,omitempty"`
}

// RecommendationGroup is a flat list of recommended pages.
type RecommendationGroup struct {
	Items []RecommendationItem `json:"items"`
}

// RecommendationItem is one recommended page.
type RecommendationItem struct {
	URL         string  `json:"url"`
	AssetTitle  string  `json:"assetTitle"`
	Abstract    *string `json:"abstract,omitempty"`
	DateCreated string  `json:"dateCreated,omitempty"`
}

// JourneyGroup lists next-in-journey pages by reader intent.
type JourneyGroup struct {
	Items []JourneyIntent `json:"items"`
}

// JourneyIntent is a set of pages sharing the same intent.
type JourneyIntent struct {
	Intent string               `json:"intent"`
	URLs   []RecommendationItem `json:"urls"`
}

// Recommend fetches recommendations for the documentation page pageURL.
func (c *Client) Recommend(ctx context.Context, pageURL string) (*RecommendationResponse, error) {
	endpoint, err := url.Parse(c.recommendationsEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid recommendations endpoint %q", c.recommendationsEndpoint)
	}
	params := endpoint.Query()
	params.Set("path", pageURL)
	params.Set("session", c.sessionID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create recommendations request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.do(ctx, req, "")
	if err != nil {
		return nil, err
	}

	result := new(RecommendationResponse)
	if err := json.Unmarshal(resp.body, result); err != nil {
		return nil, &APIError{Kind: KindDecode, Err: err}
	}

	return result, nil
}
