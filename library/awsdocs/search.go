package awsdocs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// SearchRequest is the body accepted by the search proxy.
type SearchRequest struct {
	TextQuery            TextQuery          `json:"textQuery"`
	ContextAttributes    []ContextAttribute `json:"contextAttributes"`
	AcceptSuggestionBody string             `json:"acceptSuggestionBody"`
	Locales              []string           `json:"locales"`
}

// TextQuery holds the free-text search phrase.
type TextQuery struct {
	Input string `json:"input"`
}

// ContextAttribute filters results, e.g. by documentation domain.
type ContextAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SearchResponse models the subset of fields required from the search proxy.
type SearchResponse struct {
	QueryID     string       `json:"queryId"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is one ranked search hit. Only text excerpts are usable results.
type Suggestion struct {
	TextExcerptSuggestion *TextExcerptSuggestion `json:"textExcerptSuggestion,omitempty"`
}

// TextExcerptSuggestion describes a documentation page matching the query.
type TextExcerptSuggestion struct {
	Link           string          `json:"link"`
	Title          string          `json:"title"`
	Summary        *string         `json:"summary,omitempty"`
	SuggestionBody *string         `json:"suggestionBody,omitempty"`
	Metadata       ExcerptMetadata `json:"metadata"`

	present fieldSet
}

// UnmarshalJSON decodes the excerpt and remembers which keys were sent.
func (s *TextExcerptSuggestion) UnmarshalJSON(data []byte) error {
	type plain TextExcerptSuggestion
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "decode text excerpt suggestion")
	}
	present, err := decodeFieldSet(data)
	if err != nil {
		return errors.Wrap(err, "decode text excerpt suggestion keys")
	}

	*s = TextExcerptSuggestion(decoded)
	s.present = present
	return nil
}

// Has reports whether key was present in the decoded object, a null value
// included. For values built in code a set field counts as present.
func (s *TextExcerptSuggestion) Has(key string) bool {
	if s.present[key] {
		return true
	}
	switch key {
	case "summary":
		return s.Summary != nil
	case "suggestionBody":
		return s.SuggestionBody != nil
	}
	return false
}

// ExcerptMetadata carries the generated abstracts of a page.
type ExcerptMetadata struct {
	// SEOAbstract is written specifically for result snippets.
	SEOAbstract *string `json:"seo_abstract,omitempty"`
	// Abstract is the intelligent summary of the page.
	Abstract *string `json:"abstract,omitempty"`
	Summary  *string `json:"summary,omitempty"`

	present fieldSet
}

// UnmarshalJSON decodes the metadata and remembers which keys were sent.
func (m *ExcerptMetadata) UnmarshalJSON(data []byte) error {
	type plain ExcerptMetadata
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "decode excerpt metadata")
	}
	present, err := decodeFieldSet(data)
	if err != nil {
		return errors.Wrap(err, "decode excerpt metadata keys")
	}

	*m = ExcerptMetadata(decoded)
	m.present = present
	return nil
}

// Has reports whether key was present in the decoded object, a null value
// included. For values built in code a set field counts as present.
func (m *ExcerptMetadata) Has(key string) bool {
	if m.present[key] {
		return true
	}
	switch key {
	case "seo_abstract":
		return m.SEOAbstract != nil
	case "abstract":
		return m.Abstract != nil
	case "summary":
		return m.Summary != nil
	}
	return false
}

// fieldSet holds the keys of a decoded JSON object.
type fieldSet map[string]bool

func decodeFieldSet(data []byte) (fieldSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	set := make(fieldSet, len(raw))
	for key := range raw {
		set[key] = true
	}
	return set, nil
}

// NewSearchRequest builds the request body for phrase restricted to domain.
func NewSearchRequest(phrase, domain string) SearchRequest {
	return SearchRequest{
		TextQuery:            TextQuery{Input: phrase},
		ContextAttributes:    []ContextAttribute{{Key: "domain", Value: domain}},
		AcceptSuggestionBody: "RawText",
		Locales:              []string{"en_us"},
	}
}

// Search runs phrase against the search proxy.
func (c *Client) Search(ctx context.Context, phrase string) (*SearchResponse, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, errors.New("search phrase cannot be empty")
	}

	payload, err := json.Marshal(NewSearchRequest(phrase, c.searchDomain))
	if err != nil {
		return nil, errors.Wrap(err, "marshal search request")
	}

	endpoint, err := url.Parse(c.searchEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid search endpoint %q", c.searchEndpoint)
	}
	params := endpoint.Query()
	params.Set("session", c.sessionID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "create search request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderSessionID, c.sessionID)

	resp, err := c.do(ctx, req, string(payload))
	if err != nil {
		return nil, err
	}

	result := new(SearchResponse)
	if err := json.Unmarshal(resp.body, result); err != nil {
		return nil, &APIError{Kind: KindDecode, Err: err}
	}

	return result, nil
}
