package docs

import (
	"context"
	"fmt"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/aws-documentation-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/aws-documentation-mcp/library/awsdocs"
	"github.com/Laisky/aws-documentation-mcp/library/docformat"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// API is the remote documentation service consumed by Service.
type API interface {
	Search(ctx context.Context, phrase string) (*awsdocs.SearchResponse, error)
	Recommend(ctx context.Context, pageURL string) (*awsdocs.RecommendationResponse, error)
	FetchPage(ctx context.Context, pageURL, queryID string) (*awsdocs.Page, error)
}

// Reporter forwards a failure message to whoever invoked the operation.
type Reporter func(ctx context.Context, message string)

// Option customizes a Service.
type Option func(*Service)

// WithReporter sets the error channel used for soft failures.
func WithReporter(reporter Reporter) Option {
	return func(s *Service) {
		s.reporter = reporter
	}
}

// WithLogger sets the fallback logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service reads, searches and recommends documentation pages of one partition.
type Service struct {
	api       API
	cache     *QueryCache
	partition Partition
	reporter  Reporter
	logger    logSDK.Logger
}

// NewService wires the documentation operations. A nil cache gets a default one.
func NewService(api API, cache *QueryCache, partition Partition, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("documentation api is required")
	}
	if partition.Host == "" {
		return nil, errors.New("partition is required")
	}
	if partition.hostPattern == nil {
		partition = newPartition(partition)
	}
	if cache == nil {
		cache = NewQueryCache(DefaultQueryCacheCapacity)
	}

	s := &Service{
		api:       api,
		cache:     cache,
		partition: partition,
		logger:    log.Logger.Named("docs_service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Partition returns the partition served.
func (s *Service) Partition() Partition {
	return s.partition
}

// Cache returns the query-correlation cache.
func (s *Service) Cache() *QueryCache {
	return s.cache
}

// ValidateURL checks that pageURL is an HTML page of the partition's host.
func (s *Service) ValidateURL(pageURL string) error {
	if !s.partition.hostPattern.MatchString(pageURL) {
		return &ValidationError{
			URL:    pageURL,
			Reason: fmt.Sprintf("URL must be from the %s domain", s.partition.Host),
		}
	}
	if !strings.HasSuffix(pageURL, ".html") {
		return &ValidationError{URL: pageURL, Reason: "URL must end with .html"}
	}
	return nil
}

// ReadDocumentation fetches pageURL and returns the requested window of its
// markdown rendering. Only an invalid URL yields an error; remote failures are
// reported and returned as the result text.
func (s *Service) ReadDocumentation(ctx context.Context, pageURL string, maxLength, startIndex int) (string, error) {
	if err := s.ValidateURL(pageURL); err != nil {
		s.report(ctx, err.Error())
		return "", err
	}

	logger := s.loggerFromContext(ctx)
	queryID, found := s.cache.Lookup(pageURL)
	if found {
		logger.Debug("correlated page with search query",
			zap.String("url", pageURL), zap.String("query_id", queryID))
	}

	content, failure := s.fetchContent(ctx, pageURL, queryID)
	if failure != "" {
		return failure, nil
	}

	result, window := docformat.Paginate(pageURL, content, startIndex, maxLength)
	if window.Truncated() {
		logger.Debug("documentation content truncated",
			zap.String("url", pageURL),
			zap.Int("end", window.End),
			zap.Int("total", window.Total))
	}

	return result, nil
}

// AvailableServices returns the whole services page of the partition.
func (s *Service) AvailableServices(ctx context.Context) (string, error) {
	if s.partition.ServicesURL == "" {
		return "", errors.Errorf("partition %s does not publish a services page", s.partition.Name)
	}

	content, failure := s.fetchContent(ctx, s.partition.ServicesURL, "")
	if failure != "" {
		return failure, nil
	}

	return docformat.FormatUnbounded(s.partition.ServicesURL, content), nil
}

var readFailures = failureMessages{transport: "Failed to fetch %s", status: "Failed to fetch %s"}

// fetchContent returns the page text, or a non-empty failure message.
func (s *Service) fetchContent(ctx context.Context, pageURL, queryID string) (content, failure string) {
	page, err := s.api.FetchPage(ctx, pageURL, queryID)
	if err != nil {
		failure = readFailures.render(err, pageURL)
		s.report(ctx, failure)
		return "", failure
	}

	if docformat.IsHTML(page.Body, page.ContentType) {
		return docformat.ExtractMarkdown(page.Body, pageURL), ""
	}
	return page.Body, ""
}

// Search runs phrase and returns at most limit ranked results. The batch is
// remembered so later reads of its pages carry the query id.
func (s *Service) Search(ctx context.Context, phrase string, limit int) ([]SearchResult, error) {
	resp, err := s.api.Search(ctx, phrase)
	if err != nil {
		return nil, err
	}

	results := ParseSearchResults(resp, limit)
	s.loggerFromContext(ctx).Debug("search finished",
		zap.String("phrase", phrase),
		zap.String("query_id", resp.QueryID),
		zap.Int("results", len(results)))
	s.cache.Insert(results)

	return results, nil
}

var searchFailures = failureMessages{
	transport: "Error searching AWS docs",
	status:    "Error searching AWS docs",
	decode:    "Error parsing search results",
}

// SearchDocumentation is Search that renders a failure as a single placeholder result.
func (s *Service) SearchDocumentation(ctx context.Context, phrase string, limit int) []SearchResult {
	results, err := s.Search(ctx, phrase, limit)
	if err != nil {
		msg := searchFailures.render(err)
		s.report(ctx, msg)
		return []SearchResult{{RankOrder: 1, Title: msg}}
	}
	return results
}

// ParseSearchResults converts the first limit suggestions into ranked results.
// Suggestions that are not text excerpts are skipped but still consume a rank.
func ParseSearchResults(resp *awsdocs.SearchResponse, limit int) []SearchResult {
	results := []SearchResult{}
	if resp == nil {
		return results
	}

	suggestions := resp.Suggestions
	if limit >= 0 && limit < len(suggestions) {
		suggestions = suggestions[:limit]
	}
	for i, suggestion := range suggestions {
		excerpt := suggestion.TextExcerptSuggestion
		if excerpt == nil {
			continue
		}
		results = append(results, SearchResult{
			RankOrder: i + 1,
			URL:       excerpt.Link,
			Title:     excerpt.Title,
			QueryID:   resp.QueryID,
			Context:   SelectSnippet(excerpt),
		})
	}

	return results
}

// Recommendations returns pages related to pageURL.
func (s *Service) Recommendations(ctx context.Context, pageURL string) ([]RecommendationResult, error) {
	resp, err := s.api.Recommend(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	results := ParseRecommendations(resp)
	s.loggerFromContext(ctx).Debug("recommendations fetched",
		zap.String("url", pageURL), zap.Int("results", len(results)))
	return results, nil
}

var recommendFailures = failureMessages{
	transport: "Error getting recommendations",
	status:    "Error getting recommendations",
	decode:    "Error parsing recommendations",
}

// Recommend is Recommendations that renders a failure as a single placeholder result.
func (s *Service) Recommend(ctx context.Context, pageURL string) []RecommendationResult {
	results, err := s.Recommendations(ctx, pageURL)
	if err != nil {
		msg := recommendFailures.render(err)
		s.report(ctx, msg)
		return []RecommendationResult{{Title: msg}}
	}
	return results
}

// ParseRecommendations flattens the recommendation groups in the order
// highly rated, journey, new, similar. The group is not kept on the results.
func ParseRecommendations(resp *awsdocs.RecommendationResponse) []RecommendationResult {
	results := []RecommendationResult{}
	if resp == nil {
		return results
	}

	if resp.HighlyRated != nil {
		for _, item := range resp.HighlyRated.Items {
			results = append(results, RecommendationResult{
				URL:     item.URL,
				Title:   item.AssetTitle,
				Context: item.Abstract,
			})
		}
	}

	if resp.Journey != nil {
		for _, group := range resp.Journey.Items {
			var intent *string
			if group.Intent != "" {
				intent = stringPtr("Intent: " + group.Intent)
			}
			for _, item := range group.URLs {
				results = append(results, RecommendationResult{
					URL:     item.URL,
					Title:   item.AssetTitle,
					Context: intent,
				})
			}
		}
	}

	if resp.New != nil {
		for _, item := range resp.New.Items {
			label := "New content"
			if item.DateCreated != "" {
				label = "New content added on " + item.DateCreated
			}
			results = append(results, RecommendationResult{
				URL:     item.URL,
				Title:   item.AssetTitle,
				Context: stringPtr(label),
			})
		}
	}

	if resp.Similar != nil {
		for _, item := range resp.Similar.Items {
			snippet := item.Abstract
			if snippet == nil {
				snippet = stringPtr("Similar content")
			}
			results = append(results, RecommendationResult{
				URL:     item.URL,
				Title:   item.AssetTitle,
				Context: snippet,
			})
		}
	}

	return results
}

// failureMessages holds the message prefixes of one operation. Prefixes may
// contain a single %s filled with the subject of the call.
type failureMessages struct {
	transport string
	status    string
	decode    string
}

func (m failureMessages) render(err error, subject ...any) string {
	prefix := func(format string) string {
		if len(subject) > 0 {
			return fmt.Sprintf(format, subject...)
		}
		return format
	}

	apiErr, ok := awsdocs.AsAPIError(err)
	if !ok {
		return fmt.Sprintf("%s: %v", prefix(m.transport), err)
	}

	switch apiErr.Kind {
	case awsdocs.KindStatus:
		return fmt.Sprintf("%s - status code %d", prefix(m.status), apiErr.StatusCode)
	case awsdocs.KindDecode:
		if m.decode != "" {
			return fmt.Sprintf("%s: %v", prefix(m.decode), apiErr.Err)
		}
	}
	return fmt.Sprintf("%s: %v", prefix(m.transport), apiErr.Err)
}

func (s *Service) report(ctx context.Context, msg string) {
	s.loggerFromContext(ctx).Error(msg)
	if s.reporter != nil {
		s.reporter(ctx, msg)
	}
}

func (s *Service) loggerFromContext(ctx context.Context) logSDK.Logger {
	if ctx != nil {
		if ctxLogger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && ctxLogger != nil {
			return ctxLogger
		}
		if _, ok := gmw.GetGinCtxFromStdCtx(ctx); ok {
			return gmw.GetLogger(ctx)
		}
	}
	return s.logger
}
