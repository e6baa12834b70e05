package awsdocs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient()
	require.Equal(t, DefaultSearchEndpoint, client.searchEndpoint)
	require.Equal(t, DefaultRecommendationsEndpoint, client.recommendationsEndpoint)
	require.Equal(t, DefaultSearchDomain, client.searchDomain)
	require.Equal(t, httpRequestTimeout, client.httpClient.Timeout)
	require.Len(t, client.SessionID(), 36)
	require.Contains(t, client.userAgent, "ModelContextProtocol/"+Version)

	require.NotEqual(t, client.SessionID(), NewClient().SessionID())
}

func TestSearchSendsExpectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "sid-1", r.URL.Query().Get("session"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "sid-1", r.Header.Get(HeaderSessionID))
		require.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		var body SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, NewSearchRequest("s3 versioning", "docs.aws.amazon.com"), body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"queryId": "q-1",
			"suggestions": [
				{"textExcerptSuggestion": {
					"link": "https://docs.aws.amazon.com/a.html",
					"title": "A",
					"summary": "sum",
					"metadata": {"seo_abstract": "seo"}
				}},
				{"otherSuggestion": {}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(WithSearchEndpoint(server.URL), WithHTTPClient(server.Client()), WithSessionID("sid-1"))

	resp, err := client.Search(context.Background(), "  s3 versioning ")
	require.NoError(t, err)
	require.Equal(t, "q-1", resp.QueryID)
	require.Len(t, resp.Suggestions, 2)

	excerpt := resp.Suggestions[0].TextExcerptSuggestion
	require.NotNil(t, excerpt)
	require.Equal(t, "https://docs.aws.amazon.com/a.html", excerpt.Link)
	require.Equal(t, "seo", *excerpt.Metadata.SEOAbstract)
	require.Nil(t, excerpt.Metadata.Abstract)
	require.Equal(t, "sum", *excerpt.Summary)
	require.Nil(t, resp.Suggestions[1].TextExcerptSuggestion)
}

func TestSearchRejectsEmptyPhrase(t *testing.T) {
	_, err := NewClient().Search(context.Background(), "   ")
	require.Error(t, err)
	_, ok := AsAPIError(err)
	require.False(t, ok)
}

func TestSearchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(WithSearchEndpoint(server.URL), WithHTTPClient(server.Client()))
	_, err := client.Search(context.Background(), "lambda")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindStatus, apiErr.Kind)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestSearchDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(WithSearchEndpoint(server.URL), WithHTTPClient(server.Client()))
	_, err := client.Search(context.Background(), "lambda")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindDecode, apiErr.Kind)
}

func TestSearchTransportErrorIsSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	httpClient := server.Client()
	httpClient.Timeout = 20 * time.Millisecond
	client := NewClient(WithSearchEndpoint(server.URL), WithHTTPClient(httpClient))

	_, err := client.Search(context.Background(), "lambda")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindTransport, apiErr.Kind)
	require.Equal(t, int32(1), calls.Load())
}

func TestRecommendSendsExpectedRequest(t *testing.T) {
	page := "https://docs.aws.amazon.com/lambda/latest/dg/welcome.html"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, page, r.URL.Query().Get("path"))
		require.Equal(t, "sid-2", r.URL.Query().Get("session"))
		require.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{
			"highlyRated": {"items": [{"url": "https://h", "assetTitle": "H", "abstract": "popular"}]},
			"journey": {"items": [{"intent": "deploy", "urls": [{"url": "https://j", "assetTitle": "J"}]}]},
			"new": {"items": [{"url": "https://n", "assetTitle": "N", "dateCreated": "2025-01-01"}]},
			"similar": {"items": [{"url": "https://s", "assetTitle": "S"}]}
		}`))
	}))
	defer server.Close()

	client := NewClient(WithRecommendationsEndpoint(server.URL), WithHTTPClient(server.Client()), WithSessionID("sid-2"))
	resp, err := client.Recommend(context.Background(), page)
	require.NoError(t, err)

	require.Len(t, resp.HighlyRated.Items, 1)
	require.Equal(t, "popular", *resp.HighlyRated.Items[0].Abstract)
	require.Equal(t, "deploy", resp.Journey.Items[0].Intent)
	require.Equal(t, "J", resp.Journey.Items[0].URLs[0].AssetTitle)
	require.Equal(t, "2025-01-01", resp.New.Items[0].DateCreated)
	require.Nil(t, resp.Similar.Items[0].Abstract)
}

func TestFetchPageAddsSessionAndQueryID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lambda/welcome.html", r.URL.Path)
		require.Equal(t, "session=sid-3&query_id=q%2F1%20x", r.URL.RawQuery)
		require.Equal(t, "sid-3", r.Header.Get(HeaderSessionID))

		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithSessionID("sid-3"))
	page, err := client.FetchPage(context.Background(), server.URL+"/lambda/welcome.html", "q%2F1%20x")
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", page.Body)
	require.Equal(t, "text/html", page.ContentType)
}

func TestFetchPageFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.html", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "moved here")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))
	page, err := client.FetchPage(context.Background(), server.URL+"/old.html", "")
	require.NoError(t, err)
	require.Equal(t, "moved here", page.Body)
}

func TestFetchPageStatusError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))
	_, err := client.FetchPage(context.Background(), server.URL+"/missing.html", "")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindStatus, apiErr.Kind)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.True(t, strings.Contains(apiErr.Error(), "404"))
}
