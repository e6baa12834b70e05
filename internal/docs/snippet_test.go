package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/aws-documentation-mcp/library/awsdocs"
)

func TestSelectSnippetFallbackOrder(t *testing.T) {
	seo, abstract, summary, body := "seo", "abstract", "summary", "body"

	cases := []struct {
		name    string
		excerpt *awsdocs.TextExcerptSuggestion
		want    *string
	}{
		{
			name: "all fields",
			excerpt: &awsdocs.TextExcerptSuggestion{
				Summary:        &summary,
				SuggestionBody: &body,
				Metadata:       awsdocs.ExcerptMetadata{SEOAbstract: &seo, Abstract: &abstract},
			},
			want: &seo,
		},
		{
			name: "no seo abstract",
			excerpt: &awsdocs.TextExcerptSuggestion{
				Summary:        &summary,
				SuggestionBody: &body,
				Metadata:       awsdocs.ExcerptMetadata{Abstract: &abstract},
			},
			want: &abstract,
		},
		{
			name:    "summary and body",
			excerpt: &awsdocs.TextExcerptSuggestion{Summary: &summary, SuggestionBody: &body},
			want:    &summary,
		},
		{
			name:    "body only",
			excerpt: &awsdocs.TextExcerptSuggestion{SuggestionBody: &body},
			want:    &body,
		},
		{
			name:    "nothing",
			excerpt: &awsdocs.TextExcerptSuggestion{},
		},
		{
			name: "nil excerpt",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectSnippet(tc.excerpt)
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, *tc.want, *got)
		})
	}
}

func TestSelectSnippetEmptyStringCounts(t *testing.T) {
	empty, body := "", "body"
	got := SelectSnippet(&awsdocs.TextExcerptSuggestion{
		SuggestionBody: &body,
		Metadata:       awsdocs.ExcerptMetadata{SEOAbstract: &empty},
	})
	require.NotNil(t, got)
	require.Equal(t, "", *got)
}

func TestSelectSnippetPresentNullWins(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *string
	}{
		{"null seo abstract", `{"summary":"S","metadata":{"seo_abstract":null,"abstract":"A"}}`, nil},
		{"null abstract", `{"summary":"S","metadata":{"abstract":null}}`, nil},
		{"null summary", `{"summary":null,"suggestionBody":"B","metadata":{}}`, nil},
		{"missing keys fall through", `{"suggestionBody":"B","metadata":{}}`, stringPtr("B")},
		{"seo abstract set", `{"summary":"S","metadata":{"seo_abstract":"SEO","abstract":"A"}}`, stringPtr("SEO")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var excerpt awsdocs.TextExcerptSuggestion
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &excerpt))

			got := SelectSnippet(&excerpt)
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, *tc.want, *got)
		})
	}
}
