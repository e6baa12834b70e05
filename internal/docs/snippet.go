package docs

import "github.com/Laisky/aws-documentation-mcp/library/awsdocs"

// SnippetAccessor reads one candidate snippet field of a search excerpt. ok
// reports whether the field was sent at all; value is nil for a JSON null.
type SnippetAccessor func(*awsdocs.TextExcerptSuggestion) (value *string, ok bool)

// SnippetFallbacks lists the snippet sources from most to least preferred:
// the SEO abstract written for result snippets, the generated abstract, the
// authored summary and finally the raw suggestion body.
var SnippetFallbacks = []SnippetAccessor{
	func(s *awsdocs.TextExcerptSuggestion) (*string, bool) {
		return s.Metadata.SEOAbstract, s.Metadata.Has("seo_abstract")
	},
	func(s *awsdocs.TextExcerptSuggestion) (*string, bool) {
		return s.Metadata.Abstract, s.Metadata.Has("abstract")
	},
	func(s *awsdocs.TextExcerptSuggestion) (*string, bool) {
		return s.Summary, s.Has("summary")
	},
	func(s *awsdocs.TextExcerptSuggestion) (*string, bool) {
		return s.SuggestionBody, s.Has("suggestionBody")
	},
}

// SelectSnippet returns the value of the first snippet field present on
// excerpt. A present field wins even when it is null, so the result is nil
// then, the same as when no field is present.
func SelectSnippet(excerpt *awsdocs.TextExcerptSuggestion) *string {
	if excerpt == nil {
		return nil
	}
	for _, accessor := range SnippetFallbacks {
		value, ok := accessor(excerpt)
		if !ok {
			continue
		}
		if value == nil {
			return nil
		}
		return stringPtr(*value)
	}
	return nil
}
