package docformat

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

const (
	// MsgEmptyHTML is returned in place of content when the page body is empty.
	MsgEmptyHTML = "<e>Empty HTML content</e>"
	// MsgSimplifyFailed is returned when conversion produced no text.
	MsgSimplifyFailed = "<e>Page failed to be simplified from HTML</e>"
)

// contentSelectors locate the main article of a documentation page, first match wins.
var contentSelectors = []string{
	"main",
	"article",
	"#main-content",
	".main-content",
	"#content",
	".content",
	"div[role='main']",
	"#awsdocs-content",
	".awsui-article",
}

// navSelectors are page chrome that can sit inside the main content.
var navSelectors = []string{
	"noscript",
	".prev-next",
	"#main-col-footer",
	".awsdocs-page-utilities",
	"#quick-feedback-yes",
	"#quick-feedback-no",
	".page-loading-indicator",
	"#tools-panel",
	".doc-cookie-banner",
	"awsdocs-copyright",
	"awsdocs-thumb-feedback",
}

// strippedTags never carry documentation text.
var strippedTags = []string{
	"script",
	"style",
	"noscript",
	"meta",
	"link",
	"footer",
	"nav",
	"aside",
	"header",
	"awsdocs-cookie-consent-container",
	"awsdocs-feedback-container",
	"awsdocs-page-header",
	"awsdocs-page-header-container",
	"awsdocs-filter-selector",
	"awsdocs-breadcrumb-container",
	"awsdocs-page-footer",
	"awsdocs-page-footer-container",
	"awsdocs-footer",
	"awsdocs-cookie-banner",
	"js-show-more-buttons",
	"js-show-more-text",
	"feedback-container",
	"feedback-section",
	"doc-feedback-container",
	"doc-feedback-section",
	"warning-container",
	"warning-section",
	"cookie-banner",
	"cookie-notice",
	"copyright-section",
	"legal-section",
	"terms-section",
}

var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(
			commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
		),
		table.NewTablePlugin(),
	),
)

// ExtractMarkdown isolates the main content of an HTML documentation page and
// renders it as markdown. Relative links are resolved against pageURL.
//
// Failures are reported inline as <e>...</e> text rather than as errors, the
// result is always something the caller can show to the agent.
func ExtractMarkdown(html, pageURL string) string {
	if html == "" {
		return MsgEmptyHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return conversionError(err)
	}

	mainContent := selectMainContent(doc)
	for _, selector := range navSelectors {
		mainContent.Find(selector).Remove()
	}
	mainContent.Find(strings.Join(strippedTags, ", ")).Remove()

	fragment, err := goquery.OuterHtml(mainContent)
	if err != nil {
		return conversionError(err)
	}

	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}
	content, err := markdownConverter.ConvertString(fragment, opts...)
	if err != nil {
		return conversionError(err)
	}
	if strings.TrimSpace(content) == "" {
		return MsgSimplifyFailed
	}

	return content
}

// selectMainContent returns the first content container, falling back to the
// body and finally to the whole document.
func selectMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if found := doc.Find(selector).First(); found.Length() > 0 {
			return found
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func conversionError(err error) string {
	return fmt.Sprintf("<e>Error converting HTML to Markdown: %v</e>", err)
}
