package markdown

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	imgLineRe  = regexp.MustCompile(`!\[[^\]]*\]\([^\)]+\)`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// ConvertHTMLToMarkdown converts a page's HTML into cleaned-up markdown,
// preferring the main content area when one can be identified.
func ConvertHTMLToMarkdown(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var content *goquery.Selection
	for _, sel := range []string{"main", "[role=\"main\"]", "#content", "#main", "article"} {
		if doc.Find(sel).Length() > 0 {
			content = doc.Find(sel).First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	// Strip elements that never carry document content
	content.Find("script, style, noscript, nav, header, footer, aside, form, iframe, svg, button, input").Each(func(_ int, s *goquery.Selection) { s.Remove() })
	content.Find("[role=\"navigation\"], [role=\"banner\"], [role=\"contentinfo\"]").Each(func(_ int, s *goquery.Selection) { s.Remove() })

	body, err := content.Html()
	if err != nil {
		return ""
	}

	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(body)
	if err != nil {
		return ""
	}

	out = CleanBoilerplate(out)
	return strings.TrimSpace(out)
}

// CleanBoilerplate removes markdown-level noise after conversion: pure image
// lines, leading/trailing line whitespace and runs of blank lines.
func CleanBoilerplate(mdText string) string {
	lines := strings.Split(mdText, "\n")
	out := make([]string, 0, len(lines))

	for _, l := range lines {
		line := strings.TrimSpace(l)
		if line == "" {
			continue
		}
		if imgLineRe.MatchString(line) && strings.TrimSpace(imgLineRe.ReplaceAllString(line, "")) == "" {
			continue
		}
		out = append(out, line)
	}

	cleaned := strings.Join(out, "\n")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
