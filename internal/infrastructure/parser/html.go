package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kimseungO/news-sum/internal/ports"
)

const htmlElements = `p|div|br|hr|span|a|b|i|u|em|strong|small|sup|sub|img|figure|figcaption|` +
	`ul|ol|li|table|thead|tbody|tr|td|th|h[1-6]|article|section|header|footer|blockquote|` +
	`script|style|noscript|iframe|html|head|body|meta|link`

var (
	// tagExpr matches a known HTML element with ASCII attributes, or a
	// comment. Bracketed prose such as <KBS 뉴스> or <Parasite> does not match.
	tagExpr = regexp.MustCompile(`(?i)<!--|</?(?:` + htmlElements + `)` +
		`(?:\s+[a-z_:][-a-z0-9_:.]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>]+))?)*\s*/?>`)
	spaceExpr      = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLinesExpr = regexp.MustCompile(`\n{3,}`)
)

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"article": true, "section": true, "blockquote": true,
}

// HTMLExtractor turns scraped article bodies that still carry markup into
// plain text. Text without a recognised HTML element is returned as is, and
// angle brackets that do not open an element are kept as text.
type HTMLExtractor struct{}

var _ ports.TextExtractor = HTMLExtractor{}

// NewHTMLExtractor returns the goquery-backed extractor.
func NewHTMLExtractor() HTMLExtractor {
	return HTMLExtractor{}
}

// PlainText implements ports.TextExtractor.
func (HTMLExtractor) PlainText(contents string) string {
	tags := tagExpr.FindAllStringIndex(contents, -1)
	if len(tags) == 0 {
		return contents
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeStrayBrackets(contents, tags)))
	if err != nil {
		return contents
	}

	doc.Find("script, style, noscript, iframe").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceExpr.ReplaceAllString(line, " "))
	}
	text := strings.Join(lines, "\n")
	text = blankLinesExpr.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// writeText flattens n, putting block-level elements on their own lines.
func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteByte('\n')
	}
}

// escapeStrayBrackets entity-encodes every '<' that does not start one of
// the matched tags so the parser keeps it as text.
func escapeStrayBrackets(s string, tags [][]int) string {
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, tag := range tags {
		b.WriteString(strings.ReplaceAll(s[last:tag[0]], "<", "&lt;"))
		b.WriteString(s[tag[0]:tag[1]])
		last = tag[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}
