package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ---------------------------------------------------------------------------
// Article Extraction
// ---------------------------------------------------------------------------

const (
	httpTimeout = 30 * time.Second
	userAgent   = "Mozilla/5.0 (compatible; url2pdf/" + version + ")"
)

var httpClient = &http.Client{Timeout: httpTimeout}

// skippedTags are subtrees that never contribute article content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
}

// extractArticle fetches the page and pulls title, metadata, content blocks
// and image URLs out of the DOM.
func extractArticle(rawURL string) (*ExtractedArticle, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch page: status %s", resp.Status)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return parseArticle(doc, rawURL), nil
}

// parseArticle walks the parsed DOM. Separated from the HTTP fetch so tests
// can feed documents directly.
func parseArticle(doc *html.Node, sourceURL string) *ExtractedArticle {
	article := &ExtractedArticle{SourceURL: sourceURL}
	base, _ := url.Parse(sourceURL)

	collectMetadata(doc, base, article)
	if article.Title == "" {
		article.Title = pageTitle(doc)
	}

	root := bodyRoot(doc)
	if root != nil {
		article.Content = collectBlocks(root)
		article.Images = collectImageURLs(root, base)
	}
	return article
}

// collectMetadata reads the meta tags: og:title, og:image, author and
// article:published_time.
func collectMetadata(doc *html.Node, base *url.URL, article *ExtractedArticle) {
	seen := make(map[string]bool)
	walkNodes(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return true
		}
		key := attrValue(n, "property")
		if key == "" {
			key = attrValue(n, "name")
		}
		content := strings.TrimSpace(attrValue(n, "content"))
		if content == "" {
			return true
		}
		switch key {
		case "og:title":
			if article.Title == "" {
				article.Title = content
			}
		case "og:image":
			if article.TopImage == "" {
				article.TopImage = resolveURL(base, content)
			}
		case "article:published_time":
			if article.PublishDate == nil {
				article.PublishDate = parsePublishDate(content)
			}
		case "author", "article:author":
			// article:author is sometimes a profile URL rather than a name.
			if !strings.Contains(content, "://") && !seen[content] {
				seen[content] = true
				article.Authors = append(article.Authors, content)
			}
		}
		return true
	})
}

// parsePublishDate accepts the timestamp formats commonly found in
// article:published_time metas.
func parsePublishDate(s string) *time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// pageTitle returns the text of the first <title> element.
func pageTitle(doc *html.Node) string {
	if n := findElement(doc, "title"); n != nil {
		return nodeText(n)
	}
	return ""
}

// bodyRoot picks the container to pull content from: the first <article>,
// else <main>, else <body>.
func bodyRoot(doc *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		if n := findElement(doc, tag); n != nil {
			return n
		}
	}
	return nil
}

// collectBlocks gathers headings and paragraphs in document order.
func collectBlocks(root *html.Node) []ContentBlock {
	var blocks []ContentBlock
	walkNodes(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if skippedTags[n.Data] {
			return false
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := nodeText(n); text != "" {
				blocks = append(blocks, ContentBlock{
					Kind:  blockHeading,
					Level: int(n.Data[1] - '0'),
					Text:  text,
				})
			}
			return false
		case "p":
			if text := nodeText(n); text != "" {
				blocks = append(blocks, ContentBlock{Kind: blockParagraph, Text: text})
			}
			return false
		}
		return true
	})
	return blocks
}

// collectImageURLs gathers the absolute http(s) URLs of <img> elements,
// dropping duplicates and data: URIs.
func collectImageURLs(root *html.Node, base *url.URL) []string {
	var urls []string
	seen := make(map[string]bool)
	walkNodes(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return false
		}
		if n.Type != html.ElementNode || n.Data != "img" {
			return true
		}
		if u := resolveURL(base, attrValue(n, "src")); u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
		return true
	})
	return urls
}

// resolveURL turns ref into an absolute http(s) URL, or "" if it cannot be
// used as one.
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// walkNodes visits n and its descendants in document order. The visitor
// returns false to skip a node's subtree.
func walkNodes(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

// findElement returns the first element with the given tag, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// brMarker separates <br>-delimited lines before whitespace collapsing, so
// raw newlines in the HTML source are not mistaken for line breaks.
const brMarker = "\x00"

// nodeText extracts the visible text of a node. <br> elements become
// embedded newlines; all other whitespace runs collapse to single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteString(brMarker)
		case n.Type == html.ElementNode && skippedTags[n.Data]:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	lines := strings.Split(b.String(), brMarker)
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
