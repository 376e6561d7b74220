package main

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Article Data Model
// ---------------------------------------------------------------------------

// Content block kinds produced by the extractor. Anything else is treated
// as a paragraph during layout.
const (
	blockHeading   = "heading"
	blockParagraph = "paragraph"
)

// ContentBlock is a single unit of article content in reading order.
type ContentBlock struct {
	Kind  string
	Level int    // heading level 1-6, headings only
	Text  string // may contain embedded newlines
}

// ExtractedArticle holds everything pulled from the source page.
// It is read-only for the layout engine.
type ExtractedArticle struct {
	Title       string
	Authors     []string
	PublishDate *time.Time
	SourceURL   string
	TopImage    string   // absolute URL, empty if the page declares none
	Images      []string // absolute URLs in document order
	Content     []ContentBlock
}

// DownloadedImage is a fetched image stored in a temporary file.
// The file lifetime belongs to the caller; layout only reads it.
type DownloadedImage struct {
	Path   string
	Width  int // pixels
	Height int // pixels
}

// ---------------------------------------------------------------------------
// Document Content Helpers
// ---------------------------------------------------------------------------

// countParagraphs returns the number of paragraph blocks. Unknown kinds
// count as paragraphs, matching how they are laid out.
func countParagraphs(blocks []ContentBlock) int {
	n := 0
	for _, b := range blocks {
		if b.Kind != blockHeading {
			n++
		}
	}
	return n
}

// metadataLines builds the muted metadata lines shown under the title.
func metadataLines(a *ExtractedArticle) []string {
	var lines []string
	if len(a.Authors) > 0 {
		lines = append(lines, "Authors: "+strings.Join(a.Authors, ", "))
	}
	if a.PublishDate != nil {
		lines = append(lines, "Date: "+a.PublishDate.Format("2006-01-02"))
	}
	if a.SourceURL != "" {
		lines = append(lines, "Source: "+a.SourceURL)
	}
	return lines
}
