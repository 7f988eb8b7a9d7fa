// Package processor turns fetched HTML into the title/text/metadata triple
// the `inspect` subcommand prints for someone scoping out a new NIPL
// processor script's match target.
package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

type ProcessOptions struct {
	MinContentLength int
	IncludeMetadata  bool
	MetadataFields   []string
}

type ProcessedContent struct {
	Title       string
	TextContent string
	Author      string
	Excerpt     string
	Length      int
	Metadata    map[string]string
}

type ContentProcessor struct{}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{}
}

func (cp *ContentProcessor) Process(html, url string, opts ProcessOptions) (*ProcessedContent, error) {
	if len(html) < opts.MinContentLength {
		return nil, fmt.Errorf("content too short: %d characters (minimum: %d)", len(html), opts.MinContentLength)
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to process with readability: %w", err)
	}

	result := &ProcessedContent{
		Title:       article.Title,
		TextContent: cp.CleanNewlines(article.TextContent),
		Author:      article.Byline,
		Excerpt:     article.Excerpt,
		Length:      article.Length,
		Metadata:    make(map[string]string),
	}

	if opts.IncludeMetadata {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			result.Metadata = cp.extractMetadata(doc, opts.MetadataFields)
		}
	}

	return result, nil
}

func (cp *ContentProcessor) extractMetadata(doc *goquery.Document, fields []string) map[string]string {
	metadata := make(map[string]string)

	for _, field := range fields {
		switch field {
		case "title":
			if title := doc.Find("title").Text(); title != "" {
				metadata["title"] = strings.TrimSpace(title)
			}
		case "author":
			if author := cp.findMetaContent(doc, []string{"author", "article:author"}); author != "" {
				metadata["author"] = author
			}
		case "description":
			if desc := cp.findMetaContent(doc, []string{"description", "og:description"}); desc != "" {
				metadata["description"] = desc
			}
		case "date":
			if date := cp.findMetaContent(doc, []string{"article:published_time", "date", "pubdate"}); date != "" {
				metadata["date"] = date
			}
		case "url":
			if u := cp.findMetaContent(doc, []string{"og:url", "canonical"}); u != "" {
				metadata["url"] = u
			} else if canonical := doc.Find("link[rel='canonical']").AttrOr("href", ""); canonical != "" {
				metadata["url"] = canonical
			}
		}
	}

	return metadata
}

func (cp *ContentProcessor) findMetaContent(doc *goquery.Document, properties []string) string {
	for _, prop := range properties {
		if content := doc.Find(fmt.Sprintf("meta[name='%s']", prop)).AttrOr("content", ""); content != "" {
			return strings.TrimSpace(content)
		}
		if content := doc.Find(fmt.Sprintf("meta[property='%s']", prop)).AttrOr("content", ""); content != "" {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

// ToText wraps TextContent to lineWidth columns (0 = unwrapped), for
// terminal-friendly inspect output.
func (cp *ContentProcessor) ToText(content *ProcessedContent, lineWidth int) string {
	if lineWidth <= 0 {
		return content.TextContent
	}

	var result strings.Builder
	paragraphs := strings.Split(content.TextContent, "\n\n")

	for i, paragraph := range paragraphs {
		if i > 0 {
			result.WriteString("\n\n")
		}

		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) <= lineWidth {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine + "\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// CleanNewlines joins lines that readability split mid-sentence while
// preserving real paragraph breaks (double newlines).
func (cp *ContentProcessor) CleanNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	paragraphs := strings.Split(text, "\n\n")

	var cleanedParagraphs []string
	for _, paragraph := range paragraphs {
		lines := strings.Split(paragraph, "\n")
		var cleanedLines []string

		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if len(cleanedLines) > 0 {
				prevLine := cleanedLines[len(cleanedLines)-1]

				endsWithPunctuation := strings.HasSuffix(prevLine, ".") ||
					strings.HasSuffix(prevLine, "!") ||
					strings.HasSuffix(prevLine, "?") ||
					strings.HasSuffix(prevLine, ":") ||
					strings.HasSuffix(prevLine, ";")

				startsNewSentence := len(line) > 0 &&
					(line[0] >= 'A' && line[0] <= 'Z' ||
						line[0] >= '0' && line[0] <= '9' ||
						strings.HasPrefix(line, "- ") ||
						strings.HasPrefix(line, "* ") ||
						strings.HasPrefix(line, "• "))

				if !endsWithPunctuation && !startsNewSentence {
					cleanedLines[len(cleanedLines)-1] = prevLine + " " + line
					continue
				}
			}

			cleanedLines = append(cleanedLines, line)
		}

		if len(cleanedLines) > 0 {
			cleanedParagraphs = append(cleanedParagraphs, strings.Join(cleanedLines, "\n"))
		}
	}

	result := strings.Join(cleanedParagraphs, "\n\n")

	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}

	return strings.TrimSpace(result)
}
