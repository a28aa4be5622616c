package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/site-cloner/models"
	"github.com/go-shiori/go-readability"
)

// maxExcerptRunes bounds the excerpt stored in the job history.
const maxExcerptRunes = 280

// Summarize extracts readability metadata from rendered page HTML.
// It reads the HTML only; the cloned page is never modified.
func Summarize(rawURL, html string) (*models.PageSummary, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("readability failed: %w", err)
	}

	summary := &models.PageSummary{
		Title:    normalizeText(article.Title),
		Excerpt:  truncate(normalizeText(article.Excerpt), maxExcerptRunes),
		SiteName: normalizeText(article.SiteName),
	}

	if article.Content != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
		if err == nil {
			summary.TextLength = utf8.RuneCountInString(normalizeText(doc.Text()))
		}
	}

	return summary, nil
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
