package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dtnitsch/site-cloner/models"
	"gopkg.in/yaml.v3"
)

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ValidatePageURL reports why a page url cannot be rendered, or nil.
func ValidatePageURL(rawURL string) error {
	if strings.Contains(rawURL, " ") {
		return fmt.Errorf("url %q contains spaces", rawURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("url %q is malformed: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", rawURL)
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return fmt.Errorf("url %q has an invalid host", rawURL)
	}
	return nil
}

// SanitizePages cleans every page url in place and returns the urls that
// still fail validation. Invalid urls are kept so the job reports them.
func SanitizePages(pages []models.PageRequest) []string {
	var invalid []string
	for i := range pages {
		if pages[i].URL == nil {
			continue
		}
		cleaned := SanitizeURL(*pages[i].URL)
		pages[i].URL = &cleaned
		if cleaned == "" {
			continue
		}
		if err := ValidatePageURL(cleaned); err != nil {
			invalid = append(invalid, cleaned)
		}
	}
	return invalid
}

// LoadPageList reads a page list from a .json, .yaml or .yml file. Both a
// {"pages": [...]} document and a bare list are accepted.
func LoadPageList(path string) ([]models.PageRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page list: %w", err)
	}

	var list models.PageList
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &list); err != nil {
			var bare []models.PageRequest
			if err2 := json.Unmarshal(data, &bare); err2 != nil {
				return nil, fmt.Errorf("failed to parse page list %s: %w", path, err)
			}
			list.Pages = bare
		}
	default:
		if err := yaml.Unmarshal(data, &list); err != nil {
			var bare []models.PageRequest
			if err2 := yaml.Unmarshal(data, &bare); err2 != nil {
				return nil, fmt.Errorf("failed to parse page list %s: %w", path, err)
			}
			list.Pages = bare
		}
	}
	return list.Pages, nil
}
