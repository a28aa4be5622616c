package models

import "strings"

// PageRequest is one page submitted for cloning. A nil field means the
// client did not send it; such entries are skipped, not rejected.
type PageRequest struct {
	URL   *string `json:"url,omitempty" yaml:"url,omitempty"`
	Title *string `json:"title,omitempty" yaml:"title,omitempty"`
}

// NewPageRequest builds a complete request.
func NewPageRequest(url, title string) PageRequest {
	return PageRequest{URL: &url, Title: &title}
}

// Valid reports whether both url and title were provided.
// An empty title is valid and falls back to "index" on disk.
func (p PageRequest) Valid() bool {
	return p.URL != nil && p.Title != nil && strings.TrimSpace(*p.URL) != ""
}

// PageList is the file format accepted by the clone command.
type PageList struct {
	Pages []PageRequest `json:"pages" yaml:"pages"`
}
