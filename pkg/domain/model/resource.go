package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/libris/pkg/domain/types"
)

// Resource represents a user-saved item in the library. Tags and Categories
// hold a single value each; the MVP schema stores one tag and one category
// per record, not a set.
type Resource struct {
	ID         types.ResourceID
	Title      string
	URL        string
	Notes      string
	Tags       string
	Categories string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the resource
func (x *Resource) Clone() *Resource {
	copied := *x
	if x.Embedding != nil {
		copied.Embedding = make([]float32, len(x.Embedding))
		copy(copied.Embedding, x.Embedding)
	}
	return &copied
}

// ResourceInput is the payload collected from the classifier before storing.
// Empty fields mean "not supplied" and are left untouched on update.
type ResourceInput struct {
	Title      string
	URL        string
	Notes      string
	Tags       string
	Categories string
}

// ResourceQuery holds the filters extracted from a fetch turn
type ResourceQuery struct {
	Query      string
	Tags       string
	Categories string
	Limit      int
}

// ParsedRequest is the ephemeral result of classifying one user turn. It is
// consumed by exactly one action and discarded afterwards.
type ParsedRequest struct {
	Intent   types.Intent
	Resource ResourceInput
	Query    ResourceQuery
}

// FirstValue collapses a comma-separated list to its first non-empty entry.
// The classifier tends to emit "ai, research" even though the schema holds a
// single tag and a single category per record.
func FirstValue(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			return v
		}
	}
	return ""
}

// DeriveTitle falls back to the URL or a snippet of the raw message when the
// classifier did not extract a title.
func DeriveTitle(url, fallbackText string) string {
	if url != "" {
		return url
	}
	snippet := strings.TrimSpace(fallbackText)
	if snippet == "" {
		return "Untitled resource"
	}
	runes := []rune(snippet)
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return snippet
}
