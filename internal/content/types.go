// Package content resolves context keys to help documents and tooltip
// documents from the static JSON content stores, with a bounded expiring
// cache, layered fallback lookup, and coalescing of concurrent lookups for
// the same key. Resolution never fails from the caller's point of view:
// every internal failure degrades to a synthesized fallback document.
package content

import "time"

// Source selects the content resolution backend.
type Source string

const (
	// SourceStatic reads the bundled JSON content stores.
	SourceStatic Source = "static"
	// SourceAPI is a reserved extension point; it currently degrades to the
	// static path.
	SourceAPI Source = "api"
	// SourceLLM is a reserved extension point; it currently degrades to the
	// static path.
	SourceLLM Source = "llm"

	// sourceFallback tags synthesized documents.
	sourceFallback = "fallback"
)

// ParseSource validates s, reporting whether it was a known source. Invalid
// input yields SourceStatic.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceStatic, SourceAPI, SourceLLM:
		return Source(s), true
	default:
		return SourceStatic, false
	}
}

// Section is one block of a help document.
type Section struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Items   []string `json:"items,omitempty"`
}

// Action is a call-to-action rendered at the bottom of the help panel.
type Action struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	URL     string `json:"url,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// RelatedTopic links to a neighbouring help topic.
type RelatedTopic struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Metadata describes where a document came from.
type Metadata struct {
	ContextKey  string    `json:"contextKey"`
	LoadedAt    time.Time `json:"loadedAt,omitzero"`
	GeneratedAt time.Time `json:"generatedAt,omitzero"`
	Source      string    `json:"source"`
	IsFallback  bool      `json:"isFallback,omitempty"`
}

// Document is the help-panel content schema.
type Document struct {
	Title         string         `json:"title"`
	Badge         string         `json:"badge,omitempty"`
	Sections      []Section      `json:"sections"`
	Actions       []Action       `json:"actions"`
	RelatedTopics []RelatedTopic `json:"relatedTopics,omitempty"`
	Metadata      Metadata       `json:"metadata"`
}

// Tooltip is the inline tooltip content schema, addressed by (page, element).
type Tooltip struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Roles       map[string]string `json:"roles,omitempty"`
	Calculation string            `json:"calculation,omitempty"`
	SLA         string            `json:"sla,omitempty"`

	// RoleContent and CurrentRole are spliced in when the tooltip carries
	// per-role content and a role was requested.
	RoleContent string `json:"roleSpecificContent,omitempty"`
	CurrentRole string `json:"currentRole,omitempty"`
	IsFallback  bool   `json:"isFallback,omitempty"`
}
