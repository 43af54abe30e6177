package content

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDocsURL is the documentation site every fallback document links to.
const DefaultDocsURL = "/agentic-docs-poc/"

// pageNames maps known page identifiers to display names. Unknown pages fall
// through to generic humanization.
var pageNames = map[string]string{
	"attack-surface":     "Attack Surface Discovery",
	"workbench":          "Workbench",
	"endpoint-inventory": "Endpoint Inventory",
	"home":               "Home",
}

// humanize turns an identifier like "risk-score" into "Risk Score".
func humanize(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// formatPageName resolves a page identifier to its display name.
func formatPageName(page string) string {
	if name, ok := pageNames[page]; ok {
		return name
	}
	return humanize(page)
}

// fallbackDocument synthesizes a deterministic document for a context key
// with no stored content. It always includes a link action to the full
// documentation site and is tagged so renderers can mark it distinctly.
func fallbackDocument(contextKey, docsURL string, now time.Time) *Document {
	parts := strings.SplitN(contextKey, ":", 3)
	page := ""
	section := ""
	if len(parts) > 1 {
		page = parts[1]
	}
	if len(parts) > 2 {
		section = parts[2]
	}

	pageName := formatPageName(page)
	title := "Help: " + pageName
	about := fmt.Sprintf("You are viewing the %s page", pageName)
	if section != "" {
		sectionName := humanize(section)
		title += " - " + sectionName
		about += " in the " + sectionName + " section"
	}
	about += ". This page helps you manage and monitor your security environment."

	if docsURL == "" {
		docsURL = DefaultDocsURL
	}

	return &Document{
		Title: title,
		Badge: "AI",
		Sections: []Section{
			{
				Type:    "what-is",
				Title:   "About This Page",
				Content: about,
			},
			{
				Type:    "help-needed",
				Title:   "Need More Help?",
				Content: "Detailed documentation for this feature is available in the full documentation site.",
			},
		},
		Actions: []Action{
			{
				Type:    "link",
				Label:   "Open Full Documentation",
				URL:     docsURL,
				Primary: true,
			},
		},
		Metadata: Metadata{
			ContextKey:  contextKey,
			GeneratedAt: now,
			Source:      sourceFallback,
			IsFallback:  true,
		},
	}
}

// fallbackTooltip synthesizes a tooltip for an unknown element by humanizing
// its identifier.
func fallbackTooltip(elementID string) *Tooltip {
	name := humanize(elementID)
	return &Tooltip{
		Title:      name,
		Content:    fmt.Sprintf("Information about %s. See full documentation for details.", name),
		IsFallback: true,
	}
}
