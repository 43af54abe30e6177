package content

import (
	"context"
	"strings"
	"time"

	"visionhelp/internal/helpctx"
	"visionhelp/internal/logging"
	"visionhelp/internal/observability"
)

// resolveStrategy produces a document for a context key. A nil error with a
// fallback-tagged document means "nothing stored for this key", which is a
// normal outcome; an error means the store itself could not be read.
type resolveStrategy interface {
	Resolve(ctx context.Context, contextKey string) (*Document, error)
}

// staticStrategy reads the bundled help store and walks the fallback ladder.
type staticStrategy struct {
	fetcher Fetcher
	docsURL string
	logger  logging.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func (s *staticStrategy) Resolve(ctx context.Context, contextKey string) (*Document, error) {
	s.metrics.StoreRead("help")
	store, err := loadHelpStore(ctx, s.fetcher)
	if err != nil {
		s.metrics.StoreError("help")
		return nil, err
	}

	for _, key := range fallbackLadder(contextKey) {
		if doc, ok := store[key]; ok {
			if key != contextKey {
				s.logger.Debug("no exact content for %s, matched %s", contextKey, key)
			}
			doc.Metadata.ContextKey = contextKey
			doc.Metadata.LoadedAt = s.now()
			doc.Metadata.Source = string(SourceStatic)
			return &doc, nil
		}
	}

	s.logger.Warn("no content found for context: %s", contextKey)
	s.metrics.Fallback()
	return fallbackDocument(contextKey, s.docsURL, s.now()), nil
}

// fallbackLadder returns the lookup keys for contextKey in precedence order:
// exact, section dropped, role forced to the default (first with the section
// preserved, then without), bare page.
func fallbackLadder(contextKey string) []string {
	parts := strings.SplitN(contextKey, ":", 3)
	if len(parts) < 2 {
		return []string{contextKey}
	}
	role, page := parts[0], parts[1]
	section := ""
	if len(parts) > 2 {
		section = parts[2]
	}

	keys := []string{contextKey}
	if section != "" {
		keys = append(keys, role+":"+page)
	}
	if role != string(helpctx.DefaultRole) {
		if section != "" {
			keys = append(keys, string(helpctx.DefaultRole)+":"+page+":"+section)
		}
		keys = append(keys, string(helpctx.DefaultRole)+":"+page)
	}
	return append(keys, page)
}

// apiStrategy is a reserved extension point. Until a content API exists it
// degrades to the static path.
type apiStrategy struct {
	static *staticStrategy
	logger logging.Logger
}

func (s *apiStrategy) Resolve(ctx context.Context, contextKey string) (*Document, error) {
	s.logger.Info("api content source not implemented, using static content")
	return s.static.Resolve(ctx, contextKey)
}

// llmStrategy is a reserved extension point. Until generated content exists
// it degrades to the static path.
type llmStrategy struct {
	static *staticStrategy
	logger logging.Logger
}

func (s *llmStrategy) Resolve(ctx context.Context, contextKey string) (*Document, error) {
	s.logger.Info("llm content source not implemented, using static content")
	return s.static.Resolve(ctx, contextKey)
}
