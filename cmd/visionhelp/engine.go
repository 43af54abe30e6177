package main

import (
	"visionhelp/internal/config"
	"visionhelp/internal/content"
	"visionhelp/internal/helpctx"
	"visionhelp/internal/logging"
	"visionhelp/internal/observability"
	"visionhelp/internal/state"
)

// engine bundles the two core components plus their supporting pieces.
type engine struct {
	tracker  *helpctx.Tracker
	resolver *content.Resolver
	metrics  *observability.Metrics
}

func (e *engine) Close() {
	e.tracker.Close()
}

// buildEngine constructs the tracker and resolver from configuration.
// A missing or unwritable state directory degrades to in-memory state; it
// never fails construction.
func buildEngine(cfg *config.Config) (*engine, error) {
	logger := logging.NewComponentLogger("engine")

	var stateStore state.Store
	if cfg.State.Dir != "" {
		fileStore, err := state.NewFileStore(cfg.State.Dir,
			state.WithFileStoreLogger(logging.NewComponentLogger("state")))
		if err != nil {
			logger.Warn("state dir unavailable (%v), using in-memory state", err)
			stateStore = state.NewMemStore()
		} else {
			stateStore = fileStore
		}
	} else {
		stateStore = state.NewMemStore()
	}

	tracker := helpctx.New(
		helpctx.WithRoleStore(stateStore),
		helpctx.WithSessionStore(stateStore),
		helpctx.WithLocation(cfg.Location),
		helpctx.WithLogger(logging.NewComponentLogger("context")),
	)

	var fetcher content.Fetcher
	if cfg.Content.BaseURL != "" {
		fetcher = content.HTTPFetcher{BaseURL: cfg.Content.BaseURL}
	} else {
		fetcher = content.FileFetcher{Dir: cfg.Content.Dir}
	}

	metrics := observability.NewMetrics()
	initialSource, _ := content.ParseSource(cfg.Content.Source)
	resolver := content.NewResolver(fetcher,
		content.WithCacheTTL(cfg.Content.CacheTTL),
		content.WithCacheSize(cfg.Content.CacheSize),
		content.WithDocsURL(cfg.Content.DocsURL),
		content.WithInitialSource(initialSource),
		content.WithResolverLogger(logging.NewComponentLogger("content")),
		content.WithMetrics(metrics),
	)

	return &engine{tracker: tracker, resolver: resolver, metrics: metrics}, nil
}
