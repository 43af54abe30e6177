package content

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"visionhelp/internal/logging"
	"visionhelp/internal/observability"
)

// tooltipPrefix namespaces tooltip entries inside the shared cache.
const tooltipPrefix = "tooltip:"

// Resolver turns context keys into help documents and (page, element) pairs
// into tooltips. It never returns an error from its public surface: internal
// failures degrade to synthesized fallback content.
type Resolver struct {
	fetcher Fetcher
	cache   *docCache
	flight  singleflight.Group
	logger  logging.Logger
	metrics *observability.Metrics
	docsURL string
	now     func() time.Time

	modeMu sync.RWMutex
	mode   Source
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	cacheTTL  time.Duration
	cacheSize int
	docsURL   string
	source    Source
	logger    logging.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// WithCacheTTL sets how long cached documents stay live.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(o *resolverOptions) { o.cacheTTL = ttl }
}

// WithCacheSize bounds the number of cached documents.
func WithCacheSize(size int) ResolverOption {
	return func(o *resolverOptions) { o.cacheSize = size }
}

// WithDocsURL sets the documentation site linked from fallback documents.
func WithDocsURL(url string) ResolverOption {
	return func(o *resolverOptions) { o.docsURL = url }
}

// WithInitialSource sets the starting content source mode.
func WithInitialSource(source Source) ResolverOption {
	return func(o *resolverOptions) { o.source = source }
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger logging.Logger) ResolverOption {
	return func(o *resolverOptions) { o.logger = logging.OrNop(logger) }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(metrics *observability.Metrics) ResolverOption {
	return func(o *resolverOptions) { o.metrics = metrics }
}

// WithClock overrides the time source; tests use this to age cache entries.
func WithClock(now func() time.Time) ResolverOption {
	return func(o *resolverOptions) { o.now = now }
}

// NewResolver creates a Resolver reading content through fetcher.
func NewResolver(fetcher Fetcher, opts ...ResolverOption) *Resolver {
	options := resolverOptions{
		source: SourceStatic,
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cache := newDocCache(options.cacheTTL, options.cacheSize)
	cache.now = options.now

	return &Resolver{
		fetcher: fetcher,
		cache:   cache,
		logger:  options.logger,
		metrics: options.metrics,
		docsURL: options.docsURL,
		now:     options.now,
		mode:    options.source,
	}
}

// Resolve returns the document for contextKey. The cache is consulted first;
// concurrent lookups for the same uncached key are coalesced into a single
// store read, and every caller observes the same document. Failures are
// converted to a fallback document, never an error.
func (r *Resolver) Resolve(ctx context.Context, contextKey string) *Document {
	if doc := r.cachedDocument(contextKey); doc != nil {
		r.metrics.CacheHit()
		r.logger.Debug("content cache hit for %s", contextKey)
		return doc
	}
	r.metrics.CacheMiss()

	// The in-flight entry is registered before the store read starts and
	// removed by singleflight once the call settles, on every exit path.
	result, _, _ := r.flight.Do(contextKey, func() (any, error) {
		// A caller can lose the race between its cache check and joining
		// the flight; re-checking here keeps "one store read per key".
		if doc := r.cachedDocument(contextKey); doc != nil {
			return doc, nil
		}
		doc, err := r.strategy().Resolve(ctx, contextKey)
		if err != nil {
			r.logger.Error("error resolving content for %s: %v", contextKey, err)
			r.metrics.Fallback()
			return fallbackDocument(contextKey, r.docsURL, r.now()), nil
		}
		r.cache.Set(contextKey, doc)
		return doc, nil
	})
	return result.(*Document)
}

// Cached returns the live cached document for contextKey without touching
// the store, or nil.
func (r *Resolver) Cached(contextKey string) *Document {
	return r.cachedDocument(contextKey)
}

func (r *Resolver) cachedDocument(contextKey string) *Document {
	value, ok := r.cache.Get(contextKey)
	if !ok {
		return nil
	}
	doc, ok := value.(*Document)
	if !ok {
		return nil
	}
	return doc
}

// ResolveTooltip returns the tooltip for an element on a page, shaped for the
// given role when the tooltip carries per-role content. Unknown elements and
// store failures yield a fallback tooltip built from the element identifier.
func (r *Resolver) ResolveTooltip(ctx context.Context, page, elementID, role string) *Tooltip {
	cacheKey := tooltipPrefix + page + ":" + elementID
	if value, ok := r.cache.Get(cacheKey); ok {
		if tip, ok := value.(*Tooltip); ok {
			r.metrics.CacheHit()
			return formatTooltipForRole(tip, role)
		}
	}
	r.metrics.CacheMiss()

	r.metrics.StoreRead("tooltip")
	store, err := loadTooltipStore(ctx, r.fetcher)
	if err != nil {
		r.metrics.StoreError("tooltip")
		r.logger.Error("error fetching tooltip content: %v", err)
		return fallbackTooltip(elementID)
	}

	tip, ok := store[page][elementID]
	if !ok {
		r.logger.Warn("no tooltip found for %s:%s", page, elementID)
		return fallbackTooltip(elementID)
	}

	r.cache.Set(cacheKey, &tip)
	return formatTooltipForRole(&tip, role)
}

// formatTooltipForRole splices role-specific content into a copy of the
// tooltip. Without a role or per-role content the tooltip passes through
// unchanged.
func formatTooltipForRole(tip *Tooltip, role string) *Tooltip {
	if role == "" || tip.Roles == nil {
		return tip
	}
	shaped := *tip
	shaped.RoleContent = tip.Roles[role]
	shaped.CurrentRole = role
	return &shaped
}

// Preload warms the cache for a batch of context keys. Individual failures
// already degrade to fallbacks inside Resolve, so the batch never aborts.
func (r *Resolver) Preload(ctx context.Context, contextKeys []string) {
	r.logger.Info("preloading content for %d contexts", len(contextKeys))
	var wg sync.WaitGroup
	for _, key := range contextKeys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			r.Resolve(ctx, key)
		}(key)
	}
	wg.Wait()
	r.logger.Info("content preloading complete")
}

// SetSource switches the content source mode. Invalid modes are logged and
// replaced by static. The cache always empties on a mode change: cached
// documents are tagged with the mode that produced them and must not survive
// a switch.
func (r *Resolver) SetSource(input string) {
	source, ok := ParseSource(input)
	if !ok {
		r.logger.Warn("invalid content source %q, using %q", input, SourceStatic)
	}

	r.modeMu.Lock()
	r.mode = source
	r.modeMu.Unlock()

	cleared := r.cache.Clear()
	r.logger.Info("content source set to %s, cache cleared (%d entries)", source, cleared)
}

// SourceMode returns the current content source mode.
func (r *Resolver) SourceMode() Source {
	r.modeMu.RLock()
	defer r.modeMu.RUnlock()
	return r.mode
}

func (r *Resolver) strategy() resolveStrategy {
	static := &staticStrategy{
		fetcher: r.fetcher,
		docsURL: r.docsURL,
		logger:  r.logger,
		metrics: r.metrics,
		now:     r.now,
	}
	switch r.SourceMode() {
	case SourceAPI:
		return &apiStrategy{static: static, logger: r.logger}
	case SourceLLM:
		return &llmStrategy{static: static, logger: r.logger}
	default:
		return static
	}
}

// ClearCache drops every cached document, returning the number removed.
func (r *Resolver) ClearCache() int {
	cleared := r.cache.Clear()
	r.logger.Info("cache cleared (%d entries removed)", cleared)
	return cleared
}

// ClearExpired drops only entries past the expiration window.
func (r *Resolver) ClearExpired() int {
	cleared := r.cache.ClearExpired()
	if cleared > 0 {
		r.logger.Info("cleared %d expired cache entries", cleared)
	}
	return cleared
}

// CacheStats reports cache size, keys, and entry-age bounds.
func (r *Resolver) CacheStats() Stats {
	return r.cache.Stats()
}
