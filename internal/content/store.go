package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Store file names, relative to the content base.
const (
	HelpStoreName    = "help-content.json"
	TooltipStoreName = "tooltip-content.json"
)

// Fetcher reads a raw content store document by name. Implementations cover
// the two places stores live: a local content directory and a static file
// host.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileFetcher reads content stores from a directory on disk.
type FileFetcher struct {
	Dir string
}

func (f FileFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("read content store %s: %w", name, err)
	}
	return data, nil
}

// HTTPFetcher reads content stores from a static file host. The timeout lives
// here at the transport edge; resolution itself carries no deadline.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("content base url: %w", err)
	}
	target := base.JoinPath(name).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", name, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return data, nil
}

// helpStore maps full or partial context keys to documents. The store is not
// pre-partitioned by key depth; the fallback ladder handles partial keys.
type helpStore map[string]Document

func loadHelpStore(ctx context.Context, fetcher Fetcher) (helpStore, error) {
	data, err := fetcher.Fetch(ctx, HelpStoreName)
	if err != nil {
		return nil, err
	}
	var store helpStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse %s: %w", HelpStoreName, err)
	}
	return store, nil
}

// tooltipStore nests tooltips as {page: {elementID: Tooltip}}.
type tooltipStore map[string]map[string]Tooltip

func loadTooltipStore(ctx context.Context, fetcher Fetcher) (tooltipStore, error) {
	data, err := fetcher.Fetch(ctx, TooltipStoreName)
	if err != nil {
		return nil, err
	}
	var store tooltipStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TooltipStoreName, err)
	}
	return store, nil
}
