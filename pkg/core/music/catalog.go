// Package music holds the search result catalog and spoken selection rules.
package music

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/types"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

// SearchProvider finds candidate tracks for a free-text query.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]types.Track, error)
}

// Options configures a Catalog.
type Options struct {
	// Timeout bounds a single provider call. Zero disables the bound.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Catalog holds the most recent search result set.
type Catalog struct {
	provider SearchProvider
	ordinals *Ordinals
	opts     Options
	logger   *slog.Logger
	results  []types.Track
}

// NewCatalog creates an empty catalog. A nil resolver uses DefaultOrdinals.
func NewCatalog(provider SearchProvider, ordinals *Ordinals, opts Options) *Catalog {
	if ordinals == nil {
		ordinals = DefaultOrdinals()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		provider: provider,
		ordinals: ordinals,
		opts:     opts,
		logger:   logger.With("component", "catalog"),
	}
}

// Search replaces the current result set with the provider's results for
// query. Entries without a source URL are dropped. An empty result is not an
// error.
func (c *Catalog) Search(ctx context.Context, query string, maxResults int) ([]types.Track, error) {
	name := "none"
	if c.provider != nil {
		name = c.provider.Name()
	}
	if maxResults <= 0 {
		c.opts.Metrics.RecordSearch(name, "invalid")
		return nil, core.NewSearchError(name, fmt.Errorf("max results must be positive, got %d", maxResults))
	}
	if c.provider == nil {
		c.opts.Metrics.RecordSearch(name, "error")
		return nil, core.NewSearchError(name, fmt.Errorf("no search provider configured"))
	}

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	found, err := c.provider.Search(callCtx, query, maxResults)
	if err != nil {
		c.opts.Metrics.RecordSearch(name, "error")
		c.logger.Warn("search failed", "provider", name, "query", query, "error", err)
		return nil, core.NewSearchError(name, err)
	}

	results := make([]types.Track, 0, len(found))
	for _, t := range found {
		if strings.TrimSpace(t.SourceURL) == "" {
			continue
		}
		if t.DurationSeconds < 0 {
			t.DurationSeconds = 0
		}
		results = append(results, t)
		if len(results) == maxResults {
			break
		}
	}
	c.results = results

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	c.opts.Metrics.RecordSearch(name, outcome)
	c.logger.Debug("search complete", "provider", name, "query", query, "results", len(results))
	return c.Results(), nil
}

// ResolveSelection maps a spoken selection to a zero-based index. The index
// is not checked against the current result set.
func (c *Catalog) ResolveSelection(utterance string) (int, bool) {
	return c.ordinals.Resolve(utterance)
}

// Remove deletes the entry at index. It reports false when index is out of
// range.
func (c *Catalog) Remove(index int) bool {
	if index < 0 || index >= len(c.results) {
		return false
	}
	c.results = append(c.results[:index], c.results[index+1:]...)
	return true
}

// Track returns the entry at index.
func (c *Catalog) Track(index int) (types.Track, bool) {
	if index < 0 || index >= len(c.results) {
		return types.Track{}, false
	}
	return c.results[index], true
}

// Results returns a copy of the current result set.
func (c *Catalog) Results() []types.Track {
	out := make([]types.Track, len(c.results))
	copy(out, c.results)
	return out
}

// Len returns the number of entries in the current result set.
func (c *Catalog) Len() int {
	return len(c.results)
}

// Clear empties the current result set.
func (c *Catalog) Clear() {
	c.results = nil
}
