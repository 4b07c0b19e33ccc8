// Package search resolves query strings to candidate business websites via
// an ordered chain of web-search providers.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/resilience"
)

// Result is one normalized search hit.
type Result struct {
	Title   string `json:"title"`
	Website string `json:"website"`
	Snippet string `json:"snippet"`
}

// Provider resolves a single query to a list of results. Implementations
// filter out aggregator/directory domains before returning.
type Provider interface {
	Name() string
	// Available reports whether the provider can be used at all (e.g. an
	// API credential is configured). Unavailable providers are skipped
	// without logging an error.
	Available() bool
	Search(ctx context.Context, query string) ([]Result, error)
}

// Chain tries providers in strict priority order and returns the first
// non-empty result set. Results from different providers are never merged
// for a single query.
type Chain struct {
	providers []Provider
}

// NewChain creates a Chain. Order is priority order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Search runs the query down the chain. It never fails: provider errors and
// empty result sets both fall through to the next provider, and exhausting
// the chain yields an empty slice.
func (c *Chain) Search(ctx context.Context, query string) []Result {
	for _, p := range c.providers {
		if !p.Available() {
			zap.L().Debug("search: provider unavailable, skipping",
				zap.String("provider", p.Name()),
			)
			continue
		}

		results := resilience.BestEffort[[]Result]("search: "+p.Name(), nil, func() ([]Result, error) {
			return p.Search(ctx, query)
		})
		if len(results) > 0 {
			zap.L().Debug("search: provider returned results",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Int("count", len(results)),
			)
			return results
		}
		zap.L().Debug("search: provider returned nothing, trying next",
			zap.String("provider", p.Name()),
			zap.String("query", query),
		)
	}
	return nil
}
