package search

import (
	"context"
	"strings"

	"github.com/omnisales/leadgen-cli/pkg/serper"
)

const serperResultCount = 10

// SerperProvider is the primary provider: keyed Google search via Serper.
type SerperProvider struct {
	client serper.Client
	keySet bool
}

// NewSerperProvider wraps a Serper client. Pass keySet=false when no
// credential is configured; the chain will skip it.
func NewSerperProvider(client serper.Client, keySet bool) *SerperProvider {
	return &SerperProvider{client: client, keySet: keySet}
}

func (p *SerperProvider) Name() string    { return "serper" }
func (p *SerperProvider) Available() bool { return p.keySet && p.client != nil }

// Search returns organic hits with aggregator domains filtered out.
func (p *SerperProvider) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := p.client.Search(ctx, serper.SearchRequest{
		Query: query,
		Num:   serperResultCount,
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, item := range resp.Organic {
		if !strings.HasPrefix(item.Link, "http") {
			continue
		}
		if IsAggregator(item.Link) {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			Website: item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
