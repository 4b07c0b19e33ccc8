package search

import (
	"context"
	"strings"

	"github.com/omnisales/leadgen-cli/pkg/tavily"
)

const tavilyResultCount = 10

// TavilyProvider is the secondary provider: AI-oriented search via Tavily.
// Aggregator filtering happens at the request level via exclude_domains.
type TavilyProvider struct {
	client tavily.Client
	keySet bool
}

// NewTavilyProvider wraps a Tavily client.
func NewTavilyProvider(client tavily.Client, keySet bool) *TavilyProvider {
	return &TavilyProvider{client: client, keySet: keySet}
}

func (p *TavilyProvider) Name() string    { return "tavily" }
func (p *TavilyProvider) Available() bool { return p.keySet && p.client != nil }

func (p *TavilyProvider) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := p.client.Search(ctx, tavily.SearchRequest{
		Query:          query,
		SearchDepth:    "basic",
		ExcludeDomains: excludedDomains,
		MaxResults:     tavilyResultCount,
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, item := range resp.Results {
		if !strings.HasPrefix(item.URL, "http") {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			Website: item.URL,
			Snippet: item.Content,
		})
	}
	return results, nil
}
