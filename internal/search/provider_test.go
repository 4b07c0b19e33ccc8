package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/pkg/serper"
	"github.com/omnisales/leadgen-cli/pkg/tavily"
)

type fakeSerper struct {
	resp *serper.SearchResponse
	req  serper.SearchRequest
}

func (f *fakeSerper) Search(ctx context.Context, req serper.SearchRequest) (*serper.SearchResponse, error) {
	f.req = req
	return f.resp, nil
}

func TestSerperProviderFiltersAggregators(t *testing.T) {
	fake := &fakeSerper{resp: &serper.SearchResponse{Organic: []serper.OrganicResult{
		{Title: "Austin Dental Studio", Link: "https://austindental.example.com", Snippet: "family dentistry"},
		{Title: "Austin Dental on Yelp", Link: "https://www.yelp.com/biz/austin-dental"},
		{Title: "relative link", Link: "/search?q=next"},
	}}}

	p := NewSerperProvider(fake, true)
	results, err := p.Search(context.Background(), "dental austin")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://austindental.example.com", results[0].Website)
	assert.Equal(t, "family dentistry", results[0].Snippet)
	assert.Equal(t, serperResultCount, fake.req.Num)
}

func TestSerperProviderAvailability(t *testing.T) {
	assert.False(t, NewSerperProvider(&fakeSerper{}, false).Available())
	assert.False(t, NewSerperProvider(nil, true).Available())
	assert.True(t, NewSerperProvider(&fakeSerper{}, true).Available())
}

type fakeTavily struct {
	resp *tavily.SearchResponse
	req  tavily.SearchRequest
}

func (f *fakeTavily) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	f.req = req
	return f.resp, nil
}

func TestTavilyProviderExcludesDomainsUpstream(t *testing.T) {
	fake := &fakeTavily{resp: &tavily.SearchResponse{Results: []tavily.Result{
		{Title: "Lahore Physio", URL: "https://lahorephysio.example.com", Content: "clinic"},
		{Title: "bad url", URL: "javascript:void(0)"},
	}}}

	p := NewTavilyProvider(fake, true)
	results, err := p.Search(context.Background(), "physio lahore")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://lahorephysio.example.com", results[0].Website)

	assert.Equal(t, excludedDomains, fake.req.ExcludeDomains, "aggregators excluded in the request")
	assert.Equal(t, "basic", fake.req.SearchDepth)
}
