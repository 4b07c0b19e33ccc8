package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://austindental.example.com" class='result-link'>Austin <b>Dental</b> Studio</a></td></tr>
<tr><td class='result-snippet'>Family dentistry in <b>Austin</b>, TX.</td></tr>
<tr><td><a rel="nofollow" href="https://www.yelp.com/biz/austin-dental" class='result-link'>Austin Dental - Yelp</a></td></tr>
<tr><td class='result-snippet'>Reviews of Austin Dental.</td></tr>
<tr><td><a rel="nofollow" href="//duckduckgo.com/settings" class='result-link'>Settings</a></td></tr>
</table></body></html>`

func TestParseLiteResults(t *testing.T) {
	results := parseLiteResults(litePage)

	require.Len(t, results, 1, "aggregators and non-http links are dropped")
	assert.Equal(t, "Austin Dental Studio", results[0].Title)
	assert.Equal(t, "https://austindental.example.com", results[0].Website)
	assert.Equal(t, "Family dentistry in Austin, TX.", results[0].Snippet)
}

func TestParseLiteResultsEmptyPage(t *testing.T) {
	assert.Empty(t, parseLiteResults("<html><body>No results.</body></html>"))
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "dental austin", r.URL.Query().Get("q"))
		w.Write([]byte(litePage))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(100).WithBaseURL(srv.URL)
	require.True(t, p.Available(), "scraper provider needs no credential")

	results, err := p.Search(context.Background(), "dental austin")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://austindental.example.com", results[0].Website)
}

func TestDuckDuckGoSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(100).WithBaseURL(srv.URL)
	_, err := p.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
