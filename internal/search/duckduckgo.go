package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const ddgLiteURL = "https://lite.duckduckgo.com/lite/"

// browserUA keeps the lite endpoint from serving a bot interstitial.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// DuckDuckGoProvider is the tertiary fallback: it scrapes DuckDuckGo's lite
// HTML interface directly, so requests are rate-paced to stay polite.
type DuckDuckGoProvider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewDuckDuckGoProvider creates the scraper-backed provider. ratePerSec
// bounds outbound request rate; values <= 0 default to 1 req/s.
func NewDuckDuckGoProvider(ratePerSec float64) *DuckDuckGoProvider {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &DuckDuckGoProvider{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: ddgLiteURL,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// WithBaseURL overrides the endpoint (for tests).
func (p *DuckDuckGoProvider) WithBaseURL(u string) *DuckDuckGoProvider {
	p.baseURL = u
	return p
}

func (p *DuckDuckGoProvider) Name() string    { return "duckduckgo" }
func (p *DuckDuckGoProvider) Available() bool { return true }

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "duckduckgo: rate wait")
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"?q="+url.QueryEscape(query),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: create request")
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://lite.duckduckgo.com/")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: read body")
	}

	return parseLiteResults(string(body)), nil
}

// Lite serves results as table rows: an anchor with class "result-link"
// holds title and href, and the following row carries a "result-snippet"
// cell. Pairing is positional.
var (
	liteLinkRe    = regexp.MustCompile(`(?is)<a[^>]+href="([^"]+)"[^>]*class=['"]result-link['"][^>]*>(.*?)</a>|<a[^>]+class=['"]result-link['"][^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	liteSnippetRe = regexp.MustCompile(`(?is)class=['"]result-snippet['"][^>]*>(.*?)</td>`)
	liteTagRe     = regexp.MustCompile(`<[^>]+>`)
)

func parseLiteResults(html string) []Result {
	links := liteLinkRe.FindAllStringSubmatch(html, -1)
	snippets := liteSnippetRe.FindAllStringSubmatch(html, -1)

	var results []Result
	for i, m := range links {
		href, title := m[1], m[2]
		if href == "" {
			href, title = m[3], m[4]
		}
		title = strings.TrimSpace(liteTagRe.ReplaceAllString(title, ""))

		if title == "" || !strings.HasPrefix(href, "http") {
			continue
		}
		if IsAggregator(href) {
			continue
		}

		snippet := ""
		if i < len(snippets) {
			snippet = strings.TrimSpace(liteTagRe.ReplaceAllString(snippets[i][1], ""))
		}

		results = append(results, Result{
			Title:   title,
			Website: href,
			Snippet: snippet,
		})
	}
	return results
}
