package scrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/resilience"
)

// SiteInfo is what a single-page scrape yields for a candidate lead's site.
// Disqualified reports sites that should never become leads (government,
// academic, hospital-scale); Reason says why.
type SiteInfo struct {
	Title        string
	Description  string
	Emails       []string
	Phones       []string
	Socials      model.Socials
	EHRSystem    string
	Insurance    []string
	Services     []string
	IsDNP        bool
	TextExcerpt  string
	Disqualified bool
	Reason       string
}

// Scraper fetches and analyzes a candidate website.
type Scraper interface {
	Scrape(ctx context.Context, site string) *SiteInfo
}

const (
	defaultTimeout = 12 * time.Second
	defaultMaxBody = 512 * 1024

	excerptLen = 5000

	// Pages past this stripped-text length with hospital markers are large
	// institutional sites, not independent practices.
	hospitalBodyLen = 20000
)

var hospitalMarkers = []string{
	"hospital", "health system", "medical center", "va.gov", "department of",
}

// SiteScraper fetches a lead's homepage and extracts contact and profile
// signals. Scrape never returns an error: a site that cannot be fetched
// yields nil, and the caller treats the lead as contact-unknown rather
// than failing the discovery cycle.
type SiteScraper struct {
	client  *http.Client
	maxBody int64
}

// Option configures a SiteScraper.
type Option func(*SiteScraper)

// WithHTTPClient substitutes the HTTP client (for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(s *SiteScraper) { s.client = c }
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *SiteScraper) { s.client.Timeout = d }
}

// WithMaxBody caps how many bytes of the response are read.
func WithMaxBody(n int64) Option {
	return func(s *SiteScraper) { s.maxBody = n }
}

// NewSiteScraper constructs a scraper with a bounded-time HTTP client.
func NewSiteScraper(opts ...Option) *SiteScraper {
	s := &SiteScraper{
		client:  &http.Client{Timeout: defaultTimeout},
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches the site and extracts contacts and qualification signals.
// Government and academic domains are disqualified before any network call.
func (s *SiteScraper) Scrape(ctx context.Context, site string) *SiteInfo {
	if reason := urlDisqualifier(site); reason != "" {
		return &SiteInfo{Disqualified: true, Reason: reason}
	}

	raw := resilience.BestEffort("scrape: fetch "+site, "", func() (string, error) {
		return s.fetch(ctx, site)
	})
	if raw == "" {
		return nil
	}
	return analyze(raw)
}

func (s *SiteScraper) fetch(ctx context.Context, site string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: bad url")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; OmniSalesBot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "scrape: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", eris.Errorf("scrape: status %d for %s", resp.StatusCode, site)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return "", eris.Wrap(err, "scrape: read body")
	}
	return string(raw), nil
}

// urlDisqualifier returns a non-empty reason when the URL alone rules the
// site out as an independent practice.
func urlDisqualifier(site string) string {
	lower := strings.ToLower(site)
	switch {
	case strings.Contains(lower, ".gov"):
		return "government domain"
	case strings.Contains(lower, ".edu"):
		return "academic domain"
	case strings.Contains(lower, "/government/"), strings.Contains(lower, "/va/"):
		return "government path"
	}
	return ""
}

// analyze runs every extractor over the fetched HTML.
func analyze(html string) *SiteInfo {
	text := stripHTML(html)
	bodyLower := strings.ToLower(text)

	info := &SiteInfo{
		Title:       extractTitle(html),
		Description: extractDescription(html),
		Emails:      extractEmails(html),
		Phones:      extractPhones(html),
		Socials:     extractSocials(html),
		EHRSystem:   detectEHR(bodyLower),
		Insurance:   matchKeywords(bodyLower, insuranceKeywords),
		Services:    matchKeywords(bodyLower, serviceKeywords),
		IsDNP:       detectDNP(bodyLower),
	}

	if len(text) > excerptLen {
		info.TextExcerpt = text[:excerptLen]
	} else {
		info.TextExcerpt = text
	}

	if len(text) > hospitalBodyLen {
		for _, marker := range hospitalMarkers {
			if strings.Contains(bodyLower, marker) {
				info.Disqualified = true
				info.Reason = "hospital-scale site"
				break
			}
		}
	}

	return info
}
