package scrape

import (
	"regexp"
	"strings"

	"github.com/omnisales/leadgen-cli/internal/model"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9._-]+`)
	// Build-tool artifacts, library filenames, and placeholder addresses
	// that match the email regex but are never a business contact.
	emailArtifactRe = regexp.MustCompile(`bootstrap|jquery|sentry|git|example|wix|template|domain|email|yourname|png|jpg|jpeg|svg|webp|node_modules|webpack|react`)
	numericTLDRe    = regexp.MustCompile(`^\d+$`)

	// Loose North-American phone shapes; international prefixes tolerated.
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	dnpRe = regexp.MustCompile(`dnp|doctor of nursing practice|nurse practitioner owned|pmhnp|fnp-c|aprn`)
)

// maxPhones caps extracted phone numbers; beyond the first couple the regex
// mostly picks up fax lines and page furniture.
const maxPhones = 2

// ehrMarkers maps body-text keywords to canonical EHR vendor names. Ordered:
// the first match wins, so a page mentioning several systems reports one.
var ehrMarkers = []struct {
	keyword string
	vendor  string
}{
	{"epic", "Epic"},
	{"athena", "athenahealth"},
	{"eclinicalworks", "eClinicalWorks"},
	{"ecw", "eClinicalWorks"},
	{"nextgen", "NextGen"},
	{"kareo", "Kareo"},
	{"charm", "ChARM Health"},
	{"canvas", "Canvas Medical"},
}

var insuranceKeywords = []string{
	"medicare", "medicaid", "blue cross", "aetna", "cigna", "humana", "unitedhealthcare",
}

var serviceKeywords = []string{
	"primary care", "mental health", "psychiatry", "wellness", "weight loss", "pediatrics", "telehealth",
}

// extractEmails harvests deduplicated, filtered email addresses from raw
// HTML (not the stripped text: addresses often live in mailto links).
func extractEmails(html string) []string {
	seen := make(map[string]bool)
	var emails []string

	for _, raw := range emailRe.FindAllString(html, -1) {
		lower := strings.ToLower(raw)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		if emailArtifactRe.MatchString(lower) {
			continue
		}
		parts := strings.Split(lower, ".")
		if numericTLDRe.MatchString(parts[len(parts)-1]) {
			continue
		}
		if len(lower) <= 5 {
			continue
		}
		emails = append(emails, raw)
	}
	return emails
}

// extractPhones returns up to maxPhones phone-shaped strings.
func extractPhones(html string) []string {
	matches := phoneRe.FindAllString(html, -1)
	if len(matches) > maxPhones {
		matches = matches[:maxPhones]
	}
	return matches
}

// extractSocials picks one profile link per platform from the page's hrefs.
func extractSocials(html string) model.Socials {
	var socials model.Socials
	for _, href := range extractHrefs(html) {
		switch {
		case socials.Linkedin == "" && strings.Contains(href, "linkedin.com/company"):
			socials.Linkedin = href
		case socials.Facebook == "" && strings.Contains(href, "facebook.com/"):
			socials.Facebook = href
		case socials.Twitter == "" && (strings.Contains(href, "twitter.com/") || strings.Contains(href, "x.com/")):
			socials.Twitter = href
		case socials.Instagram == "" && strings.Contains(href, "instagram.com/"):
			socials.Instagram = href
		}
	}
	return socials
}

// detectEHR returns the canonical vendor name of the first EHR keyword found.
func detectEHR(bodyLower string) string {
	for _, m := range ehrMarkers {
		if strings.Contains(bodyLower, m.keyword) {
			return m.vendor
		}
	}
	return ""
}

// matchKeywords returns the subset of keywords present in the body text.
func matchKeywords(bodyLower string, keywords []string) []string {
	var found []string
	for _, k := range keywords {
		if strings.Contains(bodyLower, k) {
			found = append(found, k)
		}
	}
	return found
}

// detectDNP reports whether the body signals an NP/DNP-owned practice.
func detectDNP(bodyLower string) bool {
	return dnpRe.MatchString(bodyLower)
}
