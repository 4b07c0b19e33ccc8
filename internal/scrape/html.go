package scrape

import (
	"regexp"
	"strings"
)

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["']([^"']*)["']|<meta[^>]+content=["']([^"']*)["'][^>]+name=["']description["']`)
	hrefRe     = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
)

// extractTitle pulls the <title> from HTML.
func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractDescription pulls the meta description, either attribute order.
func extractDescription(html string) string {
	m := metaDescRe.FindStringSubmatch(html)
	if len(m) > 2 {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}
	return ""
}

// extractHrefs returns every href attribute value in document order.
func extractHrefs(html string) []string {
	var hrefs []string
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		hrefs = append(hrefs, m[1])
	}
	return hrefs
}

// stripHTML removes script/style/nav/footer blocks, strips remaining tags,
// decodes common entities, and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	return strings.Join(strings.Fields(html), " ")
}
