// Package agent implements the pipeline stages: discovery, enrichment,
// qualification, outreach, and reply handling. Each stage pulls its cohort
// from the store, acts on it, and records history on every touched lead.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/resilience"
)

const queryPrompt = `You are a lead generation expert. Generate %d diverse search engine queries to find independent "%s" businesses (niche: "%s") in %s, %s.

Rules:
- Queries must be in English.
- Target small, independent businesses, not directories or aggregators.
- Vary the phrasing: include the city in every query.%s

Return ONLY a JSON array of strings, no other text.`

// privatePracticeHint steers query generation toward independently owned
// clinics when the targeting looks healthcare shaped.
const privatePracticeHint = `
- Prefer phrasings that surface private, practitioner-owned practices (e.g. "nurse practitioner owned", "private practice").
- Avoid hospital systems and large networks.`

// QueryGenerator produces search queries for one targeting combination,
// via the model when possible and templates otherwise.
type QueryGenerator struct {
	gen     ai.TextGenerator
	perSlot int
}

// NewQueryGenerator builds a generator that asks for perSlot queries per
// targeting combination. perSlot <= 0 defaults to 5.
func NewQueryGenerator(gen ai.TextGenerator, perSlot int) *QueryGenerator {
	if perSlot <= 0 {
		perSlot = 5
	}
	return &QueryGenerator{gen: gen, perSlot: perSlot}
}

// Generate returns search queries for the given targeting slot. It never
// returns an empty slice: when the model is unavailable or returns
// something unparsable, template queries take over.
func (q *QueryGenerator) Generate(ctx context.Context, industry, niche, city, country string) []string {
	if q.gen == nil {
		return fallbackQueries(industry, niche, city, country)
	}

	hint := ""
	if isHealthcareTargeting(industry, niche) {
		hint = privatePracticeHint
	}
	prompt := fmt.Sprintf(queryPrompt, q.perSlot, industry, niche, city, country, hint)

	queries := resilience.BestEffort[[]string]("queries: generate "+niche, nil, func() ([]string, error) {
		raw, err := q.gen.GenerateText(ctx, prompt)
		if err != nil {
			return nil, err
		}
		var out []string
		if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &out); err != nil {
			return nil, eris.Wrap(err, "queries: parse response")
		}
		return out, nil
	})
	if len(queries) == 0 {
		zap.L().Info("queries: using template queries", zap.String("niche", niche))
		return fallbackQueries(industry, niche, city, country)
	}
	return queries
}

// isHealthcareTargeting reports whether the slot targets healthcare niches
// where practitioner-owned practices are the goal.
func isHealthcareTargeting(industry, niche string) bool {
	combined := strings.ToLower(industry + " " + niche)
	for _, kw := range []string{"healthcare", "dnp", "nurse practitioner"} {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// fallbackQueries are the deterministic templates used when the model
// cannot produce queries.
func fallbackQueries(industry, niche, city, country string) []string {
	return []string{
		fmt.Sprintf("%s in %s", niche, city),
		fmt.Sprintf("private %s practice %s", niche, city),
		fmt.Sprintf("%s clinics %s %s", industry, city, country),
		fmt.Sprintf("Best %s %s", niche, city),
	}
}
