package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/scrape"
	"github.com/omnisales/leadgen-cli/internal/search"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// Searcher is the provider-chain surface discovery depends on.
type Searcher interface {
	Search(ctx context.Context, query string) []search.Result
}

// Discovery finds new leads for a workspace by iterating the ICP targeting
// grid, searching each generated query, and scraping candidate sites.
type Discovery struct {
	store    store.Store
	queries  *QueryGenerator
	searcher Searcher
	scraper  scrape.Scraper
	maxLeads int
}

// NewDiscovery wires the discovery stage. maxLeads caps new leads per cycle;
// values <= 0 default to 20.
func NewDiscovery(st store.Store, queries *QueryGenerator, searcher Searcher, scraper scrape.Scraper, maxLeads int) *Discovery {
	if maxLeads <= 0 {
		maxLeads = 20
	}
	return &Discovery{
		store:    st,
		queries:  queries,
		searcher: searcher,
		scraper:  scraper,
		maxLeads: maxLeads,
	}
}

// Overrides narrows one discovery cycle to a single targeting value per
// dimension. Empty fields fall back to the workspace ICP lists.
type Overrides struct {
	Industry string
	Niche    string
	City     string
	Country  string
}

// Run executes one discovery cycle over the full ICP grid.
func (d *Discovery) Run(ctx context.Context, workspaceID string) (int, error) {
	return d.RunWithOverrides(ctx, workspaceID, Overrides{})
}

// RunWithOverrides executes one discovery cycle and returns how many new
// leads were created. The cycle walks industry x country x city x niche and
// stops as soon as the per-cycle cap is hit.
func (d *Discovery) RunWithOverrides(ctx context.Context, workspaceID string, ov Overrides) (int, error) {
	cfg, err := d.store.GetConfig(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !agentActive(cfg, model.AgentDiscovery) {
		zap.L().Info("discovery: agent disabled, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}

	setAgentState(ctx, d.store, workspaceID, model.AgentDiscovery, model.AgentWorking, "Discovery cycle started")

	created, err := d.cycle(ctx, workspaceID, cfg, ov)
	if err != nil {
		setAgentState(ctx, d.store, workspaceID, model.AgentDiscovery, model.AgentErrored, err.Error())
		return created, err
	}

	setAgentState(ctx, d.store, workspaceID, model.AgentDiscovery, model.AgentIdle,
		fmt.Sprintf("Discovered %d new leads", created))
	return created, nil
}

func (d *Discovery) cycle(ctx context.Context, workspaceID string, cfg model.SystemConfig, ov Overrides) (int, error) {
	// Sites the workspace already tracks are skipped before any scrape.
	existing, err := d.store.ListLeads(ctx, store.LeadFilter{WorkspaceID: workspaceID})
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		if l.Website != "" {
			known[l.Website] = true
		}
	}

	created := 0
	for _, industry := range overrideList(ov.Industry, cfg.ICP.Industries) {
		for _, country := range overrideList(ov.Country, cfg.ICP.Countries) {
			for _, city := range overrideList(ov.City, cfg.ICP.Locations) {
				for _, niche := range overrideList(ov.Niche, cfg.ICP.Specialties) {
					n, err := d.searchSlot(ctx, workspaceID, slot{
						industry: industry,
						niche:    niche,
						city:     city,
						country:  country,
					}, d.maxLeads-created, known)
					created += n
					if err != nil {
						return created, err
					}
					if created >= d.maxLeads {
						return created, nil
					}
				}
			}
		}
	}
	return created, nil
}

// overrideList substitutes a single targeting value for the ICP list when
// one was requested.
func overrideList(override string, fallback []string) []string {
	if override != "" {
		return []string{override}
	}
	return fallback
}

// slot is one targeting combination from the ICP grid.
type slot struct {
	industry, niche, city, country string
}

func (d *Discovery) searchSlot(ctx context.Context, workspaceID string, sl slot, budget int, known map[string]bool) (int, error) {
	created := 0
	for _, query := range d.queries.Generate(ctx, sl.industry, sl.niche, sl.city, sl.country) {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		for _, result := range d.searcher.Search(ctx, query) {
			if created >= budget {
				return created, nil
			}
			ok, err := d.consider(ctx, workspaceID, sl, result, known)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// consider scrapes one search hit and persists it as a lead. Already-seen
// websites are skipped before the scrape, so one site never costs a second
// fetch within or across cycles.
func (d *Discovery) consider(ctx context.Context, workspaceID string, sl slot, result search.Result, known map[string]bool) (bool, error) {
	if known[result.Website] {
		zap.L().Debug("discovery: duplicate skipped", zap.String("site", result.Website))
		return false, nil
	}

	info := d.scraper.Scrape(ctx, result.Website)
	if info != nil && info.Disqualified {
		zap.L().Debug("discovery: site disqualified",
			zap.String("site", result.Website), zap.String("reason", info.Reason))
		return false, nil
	}

	lead := buildLead(workspaceID, sl, result, info)
	_, created, err := d.store.UpsertLead(ctx, lead)
	if err != nil {
		return false, err
	}
	known[result.Website] = true
	if !created {
		zap.L().Debug("discovery: duplicate skipped", zap.String("site", result.Website))
	}
	return created, nil
}

// buildLead assembles the persisted lead from a search hit and its scrape.
// A nil scrape is fine: the lead is created contact-unknown and enrichment
// fills the gaps later.
func buildLead(workspaceID string, sl slot, result search.Result, info *scrape.SiteInfo) *model.Lead {
	lead := &model.Lead{
		WorkspaceID: workspaceID,
		CompanyName: normalizeCompanyName(result.Title),
		Website:     result.Website,
		Industry:    sl.industry,
		Specialty:   sl.niche,
		City:        sl.city,
		Country:     sl.country,
		Location:    sl.city + ", " + sl.country,
		Status:      model.StatusNew,
	}

	// Placeholder contact until research names the real one; carries any
	// scraped address so outreach has somewhere to write.
	dm := &model.DecisionMaker{Name: "Pending Discovery", Role: "Owner/Manager"}

	emails := 0
	if info != nil {
		meta := &model.Metadata{
			Title:             info.Title,
			Description:       info.Description,
			Emails:            info.Emails,
			Phones:            info.Phones,
			Socials:           info.Socials,
			IsDNP:             info.IsDNP,
			EHRSystem:         info.EHRSystem,
			InsuranceAccepted: info.Insurance,
			Services:          info.Services,
			TextExcerpt:       info.TextExcerpt,
		}
		if len(info.Emails) > 0 {
			meta.Email = info.Emails[0]
			dm.Email = info.Emails[0]
		}
		if info.Title != "" {
			lead.CompanyName = normalizeCompanyName(info.Title)
		}
		if info.Socials.Linkedin != "" {
			lead.LinkedinURL = info.Socials.Linkedin
			dm.Linkedin = info.Socials.Linkedin
		}
		lead.Metadata = meta
		emails = len(info.Emails)
	}

	if lead.CompanyName == "" {
		lead.CompanyName = "Unknown Entity"
	}
	lead.DecisionMaker = dm

	lead.History = []model.HistoryEntry{{
		Timestamp: nowUTC(),
		Action:    "DISCOVERY",
		Details: fmt.Sprintf("Discovered using %s/%s in %s. Emails: %d",
			sl.industry, sl.niche, sl.city, emails),
		Agent: model.AgentDiscovery,
	}}
	return lead
}

// normalizeCompanyName tames shouting-case titles that search results and
// <title> tags often carry. Mixed-case names pass through untouched.
func normalizeCompanyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name != strings.ToUpper(name) || name == strings.ToLower(name) {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(name))
}
