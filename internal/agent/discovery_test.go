package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/scrape"
	"github.com/omnisales/leadgen-cli/internal/search"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// fakeSearcher returns the same results for every query.
type fakeSearcher struct {
	results []search.Result
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) []search.Result {
	f.queries = append(f.queries, query)
	return f.results
}

// fakeScraper serves scripted scrapes keyed by site URL and records which
// sites were fetched.
type fakeScraper struct {
	infos map[string]*scrape.SiteInfo
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, site string) *scrape.SiteInfo {
	f.calls = append(f.calls, site)
	return f.infos[site]
}

func newTestWorkspace(t *testing.T, st store.Store, mutate func(*model.SystemConfig)) string {
	t.Helper()
	cfg := model.DefaultSystemConfig()
	cfg.ICP = model.ICPConfig{
		Industries:  []string{"Healthcare"},
		Specialties: []string{"Dental"},
		Locations:   []string{"Austin"},
		Countries:   []string{"United States"},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ws := &model.Workspace{Name: "test", Config: cfg}
	require.NoError(t, st.CreateWorkspace(context.Background(), ws))
	return ws.ID
}

func fixedQueries() *QueryGenerator {
	// nil generator always takes the template path: deterministic queries.
	return NewQueryGenerator(nil, 5)
}

func TestDiscovery_CreatesLeadsFromSearchHits(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	searcher := &fakeSearcher{results: []search.Result{
		{Title: "BrightCare Dental", Website: "https://brightcare.example", Snippet: "family dental"},
	}}
	scraper := &fakeScraper{infos: map[string]*scrape.SiteInfo{
		"https://brightcare.example": {
			Title:  "BrightCare Dental Austin",
			Emails: []string{"hello@brightcare.example"},
			IsDNP:  true,
		},
	}}

	d := NewDiscovery(st, fixedQueries(), searcher, scraper, 20)
	created, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{WorkspaceID: wsID})
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "BrightCare Dental Austin", lead.CompanyName, "scraped title wins over search title")
	assert.Equal(t, model.StatusNew, lead.Status)
	assert.Equal(t, 0, lead.Score)
	assert.Equal(t, "Dental", lead.Specialty)
	assert.Equal(t, "Austin, United States", lead.Location)
	assert.Equal(t, "hello@brightcare.example", lead.Metadata.Email)

	require.NotNil(t, lead.DecisionMaker)
	assert.Equal(t, "Pending Discovery", lead.DecisionMaker.Name)
	assert.Equal(t, "Owner/Manager", lead.DecisionMaker.Role)
	assert.Equal(t, "hello@brightcare.example", lead.DecisionMaker.Email)

	require.Len(t, lead.History, 1)
	assert.Equal(t, "DISCOVERY", lead.History[0].Action)
	assert.Equal(t, "Discovered using Healthcare/Dental in Austin. Emails: 1", lead.History[0].Details)
	assert.Equal(t, model.AgentDiscovery, lead.History[0].Agent)
}

func TestDiscovery_CapsLeadsPerCycle(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	var results []search.Result
	for i := 0; i < 10; i++ {
		results = append(results, search.Result{
			Title:   fmt.Sprintf("Clinic %d", i),
			Website: fmt.Sprintf("https://clinic%d.example", i),
		})
	}
	searcher := &fakeSearcher{results: results}
	scraper := &fakeScraper{infos: map[string]*scrape.SiteInfo{}}

	d := NewDiscovery(st, fixedQueries(), searcher, scraper, 3)
	created, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{WorkspaceID: wsID})
	require.NoError(t, err)
	assert.Len(t, leads, 3)
}

func TestDiscovery_SkipsDuplicatesAndDisqualified(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	// already tracked
	_, _, err := st.UpsertLead(context.Background(), &model.Lead{
		WorkspaceID: wsID,
		Website:     "https://known.example",
	})
	require.NoError(t, err)

	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Known Clinic", Website: "https://known.example"},
		{Title: "County Hospital", Website: "https://hospital.example"},
		{Title: "Fresh Clinic", Website: "https://fresh.example"},
	}}
	scraper := &fakeScraper{infos: map[string]*scrape.SiteInfo{
		"https://hospital.example": {Disqualified: true, Reason: "hospital-scale site"},
	}}

	d := NewDiscovery(st, fixedQueries(), searcher, scraper, 20)
	created, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the fresh clinic is new")

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{WorkspaceID: wsID})
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	assert.NotContains(t, scraper.calls, "https://known.example", "known sites are never re-fetched")
	assert.Contains(t, scraper.calls, "https://fresh.example")
}

func TestDiscovery_OverridesNarrowTargeting(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, func(cfg *model.SystemConfig) {
		cfg.ICP.Industries = []string{"Healthcare", "Legal"}
		cfg.ICP.Locations = []string{"Austin", "Dallas"}
	})

	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Lone Star Dental", Website: "https://lonestar.example"},
	}}
	scraper := &fakeScraper{infos: map[string]*scrape.SiteInfo{}}

	d := NewDiscovery(st, fixedQueries(), searcher, scraper, 20)
	created, err := d.RunWithOverrides(context.Background(), wsID, Overrides{
		Industry: "Healthcare",
		City:     "Dallas",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{WorkspaceID: wsID})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Healthcare", leads[0].Industry)
	assert.Equal(t, "Dallas", leads[0].City)
	assert.Equal(t, "Dallas, United States", leads[0].Location)

	// one slot instead of industries x cities: the template set runs once
	assert.Len(t, searcher.queries, 4)
	for _, q := range searcher.queries {
		assert.NotContains(t, q, "Austin")
	}
}

func TestDiscovery_UnknownTitleFallback(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	searcher := &fakeSearcher{results: []search.Result{
		{Website: "https://untitled.example"},
	}}

	d := NewDiscovery(st, fixedQueries(), searcher, &fakeScraper{}, 20)
	created, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{WorkspaceID: wsID})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Unknown Entity", leads[0].CompanyName)
}

func TestDiscovery_DisabledAgentSkips(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, func(cfg *model.SystemConfig) {
		state := cfg.Agents[model.AgentDiscovery]
		state.Active = false
		cfg.Agents[model.AgentDiscovery] = state
	})

	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Clinic", Website: "https://clinic.example"},
	}}

	d := NewDiscovery(st, fixedQueries(), searcher, &fakeScraper{}, 20)
	created, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, searcher.queries, "disabled agent never searches")
}

func TestDiscovery_UpdatesAgentStatus(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	searcher := &fakeSearcher{}
	d := NewDiscovery(st, fixedQueries(), searcher, &fakeScraper{}, 20)
	_, err := d.Run(context.Background(), wsID)
	require.NoError(t, err)

	cfg, err := st.GetConfig(context.Background(), wsID)
	require.NoError(t, err)
	state := cfg.Agents[model.AgentDiscovery]
	assert.Equal(t, model.AgentIdle, state.Status)
	assert.False(t, state.LastActive.IsZero())
	assert.NotEmpty(t, state.Logs)
}

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AUSTIN DENTAL STUDIO", "Austin Dental Studio"},
		{"BrightCare Dental", "BrightCare Dental"},
		{"lahore physio", "lahore physio"},
		{"  SMILES PLLC  ", "Smiles Pllc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeCompanyName(tt.in), tt.in)
	}
}
