package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/agent"
	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/scrape"
	"github.com/omnisales/leadgen-cli/internal/search"
	"github.com/omnisales/leadgen-cli/internal/store"
	anthropicpkg "github.com/omnisales/leadgen-cli/pkg/anthropic"
	"github.com/omnisales/leadgen-cli/pkg/serper"
	"github.com/omnisales/leadgen-cli/pkg/tavily"
)

// appEnv holds the initialized store, clients, and agents shared by the
// stage commands and the server.
type appEnv struct {
	Store     store.Store
	Gen       ai.TextGenerator
	Discovery *agent.Discovery
	Enricher  *agent.Enricher
	Qualifier *agent.Qualifier
	Outreach  *agent.Outreach
	Closer    *agent.Closer
	Pipeline  *agent.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, the search chain, the scraper, and all five
// agents. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var gen ai.TextGenerator
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		gen = ai.NewClaude(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
	} else {
		zap.L().Warn("LEADGEN_ANTHROPIC_KEY not set, query templates and degraded stages only")
	}

	// Provider order is fixed: Serper, then Tavily, then the keyless
	// DuckDuckGo scraper as the provider of last resort.
	var providers []search.Provider
	providers = append(providers, search.NewSerperProvider(
		serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL)),
		cfg.Serper.Key != "",
	))
	providers = append(providers, search.NewTavilyProvider(
		tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL)),
		cfg.Tavily.Key != "",
	))
	providers = append(providers, search.NewDuckDuckGoProvider(cfg.Discovery.SearchRateLimit))
	chain := search.NewChain(providers...)

	scraper := scrape.NewSiteScraper(
		scrape.WithTimeout(time.Duration(cfg.Scrape.TimeoutSecs)*time.Second),
		scrape.WithMaxBody(int64(cfg.Scrape.MaxBodyKB)*1024),
	)

	queries := agent.NewQueryGenerator(gen, cfg.Discovery.QueriesPerTarget)

	discovery := agent.NewDiscovery(st, queries, chain, scraper, cfg.Discovery.MaxLeadsPerCycle)
	enricher := agent.NewEnricher(st, gen)
	qualifier := agent.NewQualifier(st, gen)
	outreach := agent.NewOutreach(st)
	closer := agent.NewCloser(st, gen)

	return &appEnv{
		Store:     st,
		Gen:       gen,
		Discovery: discovery,
		Enricher:  enricher,
		Qualifier: qualifier,
		Outreach:  outreach,
		Closer:    closer,
		Pipeline:  agent.NewPipeline(discovery, enricher, qualifier, outreach, closer),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
