package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/resilience"
	"github.com/omnisales/leadgen-cli/internal/store"
)

const enrichPrompt = `You are a B2B sales researcher. Given this business, infer its LinkedIn company URL and the most likely decision maker.

Business: %s
Website: %s
Industry: %s
Location: %s
Site description: %s

Return ONLY JSON in this exact shape:
{"linkedinUrl": "https://linkedin.com/company/...", "decisionMaker": {"name": "...", "role": "..."}}

If you cannot infer a field, use an empty string.`

type enrichment struct {
	LinkedinURL   string `json:"linkedinUrl"`
	DecisionMaker struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"decisionMaker"`
}

// Enricher researches NEW leads: it asks the model for the company's
// LinkedIn presence and probable decision maker, then advances the lead to
// RESEARCHING. A lead whose research fails stays NEW for the next cycle.
type Enricher struct {
	store store.Store
	gen   ai.TextGenerator
}

// NewEnricher wires the research stage.
func NewEnricher(st store.Store, gen ai.TextGenerator) *Enricher {
	return &Enricher{store: st, gen: gen}
}

// Run enriches the workspace's NEW leads and returns how many advanced.
func (e *Enricher) Run(ctx context.Context, workspaceID string) (int, error) {
	cfg, err := e.store.GetConfig(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !agentActive(cfg, model.AgentResearcher) {
		zap.L().Info("enrich: agent disabled, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}

	leads, err := e.store.ListLeads(ctx, store.LeadFilter{
		WorkspaceID: workspaceID,
		Status:      model.StatusNew,
	})
	if err != nil {
		return 0, err
	}
	if len(leads) == 0 {
		return 0, nil
	}

	setAgentState(ctx, e.store, workspaceID, model.AgentResearcher, model.AgentWorking,
		fmt.Sprintf("Researching %d leads", len(leads)))

	enriched := 0
	for i := range leads {
		if err := ctx.Err(); err != nil {
			setAgentState(ctx, e.store, workspaceID, model.AgentResearcher, model.AgentErrored, err.Error())
			return enriched, err
		}
		if e.enrichOne(ctx, &leads[i]) {
			enriched++
		}
	}

	setAgentState(ctx, e.store, workspaceID, model.AgentResearcher, model.AgentIdle,
		fmt.Sprintf("Enriched %d leads", enriched))
	return enriched, nil
}

func (e *Enricher) enrichOne(ctx context.Context, lead *model.Lead) bool {
	meta := lead.Meta()
	prompt := fmt.Sprintf(enrichPrompt,
		lead.CompanyName, lead.Website, lead.Industry, lead.Location, meta.Description)

	res := resilience.BestEffort[*enrichment]("enrich: research "+lead.ID, nil, func() (*enrichment, error) {
		raw, err := e.gen.GenerateText(ctx, prompt)
		if err != nil {
			return nil, err
		}
		var enr enrichment
		if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &enr); err != nil {
			return nil, eris.Wrap(err, "enrich: parse response")
		}
		return &enr, nil
	})
	if res == nil {
		zap.L().Warn("enrich: research failed, lead stays NEW", zap.String("lead", lead.ID))
		return false
	}
	enr := *res

	upd := store.LeadUpdate{
		Status: statusPtr(model.StatusResearching),
		History: []model.HistoryEntry{{
			Timestamp: nowUTC(),
			Action:    "RESEARCH",
			Details:   fmt.Sprintf("Identified decision maker: %s (%s)", enr.DecisionMaker.Name, enr.DecisionMaker.Role),
			Agent:     model.AgentResearcher,
		}},
	}
	if enr.LinkedinURL != "" {
		upd.LinkedinURL = &enr.LinkedinURL
	}
	if enr.DecisionMaker.Name != "" || enr.DecisionMaker.Role != "" {
		upd.DecisionMaker = &model.DecisionMaker{
			Name: enr.DecisionMaker.Name,
			Role: enr.DecisionMaker.Role,
		}
	}

	if _, err := e.store.UpdateLead(ctx, lead.ID, upd); err != nil {
		zap.L().Warn("enrich: persist failed", zap.String("lead", lead.ID), zap.Error(err))
		return false
	}
	return true
}

func statusPtr(s model.LeadStatus) *model.LeadStatus { return &s }
