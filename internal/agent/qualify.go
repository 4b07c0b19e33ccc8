package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/resilience"
	"github.com/omnisales/leadgen-cli/internal/store"
)

const qualifyPrompt = `You are a B2B lead qualification analyst. Score this practice from 0-100 for fit as a billing-services customer and decide whether to pursue it.

Business: %s
Website: %s
Industry: %s / %s
Location: %s
Signals:
%s

Evaluate on the following criteria (1-10 scale each):
1. BILLING COMPLEXITY (multiple insurance payers, Medicaid/Medicare, wide service range)
2. PRACTICE SIZE (1-5 providers is the perfect fit; 31+ providers scores lowest)
3. PAIN POINT INDICATORS (accepting new patients, no online bill pay, billing complaints)
4. DECISION MAKER ACCESSIBILITY (practitioner-owned scores highest, direct email visible next)
5. REVENUE POTENTIAL (primary care with chronic disease care or specialty aesthetics score high, cash-only scores low)

Strict qualification criteria:
- Must be private, not a hospital or government facility.
- Favor NP/DNP-owned private practices.

Return ONLY JSON in this exact shape:
{"score": 0, "qualified": false, "category": "HOT" | "WARM" | "COLD", "notes": "one or two sentences"}`

// aiUnavailableNotes is the qualification note recorded when the model
// cannot be reached; the lead is parked as DISQUALIFIED so a later cycle
// with a working model can be re-run from a clean slate.
const aiUnavailableNotes = "AI Analysis Temporarily Unavailable"

type verdict struct {
	Score     int    `json:"score"`
	Qualified bool   `json:"qualified"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
}

// Qualifier scores NEW and RESEARCHING leads and resolves each to QUALIFIED
// or DISQUALIFIED. The transient QUALIFYING status is visible to observers
// while a lead is being scored but never survives the cycle.
type Qualifier struct {
	store store.Store
	gen   ai.TextGenerator
}

// NewQualifier wires the qualification stage.
func NewQualifier(st store.Store, gen ai.TextGenerator) *Qualifier {
	return &Qualifier{store: st, gen: gen}
}

// Run qualifies eligible leads and returns how many were processed.
func (q *Qualifier) Run(ctx context.Context, workspaceID string) (int, error) {
	cfg, err := q.store.GetConfig(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !agentActive(cfg, model.AgentQualifier) {
		zap.L().Info("qualify: agent disabled, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}

	var leads []model.Lead
	for _, status := range []model.LeadStatus{model.StatusNew, model.StatusResearching} {
		batch, err := q.store.ListLeads(ctx, store.LeadFilter{
			WorkspaceID: workspaceID,
			Status:      status,
		})
		if err != nil {
			return 0, err
		}
		leads = append(leads, batch...)
	}
	if len(leads) == 0 {
		return 0, nil
	}

	setAgentState(ctx, q.store, workspaceID, model.AgentQualifier, model.AgentWorking,
		fmt.Sprintf("Qualifying %d leads", len(leads)))

	processed := 0
	for i := range leads {
		if err := ctx.Err(); err != nil {
			setAgentState(ctx, q.store, workspaceID, model.AgentQualifier, model.AgentErrored, err.Error())
			return processed, err
		}
		if err := q.qualifyOne(ctx, &leads[i]); err != nil {
			setAgentState(ctx, q.store, workspaceID, model.AgentQualifier, model.AgentErrored, err.Error())
			return processed, err
		}
		processed++
	}

	setAgentState(ctx, q.store, workspaceID, model.AgentQualifier, model.AgentIdle,
		fmt.Sprintf("Qualified %d leads", processed))
	return processed, nil
}

// qualifyOne moves a lead through QUALIFYING to its terminal verdict.
// Model failures produce a DISQUALIFIED verdict with score 0 rather than
// leaving the lead stuck mid-qualification.
func (q *Qualifier) qualifyOne(ctx context.Context, lead *model.Lead) error {
	if _, err := q.store.UpdateLead(ctx, lead.ID, store.LeadUpdate{
		Status: statusPtr(model.StatusQualifying),
	}); err != nil {
		return err
	}

	v := q.score(ctx, lead)

	status := model.StatusDisqualified
	if v.Qualified {
		status = model.StatusQualified
	}

	details := fmt.Sprintf("Score %d: %s", v.Score, v.Notes)
	if v.Category != "" {
		details = fmt.Sprintf("Score %d (%s): %s", v.Score, v.Category, v.Notes)
	}

	_, err := q.store.UpdateLead(ctx, lead.ID, store.LeadUpdate{
		Status:             &status,
		Score:              &v.Score,
		QualificationNotes: &v.Notes,
		History: []model.HistoryEntry{{
			Timestamp: nowUTC(),
			Action:    "QUALIFICATION",
			Details:   details,
			Agent:     model.AgentQualifier,
		}},
	})
	return err
}

func (q *Qualifier) score(ctx context.Context, lead *model.Lead) verdict {
	prompt := fmt.Sprintf(qualifyPrompt,
		lead.CompanyName, lead.Website, lead.Industry, lead.Specialty, lead.Location,
		qualificationSignals(lead))

	return resilience.BestEffort("qualify: score "+lead.ID, verdict{Notes: aiUnavailableNotes}, func() (verdict, error) {
		raw, err := q.gen.GenerateText(ctx, prompt)
		if err != nil {
			return verdict{}, err
		}
		var v verdict
		if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &v); err != nil {
			return verdict{}, eris.Wrap(err, "qualify: parse verdict")
		}
		return v, nil
	})
}

// qualificationSignals renders the scraped metadata as prompt bullet points.
func qualificationSignals(lead *model.Lead) string {
	meta := lead.Meta()
	var b strings.Builder

	fmt.Fprintf(&b, "- Contact emails found: %d\n", len(meta.Emails))
	if meta.IsDNP {
		b.WriteString("- Practitioner-owned practice (NP/DNP signals on site)\n")
	}
	if meta.EHRSystem != "" {
		fmt.Fprintf(&b, "- EHR system: %s\n", meta.EHRSystem)
	}
	if len(meta.InsuranceAccepted) > 0 {
		fmt.Fprintf(&b, "- Insurance accepted: %s\n", strings.Join(meta.InsuranceAccepted, ", "))
	}
	if len(meta.Services) > 0 {
		fmt.Fprintf(&b, "- Services: %s\n", strings.Join(meta.Services, ", "))
	}
	if dm := lead.Contact(); dm.Name != "" {
		fmt.Fprintf(&b, "- Decision maker: %s (%s)\n", dm.Name, dm.Role)
	}
	return b.String()
}
