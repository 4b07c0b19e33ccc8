package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/resilience"
	"github.com/omnisales/leadgen-cli/internal/store"
)

const closerPrompt = `You are a sales closer handling an email conversation with a prospect. Read the transcript, classify the prospect's intent, and write the next reply.

Prospect: %s at %s (%s)

Transcript:
%s

Intent must be one of: INTERESTED, OBJECTION, NOT_INTERESTED, BOOKING_CONFIRMED.

Return ONLY JSON in this exact shape:
{"reply": "the email reply text", "intent": "INTERESTED"}`

type closerResponse struct {
	Reply  string `json:"reply"`
	Intent string `json:"intent"`
}

// Closer answers inbound replies on CONVERSATION leads: it classifies the
// prospect's intent, writes the next turn, and moves the lead when the
// intent is terminal.
type Closer struct {
	store store.Store
	gen   ai.TextGenerator
}

// NewCloser wires the reply-handling stage.
func NewCloser(st store.Store, gen ai.TextGenerator) *Closer {
	return &Closer{store: st, gen: gen}
}

// Run processes every conversation awaiting a reply and returns how many
// replies were produced.
func (c *Closer) Run(ctx context.Context, workspaceID string) (int, error) {
	cfg, err := c.store.GetConfig(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !agentActive(cfg, model.AgentCloser) {
		zap.L().Info("closer: agent disabled, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}

	leads, err := c.store.ListLeads(ctx, store.LeadFilter{
		WorkspaceID: workspaceID,
		Status:      model.StatusConversation,
	})
	if err != nil {
		return 0, err
	}

	// Only threads where the prospect spoke last need an answer.
	var cohort []model.Lead
	for _, l := range leads {
		if turn := l.LastTurn(); turn != nil && turn.Role == model.RoleUser {
			cohort = append(cohort, l)
		}
	}
	if len(cohort) == 0 {
		return 0, nil
	}

	setAgentState(ctx, c.store, workspaceID, model.AgentCloser, model.AgentWorking,
		fmt.Sprintf("Answering %d conversations", len(cohort)))

	answered := 0
	for i := range cohort {
		if err := ctx.Err(); err != nil {
			setAgentState(ctx, c.store, workspaceID, model.AgentCloser, model.AgentErrored, err.Error())
			return answered, err
		}
		if err := c.answer(ctx, &cohort[i]); err != nil {
			setAgentState(ctx, c.store, workspaceID, model.AgentCloser, model.AgentErrored, err.Error())
			return answered, err
		}
		answered++
	}

	setAgentState(ctx, c.store, workspaceID, model.AgentCloser, model.AgentIdle,
		fmt.Sprintf("Replied to %d conversations", answered))
	return answered, nil
}

func (c *Closer) answer(ctx context.Context, lead *model.Lead) error {
	dm := lead.Contact()
	prompt := fmt.Sprintf(closerPrompt,
		dm.Name, lead.CompanyName, lead.Industry, transcript(lead.Conversations))

	resp := c.compose(ctx, lead, prompt)
	intent := model.Intent(strings.ToUpper(strings.TrimSpace(resp.Intent)))
	status := model.StatusForIntent(intent)

	now := nowUTC()
	_, err := c.store.UpdateLead(ctx, lead.ID, store.LeadUpdate{
		Status: &status,
		Conversations: []model.ConversationTurn{{
			Role:      model.RoleAssistant,
			Content:   resp.Reply,
			Timestamp: now,
		}},
		History: []model.HistoryEntry{{
			Timestamp: now,
			Action:    "REPLY_SENT",
			Details:   fmt.Sprintf("Intent: %s", intent),
			Agent:     model.AgentCloser,
		}},
	})
	return err
}

// compose asks the model for the next turn. A model failure or unparsable
// answer degrades to an INTERESTED classification carrying the raw text,
// keeping the conversation open rather than dropping the thread.
func (c *Closer) compose(ctx context.Context, lead *model.Lead, prompt string) closerResponse {
	raw := resilience.BestEffort("closer: compose "+lead.ID, "", func() (string, error) {
		return c.gen.GenerateText(ctx, prompt)
	})
	if raw == "" {
		return closerResponse{
			Reply:  "Thanks for getting back to me. Could you share a bit more about what you are looking for?",
			Intent: string(model.IntentInterested),
		}
	}

	var resp closerResponse
	if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &resp); err != nil || resp.Reply == "" {
		zap.L().Warn("closer: unparsable response, using raw text", zap.String("lead", lead.ID))
		return closerResponse{Reply: raw, Intent: string(model.IntentInterested)}
	}
	return resp
}

// transcript renders the conversation for the prompt, oldest first.
func transcript(turns []model.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		speaker := "Prospect"
		if t.Role == model.RoleAssistant {
			speaker = "You"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", speaker, t.Content)
	}
	return b.String()
}
