package agent

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// RecordReply appends an inbound prospect message to the lead's thread and
// opens (or keeps open) the conversation. This is the entry point for both
// the reply webhook and the CLI's simulated inbound mail.
func RecordReply(ctx context.Context, st store.Store, leadID, content string) (*model.Lead, error) {
	if content == "" {
		return nil, eris.New("agent: reply content is empty")
	}

	lead, err := st.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	upd := store.LeadUpdate{
		Conversations: []model.ConversationTurn{{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: nowUTC(),
		}},
	}
	if lead.Status != model.StatusConversation {
		upd.Status = statusPtr(model.StatusConversation)
		upd.History = []model.HistoryEntry{{
			Timestamp: nowUTC(),
			Action:    "REPLY_RECEIVED",
			Details:   "Prospect replied, conversation opened",
			Agent:     model.AgentCloser,
		}}
	}

	return st.UpdateLead(ctx, leadID, upd)
}
