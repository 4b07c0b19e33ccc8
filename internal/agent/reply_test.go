package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
)

func TestRecordReply_OpensConversation(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)

	lead := seedLead(t, st, wsID, model.Lead{Website: "https://a.example"})
	for _, status := range []model.LeadStatus{model.StatusQualified, model.StatusOutreach} {
		_, err := st.UpdateLead(context.Background(), lead.ID, store.LeadUpdate{Status: statusPtr(status)})
		require.NoError(t, err)
	}

	got, err := RecordReply(context.Background(), st, lead.ID, "Interested, tell me more")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConversation, got.Status)

	require.Len(t, got.Conversations, 1)
	assert.Equal(t, model.RoleUser, got.Conversations[0].Role)
	assert.Equal(t, "Interested, tell me more", got.Conversations[0].Content)

	last := got.History[len(got.History)-1]
	assert.Equal(t, "REPLY_RECEIVED", last.Action)
}

func TestRecordReply_AppendsToOpenConversation(t *testing.T) {
	st := store.NewMemory()
	wsID := newTestWorkspace(t, st, nil)
	lead := conversationLead(t, st, wsID, "https://a.example", []model.ConversationTurn{
		{Role: model.RoleAssistant, Content: "hello"},
	})

	got, err := RecordReply(context.Background(), st, lead.ID, "second thought")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConversation, got.Status)
	assert.Len(t, got.Conversations, 2)
}

func TestRecordReply_EmptyContent(t *testing.T) {
	st := store.NewMemory()
	_, err := RecordReply(context.Background(), st, "any", "")
	assert.Error(t, err)
}
