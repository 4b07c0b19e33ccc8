package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
	"github.com/omnisales/leadgen-cli/pkg/mailer"
)

// fakeSender records sent messages; Err makes every send fail.
type fakeSender struct {
	mu       sync.Mutex
	messages []mailer.Message
	Err      error
}

func (f *fakeSender) Send(msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeSender) sent() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.messages...)
}

func outreachWorkspace(t *testing.T, st store.Store, mutate func(*model.SystemConfig)) string {
	return newTestWorkspace(t, st, func(cfg *model.SystemConfig) {
		cfg.Outreach.Email.SMTPHost = "smtp.example"
		cfg.Outreach.Email.SMTPPort = 587
		cfg.Outreach.Email.SMTPPassword = "secret"
		cfg.Outreach.Email.SenderName = "Avery"
		cfg.Outreach.Email.Templates = []model.EmailTemplate{{
			ID:      "welcome",
			Name:    "Welcome",
			Subject: "Hi {{firstName}} at {{companyName}}",
			Body:    "Hello {{name}}, saw {{practiceName}} in {{city}}. - {{senderName}}",
		}}
		if mutate != nil {
			mutate(cfg)
		}
	})
}

func qualifiedLead(t *testing.T, st store.Store, wsID, website, email string) *model.Lead {
	t.Helper()
	lead := seedLead(t, st, wsID, model.Lead{
		CompanyName: "BrightCare",
		Website:     website,
		City:        "Austin",
		DecisionMaker: &model.DecisionMaker{
			Name:  "Sara Khan",
			Email: email,
		},
	})
	_, err := st.UpdateLead(context.Background(), lead.ID, store.LeadUpdate{
		Status: statusPtr(model.StatusQualified),
	})
	require.NoError(t, err)
	return lead
}

func TestOutreach_SendsAndTransitions(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, nil)
	lead := qualifiedLead(t, st, wsID, "https://a.example", "sara@brightcare.example")

	sender := &fakeSender{}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sara@brightcare.example", msgs[0].To)
	assert.Equal(t, "Hi Sara at BrightCare", msgs[0].Subject)
	assert.Equal(t, "Hello Sara Khan, saw BrightCare in Austin. - Avery", msgs[0].Text)

	got, err := st.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOutreach, got.Status)
	assert.Equal(t, 1, got.OutreachCount)
	require.NotNil(t, got.LastContacted)

	require.Len(t, got.Conversations, 1)
	assert.Equal(t, model.RoleAssistant, got.Conversations[0].Role)
	assert.Equal(t, msgs[0].Text, got.Conversations[0].Content)

	last := got.History[len(got.History)-1]
	assert.Equal(t, "EMAIL_SENT", last.Action)
}

func TestOutreach_TransitionsEvenWhenSendFails(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, nil)
	lead := qualifiedLead(t, st, wsID, "https://a.example", "sara@brightcare.example")

	sender := &fakeSender{Err: eris.New("relay refused")}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOutreach, got.Status, "transcript is source of truth, delivery is best-effort")
	assert.Len(t, got.Conversations, 1)
}

func TestOutreach_RespectsDailyLimit(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, func(cfg *model.SystemConfig) {
		cfg.Outreach.DailyLimit = 2
	})
	qualifiedLead(t, st, wsID, "https://a.example", "a@a.example")
	qualifiedLead(t, st, wsID, "https://b.example", "b@b.example")
	qualifiedLead(t, st, wsID, "https://c.example", "c@c.example")

	sender := &fakeSender{}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, sender.sent(), 2)
}

func TestOutreach_SkipsAlreadyContacted(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, nil)
	lead := qualifiedLead(t, st, wsID, "https://a.example", "a@a.example")

	one := 1
	_, err := st.UpdateLead(context.Background(), lead.ID, store.LeadUpdate{OutreachCount: &one})
	require.NoError(t, err)

	sender := &fakeSender{}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sender.sent())
}

func TestOutreach_NoAddressStillTransitions(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, nil)
	lead := seedLead(t, st, wsID, model.Lead{CompanyName: "NoEmail Clinic", Website: "https://noemail.example"})
	_, err := st.UpdateLead(context.Background(), lead.ID, store.LeadUpdate{
		Status: statusPtr(model.StatusQualified),
	})
	require.NoError(t, err)

	sender := &fakeSender{}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, sender.sent(), "nothing to send to")

	got, err := st.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOutreach, got.Status, "address-less leads must not be reselected next cycle")
	assert.Equal(t, 1, got.OutreachCount)
	require.Len(t, got.Conversations, 1)

	last := got.History[len(got.History)-1]
	assert.Equal(t, "EMAIL_SENT", last.Action)
	assert.Contains(t, last.Details, "no address on file")
}

func TestOutreach_InactiveChannelSkips(t *testing.T) {
	st := store.NewMemory()
	wsID := outreachWorkspace(t, st, func(cfg *model.SystemConfig) {
		cfg.Outreach.ActiveChannels = []model.OutreachChannel{model.ChannelWhatsApp}
	})
	qualifiedLead(t, st, wsID, "https://a.example", "a@a.example")

	sender := &fakeSender{}
	o := NewOutreachWithSender(st, func(model.EmailSettings) mailer.Sender { return sender })

	n, err := o.Run(context.Background(), wsID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sender.sent())
}

func TestRenderTemplate_Fallbacks(t *testing.T) {
	lead := &model.Lead{CompanyName: "BrightCare", City: "Austin"}
	out := renderTemplate("Hi {{name}} ({{firstName}}) re {{ehrSystem}}", lead, "Avery")
	assert.Equal(t, "Hi there (there) re ", out)
}

func TestRenderTemplate_WhitespaceNameFallsBack(t *testing.T) {
	lead := &model.Lead{
		CompanyName:   "BrightCare",
		DecisionMaker: &model.DecisionMaker{Name: "   "},
	}
	out := renderTemplate("Hi {{firstName}}, {{name}}", lead, "Avery")
	assert.Equal(t, "Hi there, there", out)
}
