package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/resilience"
	"github.com/omnisales/leadgen-cli/internal/store"
	"github.com/omnisales/leadgen-cli/pkg/mailer"
)

// outreachConcurrency bounds parallel sends within one cycle.
const outreachConcurrency = 4

// SenderFactory builds a mail transport from workspace email settings.
// Swappable so tests can observe sends without SMTP.
type SenderFactory func(model.EmailSettings) mailer.Sender

// Outreach sends the first templated email to QUALIFIED leads that have
// never been contacted, capped by the workspace daily limit.
type Outreach struct {
	store     store.Store
	newSender SenderFactory
}

// NewOutreach wires the outreach stage with the default SMTP transport.
func NewOutreach(st store.Store) *Outreach {
	return &Outreach{
		store: st,
		newSender: func(s model.EmailSettings) mailer.Sender {
			return mailer.NewSMTP(s.SMTPHost, s.SMTPPort, s.SenderEmail, s.SMTPPassword)
		},
	}
}

// NewOutreachWithSender wires the stage with a custom transport factory.
func NewOutreachWithSender(st store.Store, factory SenderFactory) *Outreach {
	return &Outreach{store: st, newSender: factory}
}

// Run contacts eligible leads and returns how many were reached out to.
// The lead transitions to OUTREACH once the message is composed and
// recorded, regardless of transport outcome: the conversation transcript
// is the source of truth, delivery is best-effort.
func (o *Outreach) Run(ctx context.Context, workspaceID string) (int, error) {
	cfg, err := o.store.GetConfig(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !agentActive(cfg, model.AgentOutreach) {
		zap.L().Info("outreach: agent disabled, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}
	if !cfg.Outreach.EmailActive() {
		zap.L().Info("outreach: email channel inactive, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}
	if len(cfg.Outreach.Email.Templates) == 0 {
		zap.L().Warn("outreach: no templates configured, skipping", zap.String("workspace", workspaceID))
		return 0, nil
	}

	leads, err := o.store.ListLeads(ctx, store.LeadFilter{
		WorkspaceID: workspaceID,
		Status:      model.StatusQualified,
	})
	if err != nil {
		return 0, err
	}

	var cohort []model.Lead
	for _, l := range leads {
		if l.OutreachCount == 0 {
			cohort = append(cohort, l)
		}
	}
	if limit := cfg.Outreach.DailyLimit; limit > 0 && len(cohort) > limit {
		cohort = cohort[:limit]
	}
	if len(cohort) == 0 {
		return 0, nil
	}

	setAgentState(ctx, o.store, workspaceID, model.AgentOutreach, model.AgentWorking,
		fmt.Sprintf("Contacting %d leads", len(cohort)))

	template := cfg.Outreach.Email.Templates[0]
	settings := cfg.Outreach.Email
	var sender mailer.Sender
	if settings.SMTPHost != "" && settings.SMTPPassword != "" {
		sender = o.newSender(settings)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(outreachConcurrency)
	sent := make(chan struct{}, len(cohort))

	for i := range cohort {
		lead := cohort[i]
		g.Go(func() error {
			ok, err := o.contact(gctx, &lead, template, settings, sender)
			if err != nil {
				return err
			}
			if ok {
				sent <- struct{}{}
			}
			return nil
		})
	}

	err = g.Wait()
	close(sent)
	count := len(sent)

	if err != nil {
		setAgentState(ctx, o.store, workspaceID, model.AgentOutreach, model.AgentErrored, err.Error())
		return count, err
	}
	setAgentState(ctx, o.store, workspaceID, model.AgentOutreach, model.AgentIdle,
		fmt.Sprintf("Sent %d outreach emails", count))
	return count, nil
}

// contact composes and records the first touch. The transition happens even
// when no address or transport is available: the lead must not be reselected
// next cycle, and a degraded send is not a failure.
func (o *Outreach) contact(ctx context.Context, lead *model.Lead, tpl model.EmailTemplate, settings model.EmailSettings, sender mailer.Sender) (bool, error) {
	subject := renderTemplate(tpl.Subject, lead, settings.SenderName)
	body := renderTemplate(tpl.Body, lead, settings.SenderName)

	to := recipientEmail(lead)
	details := fmt.Sprintf("Sent '%s' to %s", subject, to)
	switch {
	case to == "":
		zap.L().Info("outreach: no email address, recording without sending",
			zap.String("lead", lead.ID))
		details = fmt.Sprintf("Composed '%s', no address on file", subject)
	case sender == nil:
		zap.L().Info("outreach: SMTP not configured, recording without sending",
			zap.String("lead", lead.ID))
	default:
		resilience.BestEffort("outreach: send email", struct{}{}, func() (struct{}, error) {
			return struct{}{}, sender.Send(mailer.Message{
				FromName: settings.SenderName,
				From:     settings.SenderEmail,
				To:       to,
				Subject:  subject,
				Text:     body,
			})
		})
	}

	now := nowUTC()
	count := lead.OutreachCount + 1
	_, err := o.store.UpdateLead(ctx, lead.ID, store.LeadUpdate{
		Status:        statusPtr(model.StatusOutreach),
		OutreachCount: &count,
		LastContacted: &now,
		Conversations: []model.ConversationTurn{{
			Role:      model.RoleAssistant,
			Content:   body,
			Timestamp: now,
		}},
		History: []model.HistoryEntry{{
			Timestamp: now,
			Action:    "EMAIL_SENT",
			Details:   details,
			Agent:     model.AgentOutreach,
		}},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// recipientEmail picks the best known address for the lead.
func recipientEmail(lead *model.Lead) string {
	if dm := lead.Contact(); dm.Email != "" {
		return dm.Email
	}
	meta := lead.Meta()
	if meta.Email != "" {
		return meta.Email
	}
	if len(meta.Emails) > 0 {
		return meta.Emails[0]
	}
	return ""
}

// renderTemplate substitutes every {{placeholder}} the templates support.
// Unknown values render as sensible fallbacks, never as raw placeholders.
func renderTemplate(text string, lead *model.Lead, senderName string) string {
	dm := lead.Contact()
	meta := lead.Meta()

	name := strings.TrimSpace(dm.Name)
	if name == "" {
		name = "there"
	}
	firstName := strings.Fields(name)[0]

	return strings.NewReplacer(
		"{{name}}", name,
		"{{firstName}}", firstName,
		"{{companyName}}", lead.CompanyName,
		"{{practiceName}}", lead.CompanyName,
		"{{industry}}", lead.Industry,
		"{{city}}", lead.City,
		"{{state}}", lead.Country,
		"{{specialtyFocus}}", lead.Specialty,
		"{{specialty}}", lead.Specialty,
		"{{insuranceTypes}}", strings.Join(meta.InsuranceAccepted, ", "),
		"{{ehrSystem}}", meta.EHRSystem,
		"{{senderName}}", senderName,
	).Replace(text)
}
