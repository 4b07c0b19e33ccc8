package model

import "time"

// Workspace is a tenant boundary: leads and configuration are isolated per
// workspace. Config is the sole mutable sub-object.
type Workspace struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Division string       `json:"division,omitempty"`
	Config   SystemConfig `json:"config"`
}

// OutreachChannel names a supported outreach transport.
type OutreachChannel string

const (
	ChannelEmail    OutreachChannel = "EMAIL"
	ChannelWhatsApp OutreachChannel = "WHATSAPP"
	ChannelLinkedIn OutreachChannel = "LINKEDIN"
)

// AgentStatus is the operational state of one agent in a workspace.
type AgentStatus string

const (
	AgentIdle    AgentStatus = "IDLE"
	AgentWorking AgentStatus = "WORKING"
	AgentPaused  AgentStatus = "PAUSED"
	AgentErrored AgentStatus = "ERROR"
)

// AgentState is the per-agent status block embedded in workspace config.
type AgentState struct {
	Active     bool        `json:"active"`
	Status     AgentStatus `json:"status"`
	LastActive time.Time   `json:"lastActive,omitzero"`
	Logs       []string    `json:"logs,omitempty"`
}

// ICPConfig is the ideal-customer-profile targeting criteria that drive
// discovery: the cartesian product of these lists is iterated per cycle.
type ICPConfig struct {
	Industries  []string `json:"industries"`
	Specialties []string `json:"specialties"`
	Locations   []string `json:"locations"`
	Countries   []string `json:"countries"`
}

// EmailTemplate is a named outreach template with {{placeholder}} fields.
type EmailTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailSettings configures the SMTP outreach channel. A missing SMTPPassword
// is a valid configuration: personalization still runs, transport is skipped.
type EmailSettings struct {
	SenderName   string          `json:"senderName"`
	SenderEmail  string          `json:"senderEmail"`
	SMTPHost     string          `json:"smtpHost,omitempty"`
	SMTPPort     int             `json:"smtpPort,omitempty"`
	SMTPPassword string          `json:"smtpPassword,omitempty"`
	Templates    []EmailTemplate `json:"templates"`
}

// WhatsAppSettings configures the WhatsApp Business channel.
type WhatsAppSettings struct {
	PhoneNumberID     string `json:"phoneNumberId,omitempty"`
	AccessToken       string `json:"accessToken,omitempty"`
	BusinessAccountID string `json:"businessAccountId,omitempty"`
}

// LinkedInSettings configures the LinkedIn channel.
type LinkedInSettings struct {
	ProfileID     string `json:"profileId,omitempty"`
	SessionCookie string `json:"sessionCookie,omitempty"`
}

// OutreachSettings configures outreach channels, limits, and templates.
type OutreachSettings struct {
	ActiveChannels []OutreachChannel `json:"activeChannels"`
	Email          EmailSettings     `json:"emailSettings"`
	WhatsApp       WhatsAppSettings  `json:"whatsappSettings"`
	LinkedIn       LinkedInSettings  `json:"linkedinSettings"`
	DailyLimit     int               `json:"dailyLimit"`
	FollowUpDays   int               `json:"followUpDays"`
	AutomationMode string            `json:"automationMode"`
}

// EmailActive reports whether the EMAIL channel is enabled.
func (o OutreachSettings) EmailActive() bool {
	for _, ch := range o.ActiveChannels {
		if ch == ChannelEmail {
			return true
		}
	}
	return false
}

// SystemConfig is the per-workspace configuration bag. Persisted configs may
// omit nested blocks; read paths must go through Merged so absent blocks pick
// up defaults instead of crashing.
type SystemConfig struct {
	ICP      ICPConfig                `json:"icp"`
	Agents   map[AgentRole]AgentState `json:"agents"`
	Outreach OutreachSettings         `json:"outreach"`
}

// DefaultSystemConfig returns the baseline workspace configuration.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		ICP: ICPConfig{
			Industries:  []string{"Healthcare"},
			Specialties: []string{"Primary Care", "Mental Health", "Dental", "Physical Therapy"},
			Locations:   []string{"US", "Pakistan"},
			Countries:   []string{"United States", "Pakistan"},
		},
		Agents: map[AgentRole]AgentState{
			AgentDiscovery:  {Active: true, Status: AgentIdle},
			AgentResearcher: {Active: true, Status: AgentIdle},
			AgentQualifier:  {Active: true, Status: AgentIdle},
			AgentOutreach:   {Active: true, Status: AgentIdle},
			AgentCloser:     {Active: true, Status: AgentIdle},
		},
		Outreach: OutreachSettings{
			ActiveChannels: []OutreachChannel{ChannelEmail},
			Email: EmailSettings{
				SenderName:  "OmniSales Agent",
				SenderEmail: "sales@omnisales.ai",
				Templates: []EmailTemplate{
					{
						ID:      "welcome",
						Name:    "Initial Introduction",
						Subject: "Strategic Partnership Inquiry",
						Body: "Hi {{name}},\n\nI noticed your work at {{companyName}} and was impressed " +
							"by your focus on {{industry}}.\n\nWe help companies like yours automate their " +
							"sales pipeline. Would you be open to a 5-minute chat next week?\n\nBest,\n{{senderName}}",
					},
				},
			},
			DailyLimit:     50,
			FollowUpDays:   3,
			AutomationMode: "AUTONOMOUS",
		},
	}
}

// Merged returns the config with every absent nested block filled from
// DefaultSystemConfig. Scalars fall back individually so a partially saved
// config never produces an unusable read.
func (c SystemConfig) Merged() SystemConfig {
	def := DefaultSystemConfig()

	if len(c.ICP.Industries) == 0 {
		c.ICP.Industries = def.ICP.Industries
	}
	if len(c.ICP.Specialties) == 0 {
		c.ICP.Specialties = def.ICP.Specialties
	}
	if len(c.ICP.Locations) == 0 {
		c.ICP.Locations = def.ICP.Locations
	}
	if len(c.ICP.Countries) == 0 {
		c.ICP.Countries = def.ICP.Countries
	}

	if c.Agents == nil {
		c.Agents = def.Agents
	} else {
		for role, state := range def.Agents {
			if _, ok := c.Agents[role]; !ok {
				c.Agents[role] = state
			}
		}
	}

	if len(c.Outreach.ActiveChannels) == 0 {
		c.Outreach.ActiveChannels = def.Outreach.ActiveChannels
	}
	if c.Outreach.Email.SenderName == "" {
		c.Outreach.Email.SenderName = def.Outreach.Email.SenderName
	}
	if c.Outreach.Email.SenderEmail == "" {
		c.Outreach.Email.SenderEmail = def.Outreach.Email.SenderEmail
	}
	if len(c.Outreach.Email.Templates) == 0 {
		c.Outreach.Email.Templates = def.Outreach.Email.Templates
	}
	if c.Outreach.DailyLimit == 0 {
		c.Outreach.DailyLimit = def.Outreach.DailyLimit
	}
	if c.Outreach.FollowUpDays == 0 {
		c.Outreach.FollowUpDays = def.Outreach.FollowUpDays
	}
	if c.Outreach.AutomationMode == "" {
		c.Outreach.AutomationMode = def.Outreach.AutomationMode
	}

	return c
}
