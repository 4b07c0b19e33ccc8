// Package model defines the lead and workspace domain types shared by the
// pipeline stages and stores.
package model

import "time"

// AgentRole identifies which pipeline stage produced an event.
type AgentRole string

const (
	AgentDiscovery  AgentRole = "DISCOVERY"
	AgentResearcher AgentRole = "RESEARCHER"
	AgentQualifier  AgentRole = "QUALIFIER"
	AgentOutreach   AgentRole = "OUTREACH"
	AgentCloser     AgentRole = "CLOSER"
)

// ConversationRole is the speaker of a conversation turn.
type ConversationRole string

const (
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
	RoleSystem    ConversationRole = "system"
)

// HistoryEntry is one audit-trail record. History is append-only: stages add
// entries, nothing ever removes them.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Agent     AgentRole `json:"agent"`
}

// ConversationTurn is one message in the lead's reply thread.
type ConversationTurn struct {
	Role      ConversationRole `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
}

// DecisionMaker holds the inferred or discovered contact at the business.
type DecisionMaker struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

// Socials holds one profile link per platform.
type Socials struct {
	Linkedin  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Metadata is the loosely-shaped enrichment bag scraped and inferred for a
// lead. Every field is optional; read paths must tolerate the zero value.
type Metadata struct {
	Title             string    `json:"title,omitempty"`
	Description       string    `json:"description,omitempty"`
	Email             string    `json:"email,omitempty"`
	Emails            []string  `json:"emails,omitempty"`
	Socials           Socials   `json:"socials,omitempty"`
	Phones            []string  `json:"phones,omitempty"`
	IsDNP             bool      `json:"isDNP,omitempty"`
	EHRSystem         string    `json:"ehrSystem,omitempty"`
	InsuranceAccepted []string  `json:"insuranceAccepted,omitempty"`
	Services          []string  `json:"services,omitempty"`
	TextExcerpt       string    `json:"textExcerpt,omitempty"`
	Enriched          bool      `json:"enriched,omitempty"`
	EnrichedAt        time.Time `json:"enrichedAt,omitempty"`
}

// Lead is a discovered business opportunity, owned by exactly one workspace.
// Within a workspace, website and linkedinUrl act as soft-unique keys:
// re-discovery updates the existing record instead of duplicating it.
type Lead struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website,omitempty"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`

	Industry  string `json:"industry,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
	Location  string `json:"location,omitempty"`

	Status             LeadStatus `json:"status"`
	Score              int        `json:"score"`
	QualificationNotes string     `json:"qualificationNotes,omitempty"`

	DecisionMaker *DecisionMaker `json:"decisionMaker,omitempty"`
	Metadata      *Metadata      `json:"metadata,omitempty"`

	OutreachCount int        `json:"outreachCount"`
	LastContacted *time.Time `json:"lastContacted,omitempty"`

	History       []HistoryEntry     `json:"history"`
	Conversations []ConversationTurn `json:"conversations"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LastTurn returns the most recent conversation turn, or nil when the thread
// is empty.
func (l *Lead) LastTurn() *ConversationTurn {
	if len(l.Conversations) == 0 {
		return nil
	}
	return &l.Conversations[len(l.Conversations)-1]
}

// Meta returns the metadata bag, never nil.
func (l *Lead) Meta() Metadata {
	if l.Metadata == nil {
		return Metadata{}
	}
	return *l.Metadata
}

// Contact returns the decision maker, never nil.
func (l *Lead) Contact() DecisionMaker {
	if l.DecisionMaker == nil {
		return DecisionMaker{}
	}
	return *l.DecisionMaker
}
