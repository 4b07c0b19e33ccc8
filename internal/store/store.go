package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/internal/model"
)

// ErrNotFound is returned when a lead or workspace does not exist.
var ErrNotFound = eris.New("not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	WorkspaceID string           `json:"workspace_id,omitempty"`
	Status      model.LeadStatus `json:"status,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	Offset      int              `json:"offset,omitempty"`
}

// LeadUpdate is a partial update: nil pointer fields are left untouched.
// History and Conversations are appended, never replaced.
type LeadUpdate struct {
	Status             *model.LeadStatus
	Score              *int
	QualificationNotes *string
	Specialty          *string
	LinkedinURL        *string
	DecisionMaker      *model.DecisionMaker
	Metadata           *model.Metadata
	OutreachCount      *int
	LastContacted      *time.Time
	History            []model.HistoryEntry
	Conversations      []model.ConversationTurn
}

// Store defines the persistence interface for leads and workspaces.
type Store interface {
	// Leads
	UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLead(ctx context.Context, id string, upd LeadUpdate) (*model.Lead, error)
	ClearLeads(ctx context.Context, workspaceID string) (int, error)
	ImportLeads(ctx context.Context, leads []model.Lead) (int, error)

	// Workspaces
	CreateWorkspace(ctx context.Context, ws *model.Workspace) error
	GetWorkspace(ctx context.Context, id string) (*model.Workspace, error)
	ListWorkspaces(ctx context.Context) ([]model.Workspace, error)
	SaveConfig(ctx context.Context, workspaceID string, cfg model.SystemConfig) error
	GetConfig(ctx context.Context, workspaceID string) (model.SystemConfig, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// applyUpdate mutates lead in place per upd. Status changes must follow the
// lifecycle graph; everything else is a straight overwrite. All drivers
// funnel writes through here so the invariants hold regardless of backend.
func applyUpdate(lead *model.Lead, upd LeadUpdate) error {
	if upd.Status != nil && *upd.Status != lead.Status {
		if !model.ValidTransition(lead.Status, *upd.Status) {
			return eris.Errorf("store: invalid transition %s -> %s for lead %s", lead.Status, *upd.Status, lead.ID)
		}
		lead.Status = *upd.Status
	}
	if upd.Score != nil {
		lead.Score = *upd.Score
	}
	if upd.QualificationNotes != nil {
		lead.QualificationNotes = *upd.QualificationNotes
	}
	if upd.Specialty != nil {
		lead.Specialty = *upd.Specialty
	}
	if upd.LinkedinURL != nil {
		lead.LinkedinURL = *upd.LinkedinURL
	}
	if upd.DecisionMaker != nil {
		lead.DecisionMaker = upd.DecisionMaker
	}
	if upd.Metadata != nil {
		lead.Metadata = upd.Metadata
	}
	if upd.OutreachCount != nil {
		lead.OutreachCount = *upd.OutreachCount
	}
	if upd.LastContacted != nil {
		lead.LastContacted = upd.LastContacted
	}

	lead.History = append(lead.History, upd.History...)
	lead.Conversations = append(lead.Conversations, upd.Conversations...)
	lead.UpdatedAt = time.Now().UTC()
	return nil
}

// refreshLead overlays the latest discovery snapshot onto an existing row.
// Identity, lifecycle, and audit fields (id, status, score, history,
// conversations, outreach bookkeeping) are preserved; descriptive fields are
// refreshed whenever the incoming lead carries a value. An enriched decision
// maker is never clobbered by a re-discovery placeholder.
func refreshLead(existing, incoming *model.Lead) {
	if incoming.CompanyName != "" {
		existing.CompanyName = incoming.CompanyName
	}
	if incoming.Website != "" {
		existing.Website = incoming.Website
	}
	if incoming.LinkedinURL != "" {
		existing.LinkedinURL = incoming.LinkedinURL
	}
	if incoming.Industry != "" {
		existing.Industry = incoming.Industry
	}
	if incoming.Specialty != "" {
		existing.Specialty = incoming.Specialty
	}
	if incoming.City != "" {
		existing.City = incoming.City
	}
	if incoming.Country != "" {
		existing.Country = incoming.Country
	}
	if incoming.Location != "" {
		existing.Location = incoming.Location
	}
	if incoming.Metadata != nil {
		existing.Metadata = incoming.Metadata
	}
	if incoming.DecisionMaker != nil && existing.DecisionMaker == nil {
		existing.DecisionMaker = incoming.DecisionMaker
	}
	existing.UpdatedAt = time.Now().UTC()
}

// prepareLead fills identity and bookkeeping defaults before first insert.
func prepareLead(lead *model.Lead, id string, now time.Time) {
	if lead.ID == "" {
		lead.ID = id
	}
	if lead.Status == "" {
		lead.Status = model.StatusNew
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
}
