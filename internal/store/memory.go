package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/internal/model"
)

// MemoryStore is an in-process Store used in tests and for throwaway runs
// where no persistence is wanted.
type MemoryStore struct {
	mu         sync.RWMutex
	leads      map[string]*model.Lead
	workspaces map[string]*model.Workspace
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		leads:      make(map[string]*model.Lead),
		workspaces: make(map[string]*model.Workspace),
	}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (s *MemoryStore) Close() error                      { return nil }

func (s *MemoryStore) UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.leads {
		if existing.WorkspaceID != lead.WorkspaceID {
			continue
		}
		if (existing.Website != "" && existing.Website == lead.Website) ||
			(existing.LinkedinURL != "" && existing.LinkedinURL == lead.LinkedinURL) {
			refreshLead(existing, lead)
			cp := *existing
			return &cp, false, nil
		}
	}

	prepareLead(lead, uuid.New().String(), time.Now().UTC())
	cp := *lead
	s.leads[lead.ID] = &cp
	return lead, true, nil
}

func (s *MemoryStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: lead %s", id)
	}
	cp := *lead
	return &cp, nil
}

func (s *MemoryStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var leads []model.Lead
	for _, lead := range s.leads {
		if filter.WorkspaceID != "" && lead.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		leads = append(leads, *lead)
	}

	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(leads) {
			return nil, nil
		}
		leads = leads[filter.Offset:]
	}
	if filter.Limit > 0 && len(leads) > filter.Limit {
		leads = leads[:filter.Limit]
	}
	return leads, nil
}

func (s *MemoryStore) UpdateLead(ctx context.Context, id string, upd LeadUpdate) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: lead %s", id)
	}
	if err := applyUpdate(lead, upd); err != nil {
		return nil, err
	}
	cp := *lead
	return &cp, nil
}

func (s *MemoryStore) ClearLeads(ctx context.Context, workspaceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, lead := range s.leads {
		if lead.WorkspaceID == workspaceID {
			delete(s.leads, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ImportLeads(ctx context.Context, leads []model.Lead) (int, error) {
	created := 0
	for i := range leads {
		_, isNew, err := s.UpsertLead(ctx, &leads[i])
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func (s *MemoryStore) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	cp := *ws
	s.workspaces[ws.ID] = &cp
	return nil
}

func (s *MemoryStore) GetWorkspace(ctx context.Context, id string) (*model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: workspace %s", id)
	}
	cp := *ws
	return &cp, nil
}

func (s *MemoryStore) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Workspace
	for _, ws := range s.workspaces {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SaveConfig(ctx context.Context, workspaceID string, cfg model.SystemConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return eris.Wrapf(ErrNotFound, "memory: workspace %s", workspaceID)
	}
	ws.Config = cfg
	return nil
}

func (s *MemoryStore) GetConfig(ctx context.Context, workspaceID string) (model.SystemConfig, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return model.SystemConfig{}, err
	}
	return ws.Config.Merged(), nil
}
