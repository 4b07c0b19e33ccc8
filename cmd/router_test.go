package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/internal/agent"
	"github.com/omnisales/leadgen-cli/internal/ai"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/search"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// noResultSearcher keeps router-level discovery runs offline.
type noResultSearcher struct{}

func (noResultSearcher) Search(context.Context, string) []search.Result { return nil }

func newTestEnv(gen ai.TextGenerator) *appEnv {
	st := store.NewMemory()
	discovery := agent.NewDiscovery(st, agent.NewQueryGenerator(nil, 0), noResultSearcher{}, nil, 0)
	enricher := agent.NewEnricher(st, gen)
	qualifier := agent.NewQualifier(st, gen)
	outreach := agent.NewOutreach(st)
	closer := agent.NewCloser(st, gen)
	return &appEnv{
		Store:     st,
		Gen:       gen,
		Discovery: discovery,
		Enricher:  enricher,
		Qualifier: qualifier,
		Outreach:  outreach,
		Closer:    closer,
		Pipeline:  agent.NewPipeline(discovery, enricher, qualifier, outreach, closer),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouterHealth(t *testing.T) {
	h := newRouter(newTestEnv(nil))
	rec := doJSON(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, rec))
}

func TestRouterWorkspaceLifecycle(t *testing.T) {
	h := newRouter(newTestEnv(nil))

	rec := doJSON(t, h, http.MethodPost, "/workspaces", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "name is required")

	rec = doJSON(t, h, http.MethodPost, "/workspaces", map[string]string{
		"name": "Acme Health", "division": "dental",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ws := decodeBody[model.Workspace](t, rec)
	require.NotEmpty(t, ws.ID)
	assert.Equal(t, "Acme Health", ws.Name)

	rec = doJSON(t, h, http.MethodGet, "/workspaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Workspace](t, rec), 1)

	rec = doJSON(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decodeBody[model.SystemConfig](t, rec)
	assert.Equal(t, 50, cfg.Outreach.DailyLimit, "defaults are merged on read")

	cfg.Outreach.DailyLimit = 5
	rec = doJSON(t, h, http.MethodPut, "/workspaces/"+ws.ID+"/config", cfg)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeBody[model.SystemConfig](t, rec).Outreach.DailyLimit)

	rec = doJSON(t, h, http.MethodGet, "/workspaces/nope/config", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterLeads(t *testing.T) {
	env := newTestEnv(nil)
	h := newRouter(env)
	ctx := context.Background()

	rec := doJSON(t, h, http.MethodGet, "/leads", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "workspaceId is required")

	_, _, err := env.Store.UpsertLead(ctx, &model.Lead{
		WorkspaceID: "ws-1",
		CompanyName: "Austin Dental Studio",
		Website:     "https://austindental.example.com",
	})
	require.NoError(t, err)

	rec = doJSON(t, h, http.MethodGet, "/leads?workspaceId=ws-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	leads := decodeBody[[]model.Lead](t, rec)
	require.Len(t, leads, 1)
	assert.Equal(t, model.StatusNew, leads[0].Status)

	rec = doJSON(t, h, http.MethodGet, "/leads/"+leads[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Austin Dental Studio", decodeBody[model.Lead](t, rec).CompanyName)

	rec = doJSON(t, h, http.MethodGet, "/leads/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/leads?workspaceId=ws-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"deleted": 1}, decodeBody[map[string]int](t, rec))
}

func TestRouterReplyOpensConversation(t *testing.T) {
	env := newTestEnv(nil)
	h := newRouter(env)
	ctx := context.Background()

	lead, _, err := env.Store.UpsertLead(ctx, &model.Lead{
		WorkspaceID: "ws-1",
		CompanyName: "Austin Dental Studio",
		Website:     "https://austindental.example.com",
	})
	require.NoError(t, err)
	for _, status := range []model.LeadStatus{model.StatusQualified, model.StatusOutreach} {
		s := status
		_, err = env.Store.UpdateLead(ctx, lead.ID, store.LeadUpdate{Status: &s})
		require.NoError(t, err)
	}

	rec := doJSON(t, h, http.MethodPost, "/leads/"+lead.ID+"/reply", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "content is required")

	rec = doJSON(t, h, http.MethodPost, "/leads/"+lead.ID+"/reply", map[string]string{
		"content": "Sounds interesting, tell me more.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[model.Lead](t, rec)
	assert.Equal(t, model.StatusConversation, got.Status)
	require.Len(t, got.Conversations, 1)
	assert.Equal(t, model.RoleUser, got.Conversations[0].Role)
}

func TestRouterAgentRun(t *testing.T) {
	gen := &ai.Mock{Responses: []string{
		`{"score": 85, "qualified": true, "notes": "small practice, strong fit"}`,
	}}
	env := newTestEnv(gen)
	h := newRouter(env)
	ctx := context.Background()

	ws := &model.Workspace{Name: "Acme", Config: model.DefaultSystemConfig()}
	require.NoError(t, env.Store.CreateWorkspace(ctx, ws))
	_, _, err := env.Store.UpsertLead(ctx, &model.Lead{
		WorkspaceID: ws.ID,
		CompanyName: "Austin Dental Studio",
		Website:     "https://austindental.example.com",
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/agents/qualify/run", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "workspaceId is required")

	rec = doJSON(t, h, http.MethodPost, "/agents/warlock/run", map[string]string{"workspaceId": ws.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/agents/qualify/run", map[string]string{"workspaceId": ws.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(1), resp["processed"])

	leads, err := env.Store.ListLeads(ctx, store.LeadFilter{WorkspaceID: ws.ID})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, model.StatusQualified, leads[0].Status)
	assert.Equal(t, 85, leads[0].Score)
}

func TestRouterAgentRunQueryWorkspace(t *testing.T) {
	env := newTestEnv(nil)
	h := newRouter(env)
	ctx := context.Background()

	ws := &model.Workspace{Name: "Acme", Config: model.DefaultSystemConfig()}
	require.NoError(t, env.Store.CreateWorkspace(ctx, ws))

	// empty body plus query-string workspace is a valid trigger
	rec := doJSON(t, h, http.MethodPost, "/agents/discovery/run?workspaceId="+ws.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "discovery", resp["agent"])
	assert.Equal(t, float64(0), resp["processed"])

	// targeting overrides ride in the body next to workspaceId
	rec = doJSON(t, h, http.MethodPost, "/agents/discovery/run", map[string]string{
		"workspaceId": ws.ID,
		"city":        "Dallas",
		"industry":    "Healthcare",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/agents/discovery/run", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no workspace anywhere")
}
