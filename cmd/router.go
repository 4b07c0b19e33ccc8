package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/agent"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// newRouter builds the HTTP API over an initialized environment. Pulled out
// of the serve command so handler tests can run against httptest.
func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/workspaces", func(w http.ResponseWriter, req *http.Request) {
		workspaces, err := env.Store.ListWorkspaces(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list workspaces failed", err)
			return
		}
		writeJSON(w, http.StatusOK, workspaces)
	})

	r.Post("/workspaces", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Division string `json:"division"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if body.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required", nil)
			return
		}
		ws := &model.Workspace{
			Name:     body.Name,
			Division: body.Division,
			Config:   model.DefaultSystemConfig(),
		}
		if err := env.Store.CreateWorkspace(req.Context(), ws); err != nil {
			writeError(w, http.StatusInternalServerError, "create workspace failed", err)
			return
		}
		writeJSON(w, http.StatusCreated, ws)
	})

	r.Get("/workspaces/{id}/config", func(w http.ResponseWriter, req *http.Request) {
		cfg, err := env.Store.GetConfig(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, "get config failed", err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	})

	r.Put("/workspaces/{id}/config", func(w http.ResponseWriter, req *http.Request) {
		var cfg model.SystemConfig
		if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		id := chi.URLParam(req, "id")
		if err := env.Store.SaveConfig(req.Context(), id, cfg); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, "save config failed", err)
			return
		}
		writeJSON(w, http.StatusOK, cfg.Merged())
	})

	r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
		workspaceID := req.URL.Query().Get("workspaceId")
		if workspaceID == "" {
			writeError(w, http.StatusBadRequest, "workspaceId is required", nil)
			return
		}
		leads, err := env.Store.ListLeads(req.Context(), store.LeadFilter{
			WorkspaceID: workspaceID,
			Status:      model.LeadStatus(req.URL.Query().Get("status")),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list leads failed", err)
			return
		}
		writeJSON(w, http.StatusOK, leads)
	})

	r.Delete("/leads", func(w http.ResponseWriter, req *http.Request) {
		workspaceID := req.URL.Query().Get("workspaceId")
		if workspaceID == "" {
			writeError(w, http.StatusBadRequest, "workspaceId is required", nil)
			return
		}
		n, err := env.Store.ClearLeads(req.Context(), workspaceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "clear leads failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
	})

	r.Get("/leads/{id}", func(w http.ResponseWriter, req *http.Request) {
		lead, err := env.Store.GetLead(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, "get lead failed", err)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})

	r.Post("/leads/{id}/reply", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required", nil)
			return
		}
		lead, err := agent.RecordReply(req.Context(), env.Store, chi.URLParam(req, "id"), body.Content)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, "record reply failed", err)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})

	r.Post("/agents/{agent}/run", func(w http.ResponseWriter, req *http.Request) {
		// The body is optional: an empty body plus ?workspaceId= is a
		// valid trigger.
		var body struct {
			WorkspaceID string `json:"workspaceId"`
			Industry    string `json:"industry"`
			Niche       string `json:"niche"`
			City        string `json:"city"`
			Country     string `json:"country"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if body.WorkspaceID == "" {
			body.WorkspaceID = req.URL.Query().Get("workspaceId")
		}
		if body.WorkspaceID == "" {
			writeError(w, http.StatusBadRequest, "workspaceId is required", nil)
			return
		}

		name := chi.URLParam(req, "agent")
		switch name {
		case "pipeline":
			results, runErr := env.Pipeline.Run(req.Context(), body.WorkspaceID)
			resp := map[string]any{"results": results}
			if runErr != nil {
				resp["error"] = runErr.Error()
			}
			writeJSON(w, http.StatusOK, resp)
			return
		case "discovery":
			n, err := env.Discovery.RunWithOverrides(req.Context(), body.WorkspaceID, agent.Overrides{
				Industry: body.Industry,
				Niche:    body.Niche,
				City:     body.City,
				Country:  body.Country,
			})
			if err != nil {
				writeError(w, http.StatusInternalServerError, "agent run failed", err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"agent": name, "processed": n})
			return
		}

		stage, ok := env.stageByName(name)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown agent", nil)
			return
		}
		n, err := stage.Run(req.Context(), body.WorkspaceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "agent run failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agent": name, "processed": n})
	})

	return r
}

// stageByName maps API agent names onto pipeline stages.
func (e *appEnv) stageByName(name string) (agent.Stage, bool) {
	switch name {
	case "discovery":
		return e.Discovery, true
	case "research":
		return e.Enricher, true
	case "qualify":
		return e.Qualifier, true
	case "outreach":
		return e.Outreach, true
	case "closer":
		return e.Closer, true
	default:
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}
