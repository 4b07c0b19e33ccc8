package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
)

// maxAgentLogs caps the per-agent log ring kept in workspace config.
const maxAgentLogs = 20

func nowUTC() time.Time { return time.Now().UTC() }

// setAgentState records an agent's operational status in the workspace
// config. Status bookkeeping is best-effort: a failed write is logged and
// never fails the stage that triggered it.
func setAgentState(ctx context.Context, st store.Store, workspaceID string, role model.AgentRole, status model.AgentStatus, logLine string) {
	cfg, err := st.GetConfig(ctx, workspaceID)
	if err != nil {
		zap.L().Warn("agent: load config for status update",
			zap.String("workspace", workspaceID), zap.Error(err))
		return
	}

	state := cfg.Agents[role]
	state.Status = status
	state.LastActive = time.Now().UTC()
	if logLine != "" {
		entry := fmt.Sprintf("[%s] %s", state.LastActive.Format(time.RFC3339), logLine)
		state.Logs = append(state.Logs, entry)
		if len(state.Logs) > maxAgentLogs {
			state.Logs = state.Logs[len(state.Logs)-maxAgentLogs:]
		}
	}
	cfg.Agents[role] = state

	if err := st.SaveConfig(ctx, workspaceID, cfg); err != nil {
		zap.L().Warn("agent: save status update",
			zap.String("workspace", workspaceID), zap.Error(err))
	}
}

// agentActive reports whether the given agent is enabled for the workspace.
func agentActive(cfg model.SystemConfig, role model.AgentRole) bool {
	return cfg.Agents[role].Active
}
