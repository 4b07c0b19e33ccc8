package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/model"
)

// Stage is one pipeline step: it processes a workspace cohort and reports
// how many leads it acted on.
type Stage interface {
	Run(ctx context.Context, workspaceID string) (int, error)
}

// StageResult summarizes one stage of a pipeline run.
type StageResult struct {
	Agent     model.AgentRole `json:"agent"`
	Processed int             `json:"processed"`
	Duration  time.Duration   `json:"duration"`
	Err       string          `json:"error,omitempty"`
}

// Pipeline runs the five stages in order: discovery, research,
// qualification, outreach, closing. Stages are sequential because each
// consumes the statuses the previous one produces.
type Pipeline struct {
	stages []namedStage
}

type namedStage struct {
	agent model.AgentRole
	stage Stage
}

// NewPipeline assembles the standard stage order.
func NewPipeline(discovery *Discovery, enricher *Enricher, qualifier *Qualifier, outreach *Outreach, closer *Closer) *Pipeline {
	return &Pipeline{stages: []namedStage{
		{model.AgentDiscovery, discovery},
		{model.AgentResearcher, enricher},
		{model.AgentQualifier, qualifier},
		{model.AgentOutreach, outreach},
		{model.AgentCloser, closer},
	}}
}

// Run executes the full pipeline for one workspace. On a stage failure it
// returns the results accumulated so far, the failed stage included, so
// callers can report partial progress.
func (p *Pipeline) Run(ctx context.Context, workspaceID string) ([]StageResult, error) {
	results := make([]StageResult, 0, len(p.stages))

	for _, ns := range p.stages {
		start := time.Now()
		n, err := ns.stage.Run(ctx, workspaceID)

		res := StageResult{
			Agent:     ns.agent,
			Processed: n,
			Duration:  time.Since(start),
		}
		if err != nil {
			res.Err = err.Error()
			results = append(results, res)
			zap.L().Error("pipeline: stage failed",
				zap.String("agent", string(ns.agent)),
				zap.String("workspace", workspaceID),
				zap.Error(err))
			return results, err
		}

		results = append(results, res)
		zap.L().Info("pipeline: stage complete",
			zap.String("agent", string(ns.agent)),
			zap.Int("processed", n),
			zap.Duration("duration", res.Duration))
	}
	return results, nil
}
