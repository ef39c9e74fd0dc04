package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// DefaultMaxTasks is the cumulative task ceiling for one run.
const DefaultMaxTasks = 8

// GateErrorFeedback is the planner feedback used when the gate itself fails.
const GateErrorFeedback = "Error in gate, please retry."

type sufficiencyOutput struct {
	HasEnoughInfo bool     `json:"hasEnoughInfo"`
	Reasoning     string   `json:"reasoning"`
	MissingInfo   []string `json:"missingInfo"`
}

// Gate decides whether research can stop.
type Gate struct {
	chain    *oracle.Chain[sufficiencyOutput]
	maxTasks int
	logger   *slog.Logger
}

// NewGate compiles the sufficiency chain. maxTasks is the safety valve:
// once that many tasks have run the gate always lets research finish.
func NewGate(ctx context.Context, o *oracle.Oracle, maxTasks int, logger *slog.Logger) (*Gate, error) {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	if logger == nil {
		logger = slog.Default()
	}
	chain, err := oracle.NewChain[sufficiencyOutput](ctx, o, oracle.Prompt{
		Stage:       "gate",
		Template:    sufficiencyPromptTemplate,
		Temperature: sufficiencyTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &Gate{chain: chain, maxTasks: maxTasks, logger: logger}, nil
}

// GateInput is the state the gate judges.
type GateInput struct {
	Goal      string
	Insights  []model.Insight
	TaskCount int
	Schema    string
}

// Decide never fails: oracle errors become a "not enough" decision so the
// planner retries, and the task ceiling overrides whatever the oracle says.
func (g *Gate) Decide(ctx context.Context, in GateInput) model.Decision {
	if in.TaskCount >= g.maxTasks {
		g.logger.Info("task ceiling reached, finishing research", "tasks", in.TaskCount, "max", g.maxTasks)
		return model.Decision{HasEnoughInfo: true}
	}

	out, err := g.chain.Generate(ctx, map[string]any{
		"Goal":      in.Goal,
		"TaskCount": in.TaskCount,
		"Insights":  in.Insights,
		"Schema":    in.Schema,
	})
	if err != nil {
		g.logger.Warn("sufficiency gate failed", "error", err)
		return model.Decision{HasEnoughInfo: false, Feedback: GateErrorFeedback}
	}
	if out.HasEnoughInfo {
		return model.Decision{HasEnoughInfo: true}
	}
	return model.Decision{HasEnoughInfo: false, Feedback: gateFeedback(out, len(in.Insights))}
}

func gateFeedback(out sufficiencyOutput, insightCount int) string {
	missing := "none specified"
	if len(out.MissingInfo) > 0 {
		missing = strings.Join(out.MissingInfo, ", ")
	}
	return fmt.Sprintf("We need more information. Reasoning: %s\nMissing specific data: %s\nExisting insights found: %d. Please generate new tasks to fill these gaps.",
		out.Reasoning, missing, insightCount)
}
