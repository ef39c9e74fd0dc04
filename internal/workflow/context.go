// Package workflow drives a generation run: the research loop (plan, review,
// dispatch, synthesize, gate) followed by the production pipeline.
//
// Run state is a RunContext value. Stages never mutate it; they return a
// Delta which Reduce folds in using a fixed merge policy per field.
package workflow

import (
	"fmt"
	"slices"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/research"
)

// RunContext is the state of one run.
type RunContext struct {
	RunID  string
	Goal   string
	Schema string

	// Tasks is the current plan.
	Tasks []model.Task
	// TaskCount is the cumulative number of dispatched tasks.
	TaskCount int
	// ReviewAttempts counts reviews of the current planning round.
	ReviewAttempts int
	// Feedback is carried into the next planning round.
	Feedback string
	Rounds   int

	Insights []model.Insight
	// Outcomes holds the search results of the latest dispatch.
	Outcomes      []research.SearchResult
	HasEnoughInfo bool

	Template *model.TemplateJSON
}

// InsightTitles lists insight titles in accumulation order.
func (rc RunContext) InsightTitles() []string {
	titles := make([]string, len(rc.Insights))
	for i, in := range rc.Insights {
		titles[i] = in.Title
	}
	return titles
}

// Delta is a partial update to a RunContext. Nil fields are left untouched.
//
// Merge policy: Insights are appended and TaskCountAdd/Rounds are summed;
// every other field is last-write-wins.
type Delta struct {
	Schema         *string
	Tasks          *[]model.Task
	TaskCountAdd   int
	ReviewAttempts *int
	Feedback       *string
	AddRound       bool
	Insights       []model.Insight
	Outcomes       *[]research.SearchResult
	HasEnoughInfo  *bool
	Template       *model.TemplateJSON
}

// Reduce returns rc with d applied. rc is not modified. Appended insights
// whose ID is already taken are renamed so every insight is kept.
func Reduce(rc RunContext, d Delta) RunContext {
	if d.Schema != nil {
		rc.Schema = *d.Schema
	}
	if d.Tasks != nil {
		rc.Tasks = slices.Clone(*d.Tasks)
	}
	rc.TaskCount += d.TaskCountAdd
	if d.ReviewAttempts != nil {
		rc.ReviewAttempts = *d.ReviewAttempts
	}
	if d.Feedback != nil {
		rc.Feedback = *d.Feedback
	}
	if d.AddRound {
		rc.Rounds++
	}
	if len(d.Insights) > 0 {
		rc.Insights = appendInsights(rc.Insights, d.Insights)
	}
	if d.Outcomes != nil {
		rc.Outcomes = slices.Clone(*d.Outcomes)
	}
	if d.HasEnoughInfo != nil {
		rc.HasEnoughInfo = *d.HasEnoughInfo
	}
	if d.Template != nil {
		rc.Template = d.Template
	}
	return rc
}

func appendInsights(existing, added []model.Insight) []model.Insight {
	out := make([]model.Insight, 0, len(existing)+len(added))
	out = append(out, existing...)

	taken := make(map[string]bool, cap(out))
	for _, in := range existing {
		taken[in.ID] = true
	}
	for _, in := range added {
		id := in.ID
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s_%d", in.ID, n)
		}
		taken[id] = true
		in.ID = id
		out = append(out, in)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
