package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/render"
)

func TestRenderRunSummary(t *testing.T) {
	out := RenderRunSummary(&app.GenerateResult{
		RunID: "run_ab12cd34",
		Template: &model.TemplateJSON{
			CompositionID: "video_1",
			Meta:          model.TemplateMeta{Title: "Data Insights: revenue"},
			Timeline:      model.Timeline{TotalDuration: 12},
		},
		Insights:  1,
		Scenes:    3,
		Cards:     2,
		TaskCount: 4,
		Rounds:    1,
	})
	assert.Contains(t, out, "Data Insights: revenue")
	assert.Contains(t, out, "run_ab12cd34")
	assert.Contains(t, out, "1 insight")
	assert.Contains(t, out, "3 scenes")
	assert.Contains(t, out, "4 tasks")
	assert.Contains(t, out, "1 round")
	assert.Contains(t, out, "(12s)")

	assert.Contains(t, RenderRunSummary(nil), "No template")
}

func TestRenderPlan(t *testing.T) {
	plan := &render.Plan{
		FPS:         30,
		TotalFrames: 150,
		Scenes: []render.ScenePlan{
			{
				SceneID: "intro", From: 0, Duration: 90,
				Transition: "fade", TransitionFrom: 60,
				Cards: []render.CardPlan{{
					CardID:        "card_1",
					Motion:        model.Motion{Preset: "scale_pop"},
					EnterFrame:    6,
					EnterDuration: 15,
					Binding:       render.Binding{Variant: "hero_stat"},
				}},
			},
			{SceneID: "outro", From: 90, Duration: 60},
		},
	}

	out := RenderPlan(plan)
	assert.Contains(t, out, "150 frames @ 30 fps")
	assert.Contains(t, out, "0-89")
	assert.Contains(t, out, "fade@60")
	assert.Contains(t, out, "scale_pop")
	assert.Contains(t, out, "6+15")
	assert.Contains(t, out, "90-149")

	assert.Contains(t, RenderPlan(&render.Plan{}), "empty")
}

func TestRenderFrame(t *testing.T) {
	out := RenderFrame(render.Frame{
		Frame:      75,
		SceneID:    "intro",
		LocalFrame: 75,
		Overlay:    render.Style{Opacity: 0.5, Scale: 1},
		Cards: []render.CardFrame{
			{CardID: "card_1", Style: render.Identity()},
		},
	})
	assert.Contains(t, out, "frame 75")
	assert.Contains(t, out, "intro (local 75)")
	assert.Contains(t, out, "opacity=0.500")
	assert.Contains(t, out, "card_1")
	assert.Contains(t, out, "none")
}
