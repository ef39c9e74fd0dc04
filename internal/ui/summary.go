package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/render"
)

// RenderRunSummary formats the counts of a finished generation run.
func RenderRunSummary(res *app.GenerateResult) string {
	if res == nil || res.Template == nil {
		return StyleWarning.Render("No template was produced.")
	}

	var sb strings.Builder
	sb.WriteString(Icon("✓", StyleSuccess) + " " + StyleTitle.Render(res.Template.Meta.Title) + "\n")
	fmt.Fprintf(&sb, "%s %s\n", StyleSubtle.Render("run        "), res.RunID)
	fmt.Fprintf(&sb, "%s %s\n", StyleSubtle.Render("composition"), res.Template.CompositionID)
	fmt.Fprintf(&sb, "%s %s over %s\n", StyleSubtle.Render("research   "),
		StyleMetric.Render(plural(res.TaskCount, "task")),
		StyleMetric.Render(plural(res.Rounds, "round")))
	fmt.Fprintf(&sb, "%s %s, %s, %s (%gs)",
		StyleSubtle.Render("template   "),
		StyleMetric.Render(plural(res.Insights, "insight")),
		StyleMetric.Render(plural(res.Scenes, "scene")),
		StyleMetric.Render(plural(res.Cards, "card")),
		res.Template.Timeline.TotalDuration)
	return StyleSummaryBox.Render(sb.String())
}

// RenderPlan formats a frame plan as one table row per card.
func RenderPlan(p *render.Plan) string {
	if p == nil || len(p.Scenes) == 0 {
		return StyleWarning.Render("Timeline is empty.") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(StyleHeader.Render(fmt.Sprintf("%d frames @ %d fps", p.TotalFrames, p.FPS)) + "\n\n")

	t := &Table{
		Headers:  []string{"Scene", "Frames", "Exit", "Card", "Variant", "Motion", "Enter"},
		MaxWidth: 28,
	}
	for _, sp := range p.Scenes {
		frames := fmt.Sprintf("%d-%d", sp.From, sp.From+sp.Duration-1)
		exit := "-"
		if sp.Transition != "" {
			exit = fmt.Sprintf("%s@%d", sp.Transition, sp.TransitionFrom)
		}
		if len(sp.Cards) == 0 {
			t.Rows = append(t.Rows, []string{sp.SceneID, frames, exit, "-", "", "", ""})
			continue
		}
		for i, c := range sp.Cards {
			row := []string{"", "", "", c.CardID, c.Binding.Variant, c.Motion.Preset,
				fmt.Sprintf("%d+%d", c.EnterFrame, c.EnterDuration)}
			if i == 0 {
				row[0], row[1], row[2] = sp.SceneID, frames, exit
			}
			t.Rows = append(t.Rows, row)
		}
	}
	sb.WriteString(t.Render())
	return sb.String()
}

// RenderFrame formats the sampled state of a single frame.
func RenderFrame(f render.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n",
		StyleHeader.Render("frame "+strconv.Itoa(f.Frame)),
		StyleSubtle.Render("scene"),
		fmt.Sprintf("%s (local %d)", f.SceneID, f.LocalFrame))
	fmt.Fprintf(&sb, "%s opacity=%s transform=%s\n",
		StyleSubtle.Render("overlay"), formatFloat(f.Overlay.Opacity), f.Overlay.Transform())

	t := &Table{Headers: []string{"Card", "Opacity", "Transform"}}
	for _, c := range f.Cards {
		t.Rows = append(t.Rows, []string{c.CardID, formatFloat(c.Style.Opacity), c.Style.Transform()})
	}
	if len(t.Rows) > 0 {
		sb.WriteString(t.Render())
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
