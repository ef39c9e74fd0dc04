package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

// ErrUnknownScene is returned when the timeline references a scene the
// template does not define.
var ErrUnknownScene = errors.New("timeline references unknown scene")

// Plan is a template laid out in frames.
type Plan struct {
	FPS         int         `json:"fps"`
	TotalFrames int         `json:"totalFrames"`
	Scenes      []ScenePlan `json:"scenes"`
}

// ScenePlan is one scene's window on the frame axis.
type ScenePlan struct {
	SceneID  string `json:"sceneId"`
	Title    string `json:"title"`
	Layout   string `json:"layout"`
	From     int    `json:"from"`
	Duration int    `json:"duration"`
	// Transition is empty for the final scene and for scenes without one.
	Transition string `json:"transition,omitempty"`
	// TransitionFrom is the local frame the transition starts at.
	TransitionFrom int        `json:"transitionFrom,omitempty"`
	Cards          []CardPlan `json:"cards"`
}

// CardPlan is a card's entrance within its scene.
type CardPlan struct {
	CardID        string       `json:"cardId"`
	Motion        model.Motion `json:"motion"`
	EnterFrame    int          `json:"enterFrame"`
	EnterDuration int          `json:"enterDuration"`
	ZIndex        int          `json:"zIndex"`
	Binding       Binding      `json:"binding"`
}

// Frame is the sampled state of a plan at one frame.
type Frame struct {
	Frame      int         `json:"frame"`
	SceneID    string      `json:"sceneId"`
	LocalFrame int         `json:"localFrame"`
	Overlay    Style       `json:"overlay"`
	Cards      []CardFrame `json:"cards"`
}

// CardFrame is one card's style at a frame.
type CardFrame struct {
	CardID string `json:"cardId"`
	Style  Style  `json:"style"`
}

// FramePlan lays out the template's timeline at fps frames per second.
// Scenes play in timeline order. Every scene but the last exits with its
// transition over its final second. Cards whose insight is missing are not
// planned, matching what the renderer draws.
func FramePlan(tmpl *model.TemplateJSON, fps int) (*Plan, error) {
	if tmpl == nil {
		return nil, errors.New("frame plan: nil template")
	}
	if fps <= 0 {
		fps = DefaultFPS
	}

	scenes := make(map[string]model.SceneSpec, len(tmpl.Scenes))
	for _, sc := range tmpl.Scenes {
		scenes[sc.ID] = sc
	}
	insights := make(map[string]model.Insight, len(tmpl.DataBindings.Insights))
	for _, in := range tmpl.DataBindings.Insights {
		insights[in.ID] = in
	}
	cardsByScene := map[string][]model.Card{}
	for _, c := range tmpl.Cards {
		cardsByScene[c.SceneID] = append(cardsByScene[c.SceneID], c)
	}

	plan := &Plan{FPS: fps, Scenes: make([]ScenePlan, 0, len(tmpl.Timeline.Scenes))}
	last := len(tmpl.Timeline.Scenes) - 1
	for i, ts := range tmpl.Timeline.Scenes {
		sc, ok := scenes[ts.SceneID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScene, ts.SceneID)
		}

		sp := ScenePlan{
			SceneID:  sc.ID,
			Title:    sc.Title,
			Layout:   sc.LayoutPreset,
			From:     toFrames(ts.StartTime, fps),
			Duration: toFrames(ts.Duration, fps),
			Cards:    []CardPlan{},
		}
		if ts.Transition != "" && i < last {
			sp.Transition = ts.Transition
			sp.TransitionFrom = max(0, sp.Duration-fps)
		}

		for _, c := range cardsByScene[sc.ID] {
			in, ok := insights[c.DataRef]
			if !ok {
				continue
			}
			b, err := Bind(c, in)
			if err != nil {
				return nil, err
			}
			sp.Cards = append(sp.Cards, CardPlan{
				CardID:        c.ID,
				Motion:        c.Motion,
				EnterFrame:    toFrames(c.Motion.Delay, fps),
				EnterDuration: toFrames(c.Motion.Duration, fps),
				ZIndex:        c.ZIndex,
				Binding:       b,
			})
		}

		plan.Scenes = append(plan.Scenes, sp)
		plan.TotalFrames = max(plan.TotalFrames, sp.From+sp.Duration)
	}
	return plan, nil
}

// At samples the plan. It reports false when no scene covers frame.
func (p *Plan) At(frame int) (Frame, bool) {
	for _, sp := range p.Scenes {
		if frame < sp.From || frame >= sp.From+sp.Duration {
			continue
		}
		local := frame - sp.From
		f := Frame{
			Frame:      frame,
			SceneID:    sp.SceneID,
			LocalFrame: local,
			Overlay:    Identity(),
			Cards:      make([]CardFrame, 0, len(sp.Cards)),
		}
		if sp.Transition != "" && local >= sp.TransitionFrom {
			span := sp.Duration - sp.TransitionFrom
			f.Overlay = TransitionStyle(sp.Transition, float64(local-sp.TransitionFrom)/float64(span))
		}
		for _, c := range sp.Cards {
			f.Cards = append(f.Cards, CardFrame{
				CardID: c.CardID,
				Style:  ApplyMotion(c.Motion, float64(local), p.FPS),
			})
		}
		return f, true
	}
	return Frame{}, false
}

func toFrames(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}
