package production

import (
	"context"
	"log/slog"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// Fallback scene durations in seconds.
const (
	bookendSceneDuration = 5
	bodySceneDuration    = 8
)

type sceneOutput struct {
	Scenes []model.SceneSpec `json:"scenes" validate:"dive"`
}

// ScenePlanner splits a narrative into timed scenes.
type ScenePlanner struct {
	chain  *oracle.Chain[sceneOutput]
	logger *slog.Logger
}

// NewScenePlanner compiles the scene chain.
func NewScenePlanner(ctx context.Context, o *oracle.Oracle, logger *slog.Logger) (*ScenePlanner, error) {
	chain, err := oracle.NewChain[sceneOutput](ctx, o, oracle.Prompt{
		Stage:       "scenes",
		System:      productionSystem,
		Template:    scenePromptTemplate,
		Funcs:       promptFuncs,
		Temperature: sceneTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &ScenePlanner{chain: chain, logger: orDefault(logger)}, nil
}

// Plan returns scenes for the outline, or one fallback scene per section.
func (p *ScenePlanner) Plan(ctx context.Context, outline model.NarrativeOutline, insights []model.Insight) []model.SceneSpec {
	out, err := p.chain.Generate(ctx, map[string]any{"Narrative": outline, "Insights": insights})
	if err != nil {
		p.logger.Warn("scene planning failed, using fallback", "error", err)
		return FallbackScenes(outline)
	}

	scenes := sanitizeScenes(out.Scenes, outline, model.InsightIndex(insights))
	if len(scenes) == 0 {
		p.logger.Warn("scene plan had no usable scenes, using fallback")
		return FallbackScenes(outline)
	}
	p.logger.Debug("scenes planned", "count", len(scenes))
	return scenes
}

// FallbackScenes maps each section to one scene.
func FallbackScenes(outline model.NarrativeOutline) []model.SceneSpec {
	scenes := make([]model.SceneSpec, 0, len(outline.Sections))
	for _, s := range outline.Sections {
		duration := float64(bodySceneDuration)
		if s.Type == model.SectionIntro || s.Type == model.SectionOutro {
			duration = bookendSceneDuration
		}
		layout := model.LayoutCenterFocus
		if s.Type == model.SectionComparisons {
			layout = model.LayoutSplitScreen
		}
		ids := make([]string, len(s.InsightIDs))
		copy(ids, s.InsightIDs)

		scenes = append(scenes, model.SceneSpec{
			ID:           "scene_" + s.ID,
			SectionID:    s.ID,
			Title:        s.Title,
			Description:  s.Description,
			Duration:     duration,
			InsightIDs:   ids,
			LayoutPreset: layout,
		})
	}
	return scenes
}

func sanitizeScenes(scenes []model.SceneSpec, outline model.NarrativeOutline, known map[string]model.Insight) []model.SceneSpec {
	sections := make(map[string]bool, len(outline.Sections))
	for _, s := range outline.Sections {
		sections[s.ID] = true
	}

	seen := map[string]bool{}
	out := make([]model.SceneSpec, 0, len(scenes))
	for _, sc := range scenes {
		if !sections[sc.SectionID] || seen[sc.ID] {
			continue
		}
		seen[sc.ID] = true
		sc.InsightIDs = knownIDs(sc.InsightIDs, known)
		out = append(out, sc)
	}
	return out
}
