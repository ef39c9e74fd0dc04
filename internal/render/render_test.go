package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

func TestSpring(t *testing.T) {
	assert.Equal(t, 0.0, Spring(0, DefaultFPS, PopSpring))
	assert.Equal(t, 0.0, Spring(-4, DefaultFPS, PopSpring))
	assert.InDelta(t, 0.5376, Spring(5, DefaultFPS, PopSpring), 1e-3)

	// Underdamped: overshoots once near half a second, then settles.
	assert.InDelta(t, 1.0582, Spring(14, DefaultFPS, PopSpring), 1e-3)
	assert.InDelta(t, 1.0, Spring(300, DefaultFPS, PopSpring), 1e-6)

	critical := SpringConfig{Damping: 2, Stiffness: 1, Mass: 1}
	over := SpringConfig{Damping: 10, Stiffness: 1, Mass: 1}
	for _, cfg := range []SpringConfig{critical, over} {
		prev := 0.0
		for frame := 1.0; frame <= 600; frame += 30 {
			v := Spring(frame, DefaultFPS, cfg)
			assert.GreaterOrEqual(t, v, prev, "frame %v", frame)
			assert.LessOrEqual(t, v, 1.0)
			prev = v
		}
	}
}

func TestApplyMotion(t *testing.T) {
	tests := []struct {
		name   string
		motion model.Motion
		frame  float64
		want   Style
	}{
		{
			name:   "slide up halfway",
			motion: model.Motion{Preset: model.MotionCinematicSlideUp, Duration: 1},
			frame:  15,
			want:   Style{Opacity: 0.5, TranslateY: 25, Scale: 1},
		},
		{
			name:   "fade waits for its delay",
			motion: model.Motion{Preset: model.MotionFadeIn, Duration: 1, Delay: 1},
			frame:  30,
			want:   Style{Opacity: 0, Scale: 1},
		},
		{
			name:   "fade after delay",
			motion: model.Motion{Preset: model.MotionFadeIn, Duration: 1, Delay: 1},
			frame:  45,
			want:   Style{Opacity: 0.5, Scale: 1},
		},
		{
			name:   "slide in from the left starts offscreen",
			motion: model.Motion{Preset: model.MotionSlideInLeft, Duration: 1},
			frame:  0,
			want:   Style{Opacity: 0, TranslateX: -100, Scale: 1},
		},
		{
			name:   "slide in from the right settles",
			motion: model.Motion{Preset: model.MotionSlideInRight, Duration: 1},
			frame:  30,
			want:   Style{Opacity: 1, TranslateX: 0, Scale: 1},
		},
		{
			name:   "pop before its delay",
			motion: model.Motion{Preset: model.MotionScalePop, Duration: 0.5, Delay: 0.2},
			frame:  6,
			want:   Style{Opacity: 0, Scale: 0},
		},
		{
			name:   "zero duration is instant",
			motion: model.Motion{Preset: model.MotionFadeIn},
			frame:  0,
			want:   Style{Opacity: 1, Scale: 1},
		},
		{
			name:   "unknown preset is untouched",
			motion: model.Motion{Preset: "wobble", Duration: 1},
			frame:  0,
			want:   Identity(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyMotion(tt.motion, tt.frame, DefaultFPS)
			assert.InDelta(t, tt.want.Opacity, got.Opacity, 1e-9)
			assert.InDelta(t, tt.want.TranslateX, got.TranslateX, 1e-9)
			assert.InDelta(t, tt.want.TranslateY, got.TranslateY, 1e-9)
			assert.InDelta(t, tt.want.Scale, got.Scale, 1e-9)
		})
	}

	pop := ApplyMotion(model.Motion{Preset: model.MotionScalePop, Duration: 0.5}, 14, DefaultFPS)
	assert.InDelta(t, 1.0582, pop.Scale, 1e-3)
	assert.Equal(t, 0.0, ApplyMotion(model.Motion{Preset: model.MotionFadeIn, Duration: 1}, 0, 0).Opacity)
}

func TestTransitionStyle(t *testing.T) {
	tests := []struct {
		kind string
		p    float64
		want Style
	}{
		{model.TransitionFade, 0.25, Style{Opacity: 0.75, Scale: 1}},
		{model.TransitionFade, 2, Style{Opacity: 0, Scale: 1}},
		{model.TransitionSlide, 0.5, Style{Opacity: 1, TranslateXPercent: 50, Scale: 1}},
		{model.TransitionCut, 0.5, Style{Opacity: 1, Scale: 1}},
		{model.TransitionCut, 0.6, Style{Opacity: 0, Scale: 1}},
		{"", 0.9, Identity()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransitionStyle(tt.kind, tt.p), "%s at %v", tt.kind, tt.p)
	}
}

func TestStyle_Transform(t *testing.T) {
	assert.Equal(t, "none", Identity().Transform())
	assert.Equal(t, "translateY(25px)", Style{Opacity: 1, TranslateY: 25, Scale: 1}.Transform())
	assert.Equal(t, "translateX(-100px) scale(1.058)", Style{TranslateX: -100, Scale: 1.05821}.Transform())
	assert.Equal(t, "translateX(50%)", Style{TranslateXPercent: 50, Scale: 1}.Transform())
}

func regionInsight() model.Insight {
	return model.Insight{
		ID:      "ins_1",
		Type:    model.InsightComparison,
		Title:   "Revenue by region",
		Summary: "North leads with 245.75",
		Data: []any{
			map[string]any{"region": "north", "total": 245.75},
			map[string]any{"region": "south", "total": 100.0},
		},
		Confidence: 0.9,
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, model.VariantRankedList, Lookup(model.VariantRankedList).Name)
	assert.Equal(t, model.VariantHeroStat, Lookup("sparkline").Name)
	assert.Equal(t, model.VariantHeroStat, Lookup("").Name)
	assert.Len(t, Variants(), 6)
	assert.Contains(t, Variants(), model.VariantKeyHighlight)
}

func TestBind(t *testing.T) {
	in := regionInsight()

	tests := []struct {
		name        string
		card        model.Card
		wantVariant string
		wantFields  map[string]any
		wantMissing []string
	}{
		{
			name:        "hero stat with plain names",
			card:        model.Card{ID: "c1", Variant: model.VariantHeroStat, FieldMapping: map[string]string{"title": "title", "value": "summary"}},
			wantVariant: model.VariantHeroStat,
			wantFields:  map[string]any{"title": "Revenue by region", "value": "North leads with 245.75"},
		},
		{
			name:        "comparison defaults",
			card:        model.Card{ID: "c2", Variant: model.VariantComparisonSplit},
			wantVariant: model.VariantComparisonSplit,
			wantFields: map[string]any{
				"left":  map[string]any{"region": "north", "total": 245.75},
				"right": map[string]any{"region": "south", "total": 100.0},
			},
		},
		{
			name:        "jsonpath override keeps other defaults",
			card:        model.Card{ID: "c3", Variant: model.VariantHeroStat, FieldMapping: map[string]string{"value": "$.data[0].total"}},
			wantVariant: model.VariantHeroStat,
			wantFields:  map[string]any{"title": "Revenue by region", "value": 245.75},
		},
		{
			name:        "wildcard collects every match",
			card:        model.Card{ID: "c4", Variant: model.VariantKeyHighlight, FieldMapping: map[string]string{"labels": "$.data[*].region"}},
			wantVariant: model.VariantKeyHighlight,
			wantFields:  map[string]any{"text": "North leads with 245.75", "labels": []any{"north", "south"}},
		},
		{
			name:        "unknown variant falls back",
			card:        model.Card{ID: "c5", Variant: "sparkline", FieldMapping: map[string]string{"unit": "$.metadata.unit"}},
			wantVariant: model.VariantHeroStat,
			wantFields:  map[string]any{"title": "Revenue by region", "value": "North leads with 245.75"},
			wantMissing: []string{"unit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Bind(tt.card, in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVariant, b.Variant)
			assert.Equal(t, tt.wantFields, b.Fields)
			assert.Equal(t, tt.wantMissing, b.Missing)
		})
	}
}

func TestBind_InvalidPath(t *testing.T) {
	card := model.Card{ID: "c1", Variant: model.VariantHeroStat, FieldMapping: map[string]string{"value": "$.data["}}
	_, err := Bind(card, regionInsight())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card c1")
}

func planTemplate() *model.TemplateJSON {
	in := regionInsight()
	return &model.TemplateJSON{
		DataBindings: model.DataBindings{Insights: []model.Insight{in}},
		Scenes: []model.SceneSpec{
			{ID: "scene_intro", SectionID: "intro", Title: "Intro", Duration: 5, LayoutPreset: model.LayoutCenterFocus},
			{ID: "scene_main", SectionID: "main", Title: "Main", Duration: 8, LayoutPreset: model.LayoutSplitScreen, InsightIDs: []string{in.ID}},
			{ID: "scene_outro", SectionID: "outro", Title: "Outro", Duration: 5, LayoutPreset: model.LayoutCenterFocus},
		},
		Timeline: model.Timeline{
			Scenes: []model.TimelineScene{
				{SceneID: "scene_intro", StartTime: 0, Duration: 5},
				{SceneID: "scene_main", StartTime: 5, Duration: 8, Transition: model.TransitionFade},
				{SceneID: "scene_outro", StartTime: 13, Duration: 5, Transition: model.TransitionFade},
			},
			TotalDuration: 18,
		},
		Cards: []model.Card{
			{
				ID: "card_main_0", SceneID: "scene_main", Variant: model.VariantHeroStat, DataRef: in.ID,
				Motion: model.Motion{Preset: model.MotionScalePop, Duration: 0.5},
				ZIndex: 1,
			},
			{
				ID: "card_main_1", SceneID: "scene_main", Variant: model.VariantHeroStat, DataRef: "ins_gone",
				Motion: model.Motion{Preset: model.MotionFadeIn, Duration: 0.5, Delay: 0.2},
				ZIndex: 2,
			},
		},
	}
}

func TestFramePlan(t *testing.T) {
	plan, err := FramePlan(planTemplate(), 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultFPS, plan.FPS)
	assert.Equal(t, 540, plan.TotalFrames)
	require.Len(t, plan.Scenes, 3)

	intro, main, outro := plan.Scenes[0], plan.Scenes[1], plan.Scenes[2]
	assert.Equal(t, 0, intro.From)
	assert.Equal(t, 150, intro.Duration)
	assert.Empty(t, intro.Transition)
	assert.Empty(t, intro.Cards)

	assert.Equal(t, 150, main.From)
	assert.Equal(t, 240, main.Duration)
	assert.Equal(t, model.TransitionFade, main.Transition)
	assert.Equal(t, 210, main.TransitionFrom)
	require.Len(t, main.Cards, 1, "cards with a missing insight are not planned")
	assert.Equal(t, "card_main_0", main.Cards[0].CardID)
	assert.Equal(t, 15, main.Cards[0].EnterDuration)
	assert.Equal(t, "Revenue by region", main.Cards[0].Binding.Fields["title"])

	assert.Equal(t, 390, outro.From)
	assert.Empty(t, outro.Transition, "the final scene never transitions")
}

func TestPlan_At(t *testing.T) {
	plan, err := FramePlan(planTemplate(), DefaultFPS)
	require.NoError(t, err)

	f, ok := plan.At(0)
	require.True(t, ok)
	assert.Equal(t, "scene_intro", f.SceneID)
	assert.Equal(t, Identity(), f.Overlay)

	f, ok = plan.At(150)
	require.True(t, ok)
	assert.Equal(t, "scene_main", f.SceneID)
	assert.Equal(t, 0, f.LocalFrame)
	require.Len(t, f.Cards, 1)
	assert.Equal(t, 0.0, f.Cards[0].Style.Opacity)

	f, ok = plan.At(150 + 225)
	require.True(t, ok)
	assert.InDelta(t, 0.5, f.Overlay.Opacity, 1e-9)
	assert.InDelta(t, 1.0, f.Cards[0].Style.Opacity, 1e-9)
	assert.InDelta(t, 1.0, f.Cards[0].Style.Scale, 1e-3)

	f, ok = plan.At(539)
	require.True(t, ok)
	assert.Equal(t, "scene_outro", f.SceneID)
	assert.Equal(t, Identity(), f.Overlay)

	_, ok = plan.At(540)
	assert.False(t, ok)
	_, ok = plan.At(-1)
	assert.False(t, ok)
}

func TestFramePlan_Errors(t *testing.T) {
	_, err := FramePlan(nil, DefaultFPS)
	require.Error(t, err)

	tmpl := planTemplate()
	tmpl.Timeline.Scenes[1].SceneID = "scene_ghost"
	_, err = FramePlan(tmpl, DefaultFPS)
	require.ErrorIs(t, err, ErrUnknownScene)
}
