package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *TemplateJSON {
	return &TemplateJSON{
		Version:       "1.0.0",
		CompositionID: "video_1",
		Meta: TemplateMeta{
			Title:       "Data Insights: revenue",
			GeneratedAt: "2025-01-01T00:00:00Z",
			DataSource:  "SQL Database Analysis",
		},
		DataBindings: DataBindings{Insights: []Insight{
			{ID: "i1", Type: InsightStatistic, Title: "Total revenue", Summary: "Revenue was 10k", Confidence: 0.9},
		}},
		Narrative: NarrativeOutline{
			Title: "Data Insights: revenue",
			Sections: []NarrativeSection{
				{ID: "intro", Type: SectionIntro, Title: "Introduction", Priority: 1},
				{ID: "key_insights", Type: SectionKeyInsights, Title: "Key Findings", InsightIDs: []string{"i1"}, Priority: 2},
			},
		},
		Scenes: []SceneSpec{
			{ID: "scene_intro", SectionID: "intro", Title: "Introduction", Duration: 5, LayoutPreset: LayoutCenterFocus},
			{ID: "scene_key_insights", SectionID: "key_insights", Title: "Key Findings", Duration: 8, InsightIDs: []string{"i1"}, LayoutPreset: LayoutCenterFocus},
		},
		Timeline: Timeline{
			Scenes: []TimelineScene{
				{SceneID: "scene_intro", StartTime: 0, Duration: 5},
				{SceneID: "scene_key_insights", StartTime: 5, Duration: 8, Transition: TransitionFade},
			},
			TotalDuration: 13,
		},
		Cards: []Card{{
			ID:           "card_scene_key_insights_0",
			SceneID:      "scene_key_insights",
			Variant:      VariantHeroStat,
			DataRef:      "i1",
			FieldMapping: map[string]string{"title": "title"},
			Motion:       Motion{Preset: MotionScalePop, Duration: 0.5},
			Style:        CardStyle{Surface: "glass", CornerRadius: 12, Typography: "heading"},
			Position:     Position{X: 10, Y: 20, Width: 80, Height: 60},
			ZIndex:       1,
		}},
		Theme:            Theme{Primary: "#3b82f6", Secondary: "#64748b", Accent: "#f59e0b", Background: "#0f172a", Surface: "#1e293b"},
		AnimationProfile: AnimationProfile{Speed: "normal", Style: "cinematic"},
	}
}

func TestValidateTemplate_Valid(t *testing.T) {
	require.NoError(t, ValidateTemplate(validTemplate()))
}

func TestValidateTemplate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TemplateJSON)
		want   string
	}{
		{
			name:   "card references unknown insight",
			mutate: func(t *TemplateJSON) { t.Cards[0].DataRef = "missing" },
			want:   `unknown insight "missing"`,
		},
		{
			name:   "card references unknown scene",
			mutate: func(t *TemplateJSON) { t.Cards[0].SceneID = "scene_nope" },
			want:   `unknown scene "scene_nope"`,
		},
		{
			name:   "scene references unknown section",
			mutate: func(t *TemplateJSON) { t.Scenes[0].SectionID = "ghost" },
			want:   `unknown section "ghost"`,
		},
		{
			name:   "section references unknown insight",
			mutate: func(t *TemplateJSON) { t.Narrative.Sections[0].InsightIDs = []string{"x"} },
			want:   `section "intro" references unknown insight "x"`,
		},
		{
			name:   "timeline gap",
			mutate: func(t *TemplateJSON) { t.Timeline.Scenes[1].StartTime = 6 },
			want:   "starts at 6, expected 5",
		},
		{
			name:   "total mismatch",
			mutate: func(t *TemplateJSON) { t.Timeline.TotalDuration = 20 },
			want:   "does not equal sum of durations 13",
		},
		{
			name:   "bad variant",
			mutate: func(t *TemplateJSON) { t.Cards[0].Variant = "pie" },
			want:   "must be one of",
		},
		{
			name:   "confidence out of range",
			mutate: func(t *TemplateJSON) { t.DataBindings.Insights[0].Confidence = 1.5 },
			want:   "must be at most 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(tmpl)

			err := ValidateTemplate(tmpl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateStruct_ErrorSummary(t *testing.T) {
	res := ValidateStruct(&Task{Description: "  "})
	assert.False(t, res.Valid)
	assert.Contains(t, res.ErrorSummary(), "Task.Description")
	assert.Contains(t, res.ErrorSummary(), "Task.SuccessCase is required")

	assert.Empty(t, ValidateStruct(&Task{Description: "a", SuccessCase: "b"}).ErrorSummary())
}

func TestNarrativeOutline_Validate(t *testing.T) {
	section := func(id string) NarrativeSection {
		return NarrativeSection{ID: id, Type: SectionIntro, Title: "t"}
	}
	tests := []struct {
		name  string
		ids   []string
		valid bool
	}{
		{"unique", []string{"intro", "main", "outro"}, true},
		{"duplicate", []string{"intro", "main", "main"}, false},
		{"duplicate after trimming", []string{"intro", " intro "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &NarrativeOutline{Title: "story"}
			for _, id := range tt.ids {
				o.Sections = append(o.Sections, section(id))
			}
			res := o.Validate()
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.Contains(t, res.ErrorSummary(), "used more than once")
			}
		})
	}
}
