// Package model defines the values that flow through the research and
// production pipelines, from planned tasks to the final video template.
// JSON field names are part of the rendering contract and must stay camelCase.
package model

import (
	"fmt"
	"strings"
)

// Row is a single result row keyed by column name.
type Row = map[string]any

// Task is one unit of research work produced by the planner.
// Tasks have positional identity within a plan.
type Task struct {
	Description string `json:"description" validate:"required,nonempty"`
	SuccessCase string `json:"successCase" validate:"required,nonempty"`
}

// Data quality grades reported by result analysis.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
	QualityEmpty  = "empty"
)

// Analysis is the advisory verdict on a query's results.
type Analysis struct {
	IsRelevant          bool     `json:"isRelevant"`
	DataQuality         string   `json:"dataQuality" validate:"required,oneof=high medium low empty"`
	KeyPatterns         []string `json:"keyPatterns"`
	SuggestedRefinement string   `json:"suggestedRefinement,omitempty"`
}

// QueryAttempt records the state of one search branch.
type QueryAttempt struct {
	Query    string    `json:"query"`
	Params   []any     `json:"params"`
	Results  []Row     `json:"results"`
	Error    string    `json:"error,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// Insight types.
const (
	InsightStatistic    = "statistic"
	InsightTrend        = "trend"
	InsightComparison   = "comparison"
	InsightRanking      = "ranking"
	InsightDistribution = "distribution"
)

// Insight is a typed finding extracted from query results.
type Insight struct {
	ID         string         `json:"id" validate:"required,nonempty"`
	Type       string         `json:"type" validate:"required,oneof=statistic trend comparison ranking distribution"`
	Title      string         `json:"title" validate:"required,nonempty"`
	Summary    string         `json:"summary" validate:"required,nonempty"`
	Data       any            `json:"data"`
	Confidence float64        `json:"confidence" validate:"gte=0,lte=1"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Review grades.
const (
	GradePass = "pass"
	GradeFail = "fail"
)

// Review is the plan reviewer's verdict.
type Review struct {
	Grade    string `json:"grade" validate:"required,oneof=pass fail"`
	Feedback string `json:"feedback,omitempty"`
}

// Passed reports whether the plan was accepted.
func (r Review) Passed() bool { return r.Grade == GradePass }

// Decision is the sufficiency gate's verdict.
type Decision struct {
	HasEnoughInfo bool   `json:"hasEnoughInfo"`
	Feedback      string `json:"feedback"`
}

// Narrative section types.
const (
	SectionIntro       = "intro"
	SectionKeyInsights = "key_insights"
	SectionComparisons = "comparisons"
	SectionOutro       = "outro"
)

// NarrativeSection is one beat of the story.
type NarrativeSection struct {
	ID          string   `json:"id" validate:"required,nonempty"`
	Type        string   `json:"type" validate:"required,oneof=intro key_insights comparisons outro"`
	Title       string   `json:"title" validate:"required,nonempty"`
	Description string   `json:"description"`
	InsightIDs  []string `json:"insightIds"`
	Priority    int      `json:"priority" validate:"gte=0"`
}

// NarrativeOutline orders insights into a story.
type NarrativeOutline struct {
	Title    string             `json:"title" validate:"required,nonempty"`
	Sections []NarrativeSection `json:"sections" validate:"required,min=1,dive"`
}

// Validate rejects outlines that reuse a section ID; scenes reference
// sections by ID, so each one must be unique.
func (o *NarrativeOutline) Validate() ValidationResult {
	res := ValidationResult{Valid: true}
	seen := make(map[string]bool, len(o.Sections))
	for i, s := range o.Sections {
		id := strings.TrimSpace(s.ID)
		if seen[id] {
			res.Valid = false
			res.Errors = append(res.Errors, ValidationError{
				Field:   fmt.Sprintf("NarrativeOutline.Sections[%d].ID", i),
				Tag:     "unique",
				Value:   s.ID,
				Message: fmt.Sprintf("section id %q is used more than once", s.ID),
			})
		}
		seen[id] = true
	}
	return res
}

// Scene layout presets.
const (
	LayoutCenterFocus = "center_focus"
	LayoutSplitScreen = "split_screen"
	LayoutCarousel    = "carousel"
	LayoutTimeline    = "timeline"
)

// SceneSpec is a timed visual unit. Duration is in seconds.
type SceneSpec struct {
	ID           string   `json:"id" validate:"required,nonempty"`
	SectionID    string   `json:"sectionId" validate:"required,nonempty"`
	Title        string   `json:"title" validate:"required,nonempty"`
	Description  string   `json:"description"`
	Duration     float64  `json:"duration" validate:"gt=0"`
	InsightIDs   []string `json:"insightIds"`
	LayoutPreset string   `json:"layoutPreset" validate:"required,oneof=center_focus split_screen carousel timeline"`
}

// Card variants understood by the renderer.
const (
	VariantHeroStat          = "hero_stat"
	VariantRankedList        = "ranked_list"
	VariantComparisonSplit   = "comparison_split"
	VariantTrendChart        = "trend_chart"
	VariantDistributionChart = "distribution_chart"
	VariantKeyHighlight      = "key_highlight"
)

// Motion presets.
const (
	MotionCinematicSlideUp = "cinematic_slide_up"
	MotionScalePop         = "scale_pop"
	MotionFadeIn           = "fade_in"
	MotionSlideInLeft      = "slide_in_left"
	MotionSlideInRight     = "slide_in_right"
)

// Motion describes a card's entrance animation. Times are in seconds.
type Motion struct {
	Preset   string  `json:"preset" validate:"required,oneof=cinematic_slide_up scale_pop fade_in slide_in_left slide_in_right"`
	Duration float64 `json:"duration" validate:"gte=0"`
	Delay    float64 `json:"delay" validate:"gte=0"`
	Easing   string  `json:"easing,omitempty"`
}

// CardStyle is the visual treatment of a card.
type CardStyle struct {
	Surface      string  `json:"surface" validate:"required,oneof=glass solid gradient"`
	CornerRadius float64 `json:"cornerRadius" validate:"gte=0"`
	Accent       string  `json:"accent"`
	Background   string  `json:"background"`
	Typography   string  `json:"typography" validate:"required,oneof=heading body caption"`
}

// Position places a card on the canvas, in percent of the frame.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Card is a data-bound visual component placed in a scene.
type Card struct {
	ID           string            `json:"id" validate:"required,nonempty"`
	SceneID      string            `json:"sceneId" validate:"required,nonempty"`
	Variant      string            `json:"variant" validate:"required,oneof=hero_stat ranked_list comparison_split trend_chart distribution_chart key_highlight"`
	DataRef      string            `json:"dataRef" validate:"required,nonempty"`
	FieldMapping map[string]string `json:"fieldMapping"`
	Motion       Motion            `json:"motion"`
	Style        CardStyle         `json:"style"`
	Position     Position          `json:"position"`
	ZIndex       int               `json:"zIndex"`
}

// Transition presets.
const (
	TransitionFade  = "fade"
	TransitionSlide = "slide"
	TransitionCut   = "cut"
)

// TimelineScene places a scene on the timeline.
type TimelineScene struct {
	SceneID    string  `json:"sceneId" validate:"required,nonempty"`
	StartTime  float64 `json:"startTime" validate:"gte=0"`
	Duration   float64 `json:"duration" validate:"gt=0"`
	Transition string  `json:"transition,omitempty" validate:"omitempty,oneof=fade slide cut"`
}

// Timeline is the contiguous ordering of scenes.
type Timeline struct {
	Scenes        []TimelineScene `json:"scenes" validate:"dive"`
	TotalDuration float64         `json:"totalDuration" validate:"gt=0"`
}

// TemplateMeta describes the generated template.
type TemplateMeta struct {
	Title       string `json:"title" validate:"required,nonempty"`
	Description string `json:"description"`
	GeneratedAt string `json:"generatedAt" validate:"required"`
	DataSource  string `json:"dataSource"`
}

// DataBindings holds the data cards are bound to.
type DataBindings struct {
	Insights []Insight `json:"insights" validate:"dive"`
}

// Theme is the template color palette.
type Theme struct {
	Primary    string `json:"primary" validate:"required"`
	Secondary  string `json:"secondary" validate:"required"`
	Accent     string `json:"accent" validate:"required"`
	Background string `json:"background" validate:"required"`
	Surface    string `json:"surface" validate:"required"`
}

// AnimationProfile controls global animation pacing.
type AnimationProfile struct {
	Speed string `json:"speed" validate:"required,oneof=slow normal fast"`
	Style string `json:"style" validate:"required,oneof=cinematic bouncy smooth"`
}

// TemplateJSON is the renderable video template.
type TemplateJSON struct {
	Version          string           `json:"version" validate:"required"`
	CompositionID    string           `json:"compositionId" validate:"required,nonempty"`
	Meta             TemplateMeta     `json:"meta"`
	DataBindings     DataBindings     `json:"dataBindings"`
	Narrative        NarrativeOutline `json:"narrative"`
	Scenes           []SceneSpec      `json:"scenes" validate:"required,min=1,dive"`
	Timeline         Timeline         `json:"timeline"`
	Cards            []Card           `json:"cards" validate:"dive"`
	Theme            Theme            `json:"theme"`
	AnimationProfile AnimationProfile `json:"animationProfile"`
}

// InsightIndex maps insight IDs to insights.
func InsightIndex(insights []Insight) map[string]Insight {
	idx := make(map[string]Insight, len(insights))
	for _, in := range insights {
		idx[in.ID] = in
	}
	return idx
}
