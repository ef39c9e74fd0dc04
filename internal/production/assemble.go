package production

import (
	"errors"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/util"
)

// TemplateVersion is the template format version emitted by the assembler.
const TemplateVersion = "1.0.0"

// ErrIncompleteInput is returned when assembly lacks a narrative or timeline.
var ErrIncompleteInput = errors.New("incomplete assembly input")

// DefaultTheme is the palette every template ships with.
var DefaultTheme = model.Theme{
	Primary:    "#3b82f6",
	Secondary:  "#64748b",
	Accent:     "#f59e0b",
	Background: "#0f172a",
	Surface:    "#1e293b",
}

// AssemblyInput collects the outputs of every production stage.
type AssemblyInput struct {
	Goal      string
	Insights  []model.Insight
	Narrative *model.NarrativeOutline
	Scenes    []model.SceneSpec
	Cards     []model.Card
	Timeline  *model.Timeline
}

// Assembler builds the final template.
type Assembler struct {
	now   func() time.Time
	newID func(prefix string) string
}

// NewAssembler returns an Assembler using the wall clock and random IDs.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now, newID: util.NewID}
}

// Assemble builds and validates the template. Only meta.generatedAt and
// compositionId differ between calls with the same input.
func (a *Assembler) Assemble(in AssemblyInput) (*model.TemplateJSON, error) {
	if in.Narrative == nil {
		return nil, errors.Join(ErrIncompleteInput, errors.New("narrative is missing"))
	}
	if in.Timeline == nil {
		return nil, errors.Join(ErrIncompleteInput, errors.New("timeline is missing"))
	}

	insights := in.Insights
	if insights == nil {
		insights = []model.Insight{}
	}
	cards := in.Cards
	if cards == nil {
		cards = []model.Card{}
	}

	tmpl := &model.TemplateJSON{
		Version:       TemplateVersion,
		CompositionID: a.newID("video"),
		Meta: model.TemplateMeta{
			Title:       "Data Insights: " + in.Goal,
			Description: "AI-generated video presentation about: " + in.Goal,
			GeneratedAt: a.now().UTC().Format(time.RFC3339),
			DataSource:  "SQL Database Analysis",
		},
		DataBindings: model.DataBindings{Insights: insights},
		Narrative:    *in.Narrative,
		Scenes:       in.Scenes,
		Timeline:     *in.Timeline,
		Cards:        cards,
		Theme:        DefaultTheme,
		AnimationProfile: model.AnimationProfile{
			Speed: "normal",
			Style: "cinematic",
		},
	}

	if err := model.ValidateTemplate(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}
