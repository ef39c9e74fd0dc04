package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidTemplate is returned when a template fails structural or
// referential checks.
var ErrInvalidTemplate = errors.New("invalid template")

// timeEpsilon absorbs float rounding when comparing summed durations.
const timeEpsilon = 1e-6

// TemplateError lists every problem found in a template.
type TemplateError struct {
	Problems []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid template: %s", strings.Join(e.Problems, "; "))
}

func (e *TemplateError) Unwrap() error { return ErrInvalidTemplate }

// ValidateTemplate checks field rules, reference closure and timeline
// contiguity. The returned error, if any, is a *TemplateError.
func ValidateTemplate(t *TemplateJSON) error {
	if t == nil {
		return &TemplateError{Problems: []string{"template is nil"}}
	}

	var problems []string
	if res := ValidateStruct(t); !res.Valid {
		problems = append(problems, res.ErrorSummary())
	}
	problems = append(problems, CheckReferences(t)...)
	problems = append(problems, CheckTimeline(t.Timeline)...)

	if len(problems) > 0 {
		return &TemplateError{Problems: problems}
	}
	return nil
}

// CheckReferences reports every dangling insight, section or scene reference.
func CheckReferences(t *TemplateJSON) []string {
	var problems []string

	insights := make(map[string]struct{}, len(t.DataBindings.Insights))
	for _, in := range t.DataBindings.Insights {
		if _, dup := insights[in.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate insight id %q", in.ID))
		}
		insights[in.ID] = struct{}{}
	}

	sections := make(map[string]struct{}, len(t.Narrative.Sections))
	for _, sec := range t.Narrative.Sections {
		sections[sec.ID] = struct{}{}
		for _, id := range sec.InsightIDs {
			if _, ok := insights[id]; !ok {
				problems = append(problems, fmt.Sprintf("section %q references unknown insight %q", sec.ID, id))
			}
		}
	}

	scenes := make(map[string]struct{}, len(t.Scenes))
	for _, sc := range t.Scenes {
		if _, dup := scenes[sc.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate scene id %q", sc.ID))
		}
		scenes[sc.ID] = struct{}{}
		if _, ok := sections[sc.SectionID]; !ok {
			problems = append(problems, fmt.Sprintf("scene %q references unknown section %q", sc.ID, sc.SectionID))
		}
		for _, id := range sc.InsightIDs {
			if _, ok := insights[id]; !ok {
				problems = append(problems, fmt.Sprintf("scene %q references unknown insight %q", sc.ID, id))
			}
		}
	}

	for _, c := range t.Cards {
		if _, ok := scenes[c.SceneID]; !ok {
			problems = append(problems, fmt.Sprintf("card %q references unknown scene %q", c.ID, c.SceneID))
		}
		if _, ok := insights[c.DataRef]; !ok {
			problems = append(problems, fmt.Sprintf("card %q references unknown insight %q", c.ID, c.DataRef))
		}
	}

	for _, ts := range t.Timeline.Scenes {
		if _, ok := scenes[ts.SceneID]; !ok {
			problems = append(problems, fmt.Sprintf("timeline references unknown scene %q", ts.SceneID))
		}
	}

	return problems
}

// CheckTimeline reports gaps, overlaps and a mismatched total duration.
func CheckTimeline(tl Timeline) []string {
	var problems []string
	var cursor float64
	for i, ts := range tl.Scenes {
		if math.Abs(ts.StartTime-cursor) > timeEpsilon {
			problems = append(problems, fmt.Sprintf("timeline scene %d (%s) starts at %g, expected %g", i, ts.SceneID, ts.StartTime, cursor))
		}
		cursor += ts.Duration
	}
	if math.Abs(tl.TotalDuration-cursor) > timeEpsilon {
		problems = append(problems, fmt.Sprintf("timeline totalDuration %g does not equal sum of durations %g", tl.TotalDuration, cursor))
	}
	return problems
}
