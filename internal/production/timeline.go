package production

import "github.com/ConceptCodes/deep-sql-research/internal/model"

// BuildTimeline packs scenes back to back in order. Every scene after the
// first fades in.
func BuildTimeline(scenes []model.SceneSpec) model.Timeline {
	tl := model.Timeline{Scenes: make([]model.TimelineScene, 0, len(scenes))}
	var start float64
	for i, sc := range scenes {
		ts := model.TimelineScene{
			SceneID:   sc.ID,
			StartTime: start,
			Duration:  sc.Duration,
		}
		if i > 0 {
			ts.Transition = model.TransitionFade
		}
		tl.Scenes = append(tl.Scenes, ts)
		start += sc.Duration
	}
	tl.TotalDuration = start
	return tl
}
