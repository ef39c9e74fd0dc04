// Package render holds the contract a frame renderer relies on when it plays
// a template: motion and transition presets, the card variant registry, and
// the per-frame plan derived from the timeline.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

// DefaultFPS is the frame rate templates are authored for.
const DefaultFPS = 30

// Style is the visual state of an element at one frame.
type Style struct {
	Opacity float64 `json:"opacity"`
	// TranslateX and TranslateY are in pixels.
	TranslateX float64 `json:"translateX,omitempty"`
	TranslateY float64 `json:"translateY,omitempty"`
	// TranslateXPercent is relative to the element width.
	TranslateXPercent float64 `json:"translateXPercent,omitempty"`
	Scale             float64 `json:"scale"`
}

// Identity is the untouched style.
func Identity() Style {
	return Style{Opacity: 1, Scale: 1}
}

// Transform renders the style's transform as a CSS transform list.
func (s Style) Transform() string {
	var parts []string
	if s.TranslateX != 0 {
		parts = append(parts, fmt.Sprintf("translateX(%gpx)", round3(s.TranslateX)))
	}
	if s.TranslateXPercent != 0 {
		parts = append(parts, fmt.Sprintf("translateX(%g%%)", round3(s.TranslateXPercent)))
	}
	if s.TranslateY != 0 {
		parts = append(parts, fmt.Sprintf("translateY(%gpx)", round3(s.TranslateY)))
	}
	if s.Scale != 1 {
		parts = append(parts, fmt.Sprintf("scale(%g)", round3(s.Scale)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// SpringConfig parameterizes a damped spring.
type SpringConfig struct {
	Damping   float64
	Stiffness float64
	Mass      float64
}

// PopSpring drives the scale_pop preset.
var PopSpring = SpringConfig{Damping: 12, Stiffness: 80, Mass: 1}

// Spring returns the position of a spring released from 0 towards 1 after
// frame frames. The value may overshoot 1 when the spring is underdamped.
func Spring(frame float64, fps int, cfg SpringConfig) float64 {
	if frame <= 0 {
		return 0
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if cfg.Mass <= 0 || cfg.Stiffness <= 0 {
		return 1
	}

	t := frame / float64(fps)
	w0 := math.Sqrt(cfg.Stiffness / cfg.Mass)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass))

	switch {
	case zeta < 1:
		wd := w0 * math.Sqrt(1-zeta*zeta)
		envelope := math.Exp(-zeta * w0 * t)
		return 1 - envelope*(math.Cos(wd*t)+(zeta*w0/wd)*math.Sin(wd*t))
	case zeta == 1:
		return 1 - math.Exp(-w0*t)*(1+w0*t)
	default:
		root := math.Sqrt(zeta*zeta - 1)
		r1 := -w0 * (zeta - root)
		r2 := -w0 * (zeta + root)
		return 1 - (r2*math.Exp(r1*t)-r1*math.Exp(r2*t))/(r2-r1)
	}
}

// Progress is the clamped 0..1 progress of an animation that starts after
// delay seconds and runs for duration seconds.
func Progress(frame float64, fps int, delay, duration float64) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	elapsed := frame - delay*float64(fps)
	span := duration * float64(fps)
	if span <= 0 {
		if elapsed >= 0 {
			return 1
		}
		return 0
	}
	return clamp01(elapsed / span)
}

// ApplyMotion evaluates a card's entrance preset at a frame relative to the
// start of its scene. Unknown presets leave the card untouched.
func ApplyMotion(m model.Motion, frame float64, fps int) Style {
	if fps <= 0 {
		fps = DefaultFPS
	}
	p := Progress(frame, fps, m.Delay, m.Duration)
	s := Identity()

	switch m.Preset {
	case model.MotionCinematicSlideUp:
		s.TranslateY = (1 - p) * 50
		s.Opacity = p
	case model.MotionScalePop:
		s.Scale = Spring(frame-m.Delay*float64(fps), fps, PopSpring)
		s.Opacity = p
	case model.MotionFadeIn:
		s.Opacity = p
	case model.MotionSlideInLeft:
		s.TranslateX = (1 - p) * -100
		s.Opacity = p
	case model.MotionSlideInRight:
		s.TranslateX = (1 - p) * 100
		s.Opacity = p
	}
	return s
}

// TransitionStyle evaluates a scene exit transition at progress p in 0..1.
func TransitionStyle(kind string, p float64) Style {
	p = clamp01(p)
	s := Identity()

	switch kind {
	case model.TransitionFade:
		s.Opacity = 1 - p
	case model.TransitionSlide:
		s.TranslateXPercent = p * 100
	case model.TransitionCut:
		if p > 0.5 {
			s.Opacity = 0
		}
	}
	return s
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
