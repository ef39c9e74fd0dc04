package production

const (
	narrativeTemperature = 0.4
	sceneTemperature     = 0.3
	cardTemperature      = 0.2
)

const productionSystem = `You are part of a video production team that turns data insights into short, data-driven presentation videos. You only reference insight, section and scene IDs that you are given.`

const narrativePromptTemplate = `You are the narrative designer. Outline a data-driven video presentation for the goal below.

GOAL:
{{.Goal}}

AVAILABLE INSIGHTS:
{{range .Insights}}- [{{.ID}}] {{.Title}} ({{.Type}}): {{.Summary}}
{{else}}(none: the research found no usable data)
{{end}}
SECTION TYPES:
- intro: hook the viewer and set context
- key_insights: the most important findings and statistics
- comparisons: comparisons or rankings, only if the insights support them
- outro: key takeaways and a strong close

INSTRUCTIONS:
Output JSON with this schema:
{
  "title": "string",
  "sections": [
    {
      "id": "string (unique, e.g. intro)",
      "type": "intro|key_insights|comparisons|outro",
      "title": "string",
      "description": "string",
      "insightIds": ["IDs from AVAILABLE INSIGHTS"],
      "priority": 1
    }
  ]
}

RULES:
- Order sections the way they should play, intro first and outro last
- priority 1 is the most important
- Use only insight IDs listed above
- Output ONLY valid JSON`

const scenePromptTemplate = `You are the scene planner. Split the narrative below into timed video scenes.

NARRATIVE: {{.Narrative.Title}}

SECTIONS:
{{range .Narrative.Sections}}- [{{.ID}}] {{.Title}} ({{.Type}}): {{.Description}} (insights: {{join .InsightIDs}})
{{end}}
AVAILABLE INSIGHTS:
{{range .Insights}}- [{{.ID}}] {{.Title}} ({{.Type}}): {{.Summary}}
{{else}}(none)
{{end}}
LAYOUTS:
- center_focus: a single key insight or statistic
- split_screen: two insights side by side
- carousel: several related insights
- timeline: progression or trends

INSTRUCTIONS:
Output JSON with this schema:
{
  "scenes": [
    {
      "id": "string (unique)",
      "sectionId": "ID from SECTIONS",
      "title": "string",
      "description": "string",
      "duration": 5,
      "insightIds": ["IDs from AVAILABLE INSIGHTS"],
      "layoutPreset": "center_focus|split_screen|carousel|timeline"
    }
  ]
}

RULES:
- 1-2 scenes per section, in section order
- duration is in seconds: 3-5 for intro and outro, 5-10 for key insights, 8-12 for comparisons
- Output ONLY valid JSON`

const cardPromptTemplate = `You are the card designer. Design the on-screen cards for each scene below.

SCENES:
{{range .Scenes}}- [{{.ID}}] {{.Title}} ({{.LayoutPreset}}): {{.Description}} (insights: {{join .InsightIDs}})
{{end}}
AVAILABLE INSIGHTS:
{{range .Insights}}- [{{.ID}}] {{.Title}} ({{.Type}}): {{.Summary}}
{{end}}
VARIANTS:
- hero_stat: one large statistic
- ranked_list: ordered list of 3-5 items
- comparison_split: two-sided comparison
- trend_chart: change over time
- distribution_chart: spread across categories
- key_highlight: short text highlight

MOTION PRESETS: cinematic_slide_up, scale_pop, fade_in, slide_in_left, slide_in_right

INSTRUCTIONS:
Output JSON with this schema:
{
  "cards": [
    {
      "id": "string (unique)",
      "sceneId": "ID from SCENES",
      "variant": "hero_stat|ranked_list|comparison_split|trend_chart|distribution_chart|key_highlight",
      "dataRef": "insight ID",
      "fieldMapping": {"title": "title", "value": "summary"},
      "motion": {"preset": "scale_pop", "duration": 0.5, "delay": 0, "easing": "optional"},
      "style": {"surface": "glass|solid|gradient", "cornerRadius": 12, "accent": "#3b82f6", "background": "#1e293b", "typography": "heading|body|caption"},
      "position": {"x": 10, "y": 20, "width": 80, "height": 60},
      "zIndex": 1
    }
  ]
}

RULES:
- Each card binds exactly one insight through dataRef
- fieldMapping values are insight fields (title, summary) or JSONPath into the insight data (e.g. $.data.total)
- Positions are percentages of the frame (0-100); cards in one scene should not overlap
- center_focus and timeline scenes get 1-2 cards, split_screen 2, carousel 2-3
- Output ONLY valid JSON`
