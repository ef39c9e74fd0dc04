package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
)

// FormatGenerateResult renders a run summary followed by the template JSON.
func FormatGenerateResult(res *app.GenerateResult) (string, error) {
	if res == nil || res.Template == nil {
		return "No template was produced.", nil
	}

	raw, err := json.MarshalIndent(res.Template, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", res.Template.Meta.Title)
	fmt.Fprintf(&sb, "- Composition: `%s`\n", res.Template.CompositionID)
	fmt.Fprintf(&sb, "- Insights: %d\n", res.Insights)
	fmt.Fprintf(&sb, "- Scenes: %d (%gs)\n", res.Scenes, res.Template.Timeline.TotalDuration)
	fmt.Fprintf(&sb, "- Cards: %d\n", res.Cards)
	fmt.Fprintf(&sb, "- Research: %d tasks over %d rounds\n\n", res.TaskCount, res.Rounds)
	sb.WriteString("```json\n")
	sb.Write(raw)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

// FormatSchema wraps a schema description in a code block.
func FormatSchema(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "No user tables found."
	}
	return "```\n" + desc + "\n```\n"
}
