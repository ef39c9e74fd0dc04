package research

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

// Row caps for result summaries shown to the oracle.
const (
	analysisSampleRows  = 20
	synthesisSampleRows = 50
)

// SummarizeRows renders a result set for a prompt: row count, column list
// and at most limit rows as JSON lines.
func SummarizeRows(rows []model.Row, limit int) string {
	if len(rows) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Rows: %d\n", len(rows))
	fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(columns(rows[0]), ", "))

	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
		fmt.Fprintf(&sb, "Showing first %d rows (truncated)\n", limit)
	}
	for _, row := range shown {
		line, err := json.Marshal(row)
		if err != nil {
			line = fmt.Appendf(nil, "%v", row)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	if rest := len(rows) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "...(and %d more rows)\n", rest)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func columns(row model.Row) []string {
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}
