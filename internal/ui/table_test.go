package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ColumnWidths(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		want  []int
	}{
		{
			name: "content wider than headers",
			table: Table{
				Headers: []string{"ID", "Name", "Status"},
				Rows: [][]string{
					{"scene_1", "Intro", "fade"},
					{"scene_22", "Revenue by region", "slide"},
				},
			},
			want: []int{8, 17, 6},
		},
		{
			name: "capped",
			table: Table{
				Headers:  []string{"ID", "Description"},
				Rows:     [][]string{{"a", "a description that is far too long"}},
				MaxWidth: 10,
			},
			want: []int{2, 10},
		},
		{
			name: "wide runes count once",
			table: Table{
				Headers: []string{"X"},
				Rows:    [][]string{{"───"}},
			},
			want: []int{3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.ColumnWidths())
		})
	}
}

func TestTable_Render(t *testing.T) {
	table := &Table{
		Headers: []string{"Card", "Variant", "Motion"},
		Rows: [][]string{
			{"card_1", "hero_stat", "scale_pop"},
			{"card_2"},
		},
	}

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, out, "hero_stat")
	assert.Contains(t, out, "card_2")
	assert.Contains(t, lines[1], "─")

	assert.Empty(t, (&Table{}).Render())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is way too long", 10, "this is w…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.width))
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", padRight("abc", 5))
	assert.Equal(t, "hello", padRight("hello", 5))
	assert.Equal(t, "longer", padRight("longer", 3))
	assert.Equal(t, "   ", padRight("", 3))
}
