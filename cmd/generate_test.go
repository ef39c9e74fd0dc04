package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConceptCodes/deep-sql-research/internal/database/dbtest"
	"github.com/ConceptCodes/deep-sql-research/internal/export"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

func TestGenerate_Stdout(t *testing.T) {
	useFakeModel(t, salesOracle())

	stdout, stderr, err := execute(t, "generate", "Which regions drive revenue?", dbtest.Sales(t))
	requireNoError(t, err, stderr)

	tmpl, err := export.Decode([]byte(stdout), export.FormatJSON)
	require.NoError(t, err)
	require.NoError(t, model.ValidateTemplate(tmpl))
	require.Len(t, tmpl.DataBindings.Insights, 1)
	assert.Equal(t, "revenue_by_region", tmpl.DataBindings.Insights[0].ID)

	assert.Contains(t, stderr, "1 insight")
	assert.Contains(t, stderr, "1 task")
}

func TestGenerate_OutFile(t *testing.T) {
	useFakeModel(t, salesOracle())
	fs := useMemFs(t)

	stdout, stderr, err := execute(t, "generate", "Which regions drive revenue?", dbtest.Sales(t), "--out", "out/revenue.yaml")
	requireNoError(t, err, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "template written to out/revenue.yaml")

	data, err := afero.ReadFile(fs, "out/revenue.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "compositionId:")

	tmpl, err := export.Load(fs, "out/revenue.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, tmpl.Scenes)
}

func TestGenerate_Errors(t *testing.T) {
	useFakeModel(t, salesOracle())

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing database", args: []string{"generate", "goal only"}},
		{name: "blank goal", args: []string{"generate", "  ", dbtest.Sales(t)}},
		{name: "bad format", args: []string{"generate", "g", dbtest.Sales(t), "--format", "xml"}},
		{name: "unreachable database", args: []string{"generate", "g", t.TempDir() + "/missing.db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, stdout)
		})
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, out string
		want      export.Format
		wantErr   bool
	}{
		{flag: "", out: "", want: export.FormatJSON},
		{flag: "", out: "t.yml", want: export.FormatYAML},
		{flag: "json", out: "t.yaml", want: export.FormatJSON},
		{flag: "YAML", out: "", want: export.FormatYAML},
		{flag: "toml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.out)
		if tt.wantErr {
			assert.ErrorIs(t, err, export.ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSchemaCmd(t *testing.T) {
	stdout, stderr, err := execute(t, "schema", dbtest.Sales(t))
	requireNoError(t, err, stderr)
	assert.Contains(t, stdout, "Table: customers")
	assert.Contains(t, stdout, "Table: orders")
}
