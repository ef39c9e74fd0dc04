package cmd

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConceptCodes/deep-sql-research/internal/database/dbtest"
	"github.com/ConceptCodes/deep-sql-research/internal/export"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/render"
	"github.com/ConceptCodes/deep-sql-research/internal/util"
)

// generatedTemplate runs generate into the in-memory filesystem and returns
// the template path and its decoded content.
func generatedTemplate(t *testing.T, fs afero.Fs) (string, *model.TemplateJSON) {
	t.Helper()
	useFakeModel(t, salesOracle())

	const path = "revenue.json"
	_, stderr, err := execute(t, "generate", "Which regions drive revenue?", dbtest.Sales(t), "--out", path)
	requireNoError(t, err, stderr)

	tmpl, err := export.Load(fs, path)
	require.NoError(t, err)
	return path, tmpl
}

func TestPreview_Plan(t *testing.T) {
	fs := useMemFs(t)
	path, tmpl := generatedTemplate(t, fs)

	stdout, stderr, err := execute(t, "preview", path)
	requireNoError(t, err, stderr)
	assert.Contains(t, stdout, "fps")
	for _, sc := range tmpl.Scenes {
		assert.Contains(t, stdout, sc.ID)
	}
}

func TestPreview_JSON(t *testing.T) {
	fs := useMemFs(t)
	path, tmpl := generatedTemplate(t, fs)

	stdout, stderr, err := execute(t, "preview", path, "--json", "--fps", "60")
	requireNoError(t, err, stderr)

	var plan render.Plan
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	assert.Equal(t, 60, plan.FPS)
	assert.Len(t, plan.Scenes, len(tmpl.Timeline.Scenes))
	last := plan.Scenes[len(plan.Scenes)-1]
	assert.Equal(t, last.From+last.Duration, plan.TotalFrames)
}

func TestPreview_SceneAndFrame(t *testing.T) {
	fs := useMemFs(t)
	path, tmpl := generatedTemplate(t, fs)
	first := tmpl.Timeline.Scenes[0].SceneID

	stdout, stderr, err := execute(t, "preview", path, "--scene", first, "--json")
	requireNoError(t, err, stderr)
	var plan render.Plan
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.Scenes, 1)
	assert.Equal(t, first, plan.Scenes[0].SceneID)

	stdout, stderr, err = execute(t, "preview", path, "--frame", "0")
	requireNoError(t, err, stderr)
	assert.Contains(t, stdout, "frame 0")
	assert.Contains(t, stdout, first)
}

func TestPreview_Errors(t *testing.T) {
	fs := useMemFs(t)
	path, _ := generatedTemplate(t, fs)

	_, _, err := execute(t, "preview", path, "--scene", "no_such_scene")
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, _, err = execute(t, "preview", path, "--frame", "999999")
	assert.ErrorContains(t, err, "outside the plan")

	_, _, err = execute(t, "preview", "missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte(`{"version":"1.0.0"}`), 0o644))
	_, _, err = execute(t, "preview", "broken.json")
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)
}
