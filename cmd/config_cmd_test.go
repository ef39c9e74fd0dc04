package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigSetLLM(t *testing.T) {
	fs := useMemFs(t)
	const path = "/home/dev/.deep-sql-research.yaml"
	require.NoError(t, afero.WriteFile(fs, path, []byte("research:\n  max_tasks: 5\n"), 0o600))

	stdout, stderr, err := execute(t, "config", "set-llm", "--config", path,
		"--provider", "ollama", "--model", "llama3.2", "--base-url", "http://localhost:11434")
	requireNoError(t, err, stderr)
	assert.Contains(t, stdout, "Saved ollama settings")

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var doc struct {
		Research struct {
			MaxTasks int `yaml:"max_tasks"`
		} `yaml:"research"`
		LLM struct {
			Provider string `yaml:"provider"`
			Model    string `yaml:"model"`
			BaseURL  string `yaml:"baseURL"`
		} `yaml:"llm"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 5, doc.Research.MaxTasks)
	assert.Equal(t, "ollama", doc.LLM.Provider)
	assert.Equal(t, "llama3.2", doc.LLM.Model)
	assert.Equal(t, "http://localhost:11434", doc.LLM.BaseURL)
}

func TestConfigSetLLM_InvalidProvider(t *testing.T) {
	useMemFs(t)
	_, _, err := execute(t, "config", "set-llm", "--config", "/tmp/x.yaml", "--provider", "watson")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	stdout, stderr, err := execute(t, "config", "show")
	requireNoError(t, err, stderr)
	assert.Contains(t, stdout, "research.max_tasks")
	assert.Contains(t, stdout, "render.fps")
}
