package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ConceptCodes/deep-sql-research/internal/llm"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the config file looked up in the home and working directories.
const ConfigFileName = ".deep-sql-research.yaml"

// DefaultConfigPath returns the config file path in the user's home directory.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName), nil
}

// SaveLLMConfig merges the provider settings into the YAML config file at
// path, creating it if needed. Unrelated keys already in the file are kept.
func SaveLLMConfig(fsys afero.Fs, path string, cfg llm.Config) error {
	if cfg.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if _, err := llm.ValidateProvider(string(cfg.Provider)); err != nil {
		return err
	}

	doc := map[string]any{}
	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}

	section, _ := doc["llm"].(map[string]any)
	if section == nil {
		section = map[string]any{}
	}
	section["provider"] = string(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = llm.DefaultModelForProvider(cfg.Provider)
	}
	section["model"] = model
	if cfg.BaseURL != "" {
		section["baseURL"] = cfg.BaseURL
	}
	if cfg.APIKey != "" {
		keys, _ := section["apiKeys"].(map[string]any)
		if keys == nil {
			keys = map[string]any{}
		}
		keys[string(cfg.Provider)] = cfg.APIKey
		section["apiKeys"] = keys
	}
	doc["llm"] = section

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return afero.WriteFile(fsys, path, out, 0o600)
}
