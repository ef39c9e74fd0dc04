package llm

import (
	"context"
	"testing"
)

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     Provider
		wantErr  bool
	}{
		{name: "valid openai", provider: "openai", want: ProviderOpenAI},
		{name: "valid ollama", provider: "ollama", want: ProviderOllama},
		{name: "valid anthropic", provider: "anthropic", want: ProviderAnthropic},
		{name: "valid gemini", provider: "gemini", want: ProviderGemini},
		{name: "valid lmstudio", provider: "lmstudio", want: ProviderLMStudio},
		{name: "invalid provider", provider: "invalid", wantErr: true},
		{name: "empty provider", provider: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateProvider(tt.provider)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProvider() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ValidateProvider() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewChatModel_MissingAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewChatModel(context.Background(), Config{Provider: p})
			if err == nil {
				t.Errorf("NewChatModel(%s) with no API key should fail", p)
			}
		})
	}
}

func TestNewChatModel_UnsupportedProvider(t *testing.T) {
	if _, err := NewChatModel(context.Background(), Config{Provider: "bedrock"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestNewChatModel_LocalProviders(t *testing.T) {
	for _, p := range []Provider{ProviderOllama, ProviderLMStudio} {
		t.Run(string(p), func(t *testing.T) {
			m, err := NewChatModel(context.Background(), Config{Provider: p})
			if err != nil {
				t.Fatalf("NewChatModel(%s) error = %v", p, err)
			}
			if m == nil {
				t.Fatalf("NewChatModel(%s) returned nil model", p)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	if got := DefaultBaseURLForProvider(ProviderLMStudio); got != "http://localhost:1234/v1" {
		t.Errorf("lmstudio base URL = %q", got)
	}
	if got := DefaultBaseURLForProvider(ProviderOpenAI); got != "" {
		t.Errorf("openai base URL = %q, want empty", got)
	}
	if DefaultModelForProvider(ProviderGemini) == "" {
		t.Error("gemini should have a default model")
	}
}
