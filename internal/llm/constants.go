package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderOpenAI

	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"

	// ProviderLMStudio is a local LM Studio server speaking the OpenAI API.
	ProviderLMStudio Provider = "lmstudio"
)

// Default endpoints for local providers.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultLMStudioURL = "http://localhost:1234/v1"
)

// Default chat models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaModel    = "llama3.2"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultLMStudioModel  = "openai/gpt-oss-20b"
)

// DefaultMaxTokens caps completions for providers that require a limit.
const DefaultMaxTokens = 4096

// DefaultModelForProvider returns the default chat model for a provider.
func DefaultModelForProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderLMStudio:
		return DefaultLMStudioModel
	default:
		return ""
	}
}

// DefaultBaseURLForProvider returns the default endpoint for local providers.
func DefaultBaseURLForProvider(p Provider) string {
	switch p {
	case ProviderOllama:
		return DefaultOllamaURL
	case ProviderLMStudio:
		return DefaultLMStudioURL
	default:
		return ""
	}
}
