package llm

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OllamaProvider talks to a local Ollama server. Ollama serves an
// OpenAI-compatible API, so the OpenAI SDK does the work; the key is a
// placeholder the server ignores.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider for a local Ollama model.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	inner, err := newCompatibleProvider("Ollama", OpenAIConfig{
		APIKey:  "ollama",
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &OllamaProvider{OpenAIProvider: inner}, nil
}
