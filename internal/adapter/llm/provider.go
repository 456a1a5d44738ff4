package llm

import (
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"tubequiz/internal/config"
)

// NewModel builds the chat model selected by llm.provider. Groq is reached
// through its OpenAI-compatible endpoint.
func NewModel(cfg *config.Config) (llms.Model, error) {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	model := cfg.ModelName()

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return openai.New(
			openai.WithToken(cfg.OpenAI.APIKey),
			openai.WithModel(model),
			openai.WithHTTPClient(httpClient),
		)
	case config.ProviderGroq:
		baseURL := cfg.Groq.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultGroqBaseURL
		}
		return openai.New(
			openai.WithToken(cfg.Groq.APIKey),
			openai.WithBaseURL(baseURL),
			openai.WithModel(model),
			openai.WithHTTPClient(httpClient),
		)
	case config.ProviderOllama:
		return ollama.New(
			ollama.WithServerURL(cfg.Ollama.ServerURL),
			ollama.WithModel(model),
			ollama.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}
