package factory

import (
	"fmt"
	"time"

	"tria-chat-be/pkg/llm"
	"tria-chat-be/pkg/llm/ollama"
	"tria-chat-be/pkg/llm/openai"
)

type Config struct {
	Provider string // "groq", "openai" or "ollama"
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "groq", "openai":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%s provider requires a base URL", cfg.Provider)
		}
		return openai.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
