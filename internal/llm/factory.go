package llm

import (
	"strings"
	"sync"

	"mindwell/internal/llm/providers"
)

type Factory struct {
	mu        sync.Mutex
	instances map[string]Provider
}

func NewFactory() *Factory {
	return &Factory{instances: map[string]Provider{}}
}

func (f *Factory) CreateProvider(config *ProviderConfig) Provider {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := config.ProviderName + ":" + config.ModelName + ":" + config.BaseURL
	if provider, ok := f.instances[key]; ok {
		return provider
	}

	var provider Provider
	name := strings.ToLower(config.ProviderName)
	switch name {
	case "claude", "anthropic":
		provider = providers.NewClaudeProvider(config)
	case "openai":
		provider = providers.NewOpenAIProvider(config)
	case "cohere":
		provider = providers.NewCohereProvider(config)
	case "google", "gemini":
		// Gemini is reached through an OpenAI-compatible gateway; set
		// base_url on the provider config accordingly.
		provider = providers.NewOpenAIProvider(config)
	default:
		return nil
	}
	f.instances[key] = provider
	return provider
}
