package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/interfaces"
)

// NewLLMService creates the configured analysis provider
func NewLLMService(cfg *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = "claude"
	}

	logger.Info().Str("provider", provider).Msg("Initializing LLM service")

	switch provider {
	case "claude":
		return NewClaudeService(&cfg.Claude, kvStorage, logger)
	case "gemini":
		return NewGeminiService(&cfg.Gemini, kvStorage, logger)
	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'claude' or 'gemini'", provider)
	}
}
