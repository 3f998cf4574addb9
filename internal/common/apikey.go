package common

import (
	"context"
	"fmt"
	"os"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// ResolveAPIKey resolves an API key by name.
// Resolution order: environment variables, then KV store, then config fallback.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"anthropic_api_key": {"ANTHROPIC_API_KEY", "JOBSIEVE_CLAUDE_API_KEY"},
		"gemini_api_key":    {"GEMINI_API_KEY", "JOBSIEVE_GEMINI_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key %s not found in environment, storage or config", name)
}
