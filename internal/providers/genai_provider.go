package providers

import (
	"fmt"

	"postpilot/internal/genai"
	"postpilot/internal/structures"
)

// NewGenAIClient selects the generation service backend from config.
func NewGenAIClient(conf *structures.Config, logger Logger) (genai.Client, error) {
	switch conf.Generation.Provider {
	case "gemini":
		logger.Infof(TypeGenAI, "Using gemini backend, text=%s image=%s", conf.Generation.TextModel, conf.Generation.ImageModel)
		return genai.NewGeminiClient(conf.Generation.APIKey), nil
	case "openai":
		logger.Infof(TypeGenAI, "Using openai backend, text=%s (no grounding, no composite images)", conf.Generation.TextModel)
		return genai.NewOpenAIClient(conf.Generation.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", conf.Generation.Provider)
	}
}
