package services

import (
	"context"
	"fmt"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

type PersonaServiceInterface interface {
	GeneratePersona(ctx context.Context, niche string) (*models.Persona, error)
}

type PersonaService struct {
	runner *generationRunner
	conf   *structures.Config
	logger providers.Logger
}

func NewPersonaService(client genai.Client, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) PersonaServiceInterface {
	return &PersonaService{
		runner: newGenerationRunner(client, conf, logger, metrics),
		conf:   conf,
		logger: logger,
	}
}

type personaPayload struct {
	Name          string `json:"name"`
	Bio           string `json:"bio"`
	Personality   string `json:"personality"`
	VisualOptions []struct {
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"visualOptions"`
}

func (s *PersonaService) GeneratePersona(ctx context.Context, niche string) (*models.Persona, error) {
	result, err := s.runner.text(ctx, "persona.generate", s.conf.Generation.TextTimeout, contentAttempts, genai.TextRequest{
		Model:       s.conf.Generation.TextModel,
		Prompt:      personaPrompt(niche),
		WantJSON:    true,
		Temperature: 1.0,
	})
	if err != nil {
		return nil, err
	}

	var payload personaPayload
	if err := genai.DecodeLoose("persona.generate", result.Text, &payload); err != nil {
		return nil, err
	}

	persona := &models.Persona{
		Name:        payload.Name,
		Bio:         payload.Bio,
		Personality: payload.Personality,
		Niche:       niche,
	}
	for _, option := range payload.VisualOptions {
		persona.VisualOptions = append(persona.VisualOptions, models.VisualOption{
			Label:       option.Label,
			Description: option.Description,
		})
	}
	persona.Normalize(niche)
	return persona, nil
}

func personaPrompt(niche string) string {
	return fmt.Sprintf(
		`Invent a fictional social media influencer for the %q niche.
Respond with a JSON object with these keys:
  "name": a memorable creator name,
  "bio": a 2-sentence profile bio,
  "personality": a one-line personality description,
  "visualOptions": array of exactly 4 objects, each with "label" (a
    portrait style) and "description" (a detailed avatar image prompt
    for that style).
No prose outside the JSON.`, niche)
}
