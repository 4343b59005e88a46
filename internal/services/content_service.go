package services

import (
	"context"
	"fmt"
	"strings"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

// ContentRequest describes one content generation.
type ContentRequest struct {
	Niche    string
	Identity models.Identity
	Grid     models.GridShape
	// Article, when set, supplies the grounding context directly: search
	// grounding is skipped and there is a single attempt path.
	Article *models.NewsArticle
}

type ContentServiceInterface interface {
	GenerateTrendContent(ctx context.Context, req ContentRequest) (*models.GeneratedTrend, error)
}

type ContentService struct {
	runner *generationRunner
	conf   *structures.Config
	logger providers.Logger
}

func NewContentService(client genai.Client, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ContentServiceInterface {
	return &ContentService{
		runner: newGenerationRunner(client, conf, logger, metrics),
		conf:   conf,
		logger: logger,
	}
}

const contentAttempts = 3

// trendPayload is the JSON shape we prompt for. Every field is optional
// on the wire; Normalize fills the gaps.
type trendPayload struct {
	Topic             string   `json:"topic"`
	Summary           string   `json:"summary"`
	Caption           string   `json:"caption"`
	Hashtags          []string `json:"hashtags"`
	Narrative         string   `json:"narrative"`
	Mood              string   `json:"mood"`
	Palette           string   `json:"palette"`
	SlideDescriptions []string `json:"slideDescriptions"`
}

func (s *ContentService) GenerateTrendContent(ctx context.Context, req ContentRequest) (*models.GeneratedTrend, error) {
	if req.Article != nil {
		result, err := s.runner.text(ctx, "content.fromArticle", s.conf.Generation.TextTimeout, contentAttempts, genai.TextRequest{
			Model:       s.conf.Generation.TextModel,
			System:      s.systemPrompt(req.Identity),
			Prompt:      s.articlePrompt(req),
			WantJSON:    true,
			Temperature: 0.8,
		})
		if err != nil {
			return nil, err
		}
		return s.parse("content.fromArticle", result, req.Grid)
	}

	// Primary strategy: ground the output in live web results.
	result, err := s.runner.text(ctx, "content.search", s.conf.Generation.SearchTimeout, contentAttempts, genai.TextRequest{
		Model:          s.conf.Generation.TextModel,
		System:         s.systemPrompt(req.Identity),
		Prompt:         s.trendPrompt(req),
		GroundInSearch: true,
		Temperature:    0.8,
	})
	if err == nil {
		return s.parse("content.search", result, req.Grid)
	}
	s.logger.Warnf(providers.TypeGenAI, "Search-grounded content failed, falling back to knowledge-only: %s", err)

	// Secondary strategy: same prompt shape without grounding tools.
	result, err = s.runner.text(ctx, "content.knowledge", s.conf.Generation.TextTimeout, contentAttempts, genai.TextRequest{
		Model:       s.conf.Generation.TextModel,
		System:      s.systemPrompt(req.Identity),
		Prompt:      s.trendPrompt(req),
		WantJSON:    true,
		Temperature: 0.9,
	})
	if err != nil {
		return nil, err
	}
	return s.parse("content.knowledge", result, req.Grid)
}

func (s *ContentService) parse(op string, result *genai.TextResult, grid models.GridShape) (*models.GeneratedTrend, error) {
	var payload trendPayload
	if err := genai.DecodeLoose(op, result.Text, &payload); err != nil {
		return nil, err
	}

	trend := &models.GeneratedTrend{
		Topic:             payload.Topic,
		Summary:           payload.Summary,
		Caption:           payload.Caption,
		Hashtags:          payload.Hashtags,
		Narrative:         payload.Narrative,
		Mood:              payload.Mood,
		Palette:           payload.Palette,
		SlideDescriptions: payload.SlideDescriptions,
		SourceURLs:        result.SourceURLs,
	}
	trend.Normalize(grid)
	return trend, nil
}

func (s *ContentService) systemPrompt(identity models.Identity) string {
	return fmt.Sprintf(
		"You are %s, a social media influencer. Personality: %s. Visual style: %s. "+
			"You respond only with a single JSON object, no prose.",
		identity.Name, identity.Personality, identity.VisualStyle)
}

func (s *ContentService) trendPrompt(req ContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find one current, engaging trend in the %q niche and turn it into a carousel post concept.\n", req.Niche)
	s.writeSchema(&b, req.Grid)
	return b.String()
}

func (s *ContentService) articlePrompt(req ContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn the following news article into a carousel post concept for the %q niche.\n\n", req.Niche)
	fmt.Fprintf(&b, "Headline: %s\nSummary: %s\n", req.Article.Headline, req.Article.Summary)
	if req.Article.Body != "" {
		fmt.Fprintf(&b, "Article: %s\n", req.Article.Body)
	}
	b.WriteString("\n")
	s.writeSchema(&b, req.Grid)
	return b.String()
}

func (s *ContentService) writeSchema(b *strings.Builder, grid models.GridShape) {
	panels := grid.Panels()
	fmt.Fprintf(b,
		`Respond with a JSON object with these keys:
  "topic": short trend title,
  "summary": 2-3 sentence overview,
  "caption": post caption in the influencer's voice,
  "hashtags": array of 5-8 hashtags,
  "narrative": the visual story arc across the carousel,
  "mood": overall emotional tone,
  "palette": color palette description,
  "slideDescriptions": array of exactly %d one-sentence visual beats, ordered.
`, panels)
}
