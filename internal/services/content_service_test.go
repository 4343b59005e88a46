package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/structures"
	"postpilot/internal/testutil"
)

func testConfig() *structures.Config {
	return &structures.Config{
		Generation: structures.GenerationConfig{
			Provider:       "gemini",
			TextModel:      "text-model",
			ImageModel:     "image-model",
			TextTimeout:    time.Second,
			SearchTimeout:  time.Second,
			ImageTimeout:   time.Second,
			InitialBackoff: time.Millisecond,
			BackoffFactor:  1.0,
		},
		News: structures.NewsConfig{
			RefreshWindow:     time.Hour,
			InProgressTimeout: 2 * time.Minute,
			BatchSize:         3,
		},
		Checkpoint: structures.CheckpointConfig{
			Staleness: time.Hour,
			SweepSpec: "@hourly",
		},
	}
}

const trendJSON = `{
	"topic": "matcha everything",
	"summary": "Matcha is taking over cafe menus.",
	"caption": "Green is the new black.",
	"hashtags": ["#matcha"],
	"narrative": "a day built around matcha",
	"mood": "calm",
	"palette": "soft greens",
	"slideDescriptions": ["whisking", "pouring", "latte art", "first sip"]
}`

func newContentService(client genai.Client) ContentServiceInterface {
	return NewContentService(client, testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics())
}

func TestGenerateTrendContent_SearchGrounded(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, req genai.TextRequest) (*genai.TextResult, error) {
			assert.True(t, req.GroundInSearch)
			return &genai.TextResult{Text: trendJSON, SourceURLs: []string{"https://example.com/a"}}, nil
		},
	}

	trend, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid2x2,
	})

	require.NoError(t, err)
	assert.Equal(t, "matcha everything", trend.Topic)
	assert.Equal(t, []string{"https://example.com/a"}, trend.SourceURLs)
	assert.Len(t, trend.SlideDescriptions, 4)
	assert.Equal(t, 1, client.TextCallCount())
}

func TestGenerateTrendContent_FallsBackToKnowledge(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, req genai.TextRequest) (*genai.TextResult, error) {
			if req.GroundInSearch {
				return nil, errors.New("connection refused")
			}
			assert.True(t, req.WantJSON)
			return &genai.TextResult{Text: trendJSON}, nil
		},
	}

	trend, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid2x2,
	})

	require.NoError(t, err)
	assert.Equal(t, "matcha everything", trend.Topic)
	// 3 failed grounded attempts, then 1 knowledge success.
	assert.Equal(t, 4, client.TextCallCount())
}

func TestGenerateTrendContent_ArticlePathSingleStrategy(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, req genai.TextRequest) (*genai.TextResult, error) {
			assert.False(t, req.GroundInSearch)
			assert.Contains(t, req.Prompt, "Rare bean auction")
			return &genai.TextResult{Text: trendJSON}, nil
		},
	}

	trend, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid2x2,
		Article: &models.NewsArticle{
			ID:       "a1",
			Headline: "Rare bean auction breaks records",
			Summary:  "A rare lot sold for a record price.",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "matcha everything", trend.Topic)
	assert.Equal(t, 1, client.TextCallCount())
}

func TestGenerateTrendContent_PadsTo3x3(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, _ genai.TextRequest) (*genai.TextResult, error) {
			return &genai.TextResult{Text: trendJSON}, nil
		},
	}

	trend, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid3x3,
	})

	require.NoError(t, err)
	assert.Len(t, trend.SlideDescriptions, 9)
}

func TestGenerateTrendContent_AuthErrorNotRetried(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, _ genai.TextRequest) (*genai.TextResult, error) {
			return nil, errors.New("401 unauthorized")
		},
	}

	_, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid2x2,
	})

	require.Error(t, err)
	// One grounded attempt plus one knowledge attempt, no retries.
	assert.Equal(t, 2, client.TextCallCount())

	var classified *genai.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, genai.KindAuth, classified.Kind)
}

func TestGenerateTrendContent_MalformedResponse(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, _ genai.TextRequest) (*genai.TextResult, error) {
			return &genai.TextResult{Text: "I refuse to answer in JSON."}, nil
		},
	}

	_, err := newContentService(client).GenerateTrendContent(context.Background(), ContentRequest{
		Niche: "coffee",
		Grid:  models.Grid2x2,
	})

	require.Error(t, err)
	var classified *genai.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, genai.KindParsing, classified.Kind)
}

func TestGeneratePersona_FourOptionsAlways(t *testing.T) {
	client := &testutil.MockGenAIClient{
		TextFn: func(_ context.Context, _ genai.TextRequest) (*genai.TextResult, error) {
			return &genai.TextResult{Text: `{
				"name": "Juno Vale",
				"bio": "Chasing light through city streets.",
				"personality": "dry-witted and observant",
				"visualOptions": [
					{"label": "noir portrait", "description": "high-contrast monochrome portrait"}
				]
			}`}, nil
		},
	}
	svc := NewPersonaService(client, testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics())

	persona, err := svc.GeneratePersona(context.Background(), "street photography")

	require.NoError(t, err)
	assert.Equal(t, "Juno Vale", persona.Name)
	assert.Equal(t, "street photography", persona.Niche)
	require.Len(t, persona.VisualOptions, 4)
	assert.Equal(t, "noir portrait", persona.VisualOptions[0].Label)
}
