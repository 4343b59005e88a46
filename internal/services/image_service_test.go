package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/testutil"
)

func newImageService(client genai.Client) ImageServiceInterface {
	return NewImageService(client, testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics())
}

func TestGenerateGrid_SplitsComposite(t *testing.T) {
	composite := compositePNG(t, 200, 200, 2, 2)
	client := &testutil.MockGenAIClient{
		ImageFn: func(_ context.Context, req genai.ImageRequest) (*genai.ImageResult, error) {
			assert.Contains(t, req.Prompt, "2x2 grid")
			return &genai.ImageResult{Data: composite, MIMEType: "image/png"}, nil
		},
	}

	panels, err := newImageService(client).GenerateGrid(context.Background(), GridRequest{
		Grid:    models.Grid2x2,
		Prompts: []string{"a", "b", "c", "d"},
	})

	require.NoError(t, err)
	require.Len(t, panels, 4)
	for _, panel := range panels {
		assert.False(t, panel.Placeholder)
	}
}

func TestGenerateGrid_TrendPromptCarriesBeats(t *testing.T) {
	composite := compositePNG(t, 300, 300, 3, 3)
	var prompt string
	client := &testutil.MockGenAIClient{
		ImageFn: func(_ context.Context, req genai.ImageRequest) (*genai.ImageResult, error) {
			prompt = req.Prompt
			return &genai.ImageResult{Data: composite, MIMEType: "image/png"}, nil
		},
	}

	trend := &models.GeneratedTrend{Topic: "night markets"}
	trend.Normalize(models.Grid3x3)

	panels, err := newImageService(client).GenerateGrid(context.Background(), GridRequest{
		Grid:  models.Grid3x3,
		Trend: trend,
	})

	require.NoError(t, err)
	assert.Len(t, panels, 9)
	assert.Contains(t, prompt, "Panel 1 (opening)")
	assert.Contains(t, prompt, "Panel 9 (closing)")
	assert.Contains(t, prompt, "no two neighboring panels")
}

func TestGenerateGrid_TerminalFaultDegradesToPlaceholders(t *testing.T) {
	client := &testutil.MockGenAIClient{
		ImageFn: func(_ context.Context, _ genai.ImageRequest) (*genai.ImageResult, error) {
			return nil, genai.NewError(genai.KindParsing, "image.generate", errors.New("no image payload"))
		},
	}

	panels, err := newImageService(client).GenerateGrid(context.Background(), GridRequest{
		Grid:    models.Grid2x2,
		Prompts: []string{"a", "b", "c", "d"},
	})

	require.NoError(t, err)
	require.Len(t, panels, 4)
	for _, panel := range panels {
		assert.True(t, panel.Placeholder)
	}
}

func TestGenerateGrid_UndecodableCompositeDegrades(t *testing.T) {
	client := &testutil.MockGenAIClient{
		ImageFn: func(_ context.Context, _ genai.ImageRequest) (*genai.ImageResult, error) {
			return &genai.ImageResult{Data: []byte("garbage"), MIMEType: "image/png"}, nil
		},
	}

	panels, err := newImageService(client).GenerateGrid(context.Background(), GridRequest{
		Grid:    models.Grid2x2,
		Prompts: []string{"a", "b", "c", "d"},
	})

	require.NoError(t, err)
	require.Len(t, panels, 4)
	assert.True(t, panels[0].Placeholder)
}

func TestGenerateGrid_TransientFaultSurfaces(t *testing.T) {
	calls := 0
	client := &testutil.MockGenAIClient{
		ImageFn: func(_ context.Context, _ genai.ImageRequest) (*genai.ImageResult, error) {
			calls++
			return nil, errors.New("quota exceeded")
		},
	}

	panels, err := newImageService(client).GenerateGrid(context.Background(), GridRequest{
		Grid:    models.Grid2x2,
		Prompts: []string{"a", "b", "c", "d"},
	})

	require.Error(t, err)
	assert.Nil(t, panels)
	// Image calls get the expensive budget: 2 attempts.
	assert.Equal(t, 2, calls)

	var classified *genai.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, genai.KindQuota, classified.Kind)
}
