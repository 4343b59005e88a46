package genai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_GroundedTextIsTerminal(t *testing.T) {
	client := NewOpenAIClient("test-key")

	_, err := client.GenerateText(context.Background(), TextRequest{
		Prompt:         "find trending topics",
		GroundInSearch: true,
	})

	require.Error(t, err)
	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindParsing, classified.Kind)
	assert.False(t, classified.Retryable())
}

func TestOpenAIClient_CompositeImageIsTerminal(t *testing.T) {
	client := NewOpenAIClient("test-key")

	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a 2x2 grid"})

	require.Error(t, err)
	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindParsing, classified.Kind)
	assert.False(t, classified.Retryable())
}
