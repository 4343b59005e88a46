package genai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is an alternate text backend for knowledge-only generation.
// It supports neither search grounding nor composite image output, so a
// deployment selecting it runs every content path on the fallback strategy
// and the image grid degrades to placeholders.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

func (o *OpenAIClient) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	if req.GroundInSearch {
		return nil, NewError(KindParsing, "text.generate", fmt.Errorf("openai backend does not support search grounding"))
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}
	if req.WantJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &TextResult{Text: resp.Choices[0].Message.Content}, nil
}

func (o *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	return nil, NewError(KindParsing, "image.generate", fmt.Errorf("openai backend does not produce inline composite images"))
}
