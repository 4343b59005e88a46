package genai

import "context"

// TextRequest asks the generation service for structured text output.
type TextRequest struct {
	Model  string
	Prompt string
	System string
	// GroundInSearch asks the service to ground the output in live web
	// results. Only the Gemini backend honors it.
	GroundInSearch bool
	// WantJSON constrains the response to a JSON payload where the
	// backend supports response-schema hints.
	WantJSON    bool
	Temperature float32
	MaxTokens   int
}

// TextResult is structured/JSON text plus any grounding source URLs the
// service reported.
type TextResult struct {
	Text       string
	SourceURLs []string
}

// ImageRequest asks for a single generated image.
type ImageRequest struct {
	Model  string
	Prompt string
}

// ImageResult carries the inline binary payload of a generated image.
type ImageResult struct {
	Data     []byte
	MIMEType string
}

// Client is the boundary to the generation service. Implementations
// surface quota, auth, network and malformed-response failures as plain
// errors; classification happens in the retry layer.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (*TextResult, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}
