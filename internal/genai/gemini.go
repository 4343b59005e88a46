package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient talks to the Gemini generateContent REST API. It is the
// primary backend: the only one supporting search grounding and inline
// image output.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		client: &http.Client{
			// Upper bound for the transport only; per-call deadlines are
			// imposed by the timeout wrapper.
			Timeout: 120 * time.Second,
		},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        float32  `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiClient) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.GroundInSearch {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	cfg := &geminiGenerationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	// The API rejects responseMimeType combined with search tools.
	if req.WantJSON && !req.GroundInSearch {
		cfg.ResponseMIMEType = "application/json"
	}
	body.GenerationConfig = cfg

	resp, err := g.call(ctx, req.Model, body)
	if err != nil {
		return nil, err
	}

	result := &TextResult{}
	for _, part := range resp.Candidates[0].Content.Parts {
		result.Text += part.Text
	}
	if result.Text == "" {
		return nil, fmt.Errorf("gemini returned no text parts")
	}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				result.SourceURLs = append(result.SourceURLs, chunk.Web.URI)
			}
		}
	}
	return result, nil
}

func (g *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	resp, err := g.call(ctx, req.Model, body)
	if err != nil {
		return nil, err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline image data: %w", err)
		}
		return &ImageResult{Data: raw, MIMEType: part.InlineData.MIMEType}, nil
	}
	// Surfaced as a Parsing (terminal) error by classification: a missing
	// payload means the response shape changed, not a transient fault.
	return nil, NewError(KindParsing, "image.generate", fmt.Errorf("no inline image payload in response"))
}

func (g *GeminiClient) call(ctx context.Context, model string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call gemini API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini API error %s: %s", parsed.Error.Status, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return &parsed, nil
}
