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

// GridRequest describes one composite-image generation. Exactly one of
// Prompts (flat per-panel texts) or Trend (rich narrative context plus
// ordered story beats) is set.
type GridRequest struct {
	Grid     models.GridShape
	Prompts  []string
	Trend    *models.GeneratedTrend
	Identity models.Identity
}

type ImageServiceInterface interface {
	// GenerateGrid returns exactly Grid.Panels() images. When the retry
	// budget is exhausted on a terminal fault (the service answered but
	// the response is unusable), it degrades to placeholder panels and
	// returns no error: retrying cannot help, substitution can. A
	// transient fault (timeout, quota, network) is returned instead so
	// the caller can keep its checkpoint and resume later.
	GenerateGrid(ctx context.Context, req GridRequest) ([]models.GeneratedImage, error)
}

type ImageService struct {
	runner *generationRunner
	conf   *structures.Config
	logger providers.Logger
}

func NewImageService(client genai.Client, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ImageServiceInterface {
	return &ImageService{
		runner: newGenerationRunner(client, conf, logger, metrics),
		conf:   conf,
		logger: logger,
	}
}

func (s *ImageService) GenerateGrid(ctx context.Context, req GridRequest) ([]models.GeneratedImage, error) {
	prompt := s.composePrompt(req)

	result, err := s.runner.image(ctx, "image.grid", genai.ImageRequest{
		Model:  s.conf.Generation.ImageModel,
		Prompt: prompt,
	})
	if err == nil {
		panels, splitErr := SplitComposite(result.Data, req.Grid)
		if splitErr == nil {
			return panels, nil
		}
		s.logger.Errorf(providers.TypeGenAI, "Composite split failed: %s", splitErr)
		// The service answered but the payload is unusable. That is a
		// response-shape fault, not transience.
		err = genai.NewError(genai.KindParsing, "image.grid", splitErr)
	}

	classified := genai.Classify("image.grid", err)
	if classified.Retryable() {
		// Leave the decision to the orchestrator: its checkpoint lets a
		// later resume re-run this step instead of baking placeholders
		// into the post over a transient fault.
		s.logger.Errorf(providers.TypeGenAI, "Image grid generation failed after retries: %s", classified)
		return nil, classified
	}

	s.logger.Warnf(providers.TypeGenAI, "Image grid unrecoverable (%s), degrading to %d placeholder panels", classified.Kind, req.Grid.Panels())
	return PlaceholderPanels(req.Grid), nil
}

// positionLabel names a panel's place in the story arc.
func positionLabel(index, total int) string {
	switch {
	case index == 0:
		return "opening"
	case index == total-1:
		return "closing"
	default:
		return "middle"
	}
}

func (s *ImageService) composePrompt(req GridRequest) string {
	rows, cols := req.Grid.Rows(), req.Grid.Cols()
	var b strings.Builder

	fmt.Fprintf(&b,
		"Generate a single square composite image divided into a %dx%d grid of %d panels separated by thin white dividers. "+
			"Panels are ordered left to right, top to bottom.\n\n",
		rows, cols, rows*cols)

	if req.Trend != nil {
		fmt.Fprintf(&b, "The grid tells one visual story: %s\n", req.Trend.Narrative)
		fmt.Fprintf(&b, "Mood: %s. Palette: %s.\n", req.Trend.Mood, req.Trend.Palette)
		if req.Identity.VisualStyle != "" {
			fmt.Fprintf(&b, "Overall style: %s.\n", req.Identity.VisualStyle)
		}
		b.WriteString("\n")
		total := len(req.Trend.SlideDescriptions)
		for i, beat := range req.Trend.SlideDescriptions {
			fmt.Fprintf(&b, "Panel %d (%s): %s\n", i+1, positionLabel(i, total), beat)
		}
		b.WriteString(
			"\nVary camera distance, angle, lighting and technique between adjacent panels; " +
				"no two neighboring panels may repeat the same composition.\n")
		return b.String()
	}

	for i, prompt := range req.Prompts {
		fmt.Fprintf(&b, "Panel %d: %s\n", i+1, prompt)
	}
	return b.String()
}
