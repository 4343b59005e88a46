package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"postpilot/internal/checkpoint"
	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/storage"
	"postpilot/internal/structures"
)

// PostRequest starts (or restarts) a post-creation pipeline.
type PostRequest struct {
	OwnerID  string
	Identity models.Identity
	Niche    string
	Grid     models.GridShape
	// ArticleID selects a cached news article as the grounding context.
	ArticleID string
}

// PersonaRequest starts (or restarts) a persona-creation pipeline.
type PersonaRequest struct {
	OwnerID string
	Niche   string
	// SelectedVisual picks which of the four avatar options becomes the
	// primary avatar.
	SelectedVisual int
}

type PipelineServiceInterface interface {
	// RunPost starts a fresh post pipeline, discarding any live
	// checkpoint for the owner. Use ResumePost to continue one instead.
	RunPost(ctx context.Context, req PostRequest) (*models.Post, error)
	ResumePost(ctx context.Context, ownerID string) (*models.Post, error)
	RunPersona(ctx context.Context, req PersonaRequest) (*models.Influencer, error)
	ResumePersona(ctx context.Context, ownerID string) (*models.Influencer, error)
	Checkpoints() []*models.Checkpoint
	DiscardCheckpoint(key models.CheckpointKey)
}

type PipelineService struct {
	content ContentServiceInterface
	images  ImageServiceInterface
	news    NewsServiceInterface
	persona PersonaServiceInterface
	store   checkpoint.StoreInterface
	docs    storage.DocumentStoreInterface
	blobs   storage.BlobStoreInterface
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu       sync.Mutex
	inFlight map[models.CheckpointKey]struct{}
}

func NewPipelineService(
	content ContentServiceInterface,
	images ImageServiceInterface,
	news NewsServiceInterface,
	persona PersonaServiceInterface,
	store checkpoint.StoreInterface,
	docs storage.DocumentStoreInterface,
	blobs storage.BlobStoreInterface,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) PipelineServiceInterface {
	return &PipelineService{
		content:  content,
		images:   images,
		news:     news,
		persona:  persona,
		store:    store,
		docs:     docs,
		blobs:    blobs,
		conf:     conf,
		logger:   logger,
		metrics:  metrics,
		inFlight: make(map[models.CheckpointKey]struct{}),
	}
}

// pipelineStep is one named stage. The accumulated state is the
// checkpoint itself; results that outlive the pipeline land on run.
type pipelineStep struct {
	name models.Step
	exec func(ctx context.Context, run *pipelineRun) error
}

type pipelineRun struct {
	cp         *models.Checkpoint
	post       *models.Post
	influencer *models.Influencer
	identity   models.Identity
	selected   int
}

// acquire enforces at most one in-flight pipeline per (kind, owner).
func (s *PipelineService) acquire(key models.CheckpointKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *PipelineService) release(key models.CheckpointKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// execute drives run.cp through steps, starting at the checkpoint's
// current step. A checkpoint is written after every completed step and
// before the next one begins, so a crash between steps always leaves a
// record reflecting "step N complete". On failure the checkpoint is
// left in place; only the caller may discard it.
func (s *PipelineService) execute(ctx context.Context, run *pipelineRun, steps []pipelineStep) error {
	key := run.cp.Key()
	if !s.acquire(key) {
		return fmt.Errorf("a %s pipeline is already running for %s", key.Kind, key.OwnerID)
	}
	defer s.release(key)

	start := models.StepIndex(run.cp.Kind, run.cp.Step)
	if start < 0 {
		return fmt.Errorf("checkpoint for %s/%s has unknown step %q", key.Kind, key.OwnerID, run.cp.Step)
	}

	for i := start; i < len(steps); i++ {
		step := steps[i]
		s.logger.Infof(providers.TypePipeline, "%s pipeline for %s: step %s", run.cp.Kind, key.OwnerID, step.name)

		began := time.Now()
		err := step.exec(ctx, run)
		s.metrics.ObserveStepDuration(string(run.cp.Kind), string(step.name), time.Since(began))
		if err != nil {
			s.metrics.IncPipelineOutcome(string(run.cp.Kind), "failed")
			s.logger.Errorf(providers.TypePipeline, "%s pipeline for %s failed at %s: %s", run.cp.Kind, key.OwnerID, step.name, err)
			return err
		}

		if i+1 < len(steps) {
			run.cp.Step = steps[i+1].name
			s.store.Save(run.cp)
		}
	}

	s.store.Clear(key)
	s.metrics.IncPipelineOutcome(string(run.cp.Kind), "completed")
	s.logger.Infof(providers.TypePipeline, "%s pipeline for %s completed", run.cp.Kind, key.OwnerID)
	return nil
}

func (s *PipelineService) RunPost(ctx context.Context, req PostRequest) (*models.Post, error) {
	if !req.Grid.Valid() {
		req.Grid = models.Grid2x2
	}
	key := models.CheckpointKey{Kind: models.KindPost, OwnerID: req.OwnerID}
	// Starting fresh is an explicit user choice over resuming.
	s.store.Clear(key)

	run := &pipelineRun{
		cp: &models.Checkpoint{
			Kind:      models.KindPost,
			OwnerID:   req.OwnerID,
			OwnerName: req.Identity.Name,
			CreatedAt: time.Now(),
			Step:      models.StepContent,
			Grid:      req.Grid,
			Niche:     req.Niche,
			ArticleID: req.ArticleID,
		},
		identity: req.Identity,
	}
	if err := s.execute(ctx, run, s.postSteps()); err != nil {
		return nil, err
	}
	return run.post, nil
}

func (s *PipelineService) ResumePost(ctx context.Context, ownerID string) (*models.Post, error) {
	key := models.CheckpointKey{Kind: models.KindPost, OwnerID: ownerID}
	cp := s.store.Load(key)
	if cp == nil {
		return nil, fmt.Errorf("no live post checkpoint for %s", ownerID)
	}
	s.metrics.IncPipelineResumed(string(models.KindPost))
	s.logger.Infof(providers.TypePipeline, "Resuming post pipeline for %s at step %s", ownerID, cp.Step)

	run := &pipelineRun{
		cp:       cp,
		identity: models.Identity{ID: cp.OwnerID, Name: cp.OwnerName},
	}
	if err := s.execute(ctx, run, s.postSteps()); err != nil {
		return nil, err
	}
	return run.post, nil
}

func (s *PipelineService) postSteps() []pipelineStep {
	return []pipelineStep{
		{name: models.StepContent, exec: s.stepContent},
		{name: models.StepImages, exec: s.stepImages},
		{name: models.StepUpload, exec: s.stepUpload},
	}
}

func (s *PipelineService) stepContent(ctx context.Context, run *pipelineRun) error {
	req := ContentRequest{
		Niche:    run.cp.Niche,
		Identity: run.identity,
		Grid:     run.cp.Grid,
	}
	if run.cp.ArticleID != "" {
		article, err := s.news.Article(ctx, run.cp.Niche, run.cp.ArticleID)
		if err != nil {
			return err
		}
		if article.UsedBy(run.cp.OwnerID) {
			return fmt.Errorf("article %s already used by %s", article.ID, run.cp.OwnerID)
		}
		req.Article = article
	}

	trend, err := s.content.GenerateTrendContent(ctx, req)
	if err != nil {
		return err
	}
	run.cp.Content = trend
	return nil
}

func (s *PipelineService) stepImages(ctx context.Context, run *pipelineRun) error {
	if run.cp.Content == nil {
		return fmt.Errorf("checkpoint missing generated content")
	}
	panels, err := s.images.GenerateGrid(ctx, GridRequest{
		Grid:     run.cp.Grid,
		Trend:    run.cp.Content,
		Identity: run.identity,
	})
	if err != nil {
		return err
	}
	run.cp.Images = panels
	return nil
}

func (s *PipelineService) stepUpload(ctx context.Context, run *pipelineRun) error {
	if len(run.cp.Images) == 0 {
		return fmt.Errorf("checkpoint missing generated images")
	}

	postID := uuid.NewString()
	urls, err := s.uploadPanels(ctx, fmt.Sprintf("posts/%s/%s", run.cp.OwnerID, postID), run.cp.Images)
	if err != nil {
		return err
	}

	post := &models.Post{
		ID:         postID,
		OwnerID:    run.cp.OwnerID,
		Influencer: run.cp.OwnerName,
		Topic:      run.cp.Content.Topic,
		Caption:    run.cp.Content.Caption,
		Hashtags:   run.cp.Content.Hashtags,
		ImageURLs:  urls,
		Grid:       run.cp.Grid,
		ArticleID:  run.cp.ArticleID,
		SourceURLs: run.cp.Content.SourceURLs,
		CreatedAt:  time.Now(),
	}
	if err := s.docs.SavePost(ctx, post); err != nil {
		return err
	}

	if run.cp.ArticleID != "" {
		ref := models.UsageRef{PostID: post.ID, OwnerID: run.cp.OwnerID}
		if err := s.docs.LinkArticleUsage(ctx, run.cp.Niche, run.cp.ArticleID, ref); err != nil {
			// The post is saved; a missing usage link only weakens the
			// duplicate-use check.
			s.logger.Warnf(providers.TypeStorage, "Failed to link article usage: %s", err)
		}
	}

	run.post = post
	return nil
}

// uploadPanels pushes every panel to the blob store concurrently and
// returns their URLs in panel order.
func (s *PipelineService) uploadPanels(ctx context.Context, prefix string, panels []models.GeneratedImage) ([]string, error) {
	urls := make([]string, len(panels))
	g, ctx := errgroup.WithContext(ctx)
	for i := range panels {
		g.Go(func() error {
			path := fmt.Sprintf("%s/panel-%d.png", prefix, i)
			url, err := s.blobs.Upload(ctx, path, panels[i].Data, panels[i].MIMEType)
			if err != nil {
				return fmt.Errorf("failed to upload panel %d: %w", i, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *PipelineService) RunPersona(ctx context.Context, req PersonaRequest) (*models.Influencer, error) {
	key := models.CheckpointKey{Kind: models.KindPersona, OwnerID: req.OwnerID}
	s.store.Clear(key)

	run := &pipelineRun{
		cp: &models.Checkpoint{
			Kind:           models.KindPersona,
			OwnerID:        req.OwnerID,
			CreatedAt:      time.Now(),
			Step:           models.StepPersona,
			Niche:          req.Niche,
			SelectedVisual: req.SelectedVisual,
		},
		selected: req.SelectedVisual,
	}
	if err := s.execute(ctx, run, s.personaSteps()); err != nil {
		return nil, err
	}
	return run.influencer, nil
}

func (s *PipelineService) ResumePersona(ctx context.Context, ownerID string) (*models.Influencer, error) {
	key := models.CheckpointKey{Kind: models.KindPersona, OwnerID: ownerID}
	cp := s.store.Load(key)
	if cp == nil {
		return nil, fmt.Errorf("no live persona checkpoint for %s", ownerID)
	}
	s.metrics.IncPipelineResumed(string(models.KindPersona))
	s.logger.Infof(providers.TypePipeline, "Resuming persona pipeline for %s at step %s", ownerID, cp.Step)

	run := &pipelineRun{cp: cp, selected: cp.SelectedVisual}
	if err := s.execute(ctx, run, s.personaSteps()); err != nil {
		return nil, err
	}
	return run.influencer, nil
}

func (s *PipelineService) personaSteps() []pipelineStep {
	return []pipelineStep{
		{name: models.StepPersona, exec: s.stepPersona},
		{name: models.StepVisuals, exec: s.stepVisuals},
	}
}

func (s *PipelineService) stepPersona(ctx context.Context, run *pipelineRun) error {
	persona, err := s.persona.GeneratePersona(ctx, run.cp.Niche)
	if err != nil {
		return err
	}
	run.cp.Persona = persona
	return nil
}

// stepVisuals renders the four avatar options as one 2x2 composite,
// uploads the split panels and persists the influencer record.
func (s *PipelineService) stepVisuals(ctx context.Context, run *pipelineRun) error {
	if run.cp.Persona == nil {
		return fmt.Errorf("checkpoint missing generated persona")
	}

	prompts := make([]string, 0, len(run.cp.Persona.VisualOptions))
	for _, option := range run.cp.Persona.VisualOptions {
		prompts = append(prompts, option.Description)
	}
	panels, err := s.images.GenerateGrid(ctx, GridRequest{
		Grid:    models.Grid2x2,
		Prompts: prompts,
	})
	if err != nil {
		return err
	}

	influencerID := uuid.NewString()
	urls, err := s.uploadPanels(ctx, fmt.Sprintf("avatars/%s/%s", run.cp.OwnerID, influencerID), panels)
	if err != nil {
		return err
	}

	selected := run.selected
	if selected < 0 || selected >= len(urls) {
		selected = 0
	}
	influencer := &models.Influencer{
		ID:         influencerID,
		OwnerID:    run.cp.OwnerID,
		Persona:    *run.cp.Persona,
		AvatarURL:  urls[selected],
		AvatarURLs: urls,
		CreatedAt:  time.Now(),
	}
	if err := s.docs.SaveInfluencer(ctx, influencer); err != nil {
		return err
	}

	run.influencer = influencer
	return nil
}

func (s *PipelineService) Checkpoints() []*models.Checkpoint {
	return s.store.ListAll()
}

func (s *PipelineService) DiscardCheckpoint(key models.CheckpointKey) {
	s.store.Clear(key)
}
