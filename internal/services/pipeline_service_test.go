package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpilot/internal/checkpoint"
	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/testutil"
)

// --- local stubs (scoped to orchestrator tests) ---

type stubContentService struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, req ContentRequest) (*models.GeneratedTrend, error)
}

func (s *stubContentService) GenerateTrendContent(ctx context.Context, req ContentRequest) (*models.GeneratedTrend, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(ctx, req)
	}
	trend := &models.GeneratedTrend{Topic: "stub trend"}
	trend.Normalize(req.Grid)
	return trend, nil
}

func (s *stubContentService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubImageService struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, req GridRequest) ([]models.GeneratedImage, error)
}

func (s *stubImageService) GenerateGrid(ctx context.Context, req GridRequest) ([]models.GeneratedImage, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(ctx, req)
	}
	panels := make([]models.GeneratedImage, req.Grid.Panels())
	for i := range panels {
		panels[i] = models.GeneratedImage{Data: []byte{byte(i)}, MIMEType: "image/png"}
	}
	return panels, nil
}

type stubNewsService struct {
	articles map[string]*models.NewsArticle
}

func (s *stubNewsService) FetchNews(context.Context, string, bool) ([]models.NewsArticle, error) {
	return nil, nil
}

func (s *stubNewsService) Article(_ context.Context, _, articleID string) (*models.NewsArticle, error) {
	if a, ok := s.articles[articleID]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("article %s not found", articleID)
}

type stubPersonaService struct {
	fn func(ctx context.Context, niche string) (*models.Persona, error)
}

func (s *stubPersonaService) GeneratePersona(ctx context.Context, niche string) (*models.Persona, error) {
	if s.fn != nil {
		return s.fn(ctx, niche)
	}
	p := &models.Persona{Name: "Stub Creator"}
	p.Normalize(niche)
	return p, nil
}

// --- fixture ---

type pipelineFixture struct {
	content *stubContentService
	images  *stubImageService
	news    *stubNewsService
	persona *stubPersonaService
	store   *checkpoint.Store
	docs    *testutil.MockDocumentStore
	blobs   *testutil.MockBlobStore
	metrics *testutil.MockMetrics
	svc     PipelineServiceInterface
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	store, err := checkpoint.NewStoreInMemory(time.Hour, &testutil.MockCompressor{}, &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &pipelineFixture{
		content: &stubContentService{},
		images:  &stubImageService{},
		news:    &stubNewsService{articles: make(map[string]*models.NewsArticle)},
		persona: &stubPersonaService{},
		store:   store,
		docs:    testutil.NewMockDocumentStore(),
		blobs:   testutil.NewMockBlobStore(),
		metrics: testutil.NewMockMetrics(),
	}
	f.svc = NewPipelineService(f.content, f.images, f.news, f.persona, store, f.docs, f.blobs, testConfig(), &testutil.MockLogger{}, f.metrics)
	return f
}

func postRequest(owner string) PostRequest {
	return PostRequest{
		OwnerID:  owner,
		Identity: models.Identity{ID: owner, Name: "Maya"},
		Niche:    "coffee",
		Grid:     models.Grid2x2,
	}
}

// --- post pipeline ---

func TestRunPost_HappyPath(t *testing.T) {
	f := newPipelineFixture(t)

	post, err := f.svc.RunPost(context.Background(), postRequest("alice"))

	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "alice", post.OwnerID)
	assert.Equal(t, "stub trend", post.Topic)
	assert.Len(t, post.ImageURLs, 4)
	assert.Len(t, f.blobs.Uploads, 4)

	require.Len(t, f.docs.Posts, 1)
	assert.Empty(t, f.docs.LinkCalls)

	// Terminal success clears the checkpoint.
	assert.Nil(t, f.store.Load(models.CheckpointKey{Kind: models.KindPost, OwnerID: "alice"}))
	assert.Equal(t, 1, f.metrics.Outcomes["post:completed"])
}

func TestRunPost_ArticleGroundedLinksUsage(t *testing.T) {
	f := newPipelineFixture(t)
	f.news.articles["a1"] = &models.NewsArticle{ID: "a1", Niche: "coffee", Headline: "news"}

	req := postRequest("alice")
	req.ArticleID = "a1"

	post, err := f.svc.RunPost(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "a1", post.ArticleID)
	require.Len(t, f.docs.LinkCalls, 1)
	assert.Equal(t, "a1", f.docs.LinkCalls[0].ArticleID)
	assert.Equal(t, "alice", f.docs.LinkCalls[0].Ref.OwnerID)
}

func TestRunPost_ArticleAlreadyUsedByOwner(t *testing.T) {
	f := newPipelineFixture(t)
	f.news.articles["a1"] = &models.NewsArticle{
		ID:     "a1",
		UsedIn: []models.UsageRef{{PostID: "old", OwnerID: "alice"}},
	}

	req := postRequest("alice")
	req.ArticleID = "a1"

	_, err := f.svc.RunPost(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, f.docs.Posts)
}

func TestRunPost_ImageFailureLeavesCheckpoint(t *testing.T) {
	f := newPipelineFixture(t)
	f.images.fn = func(context.Context, GridRequest) ([]models.GeneratedImage, error) {
		return nil, genai.NewError(genai.KindTimeout, "image.grid", context.DeadlineExceeded)
	}

	_, err := f.svc.RunPost(context.Background(), postRequest("alice"))

	require.Error(t, err)
	var classified *genai.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, genai.KindTimeout, classified.Kind)

	cp := f.store.Load(models.CheckpointKey{Kind: models.KindPost, OwnerID: "alice"})
	require.NotNil(t, cp)
	assert.Equal(t, models.StepImages, cp.Step)
	require.NotNil(t, cp.Content)
	assert.Equal(t, "stub trend", cp.Content.Topic)
	assert.Equal(t, 1, f.metrics.Outcomes["post:failed"])
}

func TestResumePost_SkipsCompletedSteps(t *testing.T) {
	f := newPipelineFixture(t)
	f.images.fn = func(context.Context, GridRequest) ([]models.GeneratedImage, error) {
		return nil, genai.NewError(genai.KindTimeout, "image.grid", context.DeadlineExceeded)
	}
	_, err := f.svc.RunPost(context.Background(), postRequest("alice"))
	require.Error(t, err)
	require.Equal(t, 1, f.content.callCount())

	// The transient fault clears; resume finishes from the images step.
	f.images.fn = nil
	post, err := f.svc.ResumePost(context.Background(), "alice")

	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "stub trend", post.Topic)
	assert.Len(t, post.ImageURLs, 4)

	// Content was never regenerated.
	assert.Equal(t, 1, f.content.callCount())
	assert.Equal(t, 1, f.metrics.Resumed["post"])
	assert.Nil(t, f.store.Load(models.CheckpointKey{Kind: models.KindPost, OwnerID: "alice"}))
}

func TestResumePost_NoCheckpoint(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.svc.ResumePost(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, 0, f.metrics.Resumed["post"])
}

func TestRunPost_UploadFailureLeavesCheckpointAtUpload(t *testing.T) {
	f := newPipelineFixture(t)
	f.blobs.UploadErr = errors.New("bucket unavailable")

	_, err := f.svc.RunPost(context.Background(), postRequest("alice"))

	require.Error(t, err)
	cp := f.store.Load(models.CheckpointKey{Kind: models.KindPost, OwnerID: "alice"})
	require.NotNil(t, cp)
	assert.Equal(t, models.StepUpload, cp.Step)
	require.Len(t, cp.Images, 4)
	assert.Empty(t, f.docs.Posts)
}

func TestRunPost_FreshRunDiscardsOldCheckpoint(t *testing.T) {
	f := newPipelineFixture(t)
	f.store.Save(&models.Checkpoint{
		Kind:      models.KindPost,
		OwnerID:   "alice",
		CreatedAt: time.Now(),
		Step:      models.StepUpload,
		Grid:      models.Grid2x2,
	})

	post, err := f.svc.RunPost(context.Background(), postRequest("alice"))

	require.NoError(t, err)
	require.NotNil(t, post)
	// The stale upload-step record was discarded: a fresh run starts at
	// content generation.
	assert.Equal(t, 1, f.content.callCount())
}

func TestRunPost_SecondRunWhileFirstInFlight(t *testing.T) {
	f := newPipelineFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.content.fn = func(_ context.Context, req ContentRequest) (*models.GeneratedTrend, error) {
		close(started)
		<-release
		trend := &models.GeneratedTrend{Topic: "slow"}
		trend.Normalize(req.Grid)
		return trend, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.RunPost(context.Background(), postRequest("alice"))
		done <- err
	}()

	<-started
	_, err := f.svc.ResumePost(context.Background(), "alice")
	assert.Error(t, err)

	close(release)
	require.NoError(t, <-done)
}

// --- persona pipeline ---

func TestRunPersona_HappyPath(t *testing.T) {
	f := newPipelineFixture(t)

	influencer, err := f.svc.RunPersona(context.Background(), PersonaRequest{
		OwnerID:        "alice",
		Niche:          "fitness",
		SelectedVisual: 2,
	})

	require.NoError(t, err)
	require.NotNil(t, influencer)
	assert.Equal(t, "Stub Creator", influencer.Persona.Name)
	require.Len(t, influencer.AvatarURLs, 4)
	assert.Equal(t, influencer.AvatarURLs[2], influencer.AvatarURL)

	require.Len(t, f.docs.Influencers, 1)
	assert.Nil(t, f.store.Load(models.CheckpointKey{Kind: models.KindPersona, OwnerID: "alice"}))
	assert.Equal(t, 1, f.metrics.Outcomes["persona:completed"])
}

func TestRunPersona_OutOfRangeSelectionFallsBackToFirst(t *testing.T) {
	f := newPipelineFixture(t)

	influencer, err := f.svc.RunPersona(context.Background(), PersonaRequest{
		OwnerID:        "alice",
		Niche:          "fitness",
		SelectedVisual: 9,
	})

	require.NoError(t, err)
	assert.Equal(t, influencer.AvatarURLs[0], influencer.AvatarURL)
}

func TestRunPersona_VisualFailureThenResume(t *testing.T) {
	f := newPipelineFixture(t)
	f.images.fn = func(context.Context, GridRequest) ([]models.GeneratedImage, error) {
		return nil, genai.NewError(genai.KindNetwork, "image.grid", errors.New("connection reset"))
	}

	_, err := f.svc.RunPersona(context.Background(), PersonaRequest{OwnerID: "alice", Niche: "fitness", SelectedVisual: 1})
	require.Error(t, err)

	cp := f.store.Load(models.CheckpointKey{Kind: models.KindPersona, OwnerID: "alice"})
	require.NotNil(t, cp)
	assert.Equal(t, models.StepVisuals, cp.Step)
	require.NotNil(t, cp.Persona)
	assert.Equal(t, 1, cp.SelectedVisual)

	f.images.fn = nil
	influencer, err := f.svc.ResumePersona(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, influencer.AvatarURLs[1], influencer.AvatarURL)
	assert.Equal(t, 1, f.metrics.Resumed["persona"])
}

func TestRunPersona_VisualsUseAllFourOptions(t *testing.T) {
	f := newPipelineFixture(t)
	var gotPrompts []string
	f.images.fn = func(_ context.Context, req GridRequest) ([]models.GeneratedImage, error) {
		gotPrompts = req.Prompts
		assert.Equal(t, models.Grid2x2, req.Grid)
		panels := make([]models.GeneratedImage, 4)
		for i := range panels {
			panels[i] = models.GeneratedImage{Data: []byte{byte(i)}, MIMEType: "image/png"}
		}
		return panels, nil
	}

	_, err := f.svc.RunPersona(context.Background(), PersonaRequest{OwnerID: "alice", Niche: "fitness"})

	require.NoError(t, err)
	assert.Len(t, gotPrompts, 4)
}

func TestCheckpointsAndDiscard(t *testing.T) {
	f := newPipelineFixture(t)
	f.store.Save(&models.Checkpoint{
		Kind: models.KindPost, OwnerID: "alice", CreatedAt: time.Now(), Step: models.StepImages,
	})

	require.Len(t, f.svc.Checkpoints(), 1)

	f.svc.DiscardCheckpoint(models.CheckpointKey{Kind: models.KindPost, OwnerID: "alice"})
	assert.Empty(t, f.svc.Checkpoints())
}
