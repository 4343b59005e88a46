package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockGenAIClient implements genai.Client with injectable behavior and
// call recording.
type MockGenAIClient struct {
	mu         sync.Mutex
	TextFn     func(ctx context.Context, req genai.TextRequest) (*genai.TextResult, error)
	ImageFn    func(ctx context.Context, req genai.ImageRequest) (*genai.ImageResult, error)
	TextCalls  []genai.TextRequest
	ImageCalls []genai.ImageRequest
}

func (m *MockGenAIClient) GenerateText(ctx context.Context, req genai.TextRequest) (*genai.TextResult, error) {
	m.mu.Lock()
	m.TextCalls = append(m.TextCalls, req)
	fn := m.TextFn
	m.mu.Unlock()
	if fn == nil {
		return &genai.TextResult{Text: "{}"}, nil
	}
	return fn(ctx, req)
}

func (m *MockGenAIClient) GenerateImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageResult, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	fn := m.ImageFn
	m.mu.Unlock()
	if fn == nil {
		return nil, genai.NewError(genai.KindParsing, "image.generate", fmt.Errorf("no image scripted"))
	}
	return fn(ctx, req)
}

func (m *MockGenAIClient) TextCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TextCalls)
}

// MockDocumentStore implements storage.DocumentStoreInterface in memory.
type MockDocumentStore struct {
	mu          sync.Mutex
	Influencers map[string]*models.Influencer
	Posts       map[string]*models.Post
	Metadata    map[string]*models.NewsFetchMetadata
	Articles    map[string][]models.NewsArticle // keyed by niche

	SaveInfluencerErr error
	SavePostErr       error
	MetadataErr       error
	ListArticlesErr   error
	LinkCalls         []LinkCall
}

type LinkCall struct {
	Niche     string
	ArticleID string
	Ref       models.UsageRef
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		Influencers: make(map[string]*models.Influencer),
		Posts:       make(map[string]*models.Post),
		Metadata:    make(map[string]*models.NewsFetchMetadata),
		Articles:    make(map[string][]models.NewsArticle),
	}
}

func (m *MockDocumentStore) SaveInfluencer(_ context.Context, inf *models.Influencer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveInfluencerErr != nil {
		return m.SaveInfluencerErr
	}
	m.Influencers[inf.ID] = inf
	return nil
}

func (m *MockDocumentStore) SavePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SavePostErr != nil {
		return m.SavePostErr
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockDocumentStore) ListPosts(_ context.Context, ownerID string, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.Posts {
		if p.OwnerID == ownerID && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockDocumentStore) NewsMetadata(_ context.Context, niche string) (*models.NewsFetchMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	return m.Metadata[niche], nil
}

func (m *MockDocumentStore) SetNewsMetadata(_ context.Context, meta *models.NewsFetchMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metadata[meta.Niche] = meta
	return nil
}

func (m *MockDocumentStore) SaveArticles(_ context.Context, articles []models.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		m.Articles[a.Niche] = append(m.Articles[a.Niche], a)
	}
	return nil
}

func (m *MockDocumentStore) ListArticles(_ context.Context, niche string, limit int) ([]models.NewsArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListArticlesErr != nil {
		return nil, m.ListArticlesErr
	}
	articles := m.Articles[niche]
	if len(articles) > limit {
		articles = articles[:limit]
	}
	out := make([]models.NewsArticle, len(articles))
	copy(out, articles)
	return out, nil
}

func (m *MockDocumentStore) LinkArticleUsage(_ context.Context, niche, articleID string, ref models.UsageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkCalls = append(m.LinkCalls, LinkCall{Niche: niche, ArticleID: articleID, Ref: ref})
	for i := range m.Articles[niche] {
		if m.Articles[niche][i].ID == articleID {
			m.Articles[niche][i].UsageCnt++
			m.Articles[niche][i].UsedIn = append(m.Articles[niche][i].UsedIn, ref)
		}
	}
	return nil
}

func (m *MockDocumentStore) Close() error { return nil }

// MockBlobStore implements storage.BlobStoreInterface and records every
// upload under a deterministic URL.
type MockBlobStore struct {
	mu        sync.Mutex
	Uploads   map[string][]byte
	UploadErr error
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{Uploads: make(map[string][]byte)}
}

func (m *MockBlobStore) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.Uploads[path] = data
	return "https://cdn.test/" + path, nil
}

func (m *MockBlobStore) Close() error { return nil }

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// what it saw.
type MockMetrics struct {
	mu             sync.Mutex
	Attempts       map[string]int
	Failures       map[string]int
	StepDurations  map[string]int
	Outcomes       map[string]int
	Resumed        map[string]int
	LiveCheckpoint int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Attempts:      make(map[string]int),
		Failures:      make(map[string]int),
		StepDurations: make(map[string]int),
		Outcomes:      make(map[string]int),
		Resumed:       make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(string, int)                 {}
func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                {}
func (m *MockMetrics) IncCacheMisses()                              {}

func (m *MockMetrics) IncGenerationAttempt(op string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.Attempts[op]++
	} else {
		m.Failures[op]++
	}
}

func (m *MockMetrics) ObserveStepDuration(kind, step string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StepDurations[kind+":"+step]++
}

func (m *MockMetrics) IncPipelineOutcome(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[kind+":"+outcome]++
}

func (m *MockMetrics) IncPipelineResumed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resumed[kind]++
}

func (m *MockMetrics) SetLiveCheckpoints(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LiveCheckpoint = count
}

// MockCompressor is an identity compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
