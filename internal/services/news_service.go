package services

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/storage"
	"postpilot/internal/structures"
)

// NewsServiceInterface is the cache-or-fetch gate in front of news
// discovery. At most one fresh discovery call per niche runs across the
// whole system within the rate-limit window; the gate's metadata record
// is shared by every client and guarded only by the in-progress timeout
// heuristic, not a transaction.
type NewsServiceInterface interface {
	FetchNews(ctx context.Context, niche string, allowRetry bool) ([]models.NewsArticle, error)
	Article(ctx context.Context, niche, articleID string) (*models.NewsArticle, error)
}

type NewsService struct {
	runner *generationRunner
	docs   storage.DocumentStoreInterface
	cache  providers.CacheProviderInterface
	conf   *structures.Config
	logger providers.Logger
	now    func() time.Time
}

func NewNewsService(client genai.Client, docs storage.DocumentStoreInterface, cache providers.CacheProviderInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) NewsServiceInterface {
	return &NewsService{
		runner: newGenerationRunner(client, conf, logger, metrics),
		docs:   docs,
		cache:  cache,
		conf:   conf,
		logger: logger,
		now:    time.Now,
	}
}

const discoveryAttempts = 2

func (s *NewsService) FetchNews(ctx context.Context, niche string, allowRetry bool) ([]models.NewsArticle, error) {
	meta, err := s.docs.NewsMetadata(ctx, niche)
	if err != nil {
		// A metadata read failure is treated as "no record": the worst
		// case is a redundant discovery call.
		s.logger.Warnf(providers.TypeNews, "Metadata read failed for %q, assuming no record: %s", niche, err)
		meta = nil
	}

	decision := meta.Decide(s.now(), s.conf.News.RefreshWindow, s.conf.News.InProgressTimeout, allowRetry)
	switch decision {
	case models.DecisionCacheOnly:
		s.logger.Debugf(providers.TypeNews, "Serving %q from cache (fresh metadata)", niche)
		return s.cachedArticles(ctx, niche)
	case models.DecisionWait:
		s.logger.Infof(providers.TypeNews, "Another fetch in progress for %q, serving cache", niche)
		return s.cachedArticles(ctx, niche)
	}

	return s.freshFetch(ctx, niche)
}

func (s *NewsService) freshFetch(ctx context.Context, niche string) ([]models.NewsArticle, error) {
	now := s.now()
	if err := s.docs.SetNewsMetadata(ctx, &models.NewsFetchMetadata{
		Niche:     niche,
		Status:    models.FetchInProgress,
		LastFetch: now,
	}); err != nil {
		s.logger.Warnf(providers.TypeNews, "Failed to mark %q in-progress: %s", niche, err)
	}

	articles, err := s.discover(ctx, niche)
	if err != nil {
		if metaErr := s.docs.SetNewsMetadata(ctx, &models.NewsFetchMetadata{
			Niche:     niche,
			Status:    models.FetchFailed,
			LastFetch: now,
		}); metaErr != nil {
			s.logger.Warnf(providers.TypeNews, "Failed to mark %q failed: %s", niche, metaErr)
		}

		// Stale cache beats no news at all.
		if cached, cacheErr := s.cachedArticles(ctx, niche); cacheErr == nil && len(cached) > 0 {
			s.logger.Warnf(providers.TypeNews, "Discovery for %q failed, serving stale cache: %s", niche, err)
			return cached, nil
		}
		return nil, err
	}

	if err := s.docs.SaveArticles(ctx, articles); err != nil {
		s.logger.Errorf(providers.TypeNews, "Failed to persist %d articles for %q: %s", len(articles), niche, err)
	}
	if err := s.docs.SetNewsMetadata(ctx, &models.NewsFetchMetadata{
		Niche:        niche,
		Status:       models.FetchCompleted,
		LastFetch:    s.now(),
		ArticleCount: len(articles),
	}); err != nil {
		s.logger.Warnf(providers.TypeNews, "Failed to mark %q completed: %s", niche, err)
	}
	s.fillCache(niche, articles)

	s.logger.Infof(providers.TypeNews, "Discovered %d articles for %q", len(articles), niche)
	return articles, nil
}

// articlePayload is the per-item JSON shape we prompt for.
type articlePayload struct {
	Headline  string  `json:"headline"`
	Summary   string  `json:"summary"`
	Body      string  `json:"body"`
	Relevance float64 `json:"relevance"`
	SourceURL string  `json:"sourceUrl"`
}

// discover runs the two-strategy batch discovery: search-grounded first,
// knowledge-only as the silent fallback. Only exhaustion of both
// strategies is surfaced.
func (s *NewsService) discover(ctx context.Context, niche string) ([]models.NewsArticle, error) {
	prompt := discoveryPrompt(niche, s.conf.News.BatchSize)

	result, err := s.runner.text(ctx, "news.search", s.conf.Generation.SearchTimeout, discoveryAttempts, genai.TextRequest{
		Model:          s.conf.Generation.TextModel,
		Prompt:         prompt,
		GroundInSearch: true,
		Temperature:    0.7,
	})
	if err != nil {
		s.logger.Warnf(providers.TypeNews, "Search-grounded discovery failed, falling back to knowledge-only: %s", err)
		result, err = s.runner.text(ctx, "news.knowledge", s.conf.Generation.TextTimeout, discoveryAttempts, genai.TextRequest{
			Model:       s.conf.Generation.TextModel,
			Prompt:      prompt,
			WantJSON:    true,
			Temperature: 0.9,
		})
		if err != nil {
			return nil, err
		}
	}

	var payloads []articlePayload
	if err := genai.DecodeLoose("news.discover", result.Text, &payloads); err != nil {
		return nil, err
	}

	now := s.now()
	articles := make([]models.NewsArticle, 0, len(payloads))
	for _, p := range payloads {
		if p.Headline == "" {
			continue
		}
		articles = append(articles, models.NewsArticle{
			ID:        uuid.NewString(),
			Niche:     niche,
			Headline:  p.Headline,
			Summary:   p.Summary,
			Body:      p.Body,
			Relevance: p.Relevance,
			SourceURL: p.SourceURL,
			FetchedAt: now,
		})
	}
	if len(articles) == 0 {
		return nil, genai.NewError(genai.KindParsing, "news.discover", fmt.Errorf("discovery returned no usable articles"))
	}
	return articles, nil
}

func (s *NewsService) Article(ctx context.Context, niche, articleID string) (*models.NewsArticle, error) {
	articles, err := s.cachedArticles(ctx, niche)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].ID == articleID {
			return &articles[i], nil
		}
	}
	return nil, fmt.Errorf("article %s not found in niche %q", articleID, niche)
}

func cacheKey(niche string) string {
	return "news:" + niche
}

func (s *NewsService) cachedArticles(ctx context.Context, niche string) ([]models.NewsArticle, error) {
	if raw, ok := s.cache.Get(cacheKey(niche)); ok {
		var articles []models.NewsArticle
		if err := json.Unmarshal(raw, &articles); err == nil {
			return articles, nil
		}
		s.cache.Del(cacheKey(niche))
	}

	articles, err := s.docs.ListArticles(ctx, niche, s.conf.News.BatchSize*4)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached articles for %q: %w", niche, err)
	}
	s.fillCache(niche, articles)
	return articles, nil
}

func (s *NewsService) fillCache(niche string, articles []models.NewsArticle) {
	raw, err := json.Marshal(articles)
	if err != nil {
		return
	}
	s.cache.Set(cacheKey(niche), raw)
}

func discoveryPrompt(niche string, batch int) string {
	return fmt.Sprintf(
		`Find the %d most noteworthy recent news stories in the %q niche.
Respond with a JSON array of exactly %d objects, each with:
  "headline": the story headline,
  "summary": 2-sentence summary,
  "body": a 3-paragraph article text,
  "relevance": 0.0-1.0 relevance to the niche,
  "sourceUrl": the source URL if known, else "".
No prose outside the JSON array.`, batch, niche, batch)
}
