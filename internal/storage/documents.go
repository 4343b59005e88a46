package storage

import (
	"context"

	"postpilot/internal/models"
)

// DocumentStoreInterface is the boundary to the persistence service:
// owner-scoped influencer and post records plus the niche-scoped,
// owner-independent news collections and fetch-metadata documents.
type DocumentStoreInterface interface {
	SaveInfluencer(ctx context.Context, inf *models.Influencer) error
	SavePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context, ownerID string, limit int) ([]models.Post, error)

	NewsMetadata(ctx context.Context, niche string) (*models.NewsFetchMetadata, error)
	SetNewsMetadata(ctx context.Context, meta *models.NewsFetchMetadata) error
	SaveArticles(ctx context.Context, articles []models.NewsArticle) error
	ListArticles(ctx context.Context, niche string, limit int) ([]models.NewsArticle, error)
	// LinkArticleUsage appends a usage reference to the article and bumps
	// its usage counter. The list is append-only.
	LinkArticleUsage(ctx context.Context, niche, articleID string, ref models.UsageRef) error

	Close() error
}
