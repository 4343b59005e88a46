package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

const (
	collInfluencers = "influencers"
	collPosts       = "posts"
	collNews        = "news"
	collArticles    = "articles"
	docMeta         = "meta"
)

// FirestoreStore implements DocumentStoreInterface on Cloud Firestore.
// Layout:
//
//	influencers/{id}
//	posts/{id}
//	news/{niche}                   (fetch metadata document)
//	news/{niche}/articles/{id}
type FirestoreStore struct {
	client *firestore.Client
	logger providers.Logger
}

func NewFirestoreStore(ctx context.Context, conf *structures.Config, logger providers.Logger) (DocumentStoreInterface, error) {
	var opts []option.ClientOption
	if conf.Storage.KeyPath != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Storage.KeyPath))
	}
	client, err := firestore.NewClient(ctx, conf.Storage.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, logger: logger}, nil
}

func (s *FirestoreStore) SaveInfluencer(ctx context.Context, inf *models.Influencer) error {
	_, err := s.client.Collection(collInfluencers).Doc(inf.ID).Set(ctx, inf)
	if err != nil {
		return fmt.Errorf("failed to save influencer %s: %w", inf.ID, err)
	}
	return nil
}

func (s *FirestoreStore) SavePost(ctx context.Context, post *models.Post) error {
	_, err := s.client.Collection(collPosts).Doc(post.ID).Set(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to save post %s: %w", post.ID, err)
	}
	return nil
}

func (s *FirestoreStore) ListPosts(ctx context.Context, ownerID string, limit int) ([]models.Post, error) {
	query := s.client.Collection(collPosts).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)

	var posts []models.Post
	it := query.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
		var post models.Post
		if err := doc.DataTo(&post); err != nil {
			s.logger.Warnf(providers.TypeStorage, "Skipping undecodable post %s: %s", doc.Ref.ID, err)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *FirestoreStore) NewsMetadata(ctx context.Context, niche string) (*models.NewsFetchMetadata, error) {
	doc, err := s.client.Collection(collNews).Doc(niche).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read news metadata for %s: %w", niche, err)
	}
	var meta models.NewsFetchMetadata
	if err := doc.DataTo(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode news metadata for %s: %w", niche, err)
	}
	return &meta, nil
}

func (s *FirestoreStore) SetNewsMetadata(ctx context.Context, meta *models.NewsFetchMetadata) error {
	_, err := s.client.Collection(collNews).Doc(meta.Niche).Set(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to write news metadata for %s: %w", meta.Niche, err)
	}
	return nil
}

// bulkJob is the per-write handle a BulkWriter hands back; Results blocks
// until the write is flushed.
type bulkJob interface {
	Results() (*firestore.WriteResult, error)
}

func awaitBulkJobs(ids []string, jobs []bulkJob) error {
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write article %s: %w", ids[i], err)
		}
	}
	return nil
}

func (s *FirestoreStore) SaveArticles(ctx context.Context, articles []models.NewsArticle) error {
	if len(articles) == 0 {
		return nil
	}
	writer := s.client.BulkWriter(ctx)
	jobs := make([]bulkJob, 0, len(articles))
	ids := make([]string, 0, len(articles))
	for i := range articles {
		article := articles[i]
		ref := s.client.Collection(collNews).Doc(article.Niche).Collection(collArticles).Doc(article.ID)
		job, err := writer.Set(ref, article)
		if err != nil {
			return fmt.Errorf("failed to enqueue article %s: %w", article.ID, err)
		}
		jobs = append(jobs, job)
		ids = append(ids, article.ID)
	}
	writer.End()
	return awaitBulkJobs(ids, jobs)
}

func (s *FirestoreStore) ListArticles(ctx context.Context, niche string, limit int) ([]models.NewsArticle, error) {
	query := s.client.Collection(collNews).Doc(niche).Collection(collArticles).
		OrderBy("fetchedAt", firestore.Desc).
		Limit(limit)

	var articles []models.NewsArticle
	it := query.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list articles for %s: %w", niche, err)
		}
		var article models.NewsArticle
		if err := doc.DataTo(&article); err != nil {
			s.logger.Warnf(providers.TypeStorage, "Skipping undecodable article %s: %s", doc.Ref.ID, err)
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (s *FirestoreStore) LinkArticleUsage(ctx context.Context, niche, articleID string, ref models.UsageRef) error {
	docRef := s.client.Collection(collNews).Doc(niche).Collection(collArticles).Doc(articleID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "usageCount", Value: firestore.Increment(1)},
		{Path: "usedIn", Value: firestore.ArrayUnion(ref)},
	})
	if err != nil {
		return fmt.Errorf("failed to link usage for article %s: %w", articleID, err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
