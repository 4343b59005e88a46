package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"postpilot/internal/structures"
)

// BlobStoreInterface accepts a binary payload plus a path and returns a
// stable retrievable URL.
type BlobStoreInterface interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Close() error
}

// GCSBlobStore uploads to a Google Cloud Storage bucket.
type GCSBlobStore struct {
	client    *storage.Client
	bucket    string
	urlPrefix string
}

func NewGCSBlobStore(ctx context.Context, conf *structures.Config) (BlobStoreInterface, error) {
	var opts []option.ClientOption
	if conf.Storage.KeyPath != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Storage.KeyPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	urlPrefix := conf.Storage.URLPrefix
	if urlPrefix == "" {
		urlPrefix = "https://storage.googleapis.com/" + conf.Storage.Bucket
	}

	return &GCSBlobStore{
		client:    client,
		bucket:    conf.Storage.Bucket,
		urlPrefix: urlPrefix,
	}, nil
}

func (s *GCSBlobStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(path)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", path, err)
	}

	return s.urlPrefix + "/" + path, nil
}

func (s *GCSBlobStore) Close() error {
	return s.client.Close()
}
