// Package storage keeps generated roster images in S3-compatible object
// storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore stores and retrieves roster images by object key.
type ImageStore interface {
	// Put stores an image and returns its object key.
	Put(ctx context.Context, image []byte) (string, error)
	// Get retrieves an image by its object key.
	Get(ctx context.Context, key string) ([]byte, error)
}

// MinIOStore implements ImageStore over a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinIOStore creates the store and ensures the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*MinIOStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("minio is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	store := &MinIOStore{
		client: client,
		bucket: cfg.GetRosterImageBucket(),
		log:    log,
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put stores the image under a date-prefixed unique key.
func (s *MinIOStore) Put(ctx context.Context, image []byte) (string, error) {
	key := fmt.Sprintf("%s/%s.png", time.Now().UTC().Format("2006/01"), uuid.NewString())

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(image), int64(len(image)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", fmt.Errorf("store roster image: %w", err)
	}

	s.log.Debug("roster image stored", "key", key, "bytes", len(image))
	return key, nil
}

// Get retrieves an image by key.
func (s *MinIOStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch roster image %s: %w", key, err)
	}
	defer func() {
		_ = obj.Close()
	}()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read roster image %s: %w", key, err)
	}
	return data, nil
}

var _ ImageStore = (*MinIOStore)(nil)
