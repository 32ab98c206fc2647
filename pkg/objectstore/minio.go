// Package objectstore stores chat media in MinIO or any S3 compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nearby/pkg/media"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxPresignExpiry is the longest expiry S3 accepts for a presigned GET.
const MaxPresignExpiry = 7 * 24 * time.Hour

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL, when set, is the base for permanent object URLs (a CDN or a
	// public-read bucket). Otherwise uploads return presigned URLs.
	PublicURL string
}

// MinioStore implements media.Uploader.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore builds the client without touching the network.
func NewMinioStore(cfg Config) (*MinioStore, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, publicURL: strings.TrimSuffix(cfg.PublicURL, "/")}, nil
}

// EnsureBucket creates the bucket when missing.
func (m *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (m *MinioStore) Upload(ctx context.Context, u media.Upload) (string, error) {
	if u.Kind != media.KindImage && u.Kind != media.KindAudio {
		return "", media.ErrUnsupported
	}
	key := u.Key()
	_, err := m.client.PutObject(ctx, m.bucket, key, u.Body, u.Size, minio.PutObjectOptions{ContentType: u.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	if m.publicURL != "" {
		return m.publicURL + "/" + key, nil
	}
	signed, err := m.client.PresignedGetObject(ctx, m.bucket, key, MaxPresignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return signed.String(), nil
}
