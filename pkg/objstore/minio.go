package objstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docnotify/docnotify-api/pkg/config"
)

// Client wraps an S3 compatible object store used for document files. Uploads
// and downloads go through presigned URLs so file bytes never pass through
// the API process.
type Client struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg config.ObjectStoreConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Client{client: mc, bucket: cfg.Bucket, presignTTL: ttl}, nil
}

// PresignPut returns a URL the caller can PUT the file bytes to directly.
func (c *Client) PresignPut(ctx context.Context, objectName string) (string, error) {
	u, err := c.client.PresignedPutObject(ctx, c.bucket, objectName, c.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign upload for %q: %w", objectName, err)
	}
	return u.String(), nil
}

// PresignGet returns a time limited download URL for a stored object.
func (c *Client) PresignGet(ctx context.Context, objectName string) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, objectName, c.presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign download for %q: %w", objectName, err)
	}
	return u.String(), nil
}

// Remove deletes an object. Used when a document is deleted.
func (c *Client) Remove(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", objectName, err)
	}
	return nil
}
