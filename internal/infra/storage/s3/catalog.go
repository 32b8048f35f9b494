package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domainlistings "rentdom/internal/domain/listings"
)

// ObjectGetter is the part of the MinIO client the catalog needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// CatalogSource reads the catalog document from an S3-compatible bucket.
type CatalogSource struct {
	bucket string
	key    string
	client *minio.Client
	logger *slog.Logger
}

// NewCatalogSource configures a MinIO client for endpoint. The endpoint may carry a scheme.
func NewCatalogSource(endpoint string, useSSL bool, accessKey, secretKey, bucket, key string, logger *slog.Logger) (*CatalogSource, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if key = strings.Trim(strings.TrimSpace(key), "/"); key == "" {
		return nil, errors.New("s3: object key is required")
	}

	client, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &CatalogSource{bucket: bucket, key: key, client: client, logger: logger}, nil
}

// Load downloads and decodes the catalog document.
func (s *CatalogSource) Load(ctx context.Context) ([]domainlistings.Property, error) {
	return loadCatalog(ctx, s.client, s.bucket, s.key, s.logger)
}

// Ping checks that the bucket is reachable.
func (s *CatalogSource) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !ok {
		return fmt.Errorf("s3: bucket %q does not exist", s.bucket)
	}
	return nil
}

func loadCatalog(ctx context.Context, client ObjectGetter, bucket, key string, logger *slog.Logger) ([]domainlistings.Property, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: get object: %w", err)
	}
	defer obj.Close()

	props, err := domainlistings.DecodeDocument(obj)
	if err != nil {
		return nil, fmt.Errorf("s3: %s/%s: %w", bucket, key, err)
	}
	if logger != nil {
		logger.Info("catalog loaded from bucket", "bucket", bucket, "key", key, "properties", len(props))
	}
	return props, nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
