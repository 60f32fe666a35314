package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/jgivc/mediaindex/internal/common"
	"github.com/jgivc/mediaindex/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	indexKeyDir       = "_media"
	indexContentType  = "application/json; charset=utf-8"
	defaultRegion     = "us-east-1"
	indexObjectSuffix = ".json"
)

type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type s3Publisher struct {
	client       ObjectClient
	bucket       string
	region       string
	prefix       string
	cacheControl string
	initOnce     sync.Once
	initErr      error
	log          *slog.Logger
}

func NewS3Publisher(cfg *config.StorageConfig, log *slog.Logger) (*s3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: s3 endpoint is required", common.ErrPublisherNotReady)
	}

	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("%w: s3 access key and secret key are required", common.ErrPublisherNotReady)
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot init s3 client: %w", err)
	}

	return NewS3PublisherWithClient(client, cfg, log)
}

func NewS3PublisherWithClient(client ObjectClient, cfg *config.StorageConfig, log *slog.Logger) (*s3Publisher, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", common.ErrPublisherNotReady)
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	return &s3Publisher{
		client:       client,
		bucket:       bucket,
		region:       region,
		prefix:       strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		cacheControl: cfg.CacheControl,
		log:          log.With(slog.String("item", "S3Publisher")),
	}, nil
}

// Key returns the object name of a category index, <prefix>/_media/<category>.json.
func (p *s3Publisher) Key(category string) string {
	key := path.Join(indexKeyDir, category+indexObjectSuffix)
	if p.prefix == "" {
		return key
	}

	return p.prefix + "/" + key
}

func (p *s3Publisher) Publish(ctx context.Context, category string, content []byte) error {
	if err := p.ensureBucket(ctx); err != nil {
		return fmt.Errorf("cannot ensure bucket %s: %w", p.bucket, err)
	}

	key := p.Key(category)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  indexContentType,
		CacheControl: p.cacheControl,
	})
	if err != nil {
		return fmt.Errorf("cannot put object %s: %w", key, err)
	}

	p.log.Info("Index published", slog.String("bucket", p.bucket), slog.String("key", key), slog.Int("size", len(content)))

	return nil
}

func (p *s3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}

		if exists {
			return
		}

		p.log.Info("Create bucket", slog.String("bucket", p.bucket))
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})

	return p.initErr
}
