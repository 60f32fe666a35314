package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/mediaindex/internal/common"
	"github.com/jgivc/mediaindex/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket string
	key    string
	body   []byte
	opts   minio.PutObjectOptions
}

type fakeClient struct {
	exists      bool
	existsErr   error
	existsCalls int
	made        []string
	puts        []putCall
}

func (c *fakeClient) BucketExists(_ context.Context, _ string) (bool, error) {
	c.existsCalls++

	return c.exists, c.existsErr
}

func (c *fakeClient) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	c.made = append(c.made, bucketName)

	return nil
}

func (c *fakeClient) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	if int64(len(body)) != objectSize {
		return minio.UploadInfo{}, fmt.Errorf("size mismatch")
	}

	c.puts = append(c.puts, putCall{bucket: bucketName, key: objectName, body: body, opts: opts})

	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestPublish(t *testing.T) {
	client := &fakeClient{}
	cfg := &config.StorageConfig{Bucket: "site", Prefix: "/static/", CacheControl: "no-cache"}

	p, err := NewS3PublisherWithClient(client, cfg, testLog())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, "images", []byte("[]\n")))
	require.NoError(t, p.Publish(ctx, "videos", []byte("[1]\n")))

	require.Equal(t, 1, client.existsCalls)
	require.Equal(t, []string{"site"}, client.made)
	require.Len(t, client.puts, 2)

	require.Equal(t, "static/_media/images.json", client.puts[0].key)
	require.Equal(t, []byte("[]\n"), client.puts[0].body)
	require.Equal(t, indexContentType, client.puts[0].opts.ContentType)
	require.Equal(t, "no-cache", client.puts[0].opts.CacheControl)
	require.Equal(t, "static/_media/videos.json", client.puts[1].key)
}

func TestPublishBucketError(t *testing.T) {
	client := &fakeClient{existsErr: fmt.Errorf("access denied")}

	p, err := NewS3PublisherWithClient(client, &config.StorageConfig{Bucket: "site"}, testLog())
	require.NoError(t, err)

	err = p.Publish(context.Background(), "images", []byte("[]\n"))
	require.ErrorIs(t, err, client.existsErr)
	require.Empty(t, client.puts)
}

func TestKey(t *testing.T) {
	p, err := NewS3PublisherWithClient(&fakeClient{exists: true}, &config.StorageConfig{Bucket: "site"}, testLog())
	require.NoError(t, err)
	require.Equal(t, "_media/videos.json", p.Key("videos"))
}

func TestNewS3PublisherValidation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.StorageConfig
	}{
		{name: "No endpoint", cfg: config.StorageConfig{Bucket: "b", AccessKey: "a", SecretKey: "s"}},
		{name: "No credentials", cfg: config.StorageConfig{Endpoint: "minio:9000", Bucket: "b"}},
		{name: "No bucket", cfg: config.StorageConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewS3Publisher(&tc.cfg, testLog())
			require.ErrorIs(t, err, common.ErrPublisherNotReady)
		})
	}
}
