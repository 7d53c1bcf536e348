package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// S3Config describes an S3 compatible bucket holding one object per manifest.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	UseSSL          bool   `yaml:"useSSL"`
}

type S3Backend struct {
	client *minio.Client
	bucket string
	prefix string
	logger logr.Logger
}

// NewS3Backend connects to the bucket and fails if it does not exist.
func NewS3Backend(ctx context.Context, cfg S3Config, logger logr.Logger) (*S3Backend, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 backend requires endpoint and bucket", apperrors.ErrInvalid)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.WrapStorage(err, "create s3 client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, apperrors.WrapStorage(err, "check bucket "+cfg.Bucket)
	}
	if !exists {
		return nil, fmt.Errorf("%w: bucket %s does not exist", apperrors.ErrStorage, cfg.Bucket)
	}

	logger.Info("Connected to S3 bucket", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return newS3Backend(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Backend(client *minio.Client, bucket, prefix string, logger logr.Logger) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: normalizePrefix(prefix),
		logger: logger,
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func (b *S3Backend) Name() string {
	return BackendS3
}

func (b *S3Backend) objectKey(id string) string {
	return b.prefix + id
}

// idFromKey maps an object key back to a manifest id. Keys in nested
// "directories" are not manifests.
func (b *S3Backend) idFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, b.prefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, b.prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (b *S3Backend) List(ctx context.Context) ([]string, error) {
	var ids []string
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: b.prefix}) {
		if obj.Err != nil {
			return nil, apperrors.WrapStorage(obj.Err, "list bucket "+b.bucket)
		}
		if id, ok := b.idFromKey(obj.Key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (b *S3Backend) Read(ctx context.Context, id string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, notFound(id)
		}
		return nil, apperrors.WrapStorage(err, "get object for manifest "+id)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, notFound(id)
		}
		return nil, apperrors.WrapStorage(err, "read object for manifest "+id)
	}
	return data, nil
}

func (b *S3Backend) Write(ctx context.Context, id string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.objectKey(id), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return apperrors.WrapStorage(err, "put object for manifest "+id)
	}
	return nil
}

func (b *S3Backend) Exists(ctx context.Context, id string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.objectKey(id), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, apperrors.WrapStorage(err, "stat object for manifest "+id)
	}
	return true, nil
}
