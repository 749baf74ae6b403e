// Package s3 reads export files from an S3-compatible bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

// Internal adapter interface to enable mocking without a real S3 server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return w.c.ListObjects(ctx, bucketName, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

var _ model.ExportSource = (*Source)(nil)

// Source reads export files under one key prefix of one bucket, the bucket
// equivalent of a flat directory.
type Source struct {
	api    minioAPI
	bucket string
	prefix string
}

// NewSource creates an export source over a real *minio.Client instance.
// The prefix is the directory-like location inside the bucket; "", "." and
// "/" all mean the bucket root.
func NewSource(ctx context.Context, client *minio.Client, bucket, prefix string) (*Source, error) {
	return NewSourceWithAPI(ctx, minioClientWrapper{c: client}, bucket, prefix)
}

// NewSourceWithAPI allows injecting a mockable API (used in tests).
// The bucket must already exist; exports are read-only.
func NewSourceWithAPI(ctx context.Context, api minioAPI, bucket, prefix string) (*Source, error) {
	s := &Source{
		api:    api,
		bucket: bucket,
		prefix: normalizePrefix(prefix),
	}

	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q: %w", bucket, model.ErrNotFound)
	}

	return s, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" || prefix == "." {
		return ""
	}
	return prefix + "/"
}

// List returns the object names directly under the prefix.
func (s *Source) List(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Prefix: s.prefix, Recursive: false}

	var names []string
	for obj := range s.api.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		// Non-recursive listings report nested keys as "/"-terminated prefixes.
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, strings.TrimPrefix(obj.Key, s.prefix))
	}

	return names, nil
}

// Open opens one object by its listed name.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return obj, nil
}
