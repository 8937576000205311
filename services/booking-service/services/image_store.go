package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageStore keeps review photos. Save returns the public location that is
// stored on the review; Delete accepts that same location.
type ImageStore interface {
	Save(ctx context.Context, name string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, location string) error
}

// LocalImageStore writes into a directory served under urlPrefix.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(dir, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalImageStore) Save(_ context.Context, name string, body []byte, _ string) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(filepath.Join(s.dir, name), body, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

func (s *LocalImageStore) Delete(_ context.Context, location string) error {
	err := os.Remove(filepath.Join(s.dir, path.Base(location)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// ObjectStore is the slice of the S3 client the image store needs.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// S3ImageStore puts images under a key prefix in one bucket.
type S3ImageStore struct {
	objects ObjectStore
	prefix  string
	baseURL string
}

func NewS3ImageStore(objects ObjectStore, prefix string) *S3ImageStore {
	return &S3ImageStore{
		objects: objects,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: fmt.Sprintf("https://%s.s3.amazonaws.com", objects.Bucket()),
	}
}

func (s *S3ImageStore) key(name string) string {
	return s.prefix + "/" + path.Base(name)
}

func (s *S3ImageStore) Save(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	key := s.key(name)
	if err := s.objects.Put(ctx, key, body, contentType); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, location string) error {
	return s.objects.Delete(ctx, s.key(location))
}
